package service

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/heic"
)

// Preprocessor normalizes input images for OCR: decode (including HEIC
// photos straight off a phone), grayscale, contrast boost, sharpen.
type Preprocessor struct{}

func NewPreprocessor() *Preprocessor {
	return &Preprocessor{}
}

// PrepareFile loads an image from disk, enhances it and writes the result
// to a temporary PNG ready for the OCR engine. The caller removes the file.
func (p *Preprocessor) PrepareFile(imagePath string) (string, error) {
	img, err := p.load(imagePath)
	if err != nil {
		return "", err
	}
	return p.PrepareImage(img)
}

// PrepareImage enhances an in-memory image (a rasterized PDF page) and
// writes it to a temporary PNG. The caller removes the file.
func (p *Preprocessor) PrepareImage(img image.Image) (string, error) {
	enhanced := Enhance(img)

	tempFile, err := os.CreateTemp("", "invoice-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer tempFile.Close()

	if err := imaging.Encode(tempFile, enhanced, imaging.PNG); err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return tempFile.Name(), nil
}

// Enhance applies the OCR-oriented cleanup chain: grayscale, aggressive
// contrast, sharpen, slight brightness lift.
func Enhance(src image.Image) image.Image {
	img := imaging.Grayscale(src)
	img = imaging.AdjustContrast(img, 30)
	img = imaging.Sharpen(img, 1.5)
	img = imaging.AdjustBrightness(img, 10)
	return img
}

func (p *Preprocessor) load(imagePath string) (image.Image, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	if isHEIC(data) {
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode HEIC image: %w", err)
		}
		return img, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// isHEIC sniffs the ftyp box brands iPhones write.
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}
