package client

import (
	"fmt"
	"log"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"invoice-ocr/dto"
)

// TesseractClient is the OCR engine collaborator: one image file in,
// positioned text detections out. Construct it once and reuse it across
// documents.
type TesseractClient struct {
	tessdataPrefix string
	language       string
}

func NewTesseractClient(tessdataPrefix string) *TesseractClient {
	return &TesseractClient{
		tessdataPrefix: tessdataPrefix,
		language:       "eng",
	}
}

// Detect runs OCR on an image file and returns word-level detections with
// bounding quadrilaterals and confidences normalized to [0,1].
func (tc *TesseractClient) Detect(imagePath string) ([]dto.Detection, error) {
	client := gosseract.NewClient()
	defer client.Close()

	client.SetTessdataPrefix(tc.tessdataPrefix)

	if err := client.SetLanguage(tc.language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("failed to get bounding boxes: %w", err)
	}

	dets := make([]dto.Detection, 0, len(boxes))
	for _, b := range boxes {
		if strings.TrimSpace(b.Word) == "" {
			continue
		}
		r := b.Box
		dets = append(dets, dto.Detection{
			Box: [4]dto.Point{
				{X: float64(r.Min.X), Y: float64(r.Min.Y)},
				{X: float64(r.Max.X), Y: float64(r.Min.Y)},
				{X: float64(r.Max.X), Y: float64(r.Max.Y)},
				{X: float64(r.Min.X), Y: float64(r.Max.Y)},
			},
			Text:       b.Word,
			Confidence: b.Confidence / 100.0,
		})
	}
	return dets, nil
}

// Close performs cleanup
func (tc *TesseractClient) Close() {
	log.Println("Tesseract client closed")
}
