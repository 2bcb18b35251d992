package service

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	"invoice-ocr/dto"
	"invoice-ocr/utils"
)

// OCREngine is the external OCR collaborator: one image in, positioned
// detections out. It is injected once and reused for every document.
type OCREngine interface {
	Detect(imagePath string) ([]dto.Detection, error)
}

// Embedded PDF text shorter than this is treated as a scanned document.
const minEmbeddedTextLen = 20

var supportedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".pdf": true,
	".tif": true, ".tiff": true, ".bmp": true, ".webp": true, ".heic": true,
}

// IsSupportedFile reports whether the filename has a recognized image or
// PDF extension.
func IsSupportedFile(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}

type InvoiceService struct {
	ocrEngine    OCREngine
	pdfProcessor PDFProcessor
	preprocessor *Preprocessor
}

func NewInvoiceService(ocrEngine OCREngine, pdfProcessor PDFProcessor, preprocessor *Preprocessor) *InvoiceService {
	return &InvoiceService{
		ocrEngine:    ocrEngine,
		pdfProcessor: pdfProcessor,
		preprocessor: preprocessor,
	}
}

// ProcessFile runs the full pipeline on a single image or PDF. An OCR pass
// yielding nothing is not an error — the record just comes back with null
// fields and no items.
func (s *InvoiceService) ProcessFile(path string) (*dto.InvoiceRecord, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("input not found: %w", err)
	}

	var text string
	var detections []dto.Detection
	var err error

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, detections, err = s.processPDF(path)
	} else {
		detections, err = s.detectImageFile(path)
		text = utils.ReconstructText(detections)
	}
	if err != nil {
		return nil, err
	}

	record := utils.ParseInvoice(text, detections)
	return &record, nil
}

// ProcessPath processes a single file or every supported file in a
// directory, writing one JSON record per input. A failing document is
// reported and skipped; the batch keeps going.
func (s *InvoiceService) ProcessPath(inputPath, outputDir string) error {
	info, err := os.Stat(inputPath)
	if err != nil {
		return fmt.Errorf("input path not found: %w", err)
	}

	if !info.IsDir() {
		return s.processAndWrite(inputPath, outputDir)
	}

	entries, err := os.ReadDir(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && IsSupportedFile(e.Name()) {
			files = append(files, filepath.Join(inputPath, e.Name()))
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported input files found in %s", inputPath)
	}

	for _, f := range files {
		log.Printf("Processing: %s", f)
		if err := s.processAndWrite(f, outputDir); err != nil {
			log.Printf("Failed to process %s: %v", f, err)
		}
	}
	return nil
}

// processAndWrite parses one document and writes <name>.json next to its
// siblings in outputDir. Nothing is written when parsing fails, so a
// failed document never leaves a partial output behind.
func (s *InvoiceService) processAndWrite(path, outputDir string) error {
	record, err := s.ProcessFile(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(outputDir, name+".json")

	data, err := json.MarshalIndent(record, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	log.Printf("Saved %s", outPath)
	return nil
}

// processPDF prefers embedded text (digital invoices skip OCR entirely),
// then rasterizes pages for OCR, then falls back to embedded images.
func (s *InvoiceService) processPDF(path string) (string, []dto.Detection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	if text, err := s.pdfProcessor.ExtractText(data); err == nil && len(strings.TrimSpace(text)) >= minEmbeddedTextLen {
		return text, nil, nil
	}

	pages, err := s.pdfProcessor.RenderPages(data)
	if err != nil || len(pages) == 0 {
		log.Printf("PDF rasterization failed for %s, trying embedded images: %v", path, err)
		pages, err = s.pdfProcessor.ExtractImages(data)
		if err != nil {
			return "", nil, fmt.Errorf("failed to extract pages from PDF: %w", err)
		}
	}

	var all []dto.Detection
	var yOffset float64
	for i, page := range pages {
		dets, err := s.detectImage(page)
		if err != nil {
			log.Printf("OCR failed for page %d of %s: %v", i+1, path, err)
		}
		for _, d := range dets {
			for j := range d.Box {
				d.Box[j].Y += yOffset
			}
			all = append(all, d)
		}
		// Shift the next page's detections below this one so rows from
		// different pages never share a bucket.
		yOffset += float64(page.Bounds().Dy())
	}

	return utils.ReconstructText(all), all, nil
}

// detectImageFile preprocesses an image file and OCRs it. Engine failure is
// downgraded to an empty result: the cascade handles absence.
func (s *InvoiceService) detectImageFile(path string) ([]dto.Detection, error) {
	tempPath, err := s.preprocessor.PrepareFile(path)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tempPath)

	dets, err := s.ocrEngine.Detect(tempPath)
	if err != nil {
		log.Printf("OCR failed for %s: %v", path, err)
		return nil, nil
	}
	return dets, nil
}

func (s *InvoiceService) detectImage(img image.Image) ([]dto.Detection, error) {
	tempPath, err := s.preprocessor.PrepareImage(img)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tempPath)

	return s.ocrEngine.Detect(tempPath)
}
