package utils

import (
	"regexp"
	"strconv"
	"strings"

	"invoice-ocr/dto"
)

// Pattern lists are ordered by priority: the first pattern that matches
// wins, regardless of where in the text a later pattern would have matched.
// More specific phrasings come first.

var invoiceNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)invoice\s*(?:no|number)?\s*[:\-]?\s*([A-Z0-9\-]+)`),
	regexp.MustCompile(`(?i)inv\s*[:\-]?\s*([A-Z0-9\-]+)`),
	regexp.MustCompile(`(?i)bill\s*no\s*[:\-]?\s*([A-Z0-9\-]+)`),
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{2}[/-]\d{2}[/-]\d{4}`),
	regexp.MustCompile(`\d{4}[/-]\d{2}[/-]\d{2}`),
}

var totalAmountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:balance\s*due|amount\s*due)\s*[:\-]?\s*[₹$]?\s*(\d+\.?\d*)`),
	regexp.MustCompile(`(?i)grand\s*total\s*[:\-]?\s*[₹$]?\s*(\d+\.?\d*)`),
	regexp.MustCompile(`(?i)total\s*amount\s*[:\-]?\s*[₹$]?\s*(\d+\.?\d*)`),
}

var decimalAmountPattern = regexp.MustCompile(`[₹$]?\s*(\d+\.\d{2})`)

var merchantIgnoreWords = []string{
	"invoice", "bill to", "ship to",
	"date", "invoice no", "invoice number",
}

// Known OCR confusions normalized before field extraction.
var ocrNormalizer = strings.NewReplacer(
	"T0TAL", "TOTAL",
	"BALANCE DUE", "Balance Due",
	"AMOUNT DUE", "Amount Due",
)

// NormalizeOCRText fixes the handful of literal misreads the extractors
// depend on. No other OCR correction is attempted.
func NormalizeOCRText(text string) string {
	return ocrNormalizer.Replace(text)
}

// ExtractInvoiceNumber returns the first captured invoice identifier.
func ExtractInvoiceNumber(text string) *string {
	for _, p := range invoiceNumberPatterns {
		if m := p.FindStringSubmatch(text); len(m) > 1 && m[1] != "" {
			return &m[1]
		}
	}
	return nil
}

// ExtractDate returns the first date-shaped literal. No calendar
// validation: the OCR text is trusted as-is.
func ExtractDate(text string) *string {
	for _, p := range datePatterns {
		if m := p.FindString(text); m != "" {
			return &m
		}
	}
	return nil
}

// ExtractTotalAmount prefers labeled totals ("balance due" beats a bare
// "total") and falls back to the last decimal-formatted number anywhere in
// the text.
func ExtractTotalAmount(text string) *float64 {
	for _, p := range totalAmountPatterns {
		if m := p.FindStringSubmatch(text); len(m) > 1 {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return &v
			}
		}
	}

	amounts := decimalAmountPattern.FindAllStringSubmatch(text, -1)
	if len(amounts) > 0 {
		if v, err := strconv.ParseFloat(amounts[len(amounts)-1][1], 64); err == nil {
			return &v
		}
	}
	return nil
}

// ExtractCurrency detects INR before USD; unknown stays null.
func ExtractCurrency(text string) *string {
	lower := strings.ToLower(text)

	if strings.Contains(text, "₹") || strings.Contains(lower, "rs") || strings.Contains(lower, "inr") {
		currency := "INR"
		return &currency
	}
	if strings.Contains(text, "$") || strings.Contains(lower, "usd") {
		currency := "USD"
		return &currency
	}
	return nil
}

// ExtractMerchantName scans the first five non-empty lines for one that
// carries no boilerplate keyword and at most six words — merchant names sit
// at the top of the document and are short.
func ExtractMerchantName(text string) *string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}
	if len(lines) > 5 {
		lines = lines[:5]
	}

	for _, line := range lines {
		lower := strings.ToLower(line)
		ignored := false
		for _, k := range merchantIgnoreWords {
			if strings.Contains(lower, k) {
				ignored = true
				break
			}
		}
		if ignored {
			continue
		}
		if len(strings.Fields(line)) <= 6 {
			name := line
			return &name
		}
	}
	return nil
}

// ParseInvoice assembles the final record from reconstructed text and the
// raw detections. Detections are optional; without them the plain-text
// strategies carry the whole load. Empty input yields an all-null record,
// never an error.
func ParseInvoice(text string, dets []dto.Detection) dto.InvoiceRecord {
	text = NormalizeOCRText(text)

	items := ExtractLineItemsCascade(text, dets)
	if items == nil {
		items = []dto.LineItem{}
	}

	return dto.InvoiceRecord{
		MerchantName:  ExtractMerchantName(text),
		InvoiceNumber: ExtractInvoiceNumber(text),
		Date:          ExtractDate(text),
		TotalAmount:   ExtractTotalAmount(text),
		Currency:      ExtractCurrency(text),
		LineItems:     items,
	}
}
