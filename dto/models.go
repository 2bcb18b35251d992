package dto

// Point is one corner of a detection's bounding quadrilateral.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Detection is a single OCR result: the recognized text, its bounding
// quadrilateral and the engine's confidence in [0,1]. Detections are
// produced by the OCR engine and consumed read-only; no ordering is
// assumed.
type Detection struct {
	Box        [4]Point `json:"box"`
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
}

// LineItem is one purchased row extracted from the document. Price is
// always populated; UnitPrice only when it is distinguishable from Price.
type LineItem struct {
	Item      string   `json:"item"`
	Quantity  int      `json:"quantity"`
	Price     float64  `json:"price"`
	UnitPrice *float64 `json:"unit_price,omitempty"`
}

// InvoiceRecord is the final parsed document. Optional fields serialize as
// explicit nulls so the key set never changes; LineItems is always present,
// possibly empty.
type InvoiceRecord struct {
	MerchantName  *string    `json:"merchant_name"`
	InvoiceNumber *string    `json:"invoice_number"`
	Date          *string    `json:"date"`
	TotalAmount   *float64   `json:"total_amount"`
	Currency      *string    `json:"currency"`
	LineItems     []LineItem `json:"line_items"`
}

// StoredInvoice is a parsed record as persisted by the HTTP surface.
type StoredInvoice struct {
	ID          string        `json:"id"`
	SourceFile  string        `json:"source_file"`
	ProcessedAt string        `json:"processed_at"`
	Record      InvoiceRecord `json:"record"`
}
