package handler

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"invoice-ocr/dto"
	"invoice-ocr/service"
	"invoice-ocr/storage"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	store          *storage.BoltStore
}

func NewInvoiceHandler(invoiceService *service.InvoiceService, store *storage.BoltStore) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		store:          store,
	}
}

// ParseInvoice handles the POST /api/v1/invoice/parse endpoint
func (h *InvoiceHandler) ParseInvoice(c *gin.Context) {
	log.Println("Received invoice parse request")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "No file provided", err)
		return
	}

	if !service.IsSupportedFile(fileHeader.Filename) {
		h.sendError(c, http.StatusBadRequest, "Unsupported file type", nil)
		return
	}

	tempPath := filepath.Join(os.TempDir(),
		fmt.Sprintf("upload-%d%s", time.Now().UnixNano(), filepath.Ext(fileHeader.Filename)))
	if err := c.SaveUploadedFile(fileHeader, tempPath); err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to save upload", err)
		return
	}
	defer os.Remove(tempPath)

	record, err := h.invoiceService.ProcessFile(tempPath)
	if err != nil {
		h.sendError(c, http.StatusUnprocessableEntity, "Failed to process document", err)
		return
	}

	entry := &dto.StoredInvoice{
		ID:          fmt.Sprintf("%s-%d", fileHeader.Filename, time.Now().UnixNano()),
		SourceFile:  fileHeader.Filename,
		ProcessedAt: time.Now().Format(time.RFC3339),
		Record:      *record,
	}

	if h.store != nil {
		if err := h.store.Save(entry); err != nil {
			log.Printf("Failed to persist record for %s: %v", fileHeader.Filename, err)
		}
	}

	c.JSON(http.StatusOK, entry)
}

// ListInvoices handles the GET /api/v1/invoices endpoint
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	if h.store == nil {
		h.sendError(c, http.StatusServiceUnavailable, "Record store not configured", nil)
		return
	}

	entries, err := h.store.List()
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to list records", err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *InvoiceHandler) sendError(c *gin.Context, code int, message string, err error) {
	if err != nil {
		log.Printf("Error: %s - %v", message, err)
	}
	c.JSON(code, dto.ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
	})
}
