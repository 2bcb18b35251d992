package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"invoice-ocr/client"
	"invoice-ocr/config"
	"invoice-ocr/handler"
	"invoice-ocr/service"
	"invoice-ocr/storage"
)

func main() {
	// .env is optional; real environment variables win either way.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	cfg := config.LoadConfig()

	fs := ff.NewFlagSet("invoice-ocr")
	var (
		outputDir = fs.StringLong("out", cfg.OutputDir, "Directory for per-document JSON output")
		serve     = fs.BoolLong("serve", "Run the HTTP API instead of batch mode")
		port      = fs.StringLong("port", cfg.ServerPort, "HTTP server port")
		dbPath    = fs.StringLong("db", cfg.DBPath, "Record database path (server mode)")
		tessdata  = fs.StringLong("tessdata", cfg.TessdataPrefix, "Tesseract tessdata prefix")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("INVOICE_OCR")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Tesseract v5 reads the prefix from the environment.
	os.Setenv("TESSDATA_PREFIX", *tessdata)

	tesseractClient := client.NewTesseractClient(*tessdata)
	defer tesseractClient.Close()

	invoiceService := service.NewInvoiceService(
		tesseractClient,
		service.NewPDFProcessor(),
		service.NewPreprocessor(),
	)

	if *serve {
		runServer(invoiceService, *port, *dbPath, cfg)
		return
	}

	args := fs.GetArgs()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: invoice-ocr [flags] <file-or-folder-path>")
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		os.Exit(1)
	}

	if err := invoiceService.ProcessPath(args[0], *outputDir); err != nil {
		log.Fatalf("Processing failed: %v", err)
	}
}

func runServer(invoiceService *service.InvoiceService, port, dbPath string, cfg *config.Config) {
	store, err := storage.NewBoltStore(dbPath)
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}
	defer store.Close()

	invoiceHandler := handler.NewInvoiceHandler(invoiceService, store)

	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxFileSize

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Invoice OCR Extraction",
		})
	})

	api := router.Group("/api/v1")
	{
		invoice := api.Group("/invoice")
		{
			invoice.POST("/parse", invoiceHandler.ParseInvoice)
		}
		api.GET("/invoices", invoiceHandler.ListInvoices)
	}

	log.Printf("Starting Invoice OCR Service on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
