package config

import (
	"os"
	"strconv"
)

type Config struct {
	ServerPort     string
	TessdataPrefix string
	OutputDir      string
	DBPath         string
	MaxFileSize    int64
}

func LoadConfig() *Config {
	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	tessdataPrefix := os.Getenv("TESSDATA_PREFIX")
	if tessdataPrefix == "" {
		tessdataPrefix = "/usr/share/tesseract-ocr/5/tessdata/"
	}

	outputDir := os.Getenv("OUTPUT_DIR")
	if outputDir == "" {
		outputDir = "output"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "invoices.db"
	}

	maxFileSize := int64(32 * 1024 * 1024) // 32 MB
	if v := os.Getenv("MAX_FILE_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			maxFileSize = n
		}
	}

	return &Config{
		ServerPort:     serverPort,
		TessdataPrefix: tessdataPrefix,
		OutputDir:      outputDir,
		DBPath:         dbPath,
		MaxFileSize:    maxFileSize,
	}
}
