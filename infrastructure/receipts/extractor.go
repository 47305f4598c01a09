// Package receipts implements the receipt extraction port: an OCR
// service turns the receipt image into text, and a language model
// parses that text into structured line items.
package receipts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"homegraph/application/ports"

	"go.uber.org/zap"
)

// TextParser parses raw OCR text into structured line items.
type TextParser interface {
	ParseReceipt(ctx context.Context, receiptText string) ([]ports.ReceiptLine, error)
}

// Config configures the OCR client.
type Config struct {
	APIURL  string // e.g. https://api.unstructuredapp.io/general/v0/general
	APIKey  string
	Timeout time.Duration
}

// Extractor implements ports.ReceiptExtractor.
type Extractor struct {
	cfg    Config
	parser TextParser
	client *http.Client
	logger *zap.Logger
}

// NewExtractor creates a new receipt extractor.
func NewExtractor(cfg Config, parser TextParser, logger *zap.Logger) (*Extractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing OCR API key")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = "https://api.unstructuredapp.io/general/v0/general"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Extractor{
		cfg:    cfg,
		parser: parser,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

// ExtractLineItems runs OCR over the receipt image and parses the
// resulting text into line items.
func (e *Extractor) ExtractLineItems(ctx context.Context, image []byte) ([]ports.ReceiptLine, error) {
	text, err := e.ocr(ctx, image)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("no text found on receipt")
	}

	lines, err := e.parser.ParseReceipt(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse receipt text: %w", err)
	}

	e.logger.Debug("Receipt extracted", zap.Int("lines", len(lines)))
	return lines, nil
}

// ocr posts the image as a multipart upload and concatenates the text
// of the returned elements.
func (e *Extractor) ocr(ctx context.Context, image []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("files", "receipt.jpg")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(image); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.APIURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("unstructured-api-key", e.cfg.APIKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("OCR request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("OCR request failed: %s", resp.Status)
	}

	var elements []struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(payload, &elements); err != nil {
		return "", fmt.Errorf("failed to decode OCR response: %w", err)
	}

	var text bytes.Buffer
	for _, el := range elements {
		if el.Text == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n")
		}
		text.WriteString(el.Text)
	}
	return text.String(), nil
}
