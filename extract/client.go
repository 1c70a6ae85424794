/*
Package extract integrates the external field-extraction service.

PURPOSE:
  The field extractor is a separate pretrained-model pipeline that turns a
  scanned invoice PDF into a flat mapping of uppercase field names to raw
  text (e.g. "INVOICE_AMOUNT" -> "Rs. 1,72,515.00"). This package holds
  the HTTP client for that service and the normalization rules that turn
  its raw output into a clean invoice-creation input.

CONTRACT:
  extract(documentBytes) -> map[FIELD]rawText

  The raw values routinely include label prefixes ("Invoice No: ..."),
  currency decoration, and regional date formats. Normalization is
  explicit and testable here, never inlined in handlers.

SEE ALSO:
  - normalize.go: Cleaning and mapping rules
*/
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Extractor produces a raw field mapping from a document.
type Extractor interface {
	Extract(ctx context.Context, filename string, document io.Reader) (map[string]string, error)
}

// HTTPExtractor calls the extraction service over HTTP.
type HTTPExtractor struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPExtractor creates a client for the extraction service at baseURL
// (e.g. "http://localhost:8000").
func NewHTTPExtractor(baseURL string) *HTTPExtractor {
	return &HTTPExtractor{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// extractResponse mirrors the service's JSON response shape.
type extractResponse struct {
	Fields map[string]string `json:"fields"`
}

// Extract uploads the document and returns the raw field mapping.
func (e *HTTPExtractor) Extract(ctx context.Context, filename string, document io.Reader) (map[string]string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, document); err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/extract", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("extraction service returned %d: %s", resp.StatusCode, snippet)
	}

	var decoded extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode extraction response: %w", err)
	}
	return decoded.Fields, nil
}
