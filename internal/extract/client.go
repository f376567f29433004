package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client talks to the document field-extraction vendor API. The vendor is
// an opaque service: we send document bytes plus a hint, we get back a
// flat map of field name to value.
type Client struct {
	httpClient *resty.Client
	log        *zap.Logger
}

type extractRequest struct {
	FileName      string `json:"file_name"`
	DocType       string `json:"doc_type,omitempty"`
	ContentBase64 string `json:"content_base64"`
}

type extractResponse struct {
	Fields map[string]any `json:"fields"`
	Error  string         `json:"error,omitempty"`
}

func New(baseURL, apiKey string, log *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(60 * time.Second). // large scans take a while
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetAuthToken(apiKey)

	return &Client{httpClient: client, log: log}
}

// ExtractFields runs one document through the vendor and returns its
// extracted key/value fields.
func (c *Client) ExtractFields(ctx context.Context, fileName, docType string, content []byte) (map[string]any, error) {
	req := extractRequest{
		FileName:      fileName,
		DocType:       docType,
		ContentBase64: base64.StdEncoding.EncodeToString(content),
	}

	var out extractResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/v1/extract")
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	if resp.IsError() {
		c.log.Warn("extraction API returned error",
			zap.String("file", fileName),
			zap.Int("status", resp.StatusCode()),
			zap.String("body", string(resp.Body())))
		return nil, fmt.Errorf("extraction API status %d", resp.StatusCode())
	}
	if out.Error != "" {
		return nil, fmt.Errorf("extraction failed: %s", out.Error)
	}

	c.log.Debug("document extracted",
		zap.String("file", fileName),
		zap.Int("fields", len(out.Fields)))
	return out.Fields, nil
}
