// Package restclient implements domain.Backend against the classifieds REST
// API.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

var _ domain.Backend = (*Client)(nil)

// Client talks to the HTTP API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logger.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  log.Named("RestClient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// statusError maps an error response back onto the domain sentinels.
func statusError(status int, msg string) error {
	var base error
	switch status {
	case http.StatusBadRequest:
		base = domain.ErrInvalidInput
	case http.StatusUnauthorized:
		base = domain.ErrUnauthorized
	case http.StatusForbidden:
		base = domain.ErrForbidden
	case http.StatusNotFound:
		base = domain.ErrNotFound
	case http.StatusConflict:
		base = domain.ErrConflict
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		base = domain.ErrUnavailable
	default:
		return fmt.Errorf("unexpected status %d: %s", status, msg)
	}
	if msg == "" {
		return base
	}
	return fmt.Errorf("%w: %s", base, msg)
}

type request struct {
	method      string
	path        string
	query       url.Values
	token       string
	body        io.Reader
	contentType string
}

func jsonBody(v interface{}) (io.Reader, string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, "", fmt.Errorf("encode request: %w", err)
	}
	return bytes.NewReader(raw), "application/json", nil
}

// multipartBody encodes payload as the "payload" field followed by files.
// Extra fields are written as plain form values.
func multipartBody(payload interface{}, fields map[string]string, fileField string, files []domain.ImageUpload) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("encode payload: %w", err)
	}
	if err := mw.WriteField("payload", string(raw)); err != nil {
		return nil, "", err
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(fileField, f.FileName)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// do sends req and returns the raw body of a 2xx response.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, req.body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("Request failed", zap.String("method", req.method), zap.String("path", req.path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrUnavailable, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil {
		e.Error = strings.TrimSpace(string(body))
	}
	c.logger.Debug("Request rejected",
		zap.String("method", req.method), zap.String("path", req.path), zap.Int("status", resp.StatusCode))
	return nil, statusError(resp.StatusCode, e.Error)
}

func (c *Client) doJSON(ctx context.Context, req request, out interface{}) error {
	body, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response of %s %s: %w", req.method, req.path, err)
	}
	return nil
}

func idPath(format string, id int64) string {
	return fmt.Sprintf(format, strconv.FormatInt(id, 10))
}
