// Package api is the HTTP client of the game backend. Each call issues exactly one
// request and maps the outcome onto *errors.AppError; there are no retries.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "piano-quest/internal/common/errors"
	"piano-quest/internal/common/logger"
	"piano-quest/internal/prefs"
)

const (
	HeaderProviderID = "X-Provider-Id"
	HeaderRequestID  = "X-Request-ID"

	maxResponseBytes = 4 << 20
)

// CredentialsSource supplies the stored session credentials.
type CredentialsSource interface {
	Credentials(ctx context.Context) (prefs.Credentials, error)
}

// Doer is the part of Client the repositories depend on.
type Doer interface {
	Do(ctx context.Context, req Request, out any) error
}

// Client talks to the backend REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      CredentialsSource
}

// Config holds client configuration.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	HTTPClient  *http.Client
	Credentials CredentialsSource
}

// New creates a backend client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if cfg.Credentials == nil {
		return nil, fmt.Errorf("credentials source is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
		creds:      cfg.Credentials,
	}, nil
}

// File is a multipart upload.
type File struct {
	FieldName string
	FileName  string
	Content   io.Reader
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is sent as JSON when set.
	Body any
	// File switches the request to multipart/form-data.
	File *File
	// Auth requires stored credentials and sends them.
	Auth bool
}

// Do performs req and decodes a 2xx JSON body into out. A nil out ignores the body.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	var creds prefs.Credentials
	if req.Auth {
		var err error
		creds, err = c.creds.Credentials(ctx)
		if err != nil {
			logger.Warn().Str("path", req.Path).Err(err).Msg("Request skipped: no stored credentials")
			return err
		}
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Could not encode request")
	}

	endpoint := c.baseURL + req.Path
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Could not build request")
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(HeaderRequestID, requestID)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.Auth {
		httpReq.Header.Set("Authorization", "Bearer "+creds.Token)
		httpReq.Header.Set(HeaderProviderID, creds.ProviderID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Error().Err(err).
			Str("method", req.Method).
			Str("path", req.Path).
			Str("request_id", requestID).
			Msg("Backend request failed")
		return apperrors.NewTransportError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return apperrors.NewTransportError(err)
	}

	logger.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Str("request_id", requestID).
		Msg("Backend request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		appErr := apperrors.NewHTTPError(resp.StatusCode, errorMessage(payload)).
			WithDetail("path", req.Path).
			WithRequestID(requestID)
		logger.Warn().
			Str("method", req.Method).
			Str("path", req.Path).
			Int("status", resp.StatusCode).
			Str("error", appErr.Message).
			Msg("Backend returned an error")
		return appErr
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return apperrors.NewEmptyBodyError(req.Path)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDecode, "Unexpected response from server").
			WithDetail("path", req.Path)
	}
	return nil
}

func encodeBody(req Request) (io.Reader, string, error) {
	switch {
	case req.File != nil:
		return encodeMultipart(req.File)
	case req.Body != nil:
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(b), "application/json", nil
	}
	return nil, "", nil
}

func encodeMultipart(f *File) (io.Reader, string, error) {
	if f.Content == nil {
		return nil, "", fmt.Errorf("multipart file %q has no content", f.FieldName)
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(f.FieldName, f.FileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f.Content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// PathEscape joins escaped segments onto a path prefix.
func PathEscape(prefix string, segments ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
