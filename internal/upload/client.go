// Package upload sends resume files to the parsing service and classifies
// what comes back into a display state.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-upload/internal/types"
)

// DefaultBaseURL is where the parsing service listens unless configured otherwise.
const DefaultBaseURL = "http://localhost:5000"

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 60 * time.Second

// DefaultUserAgent is the user agent string for upload requests.
const DefaultUserAgent = "ResumeUpload/1.0"

// FileField is the multipart field the service reads the resume from.
const FileField = "file"

// RequestIDHeader carries a per-request UUID for correlating logs on both sides.
const RequestIDHeader = "X-Request-ID"

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 10 << 20

// Response holds the raw outcome of an upload request.
type Response struct {
	RequestID   string
	StatusCode  int
	ContentType string
	Body        []byte
}

// ClientOptions configures the upload client.
type ClientOptions struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	Headers    map[string]string
	HTTPClient *http.Client
}

// DefaultClientOptions returns sensible defaults for uploading.
func DefaultClientOptions() *ClientOptions {
	return &ClientOptions{
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Client posts files to <base-url>/upload.
type Client struct {
	endpoint   string
	userAgent  string
	headers    map[string]string
	httpClient *http.Client
}

// NewClient validates the base URL and builds a client. A nil opts uses defaults.
func NewClient(opts *ClientOptions) (*Client, error) {
	if opts == nil {
		opts = DefaultClientOptions()
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	endpoint, err := Endpoint(baseURL)
	if err != nil {
		return nil, err
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		endpoint:   endpoint,
		userAgent:  userAgent,
		headers:    opts.Headers,
		httpClient: httpClient,
	}, nil
}

// Endpoint returns the upload URL for baseURL.
func Endpoint(baseURL string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", &ValidationError{Field: "base_url", Message: fmt.Sprintf("invalid URL %q", baseURL)}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", &ValidationError{Field: "base_url", Message: fmt.Sprintf("unsupported scheme %q", parsed.Scheme)}
	}
	return strings.TrimRight(baseURL, "/") + "/upload", nil
}

// Endpoint returns the URL this client posts to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Upload sends file as a single multipart part named "file".
// A non-2xx status returns both the response and a *TransportError.
func (c *Client) Upload(ctx context.Context, file *types.SelectedFile) (*Response, error) {
	if file == nil {
		return nil, &ValidationError{Field: FileField, Message: "no file selected"}
	}

	body, contentType, err := encodeMultipart(file)
	if err != nil {
		return nil, &TransportError{
			URL:     c.endpoint,
			Message: "failed to encode multipart body",
			Cause:   err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, &TransportError{
			URL:     c.endpoint,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	requestID := uuid.New().String()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, requestID)
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{
			URL:     c.endpoint,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{
			URL:        c.endpoint,
			Message:    "failed to read response body",
			StatusCode: resp.StatusCode,
			Cause:      err,
		}
	}

	result := &Response{
		RequestID:   requestID,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        bodyBytes,
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, &TransportError{
			URL:        c.endpoint,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	return result, nil
}

func encodeMultipart(file *types.SelectedFile) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	mimeType := file.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		FileField, escapeQuotes(file.Name)))
	header.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return &buf, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
