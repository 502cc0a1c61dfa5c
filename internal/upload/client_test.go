package upload

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-upload/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
		wantErr bool
	}{
		{"localhost", "http://localhost:5000", "http://localhost:5000/upload", false},
		{"loopback ip", "http://127.0.0.1:5000", "http://127.0.0.1:5000/upload", false},
		{"trailing slash", "https://parser.example.com/", "https://parser.example.com/upload", false},
		{"path prefix", "https://example.com/api/", "https://example.com/api/upload", false},
		{"no scheme", "localhost:5000", "", true},
		{"ftp", "ftp://example.com", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Endpoint(tt.baseURL)
			if tt.wantErr {
				require.Error(t, err)
				var validationErr *ValidationError
				assert.True(t, errors.As(err, &validationErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/upload", client.Endpoint())
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
	assert.Equal(t, DefaultUserAgent, client.userAgent)
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	client, err := NewClient(&ClientOptions{BaseURL: "not a url"})
	require.Error(t, err)
	assert.Nil(t, client)
}

func TestUpload_SendsMultipartFile(t *testing.T) {
	var (
		gotMethod    string
		gotPath      string
		gotFilename  string
		gotPartType  string
		gotContent   []byte
		gotRequestID string
		gotAccept    string
		gotCustom    string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotRequestID = r.Header.Get(RequestIDHeader)
		gotAccept = r.Header.Get("Accept")
		gotCustom = r.Header.Get("X-Client")

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotFilename = header.Filename
		gotPartType = header.Header.Get("Content-Type")
		gotContent, _ = io.ReadAll(file)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message": "ok"}`))
	}))
	defer server.Close()

	client, err := NewClient(&ClientOptions{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
		Headers: map[string]string{"X-Client": "cli"},
	})
	require.NoError(t, err)

	file := &types.SelectedFile{Name: "jane doe.pdf", Content: []byte("%PDF-1.4 body"), MimeType: "application/pdf"}
	resp, err := client.Upload(context.Background(), file)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/upload", gotPath)
	assert.Equal(t, "jane doe.pdf", gotFilename)
	assert.Equal(t, "application/pdf", gotPartType)
	assert.Equal(t, []byte("%PDF-1.4 body"), gotContent)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "cli", gotCustom)

	_, err = uuid.Parse(gotRequestID)
	assert.NoError(t, err, "request ID should be a UUID")
	assert.Equal(t, gotRequestID, resp.RequestID)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.ContentType)
	assert.JSONEq(t, `{"message": "ok"}`, string(resp.Body))
}

func TestUpload_DefaultsPartContentType(t *testing.T) {
	var gotPartType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		if err == nil {
			gotPartType = header.Header.Get("Content-Type")
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := NewClient(&ClientOptions{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Upload(context.Background(), &types.SelectedFile{Name: "resume", Content: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", gotPartType)
}

func TestUpload_QuotedFilename(t *testing.T) {
	var gotFilename string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		if err == nil {
			gotFilename = header.Filename
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := NewClient(&ClientOptions{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Upload(context.Background(), &types.SelectedFile{Name: `my "best" cv.pdf`, Content: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, `my "best" cv.pdf`, gotFilename)
}

func TestUpload_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "No file part"}`))
	}))
	defer server.Close()

	client, err := NewClient(&ClientOptions{BaseURL: server.URL})
	require.NoError(t, err)

	resp, err := client.Upload(context.Background(), &types.SelectedFile{Name: "a.pdf", Content: []byte("x")})
	require.Error(t, err)
	require.NotNil(t, resp, "response is returned even on error")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "No file part")

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusBadRequest, transportErr.StatusCode)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, KindTransport, Classify(err))
}

func TestUpload_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client, err := NewClient(&ClientOptions{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = client.Upload(context.Background(), &types.SelectedFile{Name: "a.pdf", Content: []byte("x")})
	require.Error(t, err)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Contains(t, err.Error(), "HTTP request failed")
}

func TestUpload_NilFile(t *testing.T) {
	client, err := NewClient(nil)
	require.NoError(t, err)

	resp, err := client.Upload(context.Background(), nil)
	assert.Nil(t, resp)
	assert.Equal(t, KindValidation, Classify(err))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindNone, Classify(nil))
	assert.Equal(t, KindValidation, Classify(&ValidationError{Message: "x"}))
	assert.Equal(t, KindServer, Classify(&ServerError{Message: "x"}))
	assert.Equal(t, KindTransport, Classify(&TransportError{URL: "u", Message: "x"}))
	assert.Equal(t, KindTransport, Classify(errors.New("boom")))
	assert.Equal(t, KindInFlight, Classify(ErrUploadInFlight))
}

func TestErrorMessages(t *testing.T) {
	cause := errors.New("connection refused")
	transportErr := &TransportError{URL: "http://localhost:5000/upload", Message: "HTTP request failed", Cause: cause}
	assert.ErrorIs(t, transportErr, cause)
	assert.Equal(t, "upload error for http://localhost:5000/upload: HTTP request failed: connection refused", transportErr.Error())

	assert.Equal(t, "validation error in file: no file selected", (&ValidationError{Field: "file", Message: "no file selected"}).Error())
	assert.Equal(t, "validation error: bad", (&ValidationError{Message: "bad"}).Error())
	assert.Equal(t, "server error: unreadable PDF", (&ServerError{Message: "unreadable PDF"}).Error())
}

func TestParseFlow(t *testing.T) {
	tests := []struct {
		in      string
		want    Flow
		wantErr bool
	}{
		{"", FlowRich, false},
		{"rich", FlowRich, false},
		{" Minimal ", FlowMinimal, false},
		{"fancy", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFlow(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, MessageRichFailure, FlowRich.FailureMessage())
	assert.Equal(t, MessageMinimalFailure, FlowMinimal.FailureMessage())
}
