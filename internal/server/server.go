// Package server provides a local web page for uploading a resume to the
// parsing service and viewing the result.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/resume-upload/internal/files"
	"github.com/jonathan/resume-upload/internal/server/ratelimit"
	"github.com/jonathan/resume-upload/internal/types"
	"github.com/jonathan/resume-upload/internal/upload"
)

//go:embed templates/index.html
var templateFS embed.FS

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	rateLimiter *ratelimit.Limiter
	uploader    upload.Uploader
	flow        upload.Flow
	accept      string
	logger      *log.Logger
	page        *template.Template
}

// Config holds server configuration
type Config struct {
	Port    int
	BaseURL string
	Flow    upload.Flow
	Timeout time.Duration
	// Accept filters uploads like the picker's accept attribute. Empty accepts anything.
	Accept string
	// RateLimit throttles uploads per client. Nil loads it from the environment.
	RateLimit *ratelimit.Config
	Logger    *log.Logger
}

// pageData is what the index template renders.
type pageData struct {
	Accept   string
	Selected *types.SelectedFile
	Result   *types.UploadResult
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	client, err := upload.NewClient(&upload.ClientOptions{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create upload client: %w", err)
	}

	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	flow := cfg.Flow
	if flow == "" {
		flow = upload.FlowRich
	}

	s := &Server{
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		uploader:    client,
		flow:        flow,
		accept:      cfg.Accept,
		logger:      logger,
		page:        page,
	}

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /{$}", s.handleUploadForm)
	mux.HandleFunc("POST /api/upload", s.handleUploadAPI)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.logger.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer s.rateLimiter.Stop()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Println("Server stopped")
	return nil
}

// withRateLimit rejects uploads from clients that exceeded their allowance
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.logger.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		s.logger.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, pageData{Accept: s.accept})
}

func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	file, result, err := s.process(w, r)
	status := http.StatusOK
	if upload.Classify(err) == upload.KindValidation {
		status = http.StatusBadRequest
	}
	s.render(w, status, pageData{Accept: s.accept, Selected: file, Result: &result})
}

func (s *Server) handleUploadAPI(w http.ResponseWriter, r *http.Request) {
	_, result, err := s.process(w, r)
	switch upload.Classify(err) {
	case upload.KindValidation:
		s.jsonResponse(w, http.StatusBadRequest, result)
	case upload.KindInFlight:
		s.errorResponse(w, http.StatusConflict, err.Error())
	default:
		s.jsonResponse(w, http.StatusOK, result)
	}
}

// process runs one browser upload through a fresh controller. Each request is
// its own selection, so no controller outlives the request.
func (s *Server) process(w http.ResponseWriter, r *http.Request) (*types.SelectedFile, types.UploadResult, error) {
	ctrl := upload.NewController(s.uploader, upload.Options{Flow: s.flow, Logger: s.logger})

	r.Body = http.MaxBytesReader(w, r.Body, files.MaxFileSize+1<<20)
	selected, err := s.readSelection(r)
	if err != nil {
		s.logger.Printf("Rejected upload form: %v", err)
		return nil, types.ErrorResult(err.Message), err
	}
	ctrl.SelectFile(selected)

	result, submitErr := ctrl.Submit(r.Context())
	return selected, result, submitErr
}

// readSelection extracts the "file" part. A missing part yields (nil, nil) so
// the controller reports it the same way as an empty picker.
func (s *Server) readSelection(r *http.Request) (*types.SelectedFile, *upload.ValidationError) {
	if err := r.ParseMultipartForm(files.MaxFileSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, &upload.ValidationError{Field: upload.FileField, Message: "Could not read the uploaded form."}
	}

	part, header, err := r.FormFile(upload.FileField)
	if err != nil {
		return nil, nil
	}
	defer func() { _ = part.Close() }()

	content, err := io.ReadAll(part)
	if err != nil {
		return nil, &upload.ValidationError{Field: upload.FileField, Message: "Could not read the uploaded file."}
	}
	if header.Filename == "" {
		return nil, nil
	}

	selected := files.FromBytes(header.Filename, content, header.Header.Get("Content-Type"))
	if !files.Accepts(selected, s.accept) {
		return nil, &upload.ValidationError{
			Field:   upload.FileField,
			Message: fmt.Sprintf("Invalid file type. Accepted: %s.", s.accept),
		}
	}
	return selected, nil
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.page.Execute(w, data); err != nil {
		s.logger.Printf("Error rendering page: %v", err)
	}
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "flow": string(s.flow)})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID returns the caller's IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":    "rate_limit_exceeded",
		"message":  "Too many uploads. Please try again later.",
		"limit":    info.Limit,
		"reset_at": info.ResetTime.Format(time.RFC3339),
	}
	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	s.logger.Printf("[rate-limit] Upload limit exceeded: Limit=%d Reset=%s", info.Limit, info.ResetTime.Format(time.RFC3339))
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
