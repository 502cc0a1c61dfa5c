// Package files turns files chosen by the user into SelectedFile values and
// runs local checks on them before upload.
package files

import (
	"bytes"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jonathan/resume-upload/internal/types"
)

// DefaultAccept matches the resume picker: PDF only.
const DefaultAccept = "application/pdf"

// MaxFileSize is the largest file Open will read.
const MaxFileSize = 16 << 20

// Error represents a failure reading or checking a selected file.
type Error struct {
	Path    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("file error for %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("file error for %s: %s", e.Path, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Open reads the file at path and detects its MIME type from the content.
func Open(path string) (*types.SelectedFile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &Error{Path: path, Message: "path is empty"}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &Error{Path: path, Message: "failed to stat file", Cause: err}
	}
	if info.IsDir() {
		return nil, &Error{Path: path, Message: "is a directory"}
	}
	if info.Size() > MaxFileSize {
		return nil, &Error{Path: path, Message: fmt.Sprintf("file is %d bytes, limit is %d", info.Size(), MaxFileSize)}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Message: "failed to read file", Cause: err}
	}

	return FromBytes(filepath.Base(path), content, ""), nil
}

// FromBytes builds a SelectedFile from in-memory content. When declared is
// empty or generic the MIME type is detected from the content, then from the
// file extension.
func FromBytes(name string, content []byte, declared string) *types.SelectedFile {
	return &types.SelectedFile{
		Name:     name,
		Content:  content,
		MimeType: DetectMimeType(name, content, declared),
	}
}

// DetectMimeType returns the media type (without parameters) for a file.
func DetectMimeType(name string, content []byte, declared string) string {
	if mediaType := baseMediaType(declared); mediaType != "" && mediaType != "application/octet-stream" {
		return mediaType
	}

	detected := mimetype.Detect(content)
	if !detected.Is("application/octet-stream") {
		return baseMediaType(detected.String())
	}

	if byExt := baseMediaType(mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}

// Accepts reports whether file matches an HTML-style accept list such as
// "application/pdf", "image/*" or ".pdf,.docx". An empty accept list matches anything.
func Accepts(file *types.SelectedFile, accept string) bool {
	if file == nil {
		return false
	}
	if strings.TrimSpace(accept) == "" {
		return true
	}

	mediaType := strings.ToLower(baseMediaType(file.MimeType))
	ext := strings.ToLower(filepath.Ext(file.Name))

	for _, item := range strings.Split(accept, ",") {
		item = strings.ToLower(strings.TrimSpace(item))
		switch {
		case item == "":
			continue
		case strings.HasPrefix(item, "."):
			if ext == item {
				return true
			}
		case strings.HasSuffix(item, "/*"):
			if strings.HasPrefix(mediaType, strings.TrimSuffix(item, "*")) {
				return true
			}
		case item == mediaType:
			return true
		}
	}
	return false
}

// IsPDF reports whether the content starts with the PDF signature.
func IsPDF(content []byte) bool {
	return bytes.HasPrefix(content, []byte("%PDF-"))
}

func baseMediaType(s string) string {
	if s == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(s)
	if err != nil {
		return ""
	}
	return mediaType
}
