// Package types provides type definitions for the data exchanged between the
// upload controller, the resume parsing service and the rendering layers.
package types

// NotFound is substituted for any resume field the parsing service did not return.
const NotFound = "Not Found"

// NoExtractedText is shown when the service returned no raw text.
const NoExtractedText = "No text extracted."

// SelectedFile is a user-chosen file ready to be uploaded.
type SelectedFile struct {
	Name     string `json:"name"`
	Content  []byte `json:"-"`
	MimeType string `json:"mime_type"`
}

// Size returns the content length in bytes.
func (f *SelectedFile) Size() int64 {
	if f == nil {
		return 0
	}
	return int64(len(f.Content))
}

// ParsedResume is the normalized record returned by the parsing service.
// Every string field holds either the service value or NotFound.
type ParsedResume struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	GitHub   string   `json:"github"`
	LinkedIn string   `json:"linkedin"`
	Skills   []string `json:"skills,omitempty"`
	// SkillsText is Skills joined with ", ", or NotFound when there are none.
	SkillsText    string `json:"skills_text"`
	ExtractedText string `json:"extracted_text"`
}

// ResultKind discriminates the UploadResult variants.
type ResultKind int

const (
	// ResultEmpty means nothing has been uploaded for the current selection.
	ResultEmpty ResultKind = iota
	// ResultSuccess means the service accepted and answered the upload.
	ResultSuccess
	// ResultError means the upload failed or the service flagged an error.
	ResultError
)

func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "success"
	case ResultError:
		return "error"
	default:
		return "empty"
	}
}

// MarshalText encodes the kind by name.
func (k ResultKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UploadResult is the display state of the last upload.
// Build values with EmptyResult, SuccessResult, AcknowledgedResult or ErrorResult.
type UploadResult struct {
	Kind ResultKind `json:"kind"`
	// Resume is set for a Success in the rich flow.
	Resume *ParsedResume `json:"resume,omitempty"`
	// Acknowledgement is set for a Success in the minimal flow.
	Acknowledgement string `json:"acknowledgement,omitempty"`
	// Message is set for an Error.
	Message string `json:"message,omitempty"`
}

// EmptyResult returns the Empty variant.
func EmptyResult() UploadResult {
	return UploadResult{Kind: ResultEmpty}
}

// SuccessResult returns the Success variant carrying a parsed resume.
func SuccessResult(resume *ParsedResume) UploadResult {
	return UploadResult{Kind: ResultSuccess, Resume: resume}
}

// AcknowledgedResult returns the Success variant carrying a receipt message.
func AcknowledgedResult(message string) UploadResult {
	return UploadResult{Kind: ResultSuccess, Acknowledgement: message}
}

// ErrorResult returns the Error variant.
func ErrorResult(message string) UploadResult {
	return UploadResult{Kind: ResultError, Message: message}
}

// IsEmpty reports whether r is the Empty variant.
func (r UploadResult) IsEmpty() bool { return r.Kind == ResultEmpty }

// IsSuccess reports whether r is the Success variant.
func (r UploadResult) IsSuccess() bool { return r.Kind == ResultSuccess }

// IsError reports whether r is the Error variant.
func (r UploadResult) IsError() bool { return r.Kind == ResultError }
