package upload

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/resume-upload/internal/schemas"
	"github.com/jonathan/resume-upload/internal/types"
)

// Flow selects which response shape the service is expected to return.
type Flow string

const (
	// FlowRich expects parsed resume fields and extracted text.
	FlowRich Flow = "rich"
	// FlowMinimal expects only a receipt message.
	FlowMinimal Flow = "minimal"
)

// ParseFlow converts a configuration value into a Flow. Empty means FlowRich.
func ParseFlow(s string) (Flow, error) {
	switch Flow(strings.ToLower(strings.TrimSpace(s))) {
	case "", FlowRich:
		return FlowRich, nil
	case FlowMinimal:
		return FlowMinimal, nil
	default:
		return "", &ValidationError{Field: "flow", Message: fmt.Sprintf("unknown flow %q (want rich or minimal)", s)}
	}
}

// Fixed messages shown to the user.
const (
	MessageNoFile         = "Please select a file first."
	MessageRichFailure    = "An error occurred while uploading the file."
	MessageMinimalFailure = "Failed to upload."
)

// FailureMessage returns the fixed text shown for transport failures in this flow.
func (f Flow) FailureMessage() string {
	if f == FlowMinimal {
		return MessageMinimalFailure
	}
	return MessageRichFailure
}

// payload mirrors the JSON body of /upload. Every field may be absent.
type payload struct {
	Error         *string  `json:"error"`
	Message       *string  `json:"message"`
	Name          *string  `json:"name"`
	Email         *string  `json:"email"`
	Phone         *string  `json:"phone"`
	GitHub        *string  `json:"github"`
	LinkedIn      *string  `json:"linkedin"`
	Skills        []string `json:"skills"`
	ExtractedText *string  `json:"extracted_text"`
}

// decodePayload validates body against the response schema and decodes it.
func decodePayload(body []byte) (*payload, error) {
	if err := schemas.ValidateUploadResponse(body); err != nil {
		return nil, fmt.Errorf("malformed response body: %w", err)
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	return &p, nil
}

// serverError returns the service-flagged error, if any.
func (p *payload) serverError() *ServerError {
	if p.Error == nil || strings.TrimSpace(*p.Error) == "" {
		return nil
	}
	return &ServerError{Message: *p.Error}
}

// resume converts a payload into a ParsedResume with sentinels for anything missing.
func (p *payload) resume() *types.ParsedResume {
	skills := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}

	skillsText := types.NotFound
	if len(skills) > 0 {
		skillsText = strings.Join(skills, ", ")
	}

	extracted := types.NoExtractedText
	if p.ExtractedText != nil && *p.ExtractedText != "" {
		extracted = *p.ExtractedText
	}

	return &types.ParsedResume{
		Name:          orNotFound(p.Name),
		Email:         orNotFound(p.Email),
		Phone:         orNotFound(p.Phone),
		GitHub:        orNotFound(p.GitHub),
		LinkedIn:      orNotFound(p.LinkedIn),
		Skills:        skills,
		SkillsText:    skillsText,
		ExtractedText: extracted,
	}
}

func (p *payload) acknowledgement() string {
	return orNotFound(p.Message)
}

func orNotFound(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return types.NotFound
	}
	return *s
}
