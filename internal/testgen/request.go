package testgen

import (
	"errors"
	"fmt"
	"strings"
)

// ExperienceLevel is the candidate's years of experience bucket.
type ExperienceLevel string

const (
	LevelEntry  ExperienceLevel = "0-1"
	LevelMid    ExperienceLevel = "2-5"
	LevelSenior ExperienceLevel = "5+"
)

// legacySeniorLabel is the label older forms used for LevelSenior.
const legacySeniorLabel = "More than 5"

// Levels lists the experience levels in display order.
var Levels = []ExperienceLevel{LevelEntry, LevelMid, LevelSenior}

// ParseExperienceLevel maps a user supplied label to an ExperienceLevel.
func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, legacySeniorLabel) {
		return LevelSenior, nil
	}
	for _, l := range Levels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", &ValidationError{Field: "experience_level", Message: fmt.Sprintf("unknown experience level %q", s)}
}

// Domains lists the supported company domains in display order.
var Domains = []string{
	"Finance",
	"Healthcare",
	"Information Technology (IT) / Software",
	"Manufacturing",
	"Retail & E-commerce",
}

// Count limits and defaults for the question sections.
const (
	MinMCQ         = 1
	MaxMCQ         = 10
	DefaultMCQ     = 5
	MinShortAnswer = 1
	MaxShortAnswer = 5
	DefaultShort   = 2
)

// TestRequest holds everything the prompt is built from.
type TestRequest struct {
	JobDescription   string          `json:"job_description"`
	CompanyDomain    string          `json:"company_domain"`
	ExperienceLevel  ExperienceLevel `json:"experience_level"`
	MCQCount         int             `json:"mcq_count"`
	IncludeCoding    bool            `json:"include_coding"`
	ShortAnswerCount int             `json:"short_answer_count"`
}

// DefaultRequest returns a request with the default counts and coding
// enabled. JobDescription and CompanyDomain are left for the caller.
func DefaultRequest() TestRequest {
	return TestRequest{
		ExperienceLevel:  LevelEntry,
		MCQCount:         DefaultMCQ,
		IncludeCoding:    true,
		ShortAnswerCount: DefaultShort,
	}
}

// ValidationError reports an invalid request field. It is raised before
// any provider is contacted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ErrBlankJobDescription is returned for an empty or whitespace-only job
// description.
var ErrBlankJobDescription error = &ValidationError{
	Field:   "job_description",
	Message: "please enter a valid job description",
}

// Validate checks the request against the presentation-layer limits.
func (r TestRequest) Validate() error {
	if strings.TrimSpace(r.JobDescription) == "" {
		return ErrBlankJobDescription
	}
	if !isDomain(r.CompanyDomain) {
		return &ValidationError{
			Field:   "company_domain",
			Message: fmt.Sprintf("unknown company domain %q", r.CompanyDomain),
		}
	}
	if _, err := ParseExperienceLevel(string(r.ExperienceLevel)); err != nil {
		return err
	}
	if r.MCQCount < MinMCQ || r.MCQCount > MaxMCQ {
		return &ValidationError{
			Field:   "mcq_count",
			Message: fmt.Sprintf("must be between %d and %d, got %d", MinMCQ, MaxMCQ, r.MCQCount),
		}
	}
	if r.ShortAnswerCount < MinShortAnswer || r.ShortAnswerCount > MaxShortAnswer {
		return &ValidationError{
			Field:   "short_answer_count",
			Message: fmt.Sprintf("must be between %d and %d, got %d", MinShortAnswer, MaxShortAnswer, r.ShortAnswerCount),
		}
	}
	return nil
}

// IsValidationError reports whether err is a request validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func isDomain(s string) bool {
	for _, d := range Domains {
		if d == s {
			return true
		}
	}
	return false
}
