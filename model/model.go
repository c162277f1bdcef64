package model

import "time"

// Field is one configurable input unit within a form. Options is set only
// for choice-like kinds, Price only for product lists. File and PreviewURL
// are editor-side scratch state and are stripped before persistence.
type Field struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Label      string   `json:"label"`
	Required   bool     `json:"required"`
	Options    []string `json:"options,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	File       string   `json:"file,omitempty"`
	PreviewURL string   `json:"previewUrl,omitempty"`
}

type Form struct {
	ID          int       `json:"id,omitempty"`
	Version     int       `json:"version,omitempty"`
	OwnerID     string    `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Fields      []Field   `json:"fields"`
	URLID       string    `json:"urlId,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// FormSummary is the dashboard listing shape: form metadata plus a
// computed submission count.
type FormSummary struct {
	ID              int       `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	URLID           string    `json:"urlId"`
	CreatedAt       time.Time `json:"createdAt"`
	SubmissionCount int       `json:"submissionCount"`
	Fields          []Field   `json:"fields"`
}

// Submission responses are keyed by each field's composite key
// ("{id}_{sanitized label}"); values are strings, nested objects
// (address) or arrays (checkbox).
type Submission struct {
	ID        string         `json:"id"`
	FormID    int            `json:"formId"`
	Email     string         `json:"email"`
	Responses map[string]any `json:"responses"`
	CreatedAt time.Time      `json:"createdAt"`
}
