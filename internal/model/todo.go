package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Priority is the closed set of urgency levels a todo can carry.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is what a fresh create form starts with.
const DefaultPriority = PriorityMedium

var ErrInvalidPriority = errors.New("invalid priority")

// Priorities lists every level in ascending order.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Next cycles low -> medium -> high -> low.
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

func (p Priority) String() string { return string(p) }

// ParsePriority accepts any casing and surrounding blanks.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q (want low, medium or high)", ErrInvalidPriority, s)
	}
	return p, nil
}

func (p *Priority) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Todo is a task record as the backend returns it. ID and CreatedAt are
// assigned by the server and never change; UpdatedAt is recomputed on
// every mutation.
type Todo struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Priority    Priority  `json:"priority"`
	IsComplete  bool      `json:"is_complete"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

// DescriptionText returns the description or "" when absent.
func (t Todo) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}

// CreateTodoData is the POST /todos payload.
type CreateTodoData struct {
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Priority    Priority `json:"priority"`
}

// UpdateTodoData is a partial update. A nil field is left out of the JSON
// body and the server keeps its value; a non-nil pointer to "" is sent.
type UpdateTodoData struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	IsComplete  *bool     `json:"is_complete,omitempty"`
}

// Empty reports whether the update carries no fields at all.
func (u UpdateTodoData) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Priority == nil && u.IsComplete == nil
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Timestamp accepts RFC 3339 as well as the zone-less ISO layout some
// Python backends emit (2024-05-01T10:00:00.123456), read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		ts.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("parse timestamp %q", s)
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.UTC().Format(time.RFC3339Nano))
}
