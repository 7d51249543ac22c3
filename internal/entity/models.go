package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

type TestCaseStatus string

// Test case status reflects where the case is in its lifecycle.
// New cases always start in Development; transitions are caller-driven.
const (
	StatusDevelopment TestCaseStatus = "Development"
	StatusActive      TestCaseStatus = "Active"
	StatusArchive     TestCaseStatus = "Archive"
)

func (s TestCaseStatus) Validate() error {
	switch s {
	case StatusDevelopment, StatusActive, StatusArchive:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidStatus, s)
	}
}

// Date is a calendar day serialized as "yyyy-MM-dd". The LLM contract
// requires creationDate in this format, so time.Time alone does not fit.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func NewDate(t time.Time) Date {
	return Date{Time: t.UTC().Truncate(24 * time.Hour)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse date: %w", err)
	}
	if raw == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		// LLMs occasionally answer with a full timestamp despite the
		// format instruction; accept RFC3339 as a fallback.
		t, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("parse date %q: %w", raw, err)
		}
	}
	d.Time = t
	return nil
}

// TestCase is the aggregate root: a numbered, named test description
// with ordered steps, optional generated automation code and an
// append-only history of operations.
type TestCase struct {
	ID            string         `json:"id"`
	Number        string         `json:"number"`
	CreationDate  Date           `json:"creationDate"`
	Name          string         `json:"name"`
	Author        string         `json:"author"`
	Precondition  string         `json:"precondition"`
	Postcondition string         `json:"postcondition"`
	Status        TestCaseStatus `json:"status"`
	TestCode      string         `json:"testCode"`
	Steps         []TestStep     `json:"steps"`
	History       []HistoryEntry `json:"history,omitempty"`
}

// TestStep belongs to exactly one test case. Steps are renumbered
// 1..N on every full replace.
type TestStep struct {
	ID             string `json:"id"`
	TestCaseID     string `json:"testCaseId"`
	StepNumber     int    `json:"stepNumber"`
	Action         string `json:"action"`
	ExpectedResult string `json:"expectedResult"`
}

// HistoryEntry is an immutable audit record of one operation on a
// test case.
type HistoryEntry struct {
	ID         string    `json:"id"`
	TestCaseID string    `json:"testCaseId"`
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action"`
	User       string    `json:"user"`
	Details    string    `json:"details"`
}

// Known history actions. Action is free text, callers may supply
// their own tags.
const (
	HistoryActionGenerated    = "Generated"
	HistoryActionUpdated      = "Updated"
	HistoryActionStepsUpdated = "StepsUpdated"
	HistoryActionExported     = "Exported"
)

const HistoryUserSystem = "System"

// InputData holds raw generation input: uploaded file text, free text
// and/or fetched URL page content. It may outlive the test case it was
// used for (the link is nulled on test case deletion).
type InputData struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Type       string    `json:"type"`
	TestCaseID *string   `json:"testCaseId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// DataPool groups parameter rows for running one test case with
// multiple input combinations.
type DataPool struct {
	ID         string         `json:"id"`
	TestCaseID *string        `json:"testCaseId,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	Items      []DataPoolItem `json:"items"`
}

// DataPoolItem is one parameter row, stored as an opaque JSON object
// (for example {"email": "test@example.com", "password": "Pass1234"}).
type DataPoolItem struct {
	ID         string `json:"id"`
	DataPoolID string `json:"dataPoolId"`
	Data       string `json:"data"`
}
