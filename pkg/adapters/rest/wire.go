package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/jobboard/pkg/core"
)

// wireJob is a job as the server serializes it.
type wireJob struct {
	ID           int64          `json:"id"`
	Title        string         `json:"job_title"`
	Company      string         `json:"company"`
	PostLink     string         `json:"job_post_link"`
	Salary       flexFloat      `json:"salary"`
	LocationType string         `json:"location_type"`
	JobType      string         `json:"job_type"`
	Status       string         `json:"status"`
	Description  string         `json:"job_description"`
	DateCreated  flexTime       `json:"date_created"`
	CreatedAt    flexTime       `json:"created_at"`
	Notes        []wireNote     `json:"notes"`
	Documents    []wireDocument `json:"documents"`
}

type wireNote struct {
	ID    int64  `json:"id,omitempty"`
	Stage string `json:"stage"`
	Text  string `json:"note_text"`
}

type wireDocument struct {
	ID   int64  `json:"id"`
	Name string `json:"document_name"`
	URL  string `json:"url"`
}

// toCore maps a wire job onto the domain. Enumerations are matched
// leniently; an unknown stage is kept verbatim so the board can reject it.
func (w wireJob) toCore() core.JobItem {
	item := core.JobItem{
		ID:          w.ID,
		Title:       w.Title,
		Company:     w.Company,
		PostLink:    w.PostLink,
		Salary:      w.Salary.ptr(),
		Description: w.Description,
		CreatedAt:   w.DateCreated.Time,
		Status:      core.Stage(w.Status),
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = w.CreatedAt.Time
	}
	if st, err := core.ParseStage(w.Status); err == nil {
		item.Status = st
	}
	item.LocationType = core.LocationType(w.LocationType)
	if lt, err := core.ParseLocationType(w.LocationType); err == nil {
		item.LocationType = lt
	}
	item.JobType = core.JobType(w.JobType)
	if jt, err := core.ParseJobType(w.JobType); err == nil {
		item.JobType = jt
	}
	for _, n := range w.Notes {
		stage := core.Stage(n.Stage)
		if st, err := core.ParseStage(n.Stage); err == nil {
			stage = st
		}
		item.Notes = append(item.Notes, core.Note{ID: n.ID, Stage: stage, Text: n.Text})
	}
	for _, d := range w.Documents {
		item.Documents = append(item.Documents, core.Document{ID: d.ID, Name: d.Name, URL: d.URL})
	}
	return item
}

// flexFloat accepts a number, a numeric string, an empty string or null.
// Any other value decodes as null and is remembered in invalid.
type flexFloat struct {
	v       float64
	valid   bool
	invalid string
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = flexFloat{}
		return nil
	}
	s := string(data)
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = flexFloat{}
			return nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = flexFloat{invalid: s}
		return nil
	}
	*f = flexFloat{v: v, valid: true}
	return nil
}

func (f flexFloat) ptr() *float64 {
	if !f.valid {
		return nil
	}
	v := f.v
	return &v
}

// createdAtLayouts are the timestamp shapes the server is known to emit.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	http.TimeFormat,
	time.RFC1123,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// flexTime parses a creation timestamp in any of createdAtLayouts. Unknown shapes
// are dropped rather than failing the whole list.
type flexTime struct {
	time.Time
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil || s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range createdAtLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	t.Time = time.Time{}
	return nil
}

// jobFields renders the scalar fields of a job as form values.
func jobFields(j core.JobItem) [][2]string {
	salary := ""
	if j.Salary != nil {
		salary = strconv.FormatFloat(*j.Salary, 'f', -1, 64)
	}
	return [][2]string{
		{"title", strings.TrimSpace(j.Title)},
		{"company", strings.TrimSpace(j.Company)},
		{"job_post_link", strings.TrimSpace(j.PostLink)},
		{"salary", salary},
		{"location_type", string(j.LocationType)},
		{"job_type", string(j.JobType)},
		{"status", string(j.Status)},
		{"job_description", j.Description},
	}
}

// errorBody covers the error envelopes the server answers with.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e errorBody) text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}
