// Package core is the board synchronization engine.
//
// It owns the job model, the stage-bucketed board, optimistic stage
// transitions and the reconciliation of edit sessions into change sets.
// Everything that talks to the network or the disk lives behind the
// Remote and Snapshotter ports.
package core

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Stage is one of the five pipeline columns a job application occupies.
type Stage string

const (
	StageSaved        Stage = "Saved"
	StageApplied      Stage = "Applied"
	StageInterviewing Stage = "Interviewing"
	StageOffer        Stage = "Offer"
	StageRejected     Stage = "Rejected"
)

var stages = [...]Stage{StageSaved, StageApplied, StageInterviewing, StageOffer, StageRejected}

// Stages returns the pipeline columns in board order.
func Stages() []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages[:])
	return out
}

// Valid reports whether s is one of the five pipeline stages.
func (s Stage) Valid() bool {
	for _, st := range stages {
		if s == st {
			return true
		}
	}
	return false
}

// ParseStage resolves a user or wire supplied stage name, ignoring case.
func ParseStage(s string) (Stage, error) {
	for _, st := range stages {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", &ValidationError{Field: "status", Reason: "unknown stage " + strconv.Quote(s)}
}

// LocationType describes where the work happens.
type LocationType string

const (
	LocationRemote      LocationType = "Remote"
	LocationHybrid      LocationType = "Hybrid"
	LocationOfficeBased LocationType = "Office based"
)

// Valid reports whether l is a known location type.
func (l LocationType) Valid() bool {
	switch l {
	case LocationRemote, LocationHybrid, LocationOfficeBased:
		return true
	}
	return false
}

// ParseLocationType accepts the wire form ("Office based") as well as the
// usual shell-friendly spellings ("office-based", "officebased", "office").
func ParseLocationType(s string) (LocationType, error) {
	switch normalizeWord(s) {
	case "remote":
		return LocationRemote, nil
	case "hybrid":
		return LocationHybrid, nil
	case "officebased", "office", "onsite":
		return LocationOfficeBased, nil
	}
	return "", &ValidationError{Field: "location_type", Reason: "unknown location type " + strconv.Quote(s)}
}

// JobType is the contract size.
type JobType string

const (
	JobFullTime JobType = "Full-time"
	JobHalfTime JobType = "Half-time"
)

// Valid reports whether j is a known job type.
func (j JobType) Valid() bool {
	return j == JobFullTime || j == JobHalfTime
}

// ParseJobType accepts "Full-time", "fulltime", "full time" and friends.
func ParseJobType(s string) (JobType, error) {
	switch normalizeWord(s) {
	case "fulltime", "full":
		return JobFullTime, nil
	case "halftime", "half", "parttime":
		return JobHalfTime, nil
	}
	return "", &ValidationError{Field: "job_type", Reason: "unknown job type " + strconv.Quote(s)}
}

func normalizeWord(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

// Note is a free-text annotation. Stage records the column the note was
// written under, which is unrelated to the job's current stage.
type Note struct {
	ID    int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Stage Stage  `json:"stage" yaml:"stage"`
	Text  string `json:"text" yaml:"text"`
}

// Persisted reports whether the server has assigned the note an id.
func (n Note) Persisted() bool { return n.ID != 0 }

// Document is an uploaded file. Persisted documents are immutable.
type Document struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Upload is a document staged for upload that has no server identity yet.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// JobItem is a single job application on the board.
// An ID of zero marks an unsaved draft.
type JobItem struct {
	ID           int64        `json:"id,omitempty" yaml:"id,omitempty"`
	Title        string       `json:"title" yaml:"title"`
	Company      string       `json:"company" yaml:"company"`
	PostLink     string       `json:"post_link,omitempty" yaml:"post_link,omitempty"`
	Salary       *float64     `json:"salary,omitempty" yaml:"salary,omitempty"`
	LocationType LocationType `json:"location_type" yaml:"location_type"`
	JobType      JobType      `json:"job_type" yaml:"job_type"`
	Status       Stage        `json:"status" yaml:"status"`
	Description  string       `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt    time.Time    `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	Notes        []Note       `json:"notes,omitempty" yaml:"notes,omitempty"`
	Documents    []Document   `json:"documents,omitempty" yaml:"documents,omitempty"`
}

// NewDraft returns an unsaved job with the add-form defaults.
func NewDraft() JobItem {
	return JobItem{
		LocationType: LocationRemote,
		JobType:      JobFullTime,
		Status:       StageSaved,
	}
}

// Persisted reports whether the job has a server-assigned id.
func (j JobItem) Persisted() bool { return j.ID != 0 }

// Clone returns a deep copy: edits to the copy never reach the original.
func (j JobItem) Clone() JobItem {
	out := j
	if j.Salary != nil {
		v := *j.Salary
		out.Salary = &v
	}
	if j.Notes != nil {
		out.Notes = make([]Note, len(j.Notes))
		copy(out.Notes, j.Notes)
	}
	if j.Documents != nil {
		out.Documents = make([]Document, len(j.Documents))
		copy(out.Documents, j.Documents)
	}
	return out
}

// Fields are the scalar, user-editable attributes of a job.
type Fields struct {
	Title        string
	Company      string
	PostLink     string
	Salary       *float64
	LocationType LocationType
	JobType      JobType
	Status       Stage
	Description  string
}

// Fields extracts the scalar attributes of j.
func (j JobItem) Fields() Fields {
	f := Fields{
		Title:        j.Title,
		Company:      j.Company,
		PostLink:     j.PostLink,
		LocationType: j.LocationType,
		JobType:      j.JobType,
		Status:       j.Status,
		Description:  j.Description,
	}
	if j.Salary != nil {
		v := *j.Salary
		f.Salary = &v
	}
	return f
}

// ApplyFields overwrites the scalar attributes of j, leaving identity,
// notes and documents untouched.
func (j *JobItem) ApplyFields(f Fields) {
	j.Title = f.Title
	j.Company = f.Company
	j.PostLink = f.PostLink
	j.Salary = nil
	if f.Salary != nil {
		v := *f.Salary
		j.Salary = &v
	}
	j.LocationType = f.LocationType
	j.JobType = f.JobType
	j.Status = f.Status
	j.Description = f.Description
}

// Validate reports every reason j cannot be submitted.
// The returned error matches ErrValidation.
func (j JobItem) Validate() error {
	var errs []error
	if strings.TrimSpace(j.Title) == "" {
		errs = append(errs, &ValidationError{Field: "title", Reason: "must not be empty"})
	}
	if strings.TrimSpace(j.Company) == "" {
		errs = append(errs, &ValidationError{Field: "company", Reason: "must not be empty"})
	}
	if j.Salary != nil && (math.IsNaN(*j.Salary) || math.IsInf(*j.Salary, 0)) {
		errs = append(errs, &ValidationError{Field: "salary", Reason: "must be a number"})
	}
	if !j.Status.Valid() {
		errs = append(errs, &ValidationError{Field: "status", Reason: "unknown stage " + strconv.Quote(string(j.Status))})
	}
	if !j.LocationType.Valid() {
		errs = append(errs, &ValidationError{Field: "location_type", Reason: "unknown location type " + strconv.Quote(string(j.LocationType))})
	}
	if !j.JobType.Valid() {
		errs = append(errs, &ValidationError{Field: "job_type", Reason: "unknown job type " + strconv.Quote(string(j.JobType))})
	}
	return joinValidation(errs)
}

// ParseSalary turns free-form input into a salary. Blank input means
// "no salary"; anything that is not a finite number is rejected.
func ParseSalary(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &ValidationError{Field: "salary", Reason: "must be a number, got " + strconv.Quote(s)}
	}
	return &v, nil
}
