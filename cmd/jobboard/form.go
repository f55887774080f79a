package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/jobboard"
	"github.com/aretw0/jobboard/pkg/core"
	"github.com/spf13/cobra"
)

// jobForm holds the flags shared by add and edit.
type jobForm struct {
	title       string
	company     string
	link        string
	salary      string
	location    string
	jobType     string
	status      string
	description string
	notes       []string
	attach      []string
}

func (f *jobForm) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.title, "title", "t", "", "Job title")
	fl.StringVar(&f.company, "company", "", "Company name")
	fl.StringVar(&f.link, "link", "", "Link to the job post")
	fl.StringVar(&f.salary, "salary", "", "Salary (empty for none)")
	fl.StringVar(&f.location, "location", "", "Remote, Hybrid or Office based")
	fl.StringVar(&f.jobType, "type", "", "Full-time or Half-time")
	fl.StringVar(&f.status, "status", "", "Stage: Saved, Applied, Interviewing, Offer or Rejected")
	fl.StringVar(&f.description, "description", "", "Job description")
	fl.StringArrayVarP(&f.notes, "note", "n", nil, `Add a note, optionally prefixed with a stage ("Interviewing: call went well")`)
	fl.StringArrayVarP(&f.attach, "attach", "a", nil, `Attach files; glob patterns such as "cv/**/*.pdf" are expanded`)
}

// apply copies every flag the user set onto the session.
func (f *jobForm) apply(cmd *cobra.Command, sess *core.EditSession) error {
	fields := sess.Fields()
	changed := cmd.Flags().Changed

	if changed("title") {
		fields.Title = f.title
	}
	if changed("company") {
		fields.Company = f.company
	}
	if changed("link") {
		fields.PostLink = f.link
	}
	if changed("description") {
		fields.Description = f.description
	}
	if changed("salary") {
		s, err := core.ParseSalary(f.salary)
		if err != nil {
			return err
		}
		fields.Salary = s
	}
	if changed("location") {
		l, err := core.ParseLocationType(f.location)
		if err != nil {
			return err
		}
		fields.LocationType = l
	}
	if changed("type") {
		t, err := core.ParseJobType(f.jobType)
		if err != nil {
			return err
		}
		fields.JobType = t
	}
	if changed("status") {
		s, err := core.ParseStage(f.status)
		if err != nil {
			return err
		}
		fields.Status = s
	}
	sess.SetFields(fields)

	for _, raw := range f.notes {
		stage, text := splitNote(raw)
		if err := sess.AddNote(stage, text); err != nil {
			return fmt.Errorf("note %q: %w", raw, err)
		}
	}

	if len(f.attach) > 0 {
		uploads, err := jobboard.ExpandUploads(f.attach)
		if err != nil {
			return err
		}
		if err := sess.Attach(uploads...); err != nil {
			return err
		}
	}
	return nil
}

// splitNote reads an optional "Stage:" prefix. Text without a known stage
// prefix is kept whole.
func splitNote(raw string) (core.Stage, string) {
	prefix, rest, ok := strings.Cut(raw, ":")
	if !ok {
		return "", raw
	}
	stage, err := core.ParseStage(prefix)
	if err != nil {
		return "", raw
	}
	return stage, strings.TrimSpace(rest)
}

func printJob(w io.Writer, j core.JobItem) {
	fmt.Fprintf(w, "#%d %s @ %s [%s]\n", j.ID, j.Title, j.Company, j.Status)
	for _, n := range j.Notes {
		fmt.Fprintf(w, "  note %d (%s): %s\n", n.ID, n.Stage, n.Text)
	}
	for _, d := range j.Documents {
		fmt.Fprintf(w, "  document %d: %s\n", d.ID, d.Name)
	}
}
