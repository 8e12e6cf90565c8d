package formatter

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/desertthunder/juke/internal/models"
)

func sampleSubmissions() []*models.Submission {
	queued := models.NewSubmission(1, "mr brightside", models.Track{
		ID:     "t1",
		Title:  "Mr. Brightside",
		Artist: "The Killers",
	}, models.SubmissionQueued)

	rejected := models.NewSubmission(2, "aslkdjalskdj", models.Track{}, models.SubmissionRejected)

	return []*models.Submission{queued, rejected}
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV(sampleSubmissions())
	if err != nil {
		t.Fatalf("failed to export CSV: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("expected parsable CSV, got %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected header and two records, got %d rows", len(records))
	}

	header := strings.Join(records[0], ",")
	if header != "Sequence,Query,Track,Artist,Status,SubmittedAt" {
		t.Errorf("unexpected header: %s", header)
	}

	if records[1][2] != "Mr. Brightside" || records[1][4] != models.SubmissionQueued {
		t.Errorf("unexpected first record: %v", records[1])
	}
	if records[2][2] != "" || records[2][4] != models.SubmissionRejected {
		t.Errorf("unexpected second record: %v", records[2])
	}
}

func TestExportToMarkdown(t *testing.T) {
	data, err := ExportToMarkdown(sampleSubmissions())
	if err != nil {
		t.Fatalf("failed to export Markdown: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "# Submission History") {
		t.Error("expected report title")
	}
	if !strings.Contains(content, "**Submissions**: 2") {
		t.Error("expected submission count")
	}
	if !strings.Contains(content, "The Killers - Mr. Brightside") {
		t.Error("expected resolved track line")
	}
	if !strings.Contains(content, "(rejected)") {
		t.Error("expected rejected status marker")
	}
}

func TestExportToText(t *testing.T) {
	data, err := ExportToText(sampleSubmissions())
	if err != nil {
		t.Fatalf("failed to export text: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "Submissions: 2") {
		t.Error("expected submission count")
	}
	if !strings.Contains(content, "[queued]") {
		t.Error("expected queued status marker")
	}
	if !strings.Contains(content, "(unresolved)") {
		t.Error("expected unresolved placeholder")
	}
}

func TestExportEmpty(t *testing.T) {
	for name, export := range map[string]func([]*models.Submission) ([]byte, error){
		"csv":      ExportToCSV,
		"markdown": ExportToMarkdown,
		"text":     ExportToText,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := export(nil); err != nil {
				t.Errorf("expected empty export to succeed, got %v", err)
			}
		})
	}
}
