// package formatter exports submission history to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/desertthunder/juke/internal/models"
)

// ExportToCSV converts submissions to CSV with columns: Sequence, Query, Track, Artist, Status, SubmittedAt
func ExportToCSV(submissions []*models.Submission) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Sequence", "Query", "Track", "Artist", "Status", "SubmittedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, submission := range submissions {
		record := []string{
			strconv.Itoa(submission.Sequence()),
			submission.Query(),
			submission.Title(),
			submission.Artist(),
			submission.Status(),
			submission.SubmittedAt().Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts submissions to a Markdown report
func ExportToMarkdown(submissions []*models.Submission) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Submission History\n\n")
	buf.WriteString(fmt.Sprintf("**Submissions**: %d\n\n", len(submissions)))

	for i, submission := range submissions {
		line := fmt.Sprintf("%d. %s", i+1, submission.Query())
		if submission.Title() != "" {
			line = fmt.Sprintf("%s → %s - %s", line, submission.Artist(), submission.Title())
		}
		buf.WriteString(fmt.Sprintf("%s (%s)\n", line, submission.Status()))
	}

	return buf.Bytes(), nil
}

// ExportToText converts submissions to plain text format
func ExportToText(submissions []*models.Submission) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Submissions: %d\n\n", len(submissions)))

	for i, submission := range submissions {
		track := submission.Title()
		if track == "" {
			track = "(unresolved)"
		}
		buf.WriteString(fmt.Sprintf("%d. [%s] %s - %s\n", i+1, submission.Status(), submission.Artist(), track))
	}

	return buf.Bytes(), nil
}
