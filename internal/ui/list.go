package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/juke/internal/models"
)

var _ list.Item = submissionItem{}

// submissionItem wraps [models.Submission] to implement [list.Item].
type submissionItem struct {
	submission *models.Submission
}

func (i submissionItem) FilterValue() string { return i.submission.Query() }

func (i submissionItem) Title() string {
	if i.submission.Title() == "" {
		return i.submission.Query()
	}
	return fmt.Sprintf("%s - %s", i.submission.Artist(), i.submission.Title())
}

func (i submissionItem) Description() string {
	return fmt.Sprintf("%s • %s • #%d",
		i.submission.Status(),
		i.submission.SubmittedAt().Format("Jan 2 15:04"),
		i.submission.Sequence())
}
