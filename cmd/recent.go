package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/juke/internal/formatter"
	"github.com/desertthunder/juke/internal/models"
	"github.com/desertthunder/juke/internal/repositories"
	"github.com/desertthunder/juke/internal/shared"
	"github.com/urfave/cli/v3"
)

// Recent lists or exports the most recent submissions.
func (r *Runner) Recent(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase(cmd.String("config"))
	if err != nil {
		return err
	}
	defer db.Close()

	submissions := repositories.NewSubmissionRepository(db)

	limit := cmd.Int("limit")
	recent, err := submissions.Recent(limit)
	if err != nil {
		return fmt.Errorf("failed to load submissions: %w", err)
	}

	format := cmd.String("format")
	outputPath := cmd.String("output")

	if format != "" {
		var data []byte
		switch format {
		case "csv":
			data, err = formatter.ExportToCSV(recent)
		case "md":
			data, err = formatter.ExportToMarkdown(recent)
		case "txt":
			data, err = formatter.ExportToText(recent)
		default:
			return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
		}
		if err != nil {
			return fmt.Errorf("failed to export submissions: %w", err)
		}

		if outputPath != "" {
			if err := os.WriteFile(outputPath, data, 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			r.logger.Infof("exported %v submissions to %v", len(recent), outputPath)
			return r.writePlain("✓ Exported %d submissions to %s\n", len(recent), outputPath)
		}

		if _, err := r.output.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(submissionRows(recent), cmd.Bool("pretty"))
	}

	if len(recent) == 0 {
		return r.writePlain("No submissions yet\n")
	}

	for _, submission := range recent {
		label := submission.Query()
		if submission.Title() != "" {
			label = fmt.Sprintf("%s - %s", submission.Artist(), submission.Title())
		}
		r.writePlain("#%d  %-8s  %s  (%s)\n",
			submission.Sequence(), submission.Status(), label,
			submission.SubmittedAt().Format("Jan 2 15:04"))
	}
	return nil
}

// submissionRows flattens submissions for JSON output.
func submissionRows(recent []*models.Submission) []map[string]any {
	rows := make([]map[string]any, 0, len(recent))
	for _, submission := range recent {
		rows = append(rows, map[string]any{
			"sequence":     submission.Sequence(),
			"query":        submission.Query(),
			"track_id":     submission.TrackID(),
			"title":        submission.Title(),
			"artist":       submission.Artist(),
			"status":       submission.Status(),
			"submitted_at": submission.SubmittedAt(),
		})
	}
	return rows
}
