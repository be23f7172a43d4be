package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/spf13/cobra"
)

const defaultPollInterval = 500 * time.Millisecond

func newAdminCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administration tools",
	}
	logs := &cobra.Command{
		Use:   "logs",
		Short: "Request log reports",
	}
	logs.AddCommand(
		newLogsGenerateCmd(app),
		newLogsStatusCmd(app),
		newLogsDownloadCmd(app),
		newLogsArchiveCmd(app),
	)
	cmd.AddCommand(newHitsCmd(app), newAddCategoryCmd(app), logs)
	return cmd
}

func newHitsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "hits",
		Short: "Show request counters per endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := requireSession(app)
			if err != nil {
				return err
			}
			hits, err := app.Backend.GetHitStatistics(cmd.Context(), token)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(hits))
			for k := range hits {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ENDPOINT\tHITS")
			for _, k := range keys {
				fmt.Fprintf(w, "%s\t%d\n", k, hits[k])
			}
			return w.Flush()
		},
	}
}

func newAddCategoryCmd(app *App) *cobra.Command {
	var (
		names  []string
		parent int64
	)
	cmd := &cobra.Command{
		Use:   "add-category",
		Short: "Create one or more categories under a parent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := requireSession(app)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return fmt.Errorf("%w: at least one --name is required", domain.ErrInvalidInput)
			}
			payload := make([]domain.NewCategory, len(names))
			for i, name := range names {
				payload[i] = domain.NewCategory{Name: name, ParentID: parent}
			}
			tree, err := app.Backend.CreateCategories(cmd.Context(), payload, token)
			if err != nil {
				return err
			}
			app.printf("Created %d categories\n", len(names))
			printTree(app, tree, 0)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&names, "name", nil, "category name, repeatable")
	cmd.Flags().Int64Var(&parent, "parent", 0, "parent category id, root when omitted")
	return cmd
}

func newLogsGenerateCmd(app *App) *cobra.Command {
	var (
		date   string
		wait   bool
		output string
		poll   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Start building the request log of a day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := requireSession(app)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			task, err := app.Backend.GenerateLogReport(ctx, token, date)
			if err != nil {
				return err
			}
			if !wait {
				app.printf("Task %s started\n", task.TaskID)
				return nil
			}
			state, err := pollLogTask(ctx, app, token, task.TaskID, poll)
			if err != nil {
				return err
			}
			if state.Status == domain.LogTaskFailed {
				return &userError{msg: fmt.Sprintf("Log report %s failed.", task.TaskID)}
			}
			data, err := app.Backend.DownloadGeneratedLog(ctx, token, task.TaskID)
			if err != nil {
				return err
			}
			return writeLog(app, output, data)
		},
	}
	f := cmd.Flags()
	f.StringVar(&date, "date", "", "day in YYYY-MM-DD, today when omitted")
	f.BoolVar(&wait, "wait", false, "wait for the report and download it")
	f.StringVarP(&output, "output", "o", "", "file to write the report to, stdout when omitted")
	f.DurationVar(&poll, "poll", defaultPollInterval, "status polling interval")
	return cmd
}

// pollLogTask polls until the task reaches a final status or ctx is done.
func pollLogTask(ctx context.Context, app *App, token, taskID string, every time.Duration) (*domain.LogTaskState, error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		state, err := app.Backend.GetLogTaskStatus(ctx, token, taskID)
		if err != nil {
			return nil, err
		}
		if state.Status.IsFinal() {
			return state, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func newLogsStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <task-id>",
		Short: "Show the status of a log report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireSession(app)
			if err != nil {
				return err
			}
			state, err := app.Backend.GetLogTaskStatus(cmd.Context(), token, args[0])
			if err != nil {
				return err
			}
			app.printf("%s\n", state.Status)
			return nil
		},
	}
}

func newLogsDownloadCmd(app *App) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "download <task-id>",
		Short: "Download a finished log report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireSession(app)
			if err != nil {
				return err
			}
			data, err := app.Backend.DownloadGeneratedLog(cmd.Context(), token, args[0])
			if err != nil {
				return err
			}
			return writeLog(app, output, data)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write the report to, stdout when omitted")
	return cmd
}

func newLogsArchiveCmd(app *App) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "archive <date>",
		Short: "Download the archived log of a past day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireSession(app)
			if err != nil {
				return err
			}
			data, err := app.Backend.DownloadArchivedLog(cmd.Context(), token, args[0])
			if err != nil {
				return err
			}
			return writeLog(app, output, data)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write the log to, stdout when omitted")
	return cmd
}

func writeLog(app *App, output string, data []byte) error {
	if output == "" {
		_, err := app.Out.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	app.printf("Saved %d bytes to %s\n", len(data), output)
	return nil
}
