package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/study-planner/internal/classify"
	"github.com/BuzzLyutic/study-planner/internal/model"
)

func tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks (all, pending, completed, overdue)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer e.close()

			name, _ := cmd.Flags().GetString("filter")
			filter, err := classify.ParseFilter(name)
			if err != nil {
				return err
			}
			sortBy, _ := cmd.Flags().GetString("sort")

			if err := e.syncUnlessOffline(cmd.Context(), cmd); err != nil {
				return err
			}
			tasks, err := e.tasks.List(cmd.Context(), filter, sortBy == "deadline")
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd.OutOrStdout(), tasks)
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks found. Add your first task with `planner add`!")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), taskTable(tasks, e.now()))
			return nil
		},
	}

	cmd.Flags().StringP("filter", "f", "all", "Filter (all, pending, completed, overdue)")
	cmd.Flags().StringP("sort", "s", "", "Sort order (deadline)")
	cmd.Flags().Bool("offline", false, "Use the cached tasks without syncing")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")

	return cmd
}

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer e.close()

			req := model.NewTask{Title: args[0]}
			req.Description, _ = cmd.Flags().GetString("desc")
			req.DueDate, _ = cmd.Flags().GetString("due")
			if req.DueDate == "" {
				req.DueDate = e.now().Format("2006-01-02")
			}
			priority, _ := cmd.Flags().GetString("priority")
			req.Priority = model.Priority(priority)
			if at, _ := cmd.Flags().GetString("at"); at != "" {
				req.DueTime = &at
			}

			task, err := e.tasks.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task added successfully! (id %s)\n", task.ID)
			return nil
		},
	}

	cmd.Flags().StringP("due", "d", "", "Due date (YYYY-MM-DD, default today in TIMEZONE)")
	cmd.Flags().StringP("at", "t", "", "Due time (HH:MM)")
	cmd.Flags().StringP("priority", "p", "medium", "Priority (low, medium, high)")
	cmd.Flags().String("desc", "", "Description")

	return cmd
}

func doneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "done [id]",
		Aliases: []string{"toggle"},
		Short:   "Toggle a task between pending and completed",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.syncUnlessOffline(cmd.Context(), cmd); err != nil {
				return err
			}
			task, err := e.tasks.Toggle(cmd.Context(), model.ID(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s.\n", task.Title, task.Status)
			return nil
		},
	}
	cmd.Flags().Bool("offline", false, "Use the cached task without syncing")
	return cmd
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.tasks.Delete(cmd.Context(), model.ID(args[0])); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Task deleted successfully!")
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show task counts and the productivity score",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.syncUnlessOffline(cmd.Context(), cmd); err != nil {
				return err
			}
			report, err := e.tasks.Stats(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total tasks:   %d\n", report.Total)
			fmt.Fprintf(out, "Completed:     %d\n", report.Completed)
			fmt.Fprintf(out, "Pending:       %d\n", report.Pending)
			fmt.Fprintf(out, "Overdue:       %d\n", report.Overdue)
			fmt.Fprintf(out, "Productivity:  %d%% (%s)\n", report.ProductivityScore, report.Source)
			return nil
		},
	}
	cmd.Flags().Bool("offline", false, "Compute from the cached tasks without syncing")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")
	return cmd
}

var (
	overdueCell = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	doneCell    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func taskTable(tasks []model.Task, now time.Time) string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		due := t.DueDate
		if t.HasDueTime() {
			due += " " + *t.DueTime
		}
		status := string(t.Status)
		switch {
		case classify.IsOverdue(t, now):
			status = overdueCell.Render("overdue")
		case t.Status == model.StatusCompleted:
			status = doneCell.Render(status)
		}
		rows = append(rows, []string{string(t.ID), t.Title, due, string(t.Priority), status})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "DUE", "PRIORITY", "STATUS").
		Rows(rows...).
		String()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
