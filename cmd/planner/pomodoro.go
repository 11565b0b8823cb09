package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/study-planner/internal/model"
	"github.com/BuzzLyutic/study-planner/internal/pomodoro"
	"github.com/BuzzLyutic/study-planner/internal/service"
	"github.com/BuzzLyutic/study-planner/internal/tui"
)

func pomodoroCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pomodoro",
		Short: "Run the pomodoro timer next to your task list",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer e.close()

			work, _ := cmd.Flags().GetInt("work")
			rest, _ := cmd.Flags().GetInt("break")
			if work <= 0 {
				work = e.cfg.WorkMinutes
			}
			if rest <= 0 {
				rest = e.cfg.BreakMinutes
			}

			if err := e.syncUnlessOffline(cmd.Context(), cmd); err != nil {
				e.logger.Warn("sync failed, showing cached tasks", zap.Error(err))
				fmt.Fprintln(os.Stderr, "Could not reach the API, showing cached tasks.")
			}
			tasks, err := e.store.ListTasks(cmd.Context())
			if err != nil {
				tasks = []model.Task{}
			}

			timer := pomodoro.New(pomodoro.Config{
				Work:  time.Duration(work) * time.Minute,
				Break: time.Duration(rest) * time.Minute,
			})
			pomo := service.NewPomodoroService(timer, e.store, e.logger)

			if err := tui.Run(cmd.Context(), tui.New(cmd.Context(), pomo, tasks, e.loc)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sessions completed: %d\n", pomo.State().SessionsCompleted)
			return nil
		},
	}

	cmd.Flags().Int("work", 0, "Work minutes (default from config)")
	cmd.Flags().Int("break", 0, "Break minutes (default from config)")
	cmd.Flags().Bool("offline", false, "Use the cached tasks without syncing")

	return cmd
}
