package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/study-planner/internal/client"
	"github.com/BuzzLyutic/study-planner/internal/config"
	"github.com/BuzzLyutic/study-planner/internal/repo"
	"github.com/BuzzLyutic/study-planner/internal/service"
)

var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) || errors.Is(err, config.ErrNoSession) {
			fmt.Fprintln(os.Stderr, "Not logged in. Run `planner login` first.")
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "planner",
		Short:         "Study planner: tasks, stats, roadmaps and a pomodoro timer",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().Bool("debug", false, "Verbose logging")

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(signupCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(tasksCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(doneCmd())
	rootCmd.AddCommand(rmCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(roadmapCmd())
	rootCmd.AddCommand(adviceCmd())
	rootCmd.AddCommand(pomodoroCmd())

	return rootCmd
}

// env is what every command that talks to the API needs.
type env struct {
	cfg    config.Config
	logger *zap.Logger
	api    *client.Client
	store  repo.TaskRepository
	tasks  *service.TaskService
	loc    *time.Location
	close  func()
}

// setup loads config and the session. With needToken it fails when nobody
// is logged in.
func setup(cmd *cobra.Command, needToken bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}

	logger := zap.NewNop()
	if cfg.Debug {
		if logger, err = cfg.Logger(); err != nil {
			return nil, err
		}
	}

	token, err := cfg.Token()
	if err != nil && (needToken || !errors.Is(err, config.ErrNoSession)) {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, closeStore, err := repo.Open(cmd.Context(), cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}

	api := client.New(cfg.APIURL, token, logger)
	return &env{
		cfg:    cfg,
		logger: logger,
		api:    api,
		store:  store,
		tasks:  service.NewTaskService(store, api, logger, service.WithLocation(loc)),
		loc:    loc,
		close: func() {
			closeStore()
			logger.Sync()
		},
	}, nil
}

// now is the wall clock in the configured TIMEZONE.
func (e *env) now() time.Time {
	return time.Now().In(e.loc)
}

// syncUnlessOffline refreshes the cache; --offline keeps the cached copy.
func (e *env) syncUnlessOffline(ctx context.Context, cmd *cobra.Command) error {
	if offline, _ := cmd.Flags().GetBool("offline"); offline {
		return nil
	}
	_, err := e.tasks.Sync(ctx)
	return err
}
