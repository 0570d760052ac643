package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sprintcoach/config"
	"sprintcoach/internal/app"
	"sprintcoach/pkg/logger"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "sprintcoach-admin",
	Short:         "Sprint Coach administration",
	Long:          `Operational commands for Sprint Coach: migrations, user promotion, prompt seeding, outbox replay and data export.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env is what each command needs once config and connections are up.
type env struct {
	cfg   *config.Config
	log   *zap.Logger
	infra *app.Infra
	c     *app.Container
}

// withEnv loads config, connects and runs fn; Redis is only dialled when needed.
func withEnv(ctx context.Context, withRedis bool, fn func(e *env) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.NewLogger("sprintcoach-admin", cfg.Log.Level)
	defer log.Sync()

	infra, err := app.Connect(ctx, cfg, withRedis, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	return fn(&env{cfg: cfg, log: log, infra: infra, c: app.NewContainer(cfg, infra, log)})
}
