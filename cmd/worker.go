package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/notification"
	userpg "github.com/frahmantamala/leave-management/internal/user/postgres"
	"github.com/frahmantamala/leave-management/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start worker pools for various services",
	Long:  `Start and manage worker pools for background services like mail delivery.`,
}

var mailWorkerCmd = &cobra.Command{
	Use:   "mail",
	Short: "Start mail delivery worker pool",
	Long:  `Start the mailer worker pool that delivers leave status notifications`,
	Run: func(cmd *cobra.Command, args []string) {
		startMailWorker()
	},
}

func startMailWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	log := logger.LoggerWrapper()

	dbx, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}

	gdb, err := initGorm(dbx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize gorm: %v\n", err)
		os.Exit(1)
	}

	userRepo := userpg.NewUserRepository(gdb, dbx)

	bus := events.NewEventBus(log)
	mailer := notification.NewMailer(config.Mailer, log)
	resolver := notification.ResolverFunc(func(userID int64) (string, string, error) {
		u, err := userRepo.GetByID(userID)
		if err != nil {
			return "", "", err
		}
		return u.Name, u.Email, nil
	})
	notification.RegisterSubscribers(bus, mailer, resolver, log)

	log.Info("mail worker is running. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info("received signal, shutting down mail worker", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		mailer.Shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		log.Info("mail worker pool shutdown complete")
	case <-ctx.Done():
		log.Warn("shutdown timeout reached, forcing exit")
	}
}

func init() {
	workerCmd.AddCommand(mailWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
