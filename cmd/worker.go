package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/designxcel/storefront/internal/core/events"
	"github.com/designxcel/storefront/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start and manage background workers such as the audit event consumer.`,
}

// Audit worker: runs the event bus with the audit subscribers attached so
// auth events can be exercised without the HTTP server.
var auditWorkerCmd = &cobra.Command{
	Use:   "audit",
	Short: "Start audit event worker",
	Long:  `Start the event bus with audit log subscribers for auth events`,
	Run: func(cmd *cobra.Command, args []string) {
		startAuditWorker()
	},
}

func startAuditWorker() {
	_, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg := logger.LoggerWrapper()

	eventBus := events.NewEventBus(lg)
	events.RegisterAuditSubscribers(eventBus, lg)

	lg.Info("audit worker started. Waiting for events...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	lg.Info("received signal, shutting down audit worker", "signal", sig)
	lg.Info("audit worker shutdown complete")
}

func init() {
	workerCmd.AddCommand(auditWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
