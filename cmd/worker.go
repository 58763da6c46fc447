package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start event-driven workers",
	Long:  `Start and manage event-driven workers for invoice processing`,
}

// Dispatch worker: consumes invoice.received and user.deleted events without
// exposing the HTTP surface.
var dispatchWorkerCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Start the invoice dispatch worker",
	Long:  `Start the invoice dispatch worker consuming invoice and user lifecycle events`,
	Run: func(cmd *cobra.Command, args []string) {
		startDispatchWorker()
	},
}

func startDispatchWorker() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	deps.Logger.Info("dispatch worker is running. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	deps.Logger.Info("received signal, shutting down dispatch worker", "signal", sig)

	if err := deps.DB.Close(); err != nil {
		deps.Logger.Error("database close error", "error", err)
	}
	deps.Logger.Info("dispatch worker shutdown complete")
}

func init() {
	workerCmd.AddCommand(dispatchWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
