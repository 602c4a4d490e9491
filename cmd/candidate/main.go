package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hireloop/assessd/internal/logger"
)

var (
	serverURL string
	token     string
	logLevel  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "candidate",
		Short: "Take an assessment from the terminal",
		Long: `Terminal client for the Assessd assessment platform.

The invite token you received by email is the only credential you need.
The session sends periodic presence heartbeats while the test is open;
closing the terminal mid-test keeps your attempt resumable.`,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Assessd server base URL")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "error", "Log level (debug, info, warn, error)")

	takeCmd := &cobra.Command{
		Use:   "take",
		Short: "Start (or resume) the assessment for an invite token",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.Setup(logLevel, "pretty")
			return runSession(cmd.Context(), serverURL, token, log)
		},
	}
	takeCmd.Flags().StringVar(&token, "token", "", "Invite token (required)")
	_ = takeCmd.MarkFlagRequired("token")

	reportCmd := &cobra.Command{
		Use:   "report [output.pdf]",
		Short: "Download the PDF report of a completed assessment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := "report.pdf"
			if len(args) == 1 {
				out = args[0]
			}
			log := logger.Setup(logLevel, "pretty")
			return downloadReport(cmd.Context(), serverURL, token, out, log)
		},
	}
	reportCmd.Flags().StringVar(&token, "token", "", "Invite token (required)")
	_ = reportCmd.MarkFlagRequired("token")

	rootCmd.AddCommand(takeCmd, reportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
