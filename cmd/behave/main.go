// Package main provides the CLI entry point for behave-go.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mrlab-graz/behave-go/pkg/behave"
)

var (
	dataFolder      string
	resourcesFolder string
	outputFolder    string
	studyName       string
	debug           bool
	anonymize       bool
	skipValidation  bool
	logFile         string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "behave",
		Short: "Convert behavioral survey spreadsheets to BIDS",
		Long: `behave-go converts spreadsheet-based behavioral survey data
(demographics, task questionnaires, per-subject session responses) into
a BIDS-compliant directory of JSON sidecars and TSV tables.`,
		RunE: run,
	}

	rootCmd.Flags().StringVarP(&dataFolder, "data", "d", "", "Folder with session and demographics spreadsheets (required)")
	rootCmd.Flags().StringVarP(&resourcesFolder, "resources", "r", "", "Folder with task definition spreadsheets (required)")
	rootCmd.Flags().StringVarP(&outputFolder, "output", "o", "", "Output folder for the BIDS dataset (required)")
	rootCmd.Flags().StringVarP(&studyName, "study", "s", "", "Study identifier (required)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&anonymize, "anonymize", false, "Replace item descriptions with numbered placeholders")
	rootCmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "Skip the external BIDS validator")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Also write log output to this file")

	for _, flag := range []string{"data", "resources", "output", "study"} {
		if err := rootCmd.MarkFlagRequired(flag); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := behave.LoadConfig(dataFolder)
	if err != nil {
		return err
	}
	cfg.Anonymize = anonymize
	cfg.SkipValidation = skipValidation

	summary, err := behave.Convert(cmd.Context(), dataFolder, resourcesFolder, outputFolder, studyName, cfg)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	// Validation warnings and failures do not change the exit code;
	// the run converted what it could.
	if summary.Validation == behave.ValidationFailed {
		log.Warn("output did not pass the BIDS validator, see log above")
	}
	return nil
}

func setupLogging() (func(), error) {
	if debug {
		log.SetLevel(log.DebugLevel)
	}
	if logFile == "" {
		return func() {}, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file %s: %w", logFile, err)
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return func() { f.Close() }, nil
}
