package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mikey/email-triage/internal/adapters/filter"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/di"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flags        = &di.CLIFlags{}
	classifyText string
	classifyFile string
	timeout      time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "triage-cli",
	Short: "Classify emails as actionable or not from the command line",
	Long: `triage-cli runs the email triage pipeline once: heuristic courtesy
detection, then the configured remote model, and prints the category with a
suggested reply.`,
	SilenceUsage: true,
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify one email from --text, --file or stdin",
	Args:  cobra.NoArgs,
	RunE:  runClassify,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.ConfigFile, "config", "", "Path to config file")
	pf.StringVar(&flags.Provider, "provider", "", "LLM provider (openai, anthropic, gemini, bedrock)")
	pf.StringVar(&flags.Model, "model", "", "Model name or Bedrock model ID")
	pf.StringVar(&flags.APIKey, "api-key", "", "Provider API key")
	pf.IntVar(&flags.MaxBodySize, "max-body-size", 0, "Maximum email size in bytes sent to the provider")
	pf.StringVar(&flags.RulesFile, "rules", "", "Path to a heuristic rules YAML file")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable verbose logging")
	pf.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")

	classifyCmd.Flags().StringVarP(&classifyText, "text", "t", "", "Email text to classify")
	classifyCmd.Flags().StringVarP(&classifyFile, "file", "f", "", "Email file to classify (.txt, .eml, .pdf)")
	classifyCmd.Flags().BoolVar(&flags.JSONOutput, "json", false, "Print the result as JSON")
	classifyCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Timeout for the remote classification")
	classifyCmd.MarkFlagsMutuallyExclusive("text", "file")

	rootCmd.AddCommand(classifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runClassify(cmd *cobra.Command, _ []string) error {
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}

	return container.Invoke(func(
		logger *zap.Logger,
		cli *filter.CliFilter,
		extractor core.TextExtractor,
		completer core.Completer,
	) error {
		defer logger.Sync()
		defer func() {
			if closer, ok := completer.(interface{ Close() error }); ok {
				if err := closer.Close(); err != nil {
					logger.Error("Failed to close LLM client", zap.Error(err))
				}
			}
		}()

		raw, err := readInput(cmd.InOrStdin(), extractor, logger)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		_, err = cli.ProcessText(ctx, raw)
		return err
	})
}

// readInput returns the text given by --text, --file or stdin, in that order
func readInput(stdin io.Reader, extractor core.TextExtractor, logger *zap.Logger) (string, error) {
	if classifyText != "" {
		return classifyText, nil
	}

	if classifyFile != "" {
		data, err := os.ReadFile(classifyFile)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		logger.Debug("Reading email from file", zap.String("file", classifyFile))
		return extractor.Extract(data, filepath.Base(classifyFile)), nil
	}

	logger.Debug("Reading email from stdin")
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return extractor.Extract(data, ""), nil
}
