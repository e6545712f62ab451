package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"buildlens/internal/azure"
	"buildlens/internal/config"
	"buildlens/internal/redact"
	"buildlens/internal/render"
	"buildlens/internal/report"
	"buildlens/internal/resolve"
	"buildlens/pkg/fileutil"

	"github.com/spf13/cobra"
)

var (
	configFile string
	logFile    string
	outputDir  string
	assumeYes  bool
)

var buildCmd = &cobra.Command{
	Use:   "build <number|id>",
	Short: "Generate a report for one CI build",
	Long: `Resolve a build by its YYYYMMDD.N number (or numeric ID), scan its logs for
quality-gate signals, and write Markdown and JSON report files.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuildReport,
}

var uatCmd = &cobra.Command{
	Use:   "uat <release-name>",
	Short: "Generate a UAT release report",
	Long: `Resolve a release by name, find its associated build, and write a UAT report
covering environments, approvals, and build quality signals.`,
	Args: cobra.ExactArgs(1),
	RunE: runUATReport,
}

var prodCmd = &cobra.Command{
	Use:   "prod <release-name>",
	Short: "Generate a production release report",
	Long: `Resolve a release by name, find its associated build, and write a production
report. Production sign-off reconciliation surfaces cancellations ahead of
earlier approvals.`,
	Args: cobra.ExactArgs(1),
	RunE: runProdReport,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the active Azure CLI session",
	RunE:  runWhoami,
}

func init() {
	for _, cmd := range []*cobra.Command{buildCmd, uatCmd, prodCmd, whoamiCmd} {
		cmd.Flags().StringVarP(&configFile, "config", "c", getEnvOrDefault("BUILDLENS_CONFIG_FILE", ""), "Path to buildlens.yaml configuration file")
		cmd.Flags().StringVar(&logFile, "log", getEnvOrDefault("BUILDLENS_LOG_FILE", ""), "Path to log file (overrides config)")
	}
	for _, cmd := range []*cobra.Command{buildCmd, uatCmd, prodCmd} {
		cmd.Flags().StringVarP(&outputDir, "out", "o", getEnvOrDefault("BUILDLENS_OUTPUT_DIR", ""), "Directory for report files (overrides config)")
		cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	}
}

func runBuildReport(cmd *cobra.Command, args []string) error {
	return runReport(cmd, args[0], "build report", func(ctx context.Context, gen *report.Generator, dir string) (*render.Paths, error) {
		rep, err := gen.GenerateBuildReport(ctx, args[0])
		if err != nil {
			return nil, err
		}
		return render.WriteBuildReport(rep, dir)
	})
}

func runUATReport(cmd *cobra.Command, args []string) error {
	return runReport(cmd, args[0], "UAT release report", func(ctx context.Context, gen *report.Generator, dir string) (*render.Paths, error) {
		rep, err := gen.GenerateUATReleaseReport(ctx, args[0])
		if err != nil {
			return nil, err
		}
		return render.WriteUATReleaseReport(rep, dir)
	})
}

func runProdReport(cmd *cobra.Command, args []string) error {
	return runReport(cmd, args[0], "production release report", func(ctx context.Context, gen *report.Generator, dir string) (*render.Paths, error) {
		rep, err := gen.GenerateProductionReleaseReport(ctx, args[0])
		if err != nil {
			return nil, err
		}
		return render.WriteProductionReleaseReport(rep, dir)
	})
}

// runReport is the shared pipeline: config, logging, confirmation,
// authentication, client and resolver wiring, generation, and output.
func runReport(cmd *cobra.Command, identifier, kind string, generate func(context.Context, *report.Generator, string) (*render.Paths, error)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logPath := cfg.LogFile
	if logFile != "" {
		logPath = logFile
	}
	logger, logHandle, err := setupLogging(logPath)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logHandle.Close()

	// The only cancellation point: once generation starts it runs to
	// completion or error.
	if !assumeYes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(),
		fmt.Sprintf("Generate %s for %q in %s/%s?", kind, identifier, cfg.Organization, cfg.Project)) {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}

	ctx := cmd.Context()

	token, err := acquireToken(ctx, cfg, logger)
	if err != nil {
		return remediate(err)
	}

	client := azure.NewOrganizationClient(cfg.Organization, cfg.Project, token)
	gen := report.NewGenerator(
		resolve.NewBuildResolver(client, logger),
		resolve.NewReleaseResolver(client, logger),
		client,
		logger,
	)

	dir := cfg.OutputDir
	if outputDir != "" {
		dir = outputDir
	}

	logger.Info("Generating report", "kind", kind, "identifier", identifier)
	paths, err := generate(ctx, gen, dir)
	if err != nil {
		logger.Error("Report generation failed", "kind", kind, "identifier", identifier, "error", err)
		return remediate(err)
	}

	logger.Info("Report written", "markdown", paths.Markdown, "json", paths.JSON)
	fmt.Fprintf(cmd.OutOrStdout(), "Report written:\n  %s\n  %s\n", paths.Markdown, paths.JSON)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cli, err := azure.NewCLI(cfg.AzCommand)
	if err != nil {
		return err
	}

	account, err := cli.Account(cmd.Context())
	if err != nil {
		return remediate(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (subscription %q, tenant %s)\n",
		account.User.Name, account.Name, account.TenantID)

	subs, err := cli.ListSubscriptions(cmd.Context())
	if err != nil {
		return remediate(err)
	}
	for _, sub := range subs {
		marker := " "
		if sub.IsDefault {
			marker = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s, %s)\n", marker, sub.Name, sub.ID, sub.State)
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	path := configFile
	if path == "" {
		searchPaths := fileutil.DefaultConfigPaths("buildlens.yaml")
		path = fileutil.SearchPathsOptional(searchPaths)
		if path == "" {
			fmt.Fprintf(os.Stderr, "Error: No configuration file found in default locations:\n")
			for _, p := range searchPaths {
				fmt.Fprintf(os.Stderr, "  - %s\n", p)
			}
			fmt.Fprintf(os.Stderr, "Use --config flag to specify a custom location\n")
			return nil, fmt.Errorf("configuration file not found")
		}
	}
	return config.Load(path)
}

// acquireToken prefers the configured token environment variable and falls
// back to the Azure CLI. A value that looks like leftover template text is
// treated as unset.
func acquireToken(ctx context.Context, cfg *config.Config, logger *slog.Logger) (string, error) {
	if token := cfg.Token(); token != "" {
		if redact.Placeholder(token) {
			logger.Warn("Ignoring placeholder token from environment", "env", cfg.TokenEnv)
		} else {
			logger.Info("Using token from environment", "env", cfg.TokenEnv)
			return token, nil
		}
	}

	logger.Info("Acquiring token via Azure CLI")
	cli, err := azure.NewCLI(cfg.AzCommand)
	if err != nil {
		return "", err
	}
	return cli.AccessToken(ctx)
}

// remediate appends the remediation hint, when the error carries one, to the
// message shown to the operator.
func remediate(err error) error {
	var te *azure.TransportError
	if errors.As(err, &te) && te.Hint != "" {
		return fmt.Errorf("%w\n  hint: %s", err, te.Hint)
	}
	var fe *resolve.FormatError
	if errors.As(err, &fe) {
		return fmt.Errorf("%w\n  hint: check the identifier and try again", err)
	}
	return err
}

// confirm asks a yes/no question and returns true on explicit assent.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

// setupLogging configures slog for file logging
// Returns both the logger and the file handle (caller must close the file)
func setupLogging(logPath string) (*slog.Logger, *os.File, error) {
	// Create log directory if needed
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Open log file with secure permissions
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	// Create JSON handler for structured logging
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})

	logger := slog.New(handler)

	return logger, file, nil
}

// Helper functions for environment variables
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
