// Command interviewctl runs onboarding interviews from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"onboarding/pkg/config"
	"onboarding/pkg/logx"
)

// passwordEnv unlocks the secrets file without a prompt.
const passwordEnv = "ONBOARDING_PASSWORD"

var (
	// Global flags
	cfgFile    string
	envFile    string
	projectDir string
	dbPath     string
	output     string
)

var rootCmd = &cobra.Command{
	Use:   "interviewctl",
	Short: "Collection agent onboarding interviews",
	Long: `interviewctl runs the onboarding questionnaire that configures a
collection agent for a company, and inspects stored sessions.

Commands:
  run       Start or resume an interview
  progress  Show interview progress
  review    Show the answers collected so far
  sessions  List sessions
  stats     Aggregate interview metrics from Prometheus
  secrets   Manage encrypted credentials`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "Config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before the config")
	rootCmd.PersistentFlags().StringVar(&projectDir, "project-dir", ".", "Directory holding .onboarding/secrets.json.enc")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Session database (overrides database_path)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")
}

// setup loads env, config and secrets for every command.
func setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}
	if err := config.LoadConfig(cfgFile); err != nil {
		return err
	}
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	if cfg.Debug {
		logx.SetDebug(true)
	}
	if cmd.Name() == "set" {
		// secrets set unlocks the file itself
		return nil
	}
	return unlockSecrets(projectDir)
}

// unlockSecrets decrypts the secrets file when present.
func unlockSecrets(dir string) error {
	if !config.SecretsFileExists(dir) {
		return nil
	}
	password, err := readPassword("Password for encrypted secrets: ")
	if err != nil {
		return err
	}
	secrets, err := config.DecryptSecretsFile(dir, password)
	if err != nil {
		return fmt.Errorf("failed to unlock secrets: %w", err)
	}
	config.SetDecryptedSecrets(secrets)
	return nil
}

// readPassword takes the password from ONBOARDING_PASSWORD or the terminal.
func readPassword(prompt string) (string, error) {
	if p := os.Getenv(passwordEnv); p != "" {
		return p, nil
	}
	return readHidden(prompt)
}

// readHidden reads one line from the terminal without echo.
func readHidden(prompt string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("stdin is not a terminal, set %s", passwordEnv)
	}
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr) // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	value := strings.TrimSpace(string(raw))
	for i := range raw {
		raw[i] = 0
	}
	if value == "" {
		return "", errors.New("empty input")
	}
	return value, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
