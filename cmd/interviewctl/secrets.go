package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"onboarding/pkg/config"
)

// secretValueEnv supplies the value for secrets set without a prompt.
const secretValueEnv = "ONBOARDING_SECRET_VALUE"

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Manage the encrypted credentials file",
}

var secretsSetCmd = &cobra.Command{
	Use:   "set NAME",
	Short: "Store a credential such as ANTHROPIC_API_KEY",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[0])
		if name == "" {
			return errors.New("secret name is required")
		}

		password, err := readPassword("Password for encrypted secrets: ")
		if err != nil {
			return err
		}
		secrets := map[string]string{}
		if config.SecretsFileExists(projectDir) {
			if secrets, err = config.DecryptSecretsFile(projectDir, password); err != nil {
				return fmt.Errorf("failed to unlock secrets: %w", err)
			}
		}
		config.SetDecryptedSecrets(secrets)

		value, err := readSecretValue(name)
		if err != nil {
			return err
		}
		config.SetSecret(name, value)
		if err := config.SaveSecretsToFile(projectDir, password); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", name)
		return nil
	},
}

var secretsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored credential names",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !config.SecretsFileExists(projectDir) {
			fmt.Fprintln(cmd.OutOrStdout(), "No secrets file")
			return nil
		}
		for _, name := range config.GetDecryptedSecretNames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	secretsCmd.AddCommand(secretsSetCmd, secretsListCmd)
	rootCmd.AddCommand(secretsCmd)
}

func readSecretValue(name string) (string, error) {
	if v := strings.TrimSpace(os.Getenv(secretValueEnv)); v != "" {
		return v, nil
	}
	return readHidden(fmt.Sprintf("Value for %s: ", name))
}
