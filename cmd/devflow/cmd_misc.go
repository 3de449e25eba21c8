package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/suykerbuyk/devflow/internal/check"
	"github.com/suykerbuyk/devflow/internal/config"
)

var (
	initEmail string
	initName  string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Diagnose configuration and environment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report := check.Run(cfg)
		fmt.Fprint(cmd.OutOrStdout(), report.Format())
		if report.HasFailures() {
			os.Exit(1)
		}
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Writes ~/.config/devflow/config.toml with default provider settings.
An existing file is left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.WriteDefault(initEmail, initName)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "config: %s\n", config.CompressHome(path))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "devflow v%s\n", version)
	},
}

func init() {
	initCmd.Flags().StringVar(&initEmail, "email", "", "Email of the signed-in user")
	initCmd.Flags().StringVar(&initName, "name", "", "Display name")
}
