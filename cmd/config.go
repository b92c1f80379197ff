package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/freelog/freelog/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a commented default configuration to --config, or to
~/.freelog/config.yaml when no path is given. An existing file is left alone
unless --force is set.`,
	Annotations: map[string]string{skipConfigAnnotation: "true"},
	RunE:        runConfigInit,
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	force, _ := cmd.Flags().GetBool("force")
	path := cfgFile
	if path == "" {
		path = filepath.Join(config.DefaultDir(), "config.yaml")
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.WriteDefaultConfig(path); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
