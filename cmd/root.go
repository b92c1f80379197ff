// Package cmd implements the freelog command line.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/freelog/freelog/internal/config"
	"github.com/freelog/freelog/internal/log"
)

// skipConfigAnnotation marks commands that must run without loading config.
const skipConfigAnnotation = "freelog/skip-config"

var (
	cfgFile string
	cfg     config.Config
	vp      *viper.Viper
)

var rootCmd = &cobra.Command{
	Use:   "freelog",
	Short: "Track clients, projects, deliverables and payments",
	Long: `Freelog is a small CRM for freelancers. It serves a web app where
freelancers manage clients, projects, deliverable versions, payments and
briefs, and where their clients review work.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version printed by --version.
func SetVersion(v string) {
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default ~/.freelog/config.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "override log.level (debug, info, warn, error)")
}

func initConfig(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipConfigAnnotation] == "true" {
		return nil
	}

	vp = config.NewViper(cfgFile)
	if err := vp.BindPFlag("log.level", cmd.Root().PersistentFlags().Lookup("log-level")); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	loaded, err := config.Load(vp)
	if err != nil {
		return err
	}
	cfg = loaded

	if err := log.Init(log.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON}); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	return nil
}
