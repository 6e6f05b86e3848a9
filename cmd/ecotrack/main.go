package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dukerupert/ecotrack/internal/config"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	v := config.New()
	var configPath string

	root := &cobra.Command{
		Use:           "ecotrack",
		Short:         "Personal sustainability tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ./ecotrack.yaml)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().String("db", "", "SQLite database path")
	bindFlag(v, "log.level", root, "log-level")
	bindFlag(v, "database.path", root, "db")

	load := func() (*config.Config, error) {
		return config.Load(v, configPath)
	}

	root.AddCommand(
		serveCommand(v, load),
		migrateCommand(load),
		versionCommand(),
	)
	return root
}

func bindFlag(v *viper.Viper, key string, cmd *cobra.Command, name string) {
	if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(name)); err != nil {
		panic(err)
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "ecotrack", version)
		},
	}
}
