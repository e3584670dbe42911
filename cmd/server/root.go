package main

import (
	"github.com/DoyleJ11/worldcup-draw-backend/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	v := config.New()

	root := &cobra.Command{
		Use:          "server",
		Short:        "World Cup 2026 group draw service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "config file (yaml, json or toml)")
	root.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")

	serve := newServeCmd(v)
	root.AddCommand(serve, newSimulateCmd(v))

	// Running the binary without a subcommand serves.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	return root
}

// loadConfig resolves the --config and --env-file flags into a validated Config.
func loadConfig(cmd *cobra.Command, v *viper.Viper) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")
	return config.Load(v, file, envFile)
}
