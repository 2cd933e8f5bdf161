package main

import (
	"context"
	"fmt"
	"os"

	"fieldtrack.com/fieldtrack/attendance/app"
	"fieldtrack.com/fieldtrack/config"
	"fieldtrack.com/fieldtrack/infrastructure/logging"
	"github.com/spf13/cobra"
)

var Version = "dev"

type rootOptions struct {
	configFile string
	envFile    string
}

func main() {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "fieldtrack",
		Short:         "Field workforce attendance and site visit tracking",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(migrateCmd(opts))
	rootCmd.AddCommand(tokenCmd(opts))
	rootCmd.AddCommand(userCmd(opts))
	rootCmd.AddCommand(rosterCmd(opts))
	rootCmd.AddCommand(exportCmd(opts))
	rootCmd.AddCommand(mediaCmd(opts))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *rootOptions) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx, config.LoadOptions{File: o.configFile, EnvFile: o.envFile})
	if err != nil {
		return nil, err
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withApp runs fn against a fully wired application and closes it after.
func (o *rootOptions) withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := o.loadConfig(ctx)
	if err != nil {
		return err
	}
	a, err := app.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	return fn(a)
}
