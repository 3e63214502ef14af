package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/njchilds90/mathlink/config"
	"github.com/njchilds90/mathlink/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "mathlink",
	Short: "mathlink calls Wolfram kernel functions on symbolic expressions",
	Long: `mathlink starts a Wolfram kernel as a subprocess, sends it FullForm
requests and decodes the replies into symbolic expressions.

Settings come from defaults, an optional YAML file (--config), MATHLINK_*
environment variables and finally the flags below.`,
	SilenceUsage: true,
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("program", "", "Kernel executable (default wolfram)")
	rootCmd.PersistentFlags().Bool("pty", false, "Run the kernel on a pseudo-terminal")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// loadConfig applies the persistent flags over the file and environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("program") {
		cfg.Kernel.Program, _ = cmd.Flags().GetString("program")
	}
	if cmd.Flags().Changed("pty") {
		cfg.Kernel.PTY, _ = cmd.Flags().GetBool("pty")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
	}
	return cfg, cfg.Validate()
}

func openRuntime(cmd *cobra.Command, reg prometheus.Registerer) (*cli.Runtime, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	rt, err := cli.Open(cmd.Context(), cfg, reg)
	return rt, cfg, err
}
