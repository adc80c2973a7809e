package main

import (
	"fmt"
	"os"

	"github.com/leonardotrapani/burnsub/internal/bus"
	"github.com/leonardotrapani/burnsub/internal/config"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "burnsub",
	Short:        "Burn translated English subtitles into a video",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/burnsub/config.toml)")

	rootCmd.AddCommand(
		runCmd(),
		watchCmd(),
		statusCmd(),
		stopCmd(),
		versionCmd(),
		configureCmd(),
		depsCmd(),
		modelCmd(),
	)
}

// resolveConfigPath returns --config or the default location
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

func loadConfig() (*config.Config, string, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, path, nil
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of a running watcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendBusCommand(cmd, 's', "failed to get status")
		},
	}
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a running watcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendBusCommand(cmd, 'q', "failed to stop watcher")
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the burnsub version",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "burnsub %s (protocol %s)\n", Version, bus.ProtoVer)
			b, err := bus.Default()
			if err != nil {
				return nil
			}
			if resp, err := b.SendCommand('v'); err == nil {
				fmt.Fprintf(out, "watcher: %s\n", resp)
			}
			return nil
		},
	}
}

func sendBusCommand(cmd *cobra.Command, c byte, failure string) error {
	b, err := bus.Default()
	if err != nil {
		return err
	}
	resp, err := b.SendCommand(c)
	if err != nil {
		return fmt.Errorf("%s: %w (is `burnsub watch` running?)", failure, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp)
	return nil
}
