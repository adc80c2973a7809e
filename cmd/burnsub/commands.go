package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/leonardotrapani/burnsub/internal/bus"
	"github.com/leonardotrapani/burnsub/internal/config"
	"github.com/leonardotrapani/burnsub/internal/daemon"
	"github.com/leonardotrapani/burnsub/internal/deps"
	"github.com/leonardotrapani/burnsub/internal/models/whisper"
	"github.com/leonardotrapani/burnsub/internal/provider"
	"github.com/leonardotrapani/burnsub/internal/tui"
	"github.com/spf13/cobra"
)

func watchCmd() *cobra.Command {
	var scan bool
	var settle time.Duration

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Subtitle every video dropped into a directory",
		Long: `Watch a directory and subtitle each new video file, one at a time.
Results are written to <dir>/` + daemon.OutputDirName + `/. The config file is
reloaded between jobs when it changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath()
			if err != nil {
				return err
			}
			manager, err := config.NewManager(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg := manager.GetConfig()
			if err := deps.RequireAll(deps.CheckAll(cfg.Transcription.Provider == provider.ProviderWhisperCpp)); err != nil {
				return err
			}

			b, err := bus.Default()
			if err != nil {
				return err
			}
			dir, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			d := daemon.New(manager, b, daemon.DefaultJobFactory, daemon.Options{
				Dir:          dir,
				Settle:       settle,
				ScanExisting: scan,
			})
			return d.Run()
		},
	}

	cmd.Flags().BoolVar(&scan, "scan", false, "also subtitle videos already in the directory")
	cmd.Flags().DurationVar(&settle, "settle", 2*time.Second, "quiet period after the last write before a file is processed")

	return cmd
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration editor for burnsub.
This will guide you through setting up:
- Provider API keys (OpenAI, Groq)
- Speech recognition and translation
- Caption and rendering style
- Notification preferences`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure(cmd.OutOrStdout())
		},
	}
}

func runConfigure(out io.Writer) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	result, err := tui.Run(cfg)
	if err != nil {
		return fmt.Errorf("configuration editor error: %w", err)
	}

	if result.Cancelled {
		fmt.Fprintln(out, "Configuration cancelled.")
		return nil
	}

	if err := result.Config.Validate(); err != nil {
		fmt.Fprintf(out, "Configuration validation failed: %v\n", err)
		return err
	}

	if err := config.Save(result.Config, path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration saved successfully!")
	fmt.Fprintf(out, "Config file location: %s\n", path)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next: burnsub run <video>")
	return nil
}

func depsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check the external programs burnsub uses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			results := deps.CheckAll(cfg.Transcription.Provider == provider.ProviderWhisperCpp)
			fmt.Fprintln(cmd.OutOrStdout(), renderDepsTable(results))
			return deps.RequireAll(results)
		},
	}
}

func renderDepsTable(results []deps.Result) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		state := "missing"
		if r.Installed {
			state = "ok"
		}
		need := "optional"
		if r.Required {
			need = "required"
		}
		rows = append(rows, []string{r.Name, state, need, r.Version, r.Purpose})
	}
	return renderTable([]string{"Program", "Status", "Need", "Version", "Used for"}, rows, nil)
}

func modelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage local whisper.cpp models",
	}

	cmd.AddCommand(modelListCmd())
	cmd.AddCommand(modelDownloadCmd())
	cmd.AddCommand(modelRemoveCmd())

	return cmd
}

func modelListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List whisper.cpp models and their install state",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := whisper.DefaultStore()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderModelTable(store))
			fmt.Fprintf(cmd.OutOrStdout(), "models directory: %s\n", store.Dir)
			return nil
		},
	}
}

func renderModelTable(store *whisper.Store) string {
	models := whisper.ListModels()
	rows := make([][]string, 0, len(models))
	for _, m := range models {
		installed := ""
		if store.IsInstalled(m.ID) {
			installed = "yes"
		}
		rows = append(rows, []string{m.ID, m.Name, m.Size, installed})
	}
	return renderTable([]string{"Model", "Name", "Size", "Installed"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft})
}

func modelDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <model-name>",
		Short: "Download a whisper.cpp model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := whisper.DefaultStore()
			if err != nil {
				return err
			}
			return runModelDownload(cmd, store, args[0])
		},
	}
}

func runModelDownload(cmd *cobra.Command, store *whisper.Store, modelName string) error {
	out := cmd.OutOrStdout()
	info := whisper.GetModel(modelName)
	if info == nil {
		return fmt.Errorf("unknown model: %s (known: %s)", modelName, strings.Join(modelIDs(), ", "))
	}

	if store.IsInstalled(modelName) {
		fmt.Fprintf(out, "model '%s' is already installed at %s\n", modelName, store.Path(modelName))
		return nil
	}

	fmt.Fprintf(out, "downloading %s (%s)...\n", modelName, info.Size)

	var lastPercent int
	err := store.Download(cmd.Context(), modelName, func(downloaded, total int64) {
		if total > 0 {
			percent := int(downloaded * 100 / total)
			if percent >= lastPercent+10 {
				fmt.Fprintf(out, "%d%% ", percent)
				lastPercent = percent
			}
		}
	})
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	fmt.Fprintf(out, "\ndownload complete: %s\n", store.Path(modelName))
	return nil
}

func modelRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <model-name>",
		Short: "Remove a downloaded whisper.cpp model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := whisper.DefaultStore()
			if err != nil {
				return err
			}
			modelName := args[0]
			if whisper.GetModel(modelName) == nil {
				return fmt.Errorf("unknown model: %s", modelName)
			}
			if !store.IsInstalled(modelName) {
				return fmt.Errorf("model '%s' is not installed", modelName)
			}
			if err := store.Remove(modelName); err != nil {
				return fmt.Errorf("failed to remove model: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "model '%s' removed successfully\n", modelName)
			return nil
		},
	}
}

func modelIDs() []string {
	var ids []string
	for _, m := range whisper.ListModels() {
		ids = append(ids, m.ID)
	}
	return ids
}
