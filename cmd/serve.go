package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"campaignd/internal/app"
	"campaignd/internal/config"
	"campaignd/internal/inputs"

	"github.com/spf13/cobra"
)

// serveConfigPath locates the daemon configuration file. When empty the
// built-in defaults are used.
var serveConfigPath string

// serveManifestPath overrides the manifest location from the config file.
var serveManifestPath string

// serveDebug enables verbose logging across the application.
var serveDebug bool

// serveNoPrompt skips interactive input collection. Inputs must then be
// supplied via CAMPAIGND_INPUT_* environment variables.
var serveNoPrompt bool

// serveCmd starts the daemon: launches the configured tool servers,
// runs the projection pipeline and serves the sync feed.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the campaignd daemon",
	Long: `Starts the campaignd daemon. It launches every enabled tool server
from the manifest, keeps them healthy, folds the campaign event stream
into live snapshots and serves them to UIs over the sync feed.

Declared inputs (API keys, endpoints) are resolved from
CAMPAIGND_INPUT_<ID> environment variables first; anything still
missing is prompted for on startup. Servers whose inputs stay
unresolved fail to launch individually, the rest of the manifest is
unaffected.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := app.LoadConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if serveManifestPath != "" {
		cfg.ManifestPath = serveManifestPath
	}
	if serveDebug {
		cfg.Debug = true
	}

	var store inputs.ValueStore = inputs.EnvStore{}
	if !serveNoPrompt {
		// Peek at the manifest to know which inputs need prompting. The
		// application loads it again itself during bootstrap.
		manifest, _, err := config.LoadManifest(cfg.ManifestPath)
		if err != nil {
			return fmt.Errorf("failed to load manifest from %s: %w", cfg.ManifestPath, err)
		}
		store, err = collectInputs(manifest, store)
		if err != nil {
			return err
		}
	}

	application, err := app.NewApplication(cfg, store)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to the daemon config file")
	serveCmd.Flags().StringVar(&serveManifestPath, "manifest", "", "Path to the tool server manifest (overrides config)")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().BoolVar(&serveNoPrompt, "no-prompt", false, "Never prompt for inputs; rely on environment variables only")
}
