package cmd

import (
	"fmt"

	"campaignd/internal/config"
	"campaignd/internal/inputs"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var checkManifestPath string

// checkCmd validates a manifest without starting anything: it reports
// which servers would load, which were rejected and why, and which
// declared inputs the environment already satisfies.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a tool server manifest",
	Long: `Loads and validates the manifest, then prints every server with its
transport and validation result. Rejected servers are listed with the
reason; they would be excluded at serve time while the rest load
normally.

Declared inputs are checked against CAMPAIGND_INPUT_* environment
variables so missing values are visible before starting the daemon.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	manifest, diagnostics, err := config.LoadManifest(checkManifestPath)
	if err != nil {
		return err
	}

	rejected := make(map[string]error, len(diagnostics))
	for _, d := range diagnostics {
		rejected[d.Server] = d.Err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"SERVER", "TRANSPORT", "TARGET", "AUTO-APPROVED", "STATUS"})

	for name, server := range manifest.Servers {
		target := server.Command
		if server.Type == config.TransportHTTP {
			target = server.URL
		}
		status := text.FgGreen.Sprint("ok")
		if server.Disabled {
			status = text.FgYellow.Sprint("disabled")
		}
		t.AppendRow(table.Row{name, server.Type, target, len(server.AutoApprove), status})
	}
	for name, reason := range rejected {
		t.AppendRow(table.Row{name, "", "", "", text.FgRed.Sprintf("rejected: %v", reason)})
	}
	t.Render()

	if len(manifest.Inputs) > 0 {
		it := table.NewWriter()
		it.SetOutputMirror(cmd.OutOrStdout())
		it.SetStyle(table.StyleRounded)
		it.AppendHeader(table.Row{"INPUT", "DESCRIPTION", "SECRET", "RESOLVED"})

		store := inputs.EnvStore{}
		for _, decl := range manifest.Inputs {
			resolved := text.FgYellow.Sprint("prompt")
			if _, ok := store.Lookup(decl); ok {
				resolved = text.FgGreen.Sprint("env")
			}
			it.AppendRow(table.Row{decl.ID, decl.Description, decl.Password, resolved})
		}
		it.Render()
	}

	if len(rejected) > 0 {
		return fmt.Errorf("%d of %d servers rejected", len(rejected), len(manifest.Servers)+len(rejected))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkManifestPath, "manifest", "manifest.yaml", "Path to the tool server manifest")
}
