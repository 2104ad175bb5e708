package cmd

import (
	"os"

	"campaignd/internal/approval"
	"campaignd/internal/config"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfigInvalid indicates the manifest or daemon config was rejected.
	ExitCodeConfigInvalid = 2
	// ExitCodeApprovalDenied indicates a tool call needed confirmation and none was given.
	ExitCodeApprovalDenied = 3
)

// rootCmd is the base command for the campaignd application. It is the
// entry point when the binary is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "campaignd",
	Short: "Run campaign automation tool servers and the live state feed",
	Long: `campaignd manages the external tool servers an agent-driven campaign
uses (CRM search, lead enrichment, outreach), projects the campaign's
event stream into live snapshots and pushes them to connected UIs.`,
	// SilenceUsage prevents Cobra from printing the usage message on
	// errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. Called from main to
// inject the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application. Called by
// main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "campaignd version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps error types to semantic exit codes for scripting.
func getExitCode(err error) int {
	if config.IsConfigInvalid(err) {
		return ExitCodeConfigInvalid
	}
	if approval.IsNotApproved(err) {
		return ExitCodeApprovalDenied
	}
	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}
