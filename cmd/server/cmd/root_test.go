package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		expectedOutput string
		expectError    bool
	}{
		{
			name:           "help flag",
			args:           []string{"--help"},
			expectedOutput: "Eventra server",
			expectError:    false,
		},
		{
			name:           "short help flag",
			args:           []string{"-h"},
			expectedOutput: "Eventra server",
			expectError:    false,
		},
		{
			name:           "invalid flag",
			args:           []string{"--invalid-flag"},
			expectedOutput: "unknown flag: --invalid-flag",
			expectError:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Fresh root command per test to avoid state pollution
			cmd := newRootCommand()

			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			output := buf.String()

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if !strings.Contains(output, tt.expectedOutput) {
				t.Errorf("expected output to contain %q, got:\n%s", tt.expectedOutput, output)
			}
		})
	}
}

func TestRootCommandPersistentFlags(t *testing.T) {
	cmd := newRootCommand()

	flags := []string{"log-level", "log-format"}
	for _, flag := range flags {
		if f := cmd.PersistentFlags().Lookup(flag); f == nil {
			t.Errorf("expected persistent flag %q to be defined", flag)
		}
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	cmd := newRootCommand()

	expectedCommands := []string{"serve", "migrate", "version"}
	for _, cmdName := range expectedCommands {
		found := false
		for _, subCmd := range cmd.Commands() {
			if subCmd.Name() == cmdName {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand %q to be registered", cmdName)
		}
	}
}

// newRootCommand creates a fresh root command for testing
func newRootCommand() *cobra.Command {
	testRootCmd := &cobra.Command{
		Use:   "server",
		Short: "Eventra server - events platform backend",
		Long: `Eventra server is the backend for the Eventra events platform.

The server supports:
- Account registration with email verification
- JWT login with access and refresh tokens
- Event creation, search, filtering and time-window queries
- Attendee registration for events`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// For tests, don't actually run the server
			return nil
		},
	}

	var testLogLevel, testLogFormat string
	testRootCmd.PersistentFlags().StringVar(&testLogLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	testRootCmd.PersistentFlags().StringVar(&testLogFormat, "log-format", "", "log format (json, console) (default: json)")

	// Commands are package-level variables; detach them from any previous
	// parent to avoid state pollution between tests.
	if versionCmd.HasParent() {
		versionCmd.Parent().RemoveCommand(versionCmd)
	}
	if migrateCmd.HasParent() {
		migrateCmd.Parent().RemoveCommand(migrateCmd)
	}

	testRootCmd.AddCommand(versionCmd)
	testRootCmd.AddCommand(migrateCmd)
	testRootCmd.AddCommand(newServeCommand())

	return testRootCmd
}

// newServeCommand creates a serve command for testing (doesn't start server)
func newServeCommand() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Eventra HTTP server",
		Long:  `Start the Eventra HTTP server and begin accepting API requests.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// For tests, don't actually start the server
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "server host address (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "server port (default: 8080)")

	return cmd
}
