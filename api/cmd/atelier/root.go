package atelier

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var Fatal = FatalErrorHandler

func init() { //nolint:gochecknoinits
	NewRootCmd()
}

func NewRootCmd() *cobra.Command {
	RootCmd := &cobra.Command{
		Use:   getCommandLineExecutable(),
		Short: "Atelier",
		Long:  `Workspace session orchestration for AI-assisted development`,
	}

	RootCmd.AddCommand(newServeCmd())
	RootCmd.AddCommand(newStatusCommand())
	RootCmd.AddCommand(newVersionCommand())

	return RootCmd
}

func Execute() {
	RootCmd := NewRootCmd()
	RootCmd.SetContext(context.Background())
	RootCmd.SetOutput(os.Stdout)

	// Check for ATELIER_COMMAND environment variable to support air hot reloading
	if atelierCmd := os.Getenv("ATELIER_COMMAND"); atelierCmd != "" {
		// Split the command and inject it into os.Args
		cmdParts := strings.Fields(atelierCmd)
		if len(cmdParts) > 0 {
			// Replace os.Args to include the subcommand
			newArgs := []string{os.Args[0]}
			newArgs = append(newArgs, cmdParts...)
			os.Args = newArgs
		}
	}

	if err := RootCmd.Execute(); err != nil {
		Fatal(RootCmd, err.Error(), 1)
	}
}
