// Command askctl talks to a running assistant service: it asks questions,
// manages the reference context and browses the bundled dictionaries. It
// can also generate new dictionaries directly against the configured LLM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

var version = "dev"

var (
	serverURL string
	noColor   bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "askctl",
		Short:         "Ask questions and manage context on an assistant server",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	server := os.Getenv("ASSISTANT_URL")
	if server == "" {
		server = defaultServer
	}
	root.PersistentFlags().StringVar(&serverURL, "server", server, "assistant base URL (env ASSISTANT_URL)")
	root.PersistentFlags().BoolVar(&noColor, "no-color", os.Getenv("NO_COLOR") != "", "disable colored output")

	root.AddCommand(newAskCmd(), newContextCmd(), newDictCmd())
	return root
}
