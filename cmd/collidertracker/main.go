// Command collidertracker is the CLI entry point for the engine core:
// render a project to a WAV file, or play it back while forwarding MIDI
// and OSC meter levels to external collaborators (spec §6's "external
// interfaces" are all this binary owns; the engine itself is the
// library under internal/).
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	debugLog string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "collidertracker",
		Short: "A buffer-quantized MIDI/audio tracker engine core",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setUpLogging(debugLog)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&debugLog, "debug", "", "write debug logs to this file; empty disables logging")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newPlayCmd())
	return root
}

func setUpLogging(path string) {
	if path == "" {
		log.SetOutput(io.Discard)
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not open debug log %s: %v\n", path, err)
		return
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
