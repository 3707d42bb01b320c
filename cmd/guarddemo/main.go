// Command guarddemo exercises the execution guard against synthetic work:
// each limit in isolation, and a background monitor killing a slow task.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()

	root := &cobra.Command{
		Use:   "guarddemo",
		Short: "Demonstrate execution safety limits",
	}
	root.AddCommand(limitsCmd(logger))
	root.AddCommand(monitorCmd(logger))

	if err := root.Execute(); err != nil {
		logger.Fatal().Err(err).Msg("demo failed")
	}
}
