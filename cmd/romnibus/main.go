// Command romnibus reconciles a ROM-set catalog against a collection of
// candidate files and emits a fixdat for whatever remains incomplete.
package main

import (
	"os"

	"github.com/rs/zerolog"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		logger.Error().Err(err).Msg("romnibus failed")
		os.Exit(1)
	}
}
