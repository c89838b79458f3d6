// Package progress defines the small reporting capability the pipeline
// stages depend on (spec.md §9 design notes), and a zerolog-backed
// console implementation adapted from walteh-copyrc's pkg/log.
package progress

import (
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Sink is the capability every pipeline stage depends on: set a
// human-visible symbol for the current unit of work, log a line, and
// reset between stages. Core code never depends on a concrete UI.
type Sink interface {
	SetSymbol(symbol string)
	Log(msg string)
	Reset()
}

// ConsoleSink renders progress through a structured zerolog logger, mirroring
// the mutex-guarded Logger the teacher's sibling corpus (walteh-copyrc)
// uses for its own operation log.
type ConsoleSink struct {
	log zerolog.Logger
	mu  sync.Mutex
	sym string
}

// NewConsoleSink builds a ConsoleSink writing to w at the given level.
func NewConsoleSink(w io.Writer, level zerolog.Level) *ConsoleSink {
	return &ConsoleSink{
		log: zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger().Level(level),
	}
}

func (c *ConsoleSink) SetSymbol(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sym = symbol
}

func (c *ConsoleSink) Log(msg string) {
	c.mu.Lock()
	sym := c.sym
	c.mu.Unlock()
	c.log.Info().Str("symbol", sym).Msg(msg)
}

func (c *ConsoleSink) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sym = ""
}

// Discard is a no-op Sink, used by tests and library callers that don't
// want progress output.
type Discard struct{}

func (Discard) SetSymbol(string) {}
func (Discard) Log(string)       {}
func (Discard) Reset()           {}
