package progress

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

const spinnerDelay = 100 * time.Millisecond

// Display reports the progress of one step at a time.
type Display struct {
	w       io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols
	quiet   bool

	mu      sync.Mutex
	spinner *spinner.Spinner
	message string
}

// NewDisplay returns a display writing to w. With quiet set nothing is
// written at all.
func NewDisplay(w io.Writer, caps TerminalCapabilities, quiet bool) *Display {
	return &Display{
		w:       w,
		caps:    caps,
		symbols: SelectSymbols(caps),
		quiet:   quiet,
	}
}

// Start begins a step. On a terminal an animated spinner is shown; otherwise
// the message is printed once.
func (d *Display) Start(message string) {
	if d.quiet {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopSpinner()
	d.message = message

	if !d.caps.IsTTY {
		fmt.Fprintf(d.w, "%s...\n", message)
		return
	}

	s := spinner.New(spinner.CharSets[d.symbols.SpinnerSet], spinnerDelay, spinner.WithWriter(d.w))
	s.Suffix = " " + message
	if !d.caps.SupportsColor {
		_ = s.Color("reset")
	}
	s.Start()
	d.spinner = s
}

// Finish ends the current step and prints its outcome.
func (d *Display) Finish(err error) {
	if d.quiet {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopSpinner()
	if d.message == "" {
		return
	}
	if err != nil {
		fmt.Fprintf(d.w, "%s %s\n", d.symbols.Failure, d.message)
	} else if d.caps.IsTTY {
		fmt.Fprintf(d.w, "%s %s\n", d.symbols.Checkmark, d.message)
	}
	d.message = ""
}

func (d *Display) stopSpinner() {
	if d.spinner != nil {
		d.spinner.Stop()
		d.spinner = nil
	}
}

// Run wraps fn in Start/Finish.
func Run[T any](ctx context.Context, d *Display, message string, fn func(context.Context) (T, error)) (T, error) {
	d.Start(message)
	v, err := fn(ctx)
	d.Finish(err)
	return v, err
}
