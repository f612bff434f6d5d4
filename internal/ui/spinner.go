// Package ui holds small terminal output helpers shared by the CLI
// commands.
package ui

import (
	"fmt"
	"os"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 100 * time.Millisecond

// Spinner provides progress feedback on stderr for long-running
// operations such as scanning a large project tree. On non-terminal
// output, or when NO_COLOR is set, it degrades to a single static
// line.
type Spinner struct {
	message string
	active  bool
	static  bool
	mu      sync.Mutex
	done    chan struct{}
}

// StartSpinner creates a spinner and starts it immediately.
func StartSpinner(message string) *Spinner {
	s := &Spinner{
		message: message,
		done:    make(chan struct{}),
	}
	s.start()
	return s
}

func (s *Spinner) start() {
	s.mu.Lock()
	s.active = true
	s.static = !stderrIsTerminal() || os.Getenv("NO_COLOR") != ""
	s.mu.Unlock()

	if s.static {
		fmt.Fprintf(os.Stderr, "%s...\n", s.message)
		return
	}

	go func() {
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		i := 0
		for {
			select {
			case <-s.done:
				fmt.Fprintf(os.Stderr, "\r\033[K")
				return
			case <-ticker.C:
				s.mu.Lock()
				if s.active {
					fmt.Fprintf(os.Stderr, "\r%s %s", spinnerFrames[i], s.message)
					i = (i + 1) % len(spinnerFrames)
				}
				s.mu.Unlock()
			}
		}
	}()
}

// Update changes the spinner message while it's running.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop halts the spinner and prints a final status line: a check mark
// when ok, a cross otherwise. An empty message suppresses the line.
func (s *Spinner) Stop(ok bool, message string) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	static := s.static
	s.mu.Unlock()

	if !static {
		close(s.done)
		time.Sleep(spinnerInterval) // let the goroutine clear the line
	}

	if message == "" {
		return
	}
	mark := "✓"
	if !ok {
		mark = "✗"
	}
	fmt.Fprintf(os.Stderr, "%s %s %s\n", mark, s.message, message)
}

// WithSpinner runs fn under a spinner, reporting success or the error
// text as the final status.
func WithSpinner(message string, fn func() error) error {
	s := StartSpinner(message)
	if err := fn(); err != nil {
		s.Stop(false, err.Error())
		return err
	}
	s.Stop(true, "done")
	return nil
}

func stderrIsTerminal() bool {
	fileInfo, _ := os.Stderr.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
