package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var frames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

// Spinner displays an animated progress indicator on stderr. When stderr is
// not a terminal (piped output, cron) it degrades to printing the message
// once per Start/Update instead of animating.
type Spinner struct {
	mu   sync.Mutex
	w    io.Writer
	tty  bool
	msg  string
	done chan struct{}
}

// NewSpinner creates a new Spinner (not yet running).
func NewSpinner() *Spinner {
	return &Spinner{w: os.Stderr, tty: isTerminal(os.Stderr)}
}

// Start begins the spinner with the given message.
func (s *Spinner) Start(msg string) {
	s.mu.Lock()
	s.msg = msg
	if !s.tty {
		fmt.Fprintln(s.w, msg)
		s.mu.Unlock()
		return
	}
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.run()
}

// Update changes the spinner message while it's running.
func (s *Spinner) Update(msg string) {
	s.mu.Lock()
	s.msg = msg
	if !s.tty {
		fmt.Fprintln(s.w, msg)
	}
	s.mu.Unlock()
}

// Stop halts the spinner and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	tty := s.tty
	s.mu.Unlock()

	if tty {
		fmt.Fprintf(s.w, "\r\033[K")
	}
}

func (s *Spinner) run() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	tick := time.NewTicker(80 * time.Millisecond)
	defer tick.Stop()

	i := 0
	for {
		select {
		case <-done:
			return
		case <-tick.C:
			s.mu.Lock()
			msg := s.msg
			s.mu.Unlock()
			fmt.Fprintf(s.w, "\r\033[K%c %s", frames[i%len(frames)], msg)
			i++
		}
	}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
