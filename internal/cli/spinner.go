package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a status line on a terminal while a blocking step runs.
// On other writers it stays silent, so piped output and logs are clean.
type spinner struct {
	w       io.Writer
	animate bool

	mu    sync.Mutex
	msg   string
	width int

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// startSpinner starts a spinner on stderr that stops when ctx is cancelled.
func startSpinner(ctx context.Context, msg string) *spinner {
	return startSpinnerOn(ctx, os.Stderr, isTerminal(os.Stderr), msg)
}

func startSpinnerOn(ctx context.Context, w io.Writer, animate bool, msg string) *spinner {
	s := &spinner{
		w:       w,
		animate: animate,
		msg:     msg,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.done)
	if !s.animate {
		select {
		case <-ctx.Done():
		case <-s.stop:
		}
		return
	}

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	for i := 0; ; i++ {
		s.draw(spinnerFrames[i%len(spinnerFrames)])
		select {
		case <-ctx.Done():
			s.clear()
			return
		case <-s.stop:
			s.clear()
			return
		case <-ticker.C:
		}
	}
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.msg)
	s.width = max(s.width, len(s.msg)+2)
	fmt.Fprintf(s.w, "\r%s", line)
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	}
}

// Update replaces the status message.
func (s *spinner) Update(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}

// Stop ends the animation and clears the line. It is safe to call more than
// once.
func (s *spinner) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}

// Fail stops the spinner and prints msg as an error.
func (s *spinner) Fail(msg string) {
	s.Stop()
	printError("%s", msg)
}
