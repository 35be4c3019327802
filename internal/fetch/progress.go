package fetch

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"sync"
	"time"

	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// The service reports no transfer progress of its own, so the bar is a
// client-side illusion: a small random step every tick, held below the
// ceiling until the response arrives.
const (
	illusionTickInterval = 300 * time.Millisecond
	illusionMaxStep      = 4
)

type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarn
	LogError
)

// Renderer receives progress and log output during a download.
type Renderer interface {
	Start(label string)
	Update(percent float64)
	Finish()
	Log(level LogLevel, msg string)
}

// startIllusion begins the fabricated progress ticker for the session.
// The returned stop function is idempotent and must be called on every
// exit path so the ticker never leaks.
func startIllusion(s *Session, r Renderer) (stop func()) {
	done := make(chan struct{})
	var once sync.Once

	go func() {
		ticker := time.NewTicker(illusionTickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				percent := s.advanceProgress(float64(1 + rand.Intn(illusionMaxStep))) //nolint:gosec
				if r != nil {
					r.Update(percent)
				}
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}

// NopRenderer discards all output. Used with -quiet and in tests.
type NopRenderer struct{}

func (NopRenderer) Start(string)         {}
func (NopRenderer) Update(float64)       {}
func (NopRenderer) Finish()              {}
func (NopRenderer) Log(LogLevel, string) {}

var (
	labelStyle = lipgloss.NewStyle().Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	faintStyle = lipgloss.NewStyle().Faint(true)
)

// TerminalRenderer draws a single-line progress bar on stderr.
type TerminalRenderer struct {
	mu    sync.Mutex
	out   io.Writer
	bar   progressbar.Model
	label string
	live  bool
}

func NewTerminalRenderer() *TerminalRenderer {
	return &TerminalRenderer{
		out: os.Stderr,
		bar: progressbar.New(
			progressbar.WithDefaultGradient(),
			progressbar.WithWidth(32),
			progressbar.WithoutPercentage(),
		),
	}
}

func (r *TerminalRenderer) Start(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.label = label
	r.live = true
}

func (r *TerminalRenderer) Update(percent float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live {
		return
	}
	fmt.Fprintf(r.out, "\r%s %s %3.0f%%",
		labelStyle.Render(truncateLabel(r.label, 40)),
		r.bar.ViewAs(percent/100),
		percent,
	)
}

func (r *TerminalRenderer) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live {
		return
	}
	r.live = false
	fmt.Fprint(r.out, "\n")
}

func (r *TerminalRenderer) Log(level LogLevel, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch level {
	case LogDebug:
		msg = faintStyle.Render(msg)
	case LogWarn:
		msg = warnStyle.Render(msg)
	case LogError:
		msg = errorStyle.Render(msg)
	}
	fmt.Fprintln(r.out, msg)
}

func truncateLabel(label string, max int) string {
	if len(label) <= max {
		return label
	}
	if max <= 3 {
		return label[:max]
	}
	return label[:max-3] + "..."
}
