// Package fetch drives the download service's multi-step protocol:
// initiate, interpret the response, optionally pull a playlist archive,
// and save the received artifact.
package fetch

import "sync"

type State string

const (
	StateIdle        State = "idle"
	StateDownloading State = "downloading"
	StateComplete    State = "complete"
	StateFailed      State = "failed"
)

const progressCeiling = 90

// Session tracks one in-flight or completed download. Progress only
// moves forward: the illusion ticker advances it toward 90 and the real
// response jumps it to 100.
type Session struct {
	mu        sync.Mutex
	state     State
	progress  float64
	artifact  []byte
	filename  string
	tags      Tags
	err       error
	savedPath string
}

func NewSession() *Session {
	return &Session{state: StateIdle}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

func (s *Session) Artifact() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.artifact
}

func (s *Session) Filename() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filename
}

func (s *Session) Tags() Tags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tags
}

func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Reset returns the session to idle, dropping any prior outcome. Used
// when the user changes input and the old session no longer applies.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.progress = 0
	s.artifact = nil
	s.filename = ""
	s.tags = Tags{}
	s.err = nil
	s.savedPath = ""
}

// begin transitions to downloading. Returns false while another
// download is already running on this session.
func (s *Session) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDownloading {
		return false
	}
	s.state = StateDownloading
	s.progress = 0
	s.artifact = nil
	s.filename = ""
	s.tags = Tags{}
	s.err = nil
	return true
}

// advanceProgress bumps the fabricated progress, capped below 100 so
// only a real response can finish the bar.
func (s *Session) advanceProgress(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateDownloading {
		return s.progress
	}
	s.progress += delta
	if s.progress > progressCeiling {
		s.progress = progressCeiling
	}
	return s.progress
}

func (s *Session) complete(artifact []byte, filename string, tags Tags) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateComplete
	s.progress = 100
	s.artifact = artifact
	s.filename = filename
	s.tags = tags
	s.err = nil
}

// fail records the error and clears any partial artifact so a failed
// session can never be saved.
func (s *Session) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFailed
	s.artifact = nil
	s.filename = ""
	s.err = err
}

func (s *Session) saved() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savedPath
}

func (s *Session) markSaved(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.savedPath = path
}
