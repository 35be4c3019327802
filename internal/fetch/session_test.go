package fetch

import "testing"

func TestSessionProgressCeiling(t *testing.T) {
	s := NewSession()
	if !s.begin() {
		t.Fatal("begin() = false on idle session")
	}

	for i := 0; i < 100; i++ {
		s.advanceProgress(4)
	}
	if got := s.Progress(); got != progressCeiling {
		t.Errorf("Progress() = %v, want capped at %v", got, progressCeiling)
	}
}

func TestSessionProgressFrozenAfterTerminal(t *testing.T) {
	s := NewSession()
	s.begin()
	s.complete([]byte("x"), "x.mp3", Tags{})

	if got := s.advanceProgress(5); got != 100 {
		t.Errorf("advanceProgress after complete = %v, want 100", got)
	}
	if got := s.Progress(); got != 100 {
		t.Errorf("Progress() = %v, want 100", got)
	}
}

func TestSessionBeginWhileDownloading(t *testing.T) {
	s := NewSession()
	if !s.begin() {
		t.Fatal("first begin() = false")
	}
	if s.begin() {
		t.Error("begin() while downloading = true, want false")
	}
}

func TestSessionFailClearsArtifact(t *testing.T) {
	s := NewSession()
	s.begin()
	s.complete([]byte("data"), "x.mp3", Tags{Title: "X"})
	s.begin()
	s.fail(errTest)

	if s.State() != StateFailed {
		t.Errorf("State() = %v, want failed", s.State())
	}
	if s.Artifact() != nil {
		t.Error("Artifact() not cleared on failure")
	}
	if s.Filename() != "" {
		t.Error("Filename() not cleared on failure")
	}
	if s.Err() == nil {
		t.Error("Err() = nil after failure")
	}
}

func TestSessionReset(t *testing.T) {
	s := NewSession()
	s.begin()
	s.complete([]byte("data"), "x.mp3", Tags{})
	s.markSaved("/tmp/x.mp3")

	s.Reset()
	if s.State() != StateIdle {
		t.Errorf("State() after Reset = %v, want idle", s.State())
	}
	if s.Artifact() != nil || s.Filename() != "" || s.saved() != "" {
		t.Error("Reset left stale session data")
	}
}
