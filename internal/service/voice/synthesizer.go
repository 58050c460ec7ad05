package voice

import (
	"fmt"
	"log"
	"os/exec"
	"sync"
)

// Utterance carries one speech-output request.
type Utterance struct {
	Text   string
	Rate   float64
	Pitch  float64
	Volume float64
	Voice  string
}

// Events are the lifecycle callbacks of one utterance. Exactly one of OnEnd
// or OnError fires after OnStart.
type Events struct {
	OnStart func()
	OnEnd   func()
	OnError func(err error)
}

// Synthesizer is the platform speech-output capability. Implementations must
// pre-empt a running utterance when Speak is called again.
type Synthesizer interface {
	Supported() bool
	Speak(utt Utterance, ev Events)
	Cancel()
	Speaking() bool
}

// NullSynthesizer reports the capability as absent; every call is a no-op.
// Used when voice output is disabled so the text flow stays fully usable.
type NullSynthesizer struct{}

func (NullSynthesizer) Supported() bool { return false }

func (NullSynthesizer) Speak(_ Utterance, _ Events) {}

func (NullSynthesizer) Cancel() {}

func (NullSynthesizer) Speaking() bool { return false }

// ExecSynthesizer speaks through a local TTS binary, `say` on macOS or
// `espeak` elsewhere. Cancellation kills the process.
type ExecSynthesizer struct {
	mu      sync.Mutex
	binary  string
	current *exec.Cmd
	active  bool
}

// NewExecSynthesizer feature-detects a usable TTS binary. The returned
// synthesizer reports Supported() == false when none is installed.
func NewExecSynthesizer() *ExecSynthesizer {
	for _, candidate := range []string{"say", "espeak"} {
		if path, err := exec.LookPath(candidate); err == nil && path != "" {
			return &ExecSynthesizer{binary: candidate}
		}
	}
	return &ExecSynthesizer{}
}

func (s *ExecSynthesizer) Supported() bool {
	return s.binary != ""
}

func (s *ExecSynthesizer) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Speak starts the utterance asynchronously, cancelling any in-flight one
// first. Lifecycle events fire from a background goroutine.
func (s *ExecSynthesizer) Speak(utt Utterance, ev Events) {
	if !s.Supported() {
		if ev.OnError != nil {
			ev.OnError(fmt.Errorf("no speech synthesis binary available"))
		}
		return
	}

	s.Cancel()

	cmd := exec.Command(s.binary, s.args(utt)...)

	s.mu.Lock()
	s.current = cmd
	s.active = true
	s.mu.Unlock()

	go func() {
		if ev.OnStart != nil {
			ev.OnStart()
		}

		err := cmd.Run()

		s.mu.Lock()
		stale := s.current != cmd
		if !stale {
			s.current = nil
			s.active = false
		}
		s.mu.Unlock()

		// A pre-empted utterance reports nothing; the replacement owns the
		// lifecycle now.
		if stale {
			return
		}

		if err != nil {
			if ev.OnError != nil {
				ev.OnError(err)
			}
			return
		}
		if ev.OnEnd != nil {
			ev.OnEnd()
		}
	}()
}

// Cancel force-stops the active utterance, if any.
func (s *ExecSynthesizer) Cancel() {
	s.mu.Lock()
	cmd := s.current
	s.current = nil
	s.active = false
	s.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		if err := cmd.Process.Kill(); err != nil {
			log.Printf("[voice] failed to stop synthesis process: %v", err)
		}
	}
}

func (s *ExecSynthesizer) args(utt Utterance) []string {
	rate := utt.Rate
	if rate <= 0 {
		rate = 1
	}

	switch s.binary {
	case "say":
		// say takes words per minute; ~175 wpm is its default speed.
		return []string{"-r", fmt.Sprintf("%d", int(rate*175)), utt.Text}
	default:
		// espeak takes words per minute too, default 175.
		return []string{"-s", fmt.Sprintf("%d", int(rate*175)), utt.Text}
	}
}
