package voice

import (
	"errors"
	"log"
	"sync"
)

// ErrSpeechUnsupported signals that the platform has no speech-input
// capability. Callers surface a notice and disable the microphone.
var ErrSpeechUnsupported = errors.New("speech recognition is not supported on this platform")

// InputBridge converts capture-session lifecycle events into a single
// pending transcript consumable by the dialogue engine. One capture session
// may be open at a time; a received transcript is delivered exactly once.
type InputBridge struct {
	mu         sync.Mutex
	recognizer Recognizer
	listening  bool
	pending    string
	hasPending bool
}

// NewInputBridge wraps a recognizer.
func NewInputBridge(rec Recognizer) *InputBridge {
	return &InputBridge{recognizer: rec}
}

// Supported reports whether speech input is available at all.
func (b *InputBridge) Supported() bool {
	return b.recognizer.Supported()
}

// Listening reports whether a capture session is open.
func (b *InputBridge) Listening() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listening
}

// StartListening opens a capture session. It is a no-op while one is already
// open and fails fast when the capability is absent.
func (b *InputBridge) StartListening() error {
	if !b.recognizer.Supported() {
		return ErrSpeechUnsupported
	}

	b.mu.Lock()
	if b.listening {
		b.mu.Unlock()
		return nil
	}
	b.listening = true
	b.mu.Unlock()

	err := b.recognizer.Start(RecognizerEvents{
		OnStart: func() {},
		OnResult: func(transcript string) {
			b.mu.Lock()
			b.pending = transcript
			b.hasPending = true
			b.mu.Unlock()
		},
		OnError: func(code string) {
			log.Printf("[voice] recognition error: %s", code)
			b.mu.Lock()
			b.listening = false
			b.mu.Unlock()
		},
		OnEnd: func() {
			b.mu.Lock()
			b.listening = false
			b.mu.Unlock()
		},
	})
	if err != nil {
		b.mu.Lock()
		b.listening = false
		b.mu.Unlock()
		return err
	}
	return nil
}

// StopListening ends the capture session without discarding an
// already-received transcript.
func (b *InputBridge) StopListening() {
	b.mu.Lock()
	open := b.listening
	b.mu.Unlock()

	if open {
		b.recognizer.Stop()
	}
}

// ConsumeTranscript yields the pending transcript exactly once.
func (b *InputBridge) ConsumeTranscript() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.hasPending {
		return "", false
	}
	transcript := b.pending
	b.pending = ""
	b.hasPending = false
	return transcript, true
}

// ResetTranscript clears any pending transcript. Idempotent.
func (b *InputBridge) ResetTranscript() {
	b.mu.Lock()
	b.pending = ""
	b.hasPending = false
	b.mu.Unlock()
}
