package voice

import (
	"log"
	"math"
	"math/rand"
	"sync"
	"time"
)

// Activity is the ephemeral "is anything being spoken" signal broadcast to
// visual subscribers. Amplitude is synthetic; no real audio is analyzed.
type Activity struct {
	Active    bool
	Amplitude float64
}

const (
	defaultResampleInterval = 100 * time.Millisecond
	startAmplitude          = 0.7
)

// Coordinator owns the speech-output activity signal. It drives a fabricated
// amplitude envelope while an utterance plays and fans every change out to
// all subscribers. Only one utterance lifecycle is logically active at a
// time; starting a new one pre-empts the old with no queueing.
type Coordinator struct {
	mu          sync.Mutex
	synth       Synthesizer
	subscribers map[int]func(Activity)
	nextSub     int
	generation  uint64

	// interval and now are injectable so the resampling loop is testable
	// deterministically.
	interval time.Duration
	now      func() time.Time
}

// NewCoordinator wraps a synthesizer with activity broadcasting.
func NewCoordinator(synth Synthesizer) *Coordinator {
	return &Coordinator{
		synth:       synth,
		subscribers: make(map[int]func(Activity)),
		interval:    defaultResampleInterval,
		now:         time.Now,
	}
}

// Subscribe registers a callback for every activity change and returns the
// matching unsubscribe. Subscribers are independent; removing one does not
// affect the others.
func (c *Coordinator) Subscribe(fn func(Activity)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

func (c *Coordinator) broadcast(a Activity) {
	c.mu.Lock()
	fns := make([]func(Activity), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(a)
	}
}

// current reports whether gen is still the live utterance generation.
func (c *Coordinator) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation == gen
}

// Speak pre-empts any in-flight utterance and begins a new speech-output
// lifecycle: an active broadcast on start, periodic synthetic amplitude
// samples while speaking, and a final inactive broadcast on end or error.
// Unsupported synthesis degrades to a no-op.
func (c *Coordinator) Speak(text string, rate float64) {
	if !c.synth.Supported() {
		return
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	c.synth.Speak(Utterance{Text: text, Rate: rate, Pitch: 1, Volume: 1}, Events{
		OnStart: func() {
			if !c.current(gen) {
				return
			}
			c.broadcast(Activity{Active: true, Amplitude: startAmplitude})
			go c.resample(gen)
		},
		OnEnd: func() {
			if !c.current(gen) {
				return
			}
			c.broadcast(Activity{Active: false})
		},
		OnError: func(err error) {
			log.Printf("[voice] synthesis error: %v", err)
			if !c.current(gen) {
				return
			}
			c.broadcast(Activity{Active: false})
		},
	})
}

// Cancel force-stops the active utterance and broadcasts inactive
// immediately. The generation bump retires any running resample loop.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	c.generation++
	c.mu.Unlock()

	c.synth.Cancel()
	c.broadcast(Activity{Active: false})
}

// resample emits a fresh synthetic amplitude each tick for as long as gen is
// the live generation and the synthesizer still reports speech. Liveness is
// re-checked immediately before each broadcast so a stale loop can never
// emit after pre-emption.
func (c *Coordinator) resample(gen uint64) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for range ticker.C {
		if !c.current(gen) || !c.synth.Speaking() {
			return
		}

		amplitude := c.sampleAmplitude()

		if !c.current(gen) {
			return
		}
		c.broadcast(Activity{Active: true, Amplitude: amplitude})
	}
}

// sampleAmplitude fabricates a plausible envelope: bounded randomness plus a
// slow sinusoid of wall-clock time, clamped to [0.2, 1.0].
func (c *Coordinator) sampleAmplitude() float64 {
	base := 0.4 + rand.Float64()*0.4
	wave := math.Sin(float64(c.now().UnixMilli())*0.005) * 0.2
	return math.Max(0.2, math.Min(1.0, base+wave))
}
