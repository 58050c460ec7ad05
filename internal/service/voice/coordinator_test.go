package voice

import (
	"sync"
	"testing"
	"time"
)

// fakeSynth hands the lifecycle events back to the test so it can fire them
// at will.
type fakeSynth struct {
	mu         sync.Mutex
	supported  bool
	speaking   bool
	events     Events
	speakCalls int
	cancels    int
}

func (f *fakeSynth) Supported() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.supported
}

func (f *fakeSynth) Speak(_ Utterance, ev Events) {
	f.mu.Lock()
	f.events = ev
	f.speakCalls++
	f.speaking = true
	f.mu.Unlock()
}

func (f *fakeSynth) Cancel() {
	f.mu.Lock()
	f.cancels++
	f.speaking = false
	f.mu.Unlock()
}

func (f *fakeSynth) Speaking() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.speaking
}

func (f *fakeSynth) lastEvents() Events {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events
}

func (f *fakeSynth) setSpeaking(v bool) {
	f.mu.Lock()
	f.speaking = v
	f.mu.Unlock()
}

// recorder collects broadcast activity thread-safely.
type recorder struct {
	mu   sync.Mutex
	got  []Activity
	sink chan Activity
}

func newRecorder() *recorder {
	return &recorder{sink: make(chan Activity, 64)}
}

func (r *recorder) record(a Activity) {
	r.mu.Lock()
	r.got = append(r.got, a)
	r.mu.Unlock()
	select {
	case r.sink <- a:
	default:
	}
}

func (r *recorder) all() []Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Activity, len(r.got))
	copy(out, r.got)
	return out
}

func (r *recorder) wait(t *testing.T) Activity {
	t.Helper()
	select {
	case a := <-r.sink:
		return a
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for activity broadcast")
		return Activity{}
	}
}

func TestSpeakBroadcastsStartActivity(t *testing.T) {
	synth := &fakeSynth{supported: true}
	c := NewCoordinator(synth)
	rec := newRecorder()
	defer c.Subscribe(rec.record)()

	c.Speak("hello", 1.2)
	synth.lastEvents().OnStart()

	a := rec.wait(t)
	if !a.Active {
		t.Fatal("start broadcast not active")
	}
	if a.Amplitude != startAmplitude {
		t.Fatalf("start amplitude = %v, want %v", a.Amplitude, startAmplitude)
	}
}

func TestSpeakUnsupportedIsNoOp(t *testing.T) {
	synth := &fakeSynth{supported: false}
	c := NewCoordinator(synth)
	rec := newRecorder()
	defer c.Subscribe(rec.record)()

	c.Speak("hello", 1.2)

	if synth.speakCalls != 0 {
		t.Fatal("unsupported synthesizer was asked to speak")
	}
	if len(rec.all()) != 0 {
		t.Fatal("unsupported speak broadcast activity")
	}
}

func TestResampleEmitsBoundedAmplitudes(t *testing.T) {
	synth := &fakeSynth{supported: true}
	c := NewCoordinator(synth)
	c.interval = 2 * time.Millisecond
	rec := newRecorder()
	defer c.Subscribe(rec.record)()

	c.Speak("hello", 1.2)
	synth.lastEvents().OnStart()
	rec.wait(t) // start broadcast

	for i := 0; i < 3; i++ {
		a := rec.wait(t)
		if !a.Active {
			t.Fatalf("sample %d inactive", i)
		}
		if a.Amplitude < 0.2 || a.Amplitude > 1.0 {
			t.Fatalf("sample %d amplitude %v out of [0.2, 1.0]", i, a.Amplitude)
		}
	}

	synth.setSpeaking(false)
	synth.lastEvents().OnEnd()

	for {
		a := rec.wait(t)
		if !a.Active {
			break
		}
	}
}

func TestSpeakPreemptsPreviousUtterance(t *testing.T) {
	synth := &fakeSynth{supported: true}
	c := NewCoordinator(synth)
	rec := newRecorder()
	defer c.Subscribe(rec.record)()

	c.Speak("first", 1.2)
	stale := synth.lastEvents()

	c.Speak("second", 1.2)

	// The retired generation's callbacks must not broadcast anything.
	stale.OnStart()
	stale.OnEnd()

	if n := len(rec.all()); n != 0 {
		t.Fatalf("stale utterance broadcast %d activities", n)
	}

	synth.lastEvents().OnStart()
	a := rec.wait(t)
	if !a.Active {
		t.Fatal("live utterance start not broadcast")
	}
}

func TestCancelBroadcastsInactiveAndRetiresUtterance(t *testing.T) {
	synth := &fakeSynth{supported: true}
	c := NewCoordinator(synth)
	rec := newRecorder()
	defer c.Subscribe(rec.record)()

	c.Speak("hello", 1.2)
	ev := synth.lastEvents()
	ev.OnStart()
	rec.wait(t)

	c.Cancel()
	if synth.cancels != 1 {
		t.Fatalf("synthesizer cancels = %d, want 1", synth.cancels)
	}

	a := rec.wait(t)
	if a.Active {
		t.Fatal("cancel did not broadcast inactive")
	}

	before := len(rec.all())
	ev.OnEnd()
	if len(rec.all()) != before {
		t.Fatal("retired utterance broadcast after cancel")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	synth := &fakeSynth{supported: true}
	c := NewCoordinator(synth)
	rec := newRecorder()
	unsubscribe := c.Subscribe(rec.record)
	unsubscribe()

	c.Speak("hello", 1.2)
	synth.lastEvents().OnStart()

	if len(rec.all()) != 0 {
		t.Fatal("unsubscribed callback still received activity")
	}
}

func TestSampleAmplitudeBounds(t *testing.T) {
	c := NewCoordinator(&fakeSynth{supported: true})

	base := time.Unix(0, 0)
	for i := 0; i < 500; i++ {
		offset := time.Duration(i) * 37 * time.Millisecond
		c.now = func() time.Time { return base.Add(offset) }
		a := c.sampleAmplitude()
		if a < 0.2 || a > 1.0 {
			t.Fatalf("amplitude %v out of [0.2, 1.0]", a)
		}
	}
}
