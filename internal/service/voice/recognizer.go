package voice

// RecognizerEvents are the lifecycle callbacks of one capture session.
type RecognizerEvents struct {
	OnStart  func()
	OnResult func(transcript string)
	OnError  func(code string)
	OnEnd    func()
}

// Recognizer is the platform speech-input capability. Availability must be
// checked via Supported before starting a session.
type Recognizer interface {
	Supported() bool
	Start(ev RecognizerEvents) error
	Stop()
}

// UnsupportedRecognizer is the degraded capability: callers see Supported()
// == false and disable the microphone affordance instead of crashing.
type UnsupportedRecognizer struct{}

func (UnsupportedRecognizer) Supported() bool { return false }

func (UnsupportedRecognizer) Start(_ RecognizerEvents) error { return ErrSpeechUnsupported }

func (UnsupportedRecognizer) Stop() {}
