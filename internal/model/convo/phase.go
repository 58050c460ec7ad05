package convo

// Phase is the coarse dialogue state. Exactly one phase is active at a time.
type Phase string

const (
	PhaseGreeting           Phase = "greeting"
	PhaseDiagnosticActive   Phase = "diagnostic_active"
	PhaseDiagnosticComplete Phase = "diagnostic_complete"
)
