package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/routethis/assistant/internal/config"
	"github.com/routethis/assistant/internal/model/convo"
	"github.com/routethis/assistant/internal/service/ai"
	"github.com/routethis/assistant/internal/service/dialogue"
	diagservice "github.com/routethis/assistant/internal/service/diagnostic"
	"github.com/routethis/assistant/internal/service/oracle"
	"github.com/routethis/assistant/internal/service/voice"
)

const (
	transcriptPollInterval = 200 * time.Millisecond
	amplitudeBarWidth      = 24
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("248"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Italic(true)
	barStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("120"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type engineUpdatedMsg struct{}

type activityMsg voice.Activity

type greetMsg struct{}

type transcriptTickMsg struct{}

type model struct {
	engine *dialogue.Service
	bridge *voice.InputBridge

	updates  chan struct{}
	activity chan voice.Activity

	viewport  viewport.Model
	input     textinput.Model
	spin      spinner.Model
	width     int
	height    int
	ready     bool
	muted     bool
	notice    string
	voiceAmp  float64
	voiceLive bool

	greetDelay time.Duration
}

func newModel(engine *dialogue.Service, bridge *voice.InputBridge, updates chan struct{}, activity chan voice.Activity, greetDelay time.Duration) model {
	input := textinput.New()
	input.Placeholder = "Describe your internet issue..."
	input.Focus()
	input.CharLimit = 1000

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return model{
		engine:     engine,
		bridge:     bridge,
		updates:    updates,
		activity:   activity,
		input:      input,
		spin:       spin,
		greetDelay: greetDelay,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		waitForUpdate(m.updates),
		waitForActivity(m.activity),
		tea.Tick(m.greetDelay, func(time.Time) tea.Msg { return greetMsg{} }),
		tea.Tick(transcriptPollInterval, func(time.Time) tea.Msg { return transcriptTickMsg{} }),
	)
}

func waitForUpdate(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return engineUpdatedMsg{}
	}
}

func waitForActivity(ch chan voice.Activity) tea.Cmd {
	return func() tea.Msg {
		return activityMsg(<-ch)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		m.refreshTranscript()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text != "" && !m.engine.Snapshot().Loading {
				m.input.SetValue("")
				m.notice = ""
				cmds = append(cmds, submitCmd(m.engine, text))
			}
		case "ctrl+n":
			m.engine.Reset()
			m.notice = ""
		case "ctrl+s":
			m.muted = !m.muted
			m.engine.SetMuted(m.muted)
		case "ctrl+t":
			if err := m.bridge.StartListening(); err != nil {
				m.notice = err.Error()
			}
		}

	case greetMsg:
		cmds = append(cmds, greetCmd(m.engine))

	case engineUpdatedMsg:
		m.refreshTranscript()
		cmds = append(cmds, waitForUpdate(m.updates))

	case activityMsg:
		m.voiceLive = msg.Active
		m.voiceAmp = msg.Amplitude
		cmds = append(cmds, waitForActivity(m.activity))

	case transcriptTickMsg:
		if transcript, ok := m.bridge.ConsumeTranscript(); ok {
			m.input.SetValue(transcript)
		}
		cmds = append(cmds, tea.Tick(transcriptPollInterval, func(time.Time) tea.Msg { return transcriptTickMsg{} }))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func submitCmd(engine *dialogue.Service, text string) tea.Cmd {
	return func() tea.Msg {
		engine.Submit(context.Background(), text)
		return engineUpdatedMsg{}
	}
}

func greetCmd(engine *dialogue.Service) tea.Cmd {
	return func() tea.Msg {
		engine.Greet(context.Background())
		return engineUpdatedMsg{}
	}
}

func (m *model) refreshTranscript() {
	if !m.ready {
		return
	}

	snapshot := m.engine.Snapshot()
	var b strings.Builder
	for _, msg := range snapshot.Messages {
		switch msg.Sender {
		case convo.SenderUser:
			b.WriteString(userStyle.Render("you  ") + msg.Text + "\n\n")
		default:
			b.WriteString(assistantStyle.Render("bot  ") + msg.Text + "\n\n")
		}
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m model) View() string {
	if !m.ready {
		return "starting..."
	}

	snapshot := m.engine.Snapshot()

	var status string
	switch {
	case snapshot.Loading:
		status = m.spin.View() + " thinking..."
	case m.voiceLive:
		filled := int(m.voiceAmp * amplitudeBarWidth)
		if filled > amplitudeBarWidth {
			filled = amplitudeBarWidth
		}
		status = barStyle.Render("speaking " + strings.Repeat("█", filled) + strings.Repeat("░", amplitudeBarWidth-filled))
	case snapshot.Phase == convo.PhaseDiagnosticComplete:
		status = noticeStyle.Render("diagnostic complete — ctrl+n for a new conversation")
	default:
		status = ""
	}

	header := titleStyle.Render("RouteThis") + "  " + helpStyle.Render(string(snapshot.Phase))
	notice := ""
	if m.notice != "" {
		notice = noticeStyle.Render(m.notice) + "\n"
	}
	help := helpStyle.Render("enter send · ctrl+t talk · ctrl+s mute · ctrl+n restart · ctrl+c quit")

	return fmt.Sprintf("%s\n%s\n%s\n%s%s\n%s", header, m.viewport.View(), status, notice, m.input.View(), help)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	backend, modelName, err := buildOracle(cfg)
	if err != nil {
		log.Fatalf("failed to initialize oracle: %v", err)
	}

	var synth voice.Synthesizer = voice.NullSynthesizer{}
	if cfg.Client.VoiceEnabled {
		synth = voice.NewExecSynthesizer()
	}
	coordinator := voice.NewCoordinator(synth)
	bridge := voice.NewInputBridge(voice.UnsupportedRecognizer{})

	updates := make(chan struct{}, 1)
	activity := make(chan voice.Activity, 16)

	engine := dialogue.NewService(dialogue.Config{
		Oracle:    backend,
		Voice:     coordinator,
		VoiceRate: cfg.Client.VoiceRate,
		Notify: func() {
			select {
			case updates <- struct{}{}:
			default:
			}
		},
	})
	engine.SetModelName(modelName)

	unsubscribe := coordinator.Subscribe(func(a voice.Activity) {
		select {
		case activity <- a:
		default:
		}
	})
	defer unsubscribe()

	program := tea.NewProgram(
		newModel(engine, bridge, updates, activity, cfg.Client.GreetingDelay),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "assistant error: %v\n", err)
		os.Exit(1)
	}
}

// buildOracle picks the remote oracle when ORACLE_BASE_URL is set, otherwise
// hosts the whole backend in-process.
func buildOracle(cfg *config.Config) (oracle.Oracle, string, error) {
	if cfg.Client.OracleURL != "" {
		return oracle.NewHTTPClient(cfg.Client.OracleURL), "remote", nil
	}

	aiSvc, err := ai.NewService(context.Background(), cfg.AI)
	if err != nil {
		return nil, "", err
	}
	return oracle.NewLocal(diagservice.NewService(), aiSvc), aiSvc.ModelName(), nil
}
