package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/JP-Ellis/desir/internal/solve"
)

const (
	historyCapacity = 600
	samplesPerTick  = 4
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(40)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Monitor is a bubbletea model that pulls samples from a lazy solve
// session as the UI ticks, so the integration runs no faster than the
// display consumes it.
type Monitor struct {
	title string
	start func() (*solve.Session, error)

	sess    *solve.Session
	running bool
	done    bool
	failure error

	t         float64
	component []float64
	stepSizes []float64
	normHist  []float64
}

// NewMonitor begins the first session immediately; restarts reuse the
// start function.
func NewMonitor(title string, start func() (*solve.Session, error)) (*Monitor, error) {
	sess, err := start()
	if err != nil {
		return nil, err
	}
	return &Monitor{
		title:   title,
		start:   start,
		sess:    sess,
		running: true,
	}, nil
}

func (m *Monitor) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if sess, err := m.start(); err == nil {
				m.sess = sess
				m.done = false
				m.failure = nil
				m.running = true
				m.t = 0
				m.component = m.component[:0]
				m.stepSizes = m.stepSizes[:0]
				m.normHist = m.normHist[:0]
			}
		}
	case TickMsg:
		if m.running && !m.done {
			m.pull()
		}
		return m, tick()
	}
	return m, nil
}

// pull advances the solve by a few accepted steps.
func (m *Monitor) pull() {
	for i := 0; i < samplesPerTick; i++ {
		sample, ok, err := m.sess.Next()
		if err != nil {
			m.failure = err
			m.done = true
			return
		}
		if !ok {
			m.done = true
			return
		}
		m.t = sample.T
		m.component = push(m.component, sample.Y[0])
		st := m.sess.Stats()
		m.stepSizes = push(m.stepSizes, st.LastStep)
		m.normHist = push(m.normHist, st.LastNorm)
	}
}

func push(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > historyCapacity {
		hist = hist[1:]
	}
	return hist
}

func (m *Monitor) View() string {
	var graphs strings.Builder
	if len(m.component) > 1 {
		graphs.WriteString(graphStyle.Render(asciigraph.Plot(m.component,
			asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption("y[0]"))) + "\n")
	}
	if len(m.stepSizes) > 1 {
		graphs.WriteString(graphStyle.Render(asciigraph.Plot(m.stepSizes,
			asciigraph.Height(4), asciigraph.Width(60), asciigraph.Caption("step size"))) + "\n")
	}
	if len(m.normHist) > 1 && m.normHist[len(m.normHist)-1] > 0 {
		graphs.WriteString(graphStyle.Render(asciigraph.Plot(m.normHist,
			asciigraph.Height(4), asciigraph.Width(60), asciigraph.Caption("error norm"))) + "\n")
	}

	st := m.sess.Stats()
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3f", m.t)) + "\n")
	s.WriteString(labelStyle.Render("Steps") + valueStyle.Render(fmt.Sprintf("%d", st.Steps)) + "\n")
	s.WriteString(labelStyle.Render("Rejected") + valueStyle.Render(fmt.Sprintf("%d", st.Rejected)) + "\n")
	s.WriteString(labelStyle.Render("Field evals") + valueStyle.Render(fmt.Sprintf("%d", st.FieldEvals)) + "\n")
	s.WriteString(labelStyle.Render("Last step") + valueStyle.Render(fmt.Sprintf("%.3g", st.LastStep)) + "\n")
	if st.LastNorm > 0 {
		s.WriteString(labelStyle.Render("Error norm") + valueStyle.Render(fmt.Sprintf("%.3g", st.LastNorm)) + "\n")
	}
	if st.ImplicitIters > 0 {
		s.WriteString(labelStyle.Render("Implicit iters") + valueStyle.Render(fmt.Sprintf("%d", st.ImplicitIters)) + "\n")
	}
	s.WriteString(helpStyle.Render("\nSP:Pause R:Restart Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, graphs.String(), statsStyle.Render(s.String()))
}

func (m *Monitor) status() string {
	switch {
	case m.failure != nil:
		return errorStyle.Render("FAILED: " + m.failure.Error())
	case m.done:
		return "DONE"
	case !m.running:
		return "PAUSED"
	default:
		return "RUNNING"
	}
}
