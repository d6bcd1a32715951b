package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/glueful/vs-code-extension/internal/progress"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type eventMsg struct {
	event progress.Event
	ok    bool
}

type uiModel struct {
	events <-chan progress.Event

	root       string
	status     string
	startedAt  time.Time
	finishedAt time.Time

	scanned    int
	total      int
	violations int
	warnings   int

	currentFile string
	showDetails bool
	done        bool

	logLines []string
	tick     int
}

func newModel(events <-chan progress.Event) uiModel {
	return uiModel{
		events:      events,
		status:      "scanning",
		showDetails: true,
		logLines:    make([]string, 0, 24),
	}
}

func waitForEvent(ch <-chan progress.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		return eventMsg{event: ev, ok: ok}
	}
}

type tickMsg time.Time

func nextTick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m uiModel) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), nextTick())
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "d":
			m.showDetails = !m.showDetails
		case "q", "ctrl+c":
			if m.done {
				return m, tea.Quit
			}
		}
		return m, nil
	case eventMsg:
		if !msg.ok {
			m.done = true
			return m, tea.Quit
		}
		m.applyEvent(msg.event)
		if m.done {
			return m, tea.Quit
		}
		return m, waitForEvent(m.events)
	case tickMsg:
		m.tick++
		if m.done {
			return m, nil
		}
		return m, nextTick()
	default:
		return m, nil
	}
}

func (m uiModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Glueful Webview Security Scan"))
	b.WriteString("\n")
	if m.status == "scanning" {
		b.WriteString(fmt.Sprintf("Active: %s\n", runningStyle.Render(m.runningFrame())))
	}
	b.WriteString(fmt.Sprintf("Root: %s\n", valueOrDash(m.root)))
	b.WriteString(fmt.Sprintf("Status: %s\n", styleStatus(m.status).Render(strings.ToUpper(valueOrDash(m.status)))))
	b.WriteString(fmt.Sprintf("Files: %s\n", m.progressString()))
	b.WriteString(fmt.Sprintf("Violations: %s\n", m.violationsString()))
	if m.warnings > 0 {
		b.WriteString(fmt.Sprintf("Warnings: %s\n", warnStyle.Render(fmt.Sprintf("%d", m.warnings))))
	}
	b.WriteString(fmt.Sprintf("Elapsed: %s\n", m.elapsedString()))
	if !m.done && m.currentFile != "" {
		b.WriteString(fmt.Sprintf("Scanning: %s\n", idleStyle.Render(m.currentFile)))
	}

	if m.showDetails {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Recent Events"))
		b.WriteString("\n")
		if len(m.logLines) == 0 {
			b.WriteString(idleStyle.Render("No events yet."))
			b.WriteString("\n")
		} else {
			for _, line := range m.logLines {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(helpStyle.Render("Press q to close"))
	} else {
		b.WriteString(helpStyle.Render("d toggle details"))
	}
	b.WriteString("\n")

	return b.String()
}

func (m *uiModel) applyEvent(e progress.Event) {
	switch e.Type {
	case progress.EventScanStarted:
		m.root = e.File
		m.total = e.Total
		m.status = "scanning"
		if !e.At.IsZero() {
			m.startedAt = e.At
		}
		m.appendEventLine(e, fmt.Sprintf("scan started (%d files)", e.Total))
	case progress.EventFileScanned:
		m.scanned = e.Scanned
		m.violations += e.Violations
		m.currentFile = e.File
		if e.Violations > 0 {
			m.appendEventLine(e, fmt.Sprintf("%s: %d violation(s)", e.File, e.Violations))
		}
	case progress.EventScanWarning:
		m.warnings++
		m.appendEventLine(e, fmt.Sprintf("warning: %s", firstNonEmpty(e.Message, e.File)))
	case progress.EventScanFinished:
		m.scanned = e.Scanned
		m.violations = e.Violations
		if e.Violations > 0 {
			m.status = "violations"
		} else {
			m.status = "clean"
		}
		if !e.At.IsZero() {
			m.finishedAt = e.At
		}
		m.done = true
		m.currentFile = ""
		m.appendEventLine(e, fmt.Sprintf("scan finished files=%d violations=%d", e.Scanned, e.Violations))
	}
}

func (m uiModel) progressString() string {
	if m.total > 0 {
		return fmt.Sprintf("%d/%d", m.scanned, m.total)
	}
	return fmt.Sprintf("%d", m.scanned)
}

func (m uiModel) violationsString() string {
	if m.violations > 0 {
		return errorStyle.Render(fmt.Sprintf("%d", m.violations))
	}
	return okStyle.Render("0")
}

func (m uiModel) elapsedString() string {
	if m.startedAt.IsZero() {
		return "0s"
	}
	end := time.Now().UTC()
	if !m.finishedAt.IsZero() {
		end = m.finishedAt
	}
	return end.Sub(m.startedAt).Round(time.Second).String()
}

func (m *uiModel) appendEventLine(e progress.Event, text string) {
	ts := e.At
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	line := fmt.Sprintf("[%s] %s", ts.Format("15:04:05"), strings.TrimSpace(text))
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > 12 {
		m.logLines = m.logLines[len(m.logLines)-12:]
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}

func valueOrDash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return v
}

func styleStatus(status string) lipgloss.Style {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "clean":
		return okStyle
	case "violations":
		return errorStyle
	case "scanning":
		return runningStyle
	default:
		return idleStyle
	}
}

func (m uiModel) runningFrame() string {
	frames := []string{"-", "\\", "|", "/"}
	return frames[m.tick%len(frames)]
}
