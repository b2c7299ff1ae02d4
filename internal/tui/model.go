package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/notify"
	"github.com/oshokin/alarm-clock/internal/scheduler"
)

// Engine is the part of the scheduler the UI drives.
type Engine interface {
	Add(ctx context.Context, hour, minute int, days []int) (alarm.ID, error)
	Remove(ctx context.Context, id alarm.ID) error
	List(ctx context.Context) []scheduler.Entry
	Snooze(ctx context.Context, id alarm.ID) (alarm.Alarm, error)
	Stop(ctx context.Context, id alarm.ID) (alarm.Alarm, error)
}

type viewMode int

const (
	viewList viewMode = iota
	viewAdd
)

// Add form fields.
const (
	fieldTime = iota
	fieldDays
)

// clockMsg refreshes the header clock and the alarm table.
type clockMsg time.Time

const clockRefresh = time.Second

// Model is the root bubbletea model.
type Model struct {
	engine Engine
	ctx    context.Context //nolint:containedctx // Engine calls happen inside Update.
	keys   KeyMap
	now    func() time.Time

	mode     viewMode
	width    int
	quitting bool

	clock  time.Time
	alarms []scheduler.Entry
	cursor int

	timeInput textinput.Model
	daysInput textinput.Model
	field     int

	// fires queues fired alarms; the first one is shown in the modal.
	fires []fireMsg

	status    string
	statusErr bool
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithContext sets the context passed to engine calls.
func WithContext(ctx context.Context) ModelOption {
	return func(m *Model) { m.ctx = ctx }
}

// WithClock replaces the clock shown in the header.
func WithClock(now func() time.Time) ModelOption {
	return func(m *Model) { m.now = now }
}

// WithKeyMap replaces the default key bindings.
func WithKeyMap(keys KeyMap) ModelOption {
	return func(m *Model) { m.keys = keys }
}

// NewModel creates the UI for engine.
func NewModel(engine Engine, opts ...ModelOption) Model {
	timeInput := textinput.New()
	timeInput.Prompt = "Time (HH:MM):        "
	timeInput.Placeholder = "07:00"
	timeInput.CharLimit = len("00:00")

	daysInput := textinput.New()
	daysInput.Prompt = "Days (0=Sun..6=Sat): "
	daysInput.Placeholder = "1, 2, 3, 4, 5"

	m := Model{
		engine:    engine,
		ctx:       context.Background(),
		keys:      DefaultKeyMap(),
		now:       time.Now,
		timeInput: timeInput,
		daysInput: daysInput,
	}

	for _, opt := range opts {
		opt(&m)
	}

	m.clock = m.now()
	m.refresh()

	return m
}

// Init starts the clock.
func (m Model) Init() tea.Cmd {
	return m.clockCmd()
}

func (m Model) clockCmd() tea.Cmd {
	return tea.Tick(clockRefresh, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

		return m, nil

	case clockMsg:
		m.clock = m.now()
		m.refresh()

		return m, m.clockCmd()

	case fireMsg:
		m.fires = append(m.fires, msg)
		m.refresh()

		return m, nil

	case resolvedMsg:
		m.resolve(msg.outcome)

		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.mode == viewAdd {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.fires) > 0 {
		return m.handleFireKey(msg)
	}

	if m.mode == viewAdd {
		return m.handleFormKey(msg)
	}

	return m.handleListKey(msg)
}

// handleFireKey answers the alarm in the modal: snooze key snoozes, any other key stops.
func (m Model) handleFireKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fire := m.fires[0]
	m.fires = m.fires[1:]

	response := alarm.ResponseStop
	if key.Matches(msg, m.keys.Snooze) {
		response = alarm.ResponseSnooze
	}

	fire.reply <- response

	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true

		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.alarms)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Add):
		m.mode = viewAdd
		m.field = fieldTime
		m.timeInput.Reset()
		m.daysInput.Reset()
		m.daysInput.Blur()
		m.setStatus("", nil)

		return m, m.timeInput.Focus()

	case key.Matches(msg, m.keys.Delete):
		if selected, ok := m.selected(); ok {
			err := m.engine.Remove(m.ctx, selected.ID)
			m.setStatus("Alarm deleted.", err)
		}

	case key.Matches(msg, m.keys.Snooze):
		if selected, ok := m.selected(); ok {
			a, err := m.engine.Snooze(m.ctx, selected.ID)
			m.setStatus(fmt.Sprintf("Alarm snoozed until %s.", a.Trigger), err)
		}

	case key.Matches(msg, m.keys.Stop):
		if selected, ok := m.selected(); ok {
			_, err := m.engine.Stop(m.ctx, selected.ID)
			m.setStatus("Alarm stopped.", err)
		}
	}

	m.refresh()

	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = viewList
		m.timeInput.Blur()
		m.daysInput.Blur()

		return m, nil

	case key.Matches(msg, m.keys.NextField):
		if m.field == fieldTime {
			m.field = fieldDays
			m.timeInput.Blur()

			return m, m.daysInput.Focus()
		}

		m.field = fieldTime
		m.daysInput.Blur()

		return m, m.timeInput.Focus()

	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}

	return m.updateInputs(msg)
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.field == fieldTime {
		m.timeInput, cmd = m.timeInput.Update(msg)
	} else {
		m.daysInput, cmd = m.daysInput.Update(msg)
	}

	return m, cmd
}

// submit validates the form and adds the alarm. The form stays open on errors.
func (m Model) submit() (tea.Model, tea.Cmd) {
	trigger, err := alarm.ParseTimeOfDay(m.timeInput.Value())
	if err != nil {
		m.setStatus("", fmt.Errorf("invalid time format, use HH:MM: %w", err))

		return m, nil
	}

	days, err := alarm.ParseWeekdays(m.daysInput.Value())
	if err != nil {
		m.setStatus("", err)

		return m, nil
	}

	if _, err := m.engine.Add(m.ctx, trigger.Hour, trigger.Minute, days.Days()); err != nil {
		m.setStatus("", err)

		return m, nil
	}

	m.mode = viewList
	m.timeInput.Blur()
	m.daysInput.Blur()
	m.setStatus(fmt.Sprintf("Alarm added: %s on days %s.", trigger, days), nil)
	m.refresh()
	m.cursor = len(m.alarms) - 1

	return m, nil
}

// resolve reports how a fire ended and drops a modal the answer arrived too late for.
func (m *Model) resolve(outcome notify.Outcome) {
	pending := m.fires[:0]

	for _, fire := range m.fires {
		if fire.alarm.ID != outcome.Alarm.ID {
			pending = append(pending, fire)
		}
	}

	m.fires = pending

	var message string

	switch {
	case outcome.Err != nil:
	case outcome.Response == alarm.ResponseSnooze:
		message = fmt.Sprintf("Alarm snoozed until %s.", outcome.Alarm.Trigger)
	case outcome.Response == alarm.ResponseStop:
		message = "Alarm stopped."
	}

	if outcome.TimedOut && outcome.Err == nil {
		message = "No answer in time. " + message
	}

	m.setStatus(message, outcome.Err)
	m.refresh()
}

// setStatus shows message, or a description of err when it is set.
func (m *Model) setStatus(message string, err error) {
	m.statusErr = err != nil

	switch {
	case errors.Is(err, alarm.ErrSnoozeLimitExceeded):
		m.status = "Maximum snooze limit reached."
	case errors.Is(err, alarm.ErrNotFound):
		m.status = "Alarm not found."
	case err != nil:
		m.status = "Error: " + err.Error()
	default:
		m.status = message
	}
}

func (m *Model) refresh() {
	m.alarms = m.engine.List(m.ctx)

	if m.cursor >= len(m.alarms) {
		m.cursor = len(m.alarms) - 1
	}

	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected() (scheduler.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.alarms) {
		return scheduler.Entry{}, false
	}

	return m.alarms[m.cursor], true
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		headerStyle.Render("Alarm Clock  " + m.clock.Format("Mon 2006-01-02 15:04:05")),
	}

	switch {
	case len(m.fires) > 0:
		sections = append(sections, m.renderFire())
	case m.mode == viewAdd:
		sections = append(sections, m.renderForm(), renderHelp(m.keys.formHelp()))
	default:
		sections = append(sections, m.renderTable(), renderHelp(m.keys.listHelp()))
	}

	if m.status != "" && len(m.fires) == 0 {
		style := statusBarStyle
		if m.statusErr {
			style = errorStyle
		}

		sections = append(sections, style.Render(m.status))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m Model) renderTable() string {
	var b strings.Builder

	b.WriteString(panelTitleStyle.Render("Alarms"))
	b.WriteString("\n")

	if len(m.alarms) == 0 {
		b.WriteString(dimStyle.Render("No alarms set."))

		return panelBorderStyle.Render(b.String())
	}

	for i, entry := range m.alarms {
		line := fmt.Sprintf("%-5s  %-34s  %-8s  %d/%d",
			entry.Trigger,
			fmt.Sprintf("%s (%s)", entry.Days, entry.Days.Names()),
			entryState(entry),
			entry.SnoozeCount,
			alarm.MaxSnoozeCount,
		)

		switch {
		case i == m.cursor:
			line = selectedStyle.Render(line)
		default:
			line = entryStyle(entry).Render(line)
		}

		b.WriteString(line)

		if i < len(m.alarms)-1 {
			b.WriteString("\n")
		}
	}

	return panelBorderStyle.Render(b.String())
}

func (m Model) renderForm() string {
	return panelBorderStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		panelTitleStyle.Render("Add alarm"),
		m.timeInput.View(),
		m.daysInput.View(),
	))
}

func (m Model) renderFire() string {
	fire := m.fires[0]

	text := fmt.Sprintf("ALARM! %s on %s\n\nPress 's' to snooze or any other key to stop.",
		fire.alarm.Trigger, fire.alarm.Days.Names())

	if more := len(m.fires) - 1; more > 0 {
		text += fmt.Sprintf("\n%d more waiting.", more)
	}

	return fireDialogStyle.Render(text)
}

func renderHelp(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))

	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}

	return dimStyle.Render(strings.Join(parts, " • "))
}

func entryState(entry scheduler.Entry) string {
	switch {
	case entry.Firing:
		return "firing"
	case !entry.Enabled:
		return "stopped"
	case entry.SnoozeCount > 0:
		return "snoozed"
	default:
		return "armed"
	}
}

func entryStyle(entry scheduler.Entry) lipgloss.Style {
	switch entryState(entry) {
	case "firing":
		return firingStyle
	case "stopped":
		return stoppedStyle
	case "snoozed":
		return snoozedStyle
	default:
		return armedStyle
	}
}
