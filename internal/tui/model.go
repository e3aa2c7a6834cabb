package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"canvasboard/internal/app"
	"canvasboard/internal/canvas"
	"canvasboard/internal/service"
)

const (
	frameInterval = 16 * time.Millisecond
	panStep       = 64.0
	zoomStep      = 1.25
)

type frameMsg time.Time
type autosaveMsg time.Time
type reloadMsg struct{}
type backupMsg struct{}

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Bold(true)
)

// Model hosts a Session in the terminal. Mouse events become pointer
// events in screen pixels, one terminal cell being CellWidth×CellHeight.
type Model struct {
	ctx     context.Context
	session *app.Session
	log     *slog.Logger
	keys    keyMap

	reloads <-chan struct{}
	backup  *service.BackupScheduler

	cols, rows int
	last       time.Time
	status     string

	input    textinput.Model
	renaming canvas.GroupRef
	prompt   bool
}

// Option configures a Model.
type Option func(*Model)

// WithReloads merges the stored snapshot whenever ch fires.
func WithReloads(ch <-chan struct{}) Option {
	return func(m *Model) { m.reloads = ch }
}

// WithBackup services backup requests from b.
func WithBackup(b *service.BackupScheduler) Option {
	return func(m *Model) { m.backup = b }
}

func New(ctx context.Context, s *app.Session, log *slog.Logger, opts ...Option) Model {
	if log == nil {
		log = slog.Default()
	}
	ti := textinput.New()
	ti.Placeholder = "Group title"
	ti.CharLimit = 80
	ti.Width = 40

	m := Model{
		ctx:     ctx,
		session: s,
		log:     log,
		keys:    newKeyMap(),
		input:   ti,
		cols:    80,
		rows:    24,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		frameTick(),
		autosaveTick(m.session.Autosaver().Interval()),
		waitFor(m.reloads, reloadMsg{}),
		m.waitForBackup(),
	)
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func autosaveTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return autosaveMsg(t) })
}

func waitFor(ch <-chan struct{}, msg tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		<-ch
		return msg
	}
}

func (m Model) waitForBackup() tea.Cmd {
	if m.backup == nil {
		return nil
	}
	return waitFor(m.backup.Requests(), backupMsg{})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		m.session.Resize(float64(m.cols*CellWidth), float64(m.canvasRows()*CellHeight))
		return m, nil

	case frameMsg:
		now := time.Time(msg)
		if !m.last.IsZero() {
			m.session.Frame(now.Sub(m.last))
		}
		m.last = now
		m.openPendingRename()
		return m, frameTick()

	case autosaveMsg:
		m.session.MaybeSave(m.ctx, time.Time(msg))
		return m, autosaveTick(m.session.Autosaver().Interval())

	case reloadMsg:
		if err := m.session.Reload(m.ctx); err != nil {
			m.status = "reload failed: " + err.Error()
		} else {
			m.status = "reloaded from disk"
		}
		return m, waitFor(m.reloads, reloadMsg{})

	case backupMsg:
		if m.session.Backup(m.ctx, m.backup) {
			m.status = "backup started"
		}
		return m, m.waitForBackup()

	case tea.MouseMsg:
		if !m.prompt {
			m.mouse(msg)
		}
		return m, nil

	case tea.KeyMsg:
		if m.prompt {
			return m.updatePrompt(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

// mouse translates a terminal mouse event into pointer and wheel input
// at the center of the cell.
func (m *Model) mouse(msg tea.MouseMsg) {
	x := float64(msg.X*CellWidth) + CellWidth/2
	y := float64(msg.Y*CellHeight) + CellHeight/2

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.session.Wheel(x, y, -panStep)
		return
	case tea.MouseButtonWheelDown:
		m.session.Wheel(x, y, panStep)
		return
	}

	ev := canvas.PointerEvent{X: x, Y: y, Button: pointerButton(msg.Button)}
	switch msg.Action {
	case tea.MouseActionPress:
		ev.Kind = canvas.PointerDown
	case tea.MouseActionRelease:
		ev.Kind = canvas.PointerUp
		ev.Button = canvas.ButtonLeft
	case tea.MouseActionMotion:
		ev.Kind = canvas.PointerMove
	default:
		return
	}
	m.session.Pointer(ev)
}

func pointerButton(b tea.MouseButton) canvas.Button {
	switch b {
	case tea.MouseButtonLeft:
		return canvas.ButtonLeft
	case tea.MouseButtonMiddle:
		return canvas.ButtonMiddle
	case tea.MouseButtonRight:
		return canvas.ButtonRight
	default:
		return canvas.ButtonNone
	}
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ws := m.session.Workspace()
	cam := ws.Camera()
	v := cam.Viewport()

	switch {
	case key.Matches(msg, m.keys.Quit):
		if err := m.session.SaveNow(m.ctx); err != nil {
			m.log.Error("tui: final save failed", "err", err)
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Center):
		ws.CenterCamera()
	case key.Matches(msg, m.keys.ZoomIn):
		cam.ZoomAt(v.Width/2, v.Height/2, zoomStep)
	case key.Matches(msg, m.keys.ZoomOut):
		cam.ZoomAt(v.Width/2, v.Height/2, 1/zoomStep)
	case key.Matches(msg, m.keys.Up):
		cam.PanBy(0, panStep)
	case key.Matches(msg, m.keys.Down):
		cam.PanBy(0, -panStep)
	case key.Matches(msg, m.keys.Left):
		cam.PanBy(panStep, 0)
	case key.Matches(msg, m.keys.Right):
		cam.PanBy(-panStep, 0)
	case key.Matches(msg, m.keys.Rename):
		if ref, ok := ws.HoveredGroup(); ok && !ref.Reserved() {
			m.openPrompt(ref)
			return m, textinput.Blink
		}
	case key.Matches(msg, m.keys.Save):
		if err := m.session.SaveNow(m.ctx); err != nil {
			m.status = "save failed: " + err.Error()
		} else {
			m.status = "saved"
		}
	}
	return m, nil
}

func (m *Model) openPendingRename() {
	if m.prompt {
		return
	}
	for _, g := range m.session.Workspace().Groups() {
		if g.RenamePending() {
			m.openPrompt(g.Ref())
			return
		}
	}
}

func (m *Model) openPrompt(ref canvas.GroupRef) {
	g, ok := m.session.Workspace().Group(ref)
	if !ok {
		return
	}
	m.renaming = ref
	m.prompt = true
	m.input.SetValue(g.Title())
	m.input.CursorEnd()
	m.input.Focus()
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.session.Workspace().RenameGroup(m.renaming, m.input.Value())
		m.closePrompt()
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		// Keep the current title; the prompt is not reopened.
		ws := m.session.Workspace()
		if g, ok := ws.Group(m.renaming); ok {
			ws.RenameGroup(m.renaming, g.Title())
		}
		m.closePrompt()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closePrompt() {
	m.prompt = false
	m.renaming = canvas.GroupRef{}
	m.input.Blur()
	m.input.SetValue("")
}

// canvasRows leaves one row for the status line.
func (m Model) canvasRows() int {
	return max(m.rows-1, 1)
}

func (m Model) View() string {
	body := Render(m.session.Workspace(), m.cols, m.canvasRows())
	return body + "\n" + m.statusLine()
}

func (m Model) statusLine() string {
	if m.prompt {
		return promptStyle.Render("rename: ") + m.input.View()
	}
	ws := m.session.Workspace()
	parts := []string{
		fmt.Sprintf("zoom %.0f%%", ws.Camera().Zoom()*100),
		fmt.Sprintf("%d groups", ws.GroupCount()),
		fmt.Sprintf("%d items", ws.ItemCount()),
	}
	if at := m.session.Autosaver().LastSave(); !at.IsZero() {
		parts = append(parts, "last save "+at.Format(time.TimeOnly))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	var help []string
	for _, b := range m.keys.help() {
		help = append(help, b.Help().Key+" "+b.Help().Desc)
	}
	parts = append(parts, strings.Join(help, " · "))
	return statusStyle.Render(strings.Join(parts, "  "))
}

// Run starts the terminal program with mouse motion reporting.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
