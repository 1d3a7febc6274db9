package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"traitline/internal/catalog"
	"traitline/internal/engine"
	"traitline/internal/ui"
)

// subsectionRef points at one catalog subsection.
type subsectionRef struct {
	key        string
	sectionKey string
	section    string
	sub        catalog.Subsection
}

type boardModel struct {
	ctx        context.Context
	svc        *engine.Service
	timerHours float64

	width  int
	height int

	subs []subsectionRef
	tab  int
	row  int
	col  int

	data    *engine.ProfileData
	now     time.Time
	lastLog string
	notices []engine.Notice
	err     error
}

type tickMsg time.Time

type loadedMsg struct {
	err error
}

type mutatedMsg struct {
	log string
	err error
}

func newBoardModel(ctx context.Context, svc *engine.Service, timerHours float64) boardModel {
	var subs []subsectionRef
	for _, sec := range svc.Catalog().Sections {
		for _, sub := range sec.Subsections {
			subs = append(subs, subsectionRef{
				key:        catalog.SubsectionKey(sec.Key, sub.Name),
				sectionKey: sec.Key,
				section:    sec.Name,
				sub:        sub,
			})
		}
	}
	return boardModel{
		ctx:        ctx,
		svc:        svc,
		timerHours: timerHours,
		subs:       subs,
		data:       svc.ProfileData(),
		now:        time.Now(),
		lastLog:    "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd drives the 1 Hz countdown; it stops with the program.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m boardModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.svc.Refresh(m.ctx)}
	}
}

func (m boardModel) mutate(fn func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		log, err := fn()
		return mutatedMsg{log: log, err: err}
	}
}

func (m boardModel) current() (subsectionRef, bool) {
	if len(m.subs) == 0 {
		return subsectionRef{}, false
	}
	return m.subs[m.tab], true
}

func (m boardModel) cursor() (ref subsectionRef, item, trait string, ok bool) {
	ref, ok = m.current()
	if !ok || len(ref.sub.Items) == 0 || len(ref.sub.Traits) == 0 {
		return ref, "", "", false
	}
	return ref, ref.sub.Items[m.row], ref.sub.Traits[m.col], true
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		m.now = time.Time(msg)
		m.collectNotices()
		return m, tickCmd()
	case loadedMsg:
		m.err = msg.err
		m.data = m.svc.ProfileData()
		if msg.err == nil {
			m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		}
		return m, nil
	case mutatedMsg:
		m.data = m.svc.ProfileData()
		if msg.err != nil {
			m.lastLog = "Failed: " + msg.err.Error()
		} else if msg.log != "" {
			m.lastLog = msg.log
		}
		m.collectNotices()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *boardModel) collectNotices() {
	m.notices = append(m.notices, m.svc.Notices()...)
	if len(m.notices) > 3 {
		m.notices = m.notices[len(m.notices)-3:]
	}
}

func (m boardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ref, ok := m.current()
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r":
		m.lastLog = "Refreshing…"
		return m, m.refreshCmd()
	case "tab":
		if len(m.subs) > 0 {
			m.tab = (m.tab + 1) % len(m.subs)
			m.row, m.col = 0, 0
		}
		return m, nil
	case "shift+tab":
		if len(m.subs) > 0 {
			m.tab = (m.tab + len(m.subs) - 1) % len(m.subs)
			m.row, m.col = 0, 0
		}
		return m, nil
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
		return m, nil
	case "down", "j":
		if ok && m.row < len(ref.sub.Items)-1 {
			m.row++
		}
		return m, nil
	case "left", "h":
		if m.col > 0 {
			m.col--
		}
		return m, nil
	case "right", "l":
		if ok && m.col < len(ref.sub.Traits)-1 {
			m.col++
		}
		return m, nil
	}

	if m.data.Profile == nil {
		m.lastLog = "No profile selected. Create one with `tl profile create`."
		return m, nil
	}
	ref, item, trait, ok := m.cursor()
	if !ok {
		return m, nil
	}
	switch msg.String() {
	case " ", "enter":
		return m, m.mutate(func() (string, error) {
			done, err := m.svc.ToggleTrait(m.ctx, ref.key, item, trait)
			return fmt.Sprintf("%s %s: %s", item, trait, doneWord(done)), err
		})
	case "b":
		return m, m.mutate(func() (string, error) {
			in, err := m.svc.ToggleBank(m.ctx, ref.key, item)
			if in {
				return item + " marked in bank.", err
			}
			return item + " removed from bank.", err
		})
	case "t":
		hours := m.timerHours
		return m, m.mutate(func() (string, error) {
			tm, err := m.svc.SetTimer(m.ctx, ref.key, item, trait, hours)
			if err != nil || tm == nil {
				return "", err
			}
			return fmt.Sprintf("Timer set for %s %s (%gh).", item, trait, hours), nil
		})
	case "x":
		return m, m.mutate(func() (string, error) {
			return fmt.Sprintf("Timer removed for %s %s.", item, trait), m.svc.RemoveTimer(m.ctx, ref.key, item, trait)
		})
	}
	return m, nil
}

func doneWord(done bool) string {
	if done {
		return "completed"
	}
	return "not completed"
}

func (m boardModel) View() string {
	if m.err != nil {
		return ui.Bad.Render("Error: "+m.err.Error()) + "\n\nPress q to quit.\n"
	}
	return m.renderHeader() + "\n\n" + m.renderMatrix() + "\n" + m.renderTimers() + m.renderFooter()
}

func (m boardModel) renderHeader() string {
	p := m.data.Profile
	if p == nil {
		return ui.Heading(ui.IconAnvil, "Traitline") + " " + ui.Muted.Render("no profile")
	}
	st := m.data.Stats(m.svc.Catalog())
	return fmt.Sprintf("%s | %s %s | %s %s %s",
		ui.Heading(ui.IconAnvil, "Traitline"),
		ui.IconUser, p.Name,
		ui.ProgressBar(st.Completed, st.Total, 20), st.String(), ui.ThemeText(string(p.Theme)))
}

func (m boardModel) renderMatrix() string {
	ref, ok := m.current()
	if !ok {
		return "(empty catalog)\n"
	}
	var b strings.Builder
	st := m.data.SubsectionStats(ref.sectionKey, ref.sub)
	fmt.Fprintf(&b, "%s %s %s\n", ui.H2.Render(ref.section+" / "+ref.sub.Name), st.String(),
		ui.Muted.Render(fmt.Sprintf("(%d/%d, tab to switch)", m.tab+1, len(m.subs))))

	itemW := 4
	for _, item := range ref.sub.Items {
		if n := len([]rune(item)); n > itemW {
			itemW = n
		}
	}
	b.WriteString(padRight("", itemW+4))
	for i, trait := range ref.sub.Traits {
		label := abbrev(trait, 4)
		if i == m.col {
			label = ui.Key.Render(label)
		}
		b.WriteString(" " + label)
	}
	b.WriteString("\n")

	for r, item := range ref.sub.Items {
		cursor := "  "
		if r == m.row {
			cursor = "> "
		}
		bank := "  "
		if m.data.InBank(ref.key, item) {
			bank = "B "
		}
		b.WriteString(cursor + bank + padRight(item, itemW))
		for c, trait := range ref.sub.Traits {
			cell := "[ ]"
			if m.data.Completed(ref.key, item, trait) {
				cell = "[x]"
			} else if _, ok := m.data.Timer(ref.key, item, trait); ok {
				cell = "[~]"
			}
			cell = padRight(cell, 4)
			if r == m.row && c == m.col {
				cell = ui.SelectedRow.Render(cell)
			}
			b.WriteString(" " + cell)
		}
		if note := m.data.Note(ref.key, item); note != "" {
			b.WriteString(" " + ui.Muted.Render(ui.IconNote+" "+note))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m boardModel) renderTimers() string {
	timers := m.data.Timers()
	if len(timers) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(ui.H2.Render(ui.IconTimer+" Research") + "\n")
	for _, t := range timers {
		left := engine.Remaining(t.EndTime, m.now)
		fmt.Fprintf(&b, "- %s %s (%s): %s\n", t.Item, t.Trait, t.Section, ui.Countdown(engine.FormatRemaining(left), left <= 0))
	}
	return b.String()
}

func (m boardModel) renderFooter() string {
	var lines []string
	for _, n := range m.notices {
		lines = append(lines, ui.Warn.Render(ui.IconWarn+" "+n.Message+": "+n.Err.Error()))
	}
	lines = append(lines, ui.Muted.Render("←↑↓→ move · space toggle · b bank · t timer · x clear timer · tab subsection · r refresh · q quit"))
	lines = append(lines, m.lastLog)
	return "\n" + strings.Join(lines, "\n")
}

func abbrev(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return padRight(string(r), n)
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
