package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/scribe/internal/cancel"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// --- progress ---

type progressMsg string

type taskDoneMsg struct{ err error }

type spinnerModel struct {
	title     string
	status    string
	spinner   spinner.Model
	src       *cancel.Source
	canceling bool
	err       error
}

func newSpinnerModel(title string, src *cancel.Source) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return spinnerModel{title: title, spinner: s, src: src}
}

func (m spinnerModel) Init() tea.Cmd { return m.spinner.Tick }

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			// The task decides when to stop; we only request it.
			m.canceling = true
			m.src.Cancel()
		}
		return m, nil
	case progressMsg:
		m.status = string(msg)
		return m, nil
	case taskDoneMsg:
		m.err = msg.err
		return m, tea.Quit
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m spinnerModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", m.spinner.View(), titleStyle.Render(m.title))
	if m.status != "" {
		fmt.Fprintf(&b, " %s", m.status)
	}
	if m.canceling {
		b.WriteString(faintStyle.Render(" (cancelling…)"))
	} else {
		b.WriteString(faintStyle.Render(" (esc to cancel)"))
	}
	b.WriteString("\n")
	return b.String()
}

func runSpinner(ctx context.Context, in io.Reader, out io.Writer, title string, src *cancel.Source, task Task) error {
	p := tea.NewProgram(newSpinnerModel(title, src), tea.WithInput(in), tea.WithOutput(out))

	done := make(chan error, 1)
	go func() {
		report := ProgressFunc(func(msg string) { p.Send(progressMsg(msg)) })
		err := task(ctx, report, src)
		done <- err
		p.Send(taskDoneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		// The UI failed; the task still owns the outcome.
		src.Cancel()
		return <-done
	}
	return <-done
}

// --- picker ---

type pickItem struct {
	index int
	label string
}

func (i pickItem) Title() string       { return i.label }
func (i pickItem) Description() string { return "" }
func (i pickItem) FilterValue() string { return i.label }

type pickerModel struct {
	list     list.Model
	chosen   int
	selected bool
}

func newPickerModel(title string, items []string) pickerModel {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetHeight(1)
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("205")).
		BorderForeground(lipgloss.Color("205"))

	listItems := make([]list.Item, len(items))
	for i, it := range items {
		listItems[i] = pickItem{index: i, label: it}
	}

	height := len(items) + 6
	if height > 20 {
		height = 20
	}
	l := list.New(listItems, delegate, 80, height)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	return pickerModel{list: l, chosen: -1}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit
		case "enter":
			if it, ok := m.list.SelectedItem().(pickItem); ok {
				m.chosen = it.index
				m.selected = true
			}
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	if m.selected {
		return ""
	}
	return m.list.View()
}

func runPicker(ctx context.Context, in io.Reader, out io.Writer, title string, items []string) (int, bool, error) {
	p := tea.NewProgram(newPickerModel(title, items), tea.WithInput(in), tea.WithOutput(out), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return 0, false, ctx.Err()
		}
		return 0, false, fmt.Errorf("running picker: %w", err)
	}
	m, ok := final.(pickerModel)
	if !ok || !m.selected {
		return 0, false, nil
	}
	return m.chosen, true, nil
}

// --- prompt ---

type promptModel struct {
	title     string
	input     textinput.Model
	submitted bool
}

func newPromptModel(title string) promptModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	return promptModel{title: title, input: ti}
}

func (m promptModel) Init() tea.Cmd { return textinput.Blink }

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			m.submitted = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.submitted {
		return ""
	}
	return titleStyle.Render(m.title) + "\n" + m.input.View() + "\n"
}

func runPrompt(ctx context.Context, in io.Reader, out io.Writer, title string) (string, bool, error) {
	p := tea.NewProgram(newPromptModel(title), tea.WithInput(in), tea.WithOutput(out), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", false, fmt.Errorf("running prompt: %w", err)
	}
	m, ok := final.(promptModel)
	if !ok || !m.submitted {
		return "", false, nil
	}
	return strings.TrimSpace(m.input.Value()), true, nil
}
