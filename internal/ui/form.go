package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// field is a labelled text input.
type field struct {
	label string
	input textinput.Model
}

// form is a column of fields with one focused at a time.
type form struct {
	fields []field
	focus  int
}

func newField(label, placeholder string, secret bool) field {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 256
	in.Width = 40
	if secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	return field{label: label, input: in}
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.fields[i].input.Value())
}

func (f *form) set(i int, v string) {
	f.fields[i].input.SetValue(v)
}

func (f *form) reset() {
	for i := range f.fields {
		f.fields[i].input.Reset()
	}
}

// focusAt moves focus to i and returns the cursor blink command.
func (f *form) focusAt(i int) tea.Cmd {
	n := len(f.fields)
	f.focus = ((i % n) + n) % n
	for j := range f.fields {
		f.fields[j].input.Blur()
	}
	return f.fields[f.focus].input.Focus()
}

func (f *form) next() tea.Cmd { return f.focusAt(f.focus + 1) }
func (f *form) prev() tea.Cmd { return f.focusAt(f.focus - 1) }

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *form) view(visible func(i int) bool) string {
	var b strings.Builder
	for i, fl := range f.fields {
		if visible != nil && !visible(i) {
			continue
		}
		label := styles.label.Render(fl.label)
		if i == f.focus {
			label = styles.active.Width(10).Render(fl.label)
		}
		b.WriteString(label + " " + fl.input.View() + "\n")
	}
	return b.String()
}
