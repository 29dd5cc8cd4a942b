// Package tui implements the interactive terminal prompts of the ledger CLI
// using bubbletea.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/spice-ledger/internal/tui/themes"
)

// Mode selects which fields the credential prompt asks for.
type Mode int

const (
	// ModeLogin asks for a username and password.
	ModeLogin Mode = iota
	// ModeSignup additionally asks for the password a second time.
	ModeSignup
)

const (
	fieldUsername = iota
	fieldPassword
	fieldConfirm
)

// Credentials is what the user entered.
type Credentials struct {
	Username string
	Password string
}

// CredentialsModel is a bubbletea model that collects a username and a
// masked password.
type CredentialsModel struct {
	theme     themes.Theme
	keymap    KeyMap
	help      help.Model
	err       string
	inputs    []textinput.Model
	focus     int
	mode      Mode
	submitted bool
	canceled  bool
}

// NewCredentialsModel creates the prompt. A non-empty username is filled in
// and the cursor starts on the password field.
func NewCredentialsModel(mode Mode, username string, theme themes.Theme) CredentialsModel {
	count := 2
	if mode == ModeSignup {
		count = 3
	}

	inputs := make([]textinput.Model, count)
	for i := range inputs {
		in := textinput.New()
		in.CharLimit = 128
		in.Prompt = ""
		if i != fieldUsername {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		inputs[i] = in
	}
	inputs[fieldUsername].Placeholder = "username"
	inputs[fieldUsername].CharLimit = 64
	inputs[fieldUsername].SetValue(username)

	m := CredentialsModel{
		theme:  theme,
		keymap: DefaultKeyMap(),
		help:   help.New(),
		inputs: inputs,
		mode:   mode,
	}

	first := fieldUsername
	if strings.TrimSpace(username) != "" {
		first = fieldPassword
	}
	m.setFocus(first)
	return m
}

// Init returns initial commands.
func (m CredentialsModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses.
func (m CredentialsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keymap.Quit):
		m.canceled = true
		return m, tea.Quit

	case key.Matches(keyMsg, m.keymap.NextField):
		return m, m.setFocus((m.focus + 1) % len(m.inputs))

	case key.Matches(keyMsg, m.keymap.PrevField):
		return m, m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))

	case key.Matches(keyMsg, m.keymap.Submit):
		if m.focus < len(m.inputs)-1 {
			return m, m.setFocus(m.focus + 1)
		}
		if field, problem := m.validate(); problem != "" {
			m.err = problem
			if field == fieldConfirm {
				m.inputs[fieldConfirm].SetValue("")
			}
			return m, m.setFocus(field)
		}
		m.err = ""
		m.submitted = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(keyMsg)
	return m, cmd
}

// validate returns the first field with a problem and a message for it.
func (m CredentialsModel) validate() (int, string) {
	if strings.TrimSpace(m.inputs[fieldUsername].Value()) == "" {
		return fieldUsername, "Username is required"
	}
	if m.inputs[fieldPassword].Value() == "" {
		return fieldPassword, "Password is required"
	}
	if m.mode == ModeSignup && m.inputs[fieldConfirm].Value() != m.inputs[fieldPassword].Value() {
		return fieldConfirm, "Passwords do not match"
	}
	return 0, ""
}

func (m *CredentialsModel) setFocus(field int) tea.Cmd {
	m.focus = field
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == field {
			cmd = m.inputs[i].Focus()
			continue
		}
		m.inputs[i].Blur()
	}
	return cmd
}

// View renders the prompt.
func (m CredentialsModel) View() string {
	if m.submitted || m.canceled {
		return ""
	}

	title := "Log in"
	if m.mode == ModeSignup {
		title = "Create an account"
	}

	labels := []string{"Username", "Password", "Confirm"}
	rows := make([]string, 0, len(m.inputs)+3)
	rows = append(rows, m.theme.Title.Render(title))
	for i, in := range m.inputs {
		label := m.theme.Label.Render(labels[i])
		if i == m.focus {
			label = m.theme.Focused.Render(labels[i])
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, label, in.View()))
	}
	if m.err != "" {
		rows = append(rows, "", m.theme.StatusError.Render(m.err))
	}
	rows = append(rows, m.theme.Help.Render(m.help.ShortHelpView(m.keymap.ShortHelp())))

	return m.theme.RoundedBox.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// Submitted reports whether the user confirmed the form.
func (m CredentialsModel) Submitted() bool {
	return m.submitted
}

// Canceled reports whether the user backed out of the prompt.
func (m CredentialsModel) Canceled() bool {
	return m.canceled
}

// Credentials returns the entered values.
func (m CredentialsModel) Credentials() Credentials {
	return Credentials{
		Username: strings.TrimSpace(m.inputs[fieldUsername].Value()),
		Password: m.inputs[fieldPassword].Value(),
	}
}
