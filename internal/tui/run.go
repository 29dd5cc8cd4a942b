package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/spice-ledger/internal/tui/themes"
)

// ErrPromptCanceled is returned when the user leaves the prompt without
// submitting it.
var ErrPromptCanceled = errors.New("prompt canceled")

// PromptCredentials runs the credential prompt on the given terminal streams
// until the user submits or cancels it.
func PromptCredentials(ctx context.Context, in io.Reader, out io.Writer, mode Mode, username string) (Credentials, error) {
	m := NewCredentialsModel(mode, username, themes.Default)

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return Credentials{}, ErrPromptCanceled
		}
		return Credentials{}, fmt.Errorf("credential prompt failed: %w", err)
	}

	result, ok := final.(CredentialsModel)
	if !ok {
		return Credentials{}, fmt.Errorf("credential prompt returned unexpected model %T", final)
	}
	if !result.Submitted() {
		return Credentials{}, ErrPromptCanceled
	}
	return result.Credentials(), nil
}
