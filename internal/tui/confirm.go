package tui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// Confirm asks question on out and reads one answer from in. Only "y" (any
// case, surrounding space ignored) confirms. A terminal on in gets an
// interactive prompt; anything else is read line by line.
func Confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		return confirmInteractive(f, out, question)
	}
	return confirmLine(in, out, question)
}

// IsYes reports whether answer is affirmative.
func IsYes(answer string) bool {
	return strings.ToLower(strings.TrimSpace(answer)) == "y"
}

func confirmLine(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	if errors.Is(err, io.EOF) && answer == "" {
		fmt.Fprintln(out)
	}
	return IsYes(answer), nil
}

func confirmInteractive(in *os.File, out io.Writer, question string) (bool, error) {
	program := tea.NewProgram(newConfirmModel(question), tea.WithInput(in), tea.WithOutput(out))
	final, err := program.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(confirmModel)
	if !ok {
		return false, fmt.Errorf("prompt: unexpected model %T", final)
	}
	return m.confirmed, nil
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// confirmModel is a one-line text prompt answered with enter.
type confirmModel struct {
	question  string
	answer    []rune
	done      bool
	confirmed bool
}

func newConfirmModel(question string) confirmModel {
	return confirmModel{question: question}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyEnter:
		m.done = true
		m.confirmed = IsYes(string(m.answer))
		return m, tea.Quit
	case tea.KeyCtrlC, tea.KeyEsc, tea.KeyCtrlD:
		m.done = true
		m.confirmed = false
		return m, tea.Quit
	case tea.KeyBackspace:
		if len(m.answer) > 0 {
			m.answer = m.answer[:len(m.answer)-1]
		}
	case tea.KeySpace:
		m.answer = append(m.answer, ' ')
	case tea.KeyRunes:
		m.answer = append(m.answer, key.Runes...)
	}
	return m, nil
}

func (m confirmModel) View() string {
	line := questionStyle.Render(m.question) + " " + answerStyle.Render(string(m.answer))
	if !m.done {
		return line + hintStyle.Render("█")
	}
	if !m.confirmed {
		return line + " " + declineStyle.Render("(no)") + "\n"
	}
	return line + "\n"
}
