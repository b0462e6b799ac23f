package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/plbridge/internal/services"
	"github.com/desertthunder/plbridge/internal/shared"
)

var (
	_ services.Prompter = (*LinePrompter)(nil)
	_ services.Prompter = (*TextPrompter)(nil)
)

// LinePrompter reads answers one line at a time. It serves non-interactive input such as pipes.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

type line struct {
	text string
	err  error
}

func (p *LinePrompter) readLine(ctx context.Context) (string, error) {
	ch := make(chan line, 1)
	go func() {
		text, err := p.in.ReadString('\n')
		ch <- line{text, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l := <-ch:
		if l.err != nil && !(errors.Is(l.err, io.EOF) && l.text != "") {
			return "", fmt.Errorf("%w: %v", shared.ErrPromptClosed, l.err)
		}
		return strings.TrimSpace(l.text), nil
	}
}

func (p *LinePrompter) Ask(ctx context.Context, question, fallback string) (string, error) {
	if fallback != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, fallback)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}

	answer, err := p.readLine(ctx)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return fallback, nil
	}
	return answer, nil
}

func (p *LinePrompter) Confirm(ctx context.Context, question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	answer, err := p.readLine(ctx)
	if err != nil {
		return false, err
	}
	return isYes(answer), nil
}

func (p *LinePrompter) Wait(ctx context.Context, message string) error {
	fmt.Fprintf(p.out, "%s ", message)
	_, err := p.readLine(ctx)
	return err
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// TextPrompter asks each question with a small bubbletea program built on [textinput].
type TextPrompter struct {
	In  io.Reader
	Out io.Writer
}

func (p *TextPrompter) Ask(ctx context.Context, question, fallback string) (string, error) {
	answer, err := p.run(ctx, newPromptModel(question, fallback))
	if err != nil {
		return "", err
	}
	if answer == "" {
		return fallback, nil
	}
	return answer, nil
}

func (p *TextPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	answer, err := p.run(ctx, newPromptModel(question+" (y/N)", ""))
	if err != nil {
		return false, err
	}
	return isYes(answer), nil
}

func (p *TextPrompter) Wait(ctx context.Context, message string) error {
	m := newPromptModel(message, "")
	m.input.Placeholder = "press enter"
	_, err := p.run(ctx, m)
	return err
}

func (p *TextPrompter) run(ctx context.Context, m promptModel) (string, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}
	if p.Out != nil {
		opts = append(opts, tea.WithOutput(p.Out))
	}

	final, err := tea.NewProgram(m, opts...).Run()
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrPromptClosed, err)
	}

	result := final.(promptModel)
	if result.cancelled {
		return "", shared.ErrPromptClosed
	}
	return strings.TrimSpace(result.input.Value()), nil
}

// promptModel is a single-question form.
type promptModel struct {
	question  string
	input     textinput.Model
	done      bool
	cancelled bool
}

func newPromptModel(question, fallback string) promptModel {
	ti := textinput.New()
	ti.Placeholder = fallback
	ti.Prompt = "> "
	ti.Focus()
	return promptModel{question: question, input: ti}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return styles.title.UnsetMarginBottom().Render(m.question) + "\n" + m.input.View() + "\n" + styles.help.Render("enter to submit, esc to cancel") + "\n"
}
