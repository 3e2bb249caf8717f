// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/paperchat/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/paperchat/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/paperchat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/paperchat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/paperchat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/paperchat/internal/core/domain"
	"github.com/custodia-labs/paperchat/internal/core/ports/driving"
)

// resetCommand typed as a question clears the conversation, as in `paperchat chat`.
const resetCommand = "/reset"

// Rows taken by the title, the input box and the status bar.
const chromeHeight = 6

// exchange is one question with its answer as shown on screen.
type exchange struct {
	question string
	result   domain.AnswerResult
}

// View shows the conversation above a question input and a status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	viewport  viewport.Model
	statusbar *status.Bar

	pipeline driving.Pipeline
	ctx      context.Context

	exchanges []exchange
	pending   string

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, pipeline driving.Pipeline) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:    s,
		keymap:    km,
		input:     input.NewQuestionInput(s),
		viewport:  viewport.New(80, 18),
		statusbar: status.NewBar(s, km),
		pipeline:  pipeline,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
	if pipeline != nil {
		v.statusbar.SetIndex(pipeline.Info())
	}
	v.refresh()
	return v
}

// WithContext sets the context passed to the pipeline.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReady:
		v.handleAnswer(msg)
		return v, v.input.Focus()

	case messages.ConversationReset:
		v.exchanges = nil
		v.err = nil
		v.statusbar.Clear()
		v.statusbar.SetMessage("Conversation cleared")
		v.refresh()
		return v, nil

	case messages.ErrorOccurred:
		v.pending = ""
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		v.refresh()
		return v, v.input.Focus()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, v.keymap.ScrollUp):
		v.viewport.PageUp()
		return v, nil
	case keymap.Matches(key, v.keymap.ScrollDown):
		v.viewport.PageDown()
		return v, nil
	}

	// One question at a time; the pipeline serialises asks anyway.
	if v.pending != "" {
		return v, nil
	}

	switch {
	case keymap.Matches(key, v.keymap.Reset):
		return v, v.reset()

	case keymap.Matches(key, v.keymap.Ask):
		question := strings.TrimSpace(v.input.Value())
		if question == "" {
			return v, nil
		}
		v.input.Reset()
		if question == resetCommand {
			return v, v.reset()
		}

		v.pending = question
		v.err = nil
		v.statusbar.SetMessage("")
		v.statusbar.SetState(status.StateThinking)
		v.input.Blur()
		v.refresh()
		return v, v.ask(question)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask runs the question through the pipeline off the UI goroutine.
func (v *View) ask(question string) tea.Cmd {
	return func() tea.Msg {
		if v.pipeline == nil {
			return messages.ErrorOccurred{Err: ErrNoPipeline}
		}
		return messages.AnswerReady{Question: question, Result: v.pipeline.Ask(v.ctx, question)}
	}
}

func (v *View) reset() tea.Cmd {
	return func() tea.Msg {
		if v.pipeline == nil {
			return messages.ErrorOccurred{Err: ErrNoPipeline}
		}
		v.pipeline.Reset()
		return messages.ConversationReset{}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReady) {
	v.pending = ""
	v.exchanges = append(v.exchanges, exchange{question: msg.Question, result: msg.Result})
	v.statusbar.SetTurns(len(v.exchanges))

	if msg.Result.Degraded() {
		v.err = msg.Result.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(domain.UserMessage(msg.Result.Err))
	} else {
		v.err = nil
		v.statusbar.SetState(status.StateReady)
	}
	v.refresh()
}

// refresh re-renders the conversation and scrolls to the latest turn.
func (v *View) refresh() {
	v.viewport.SetContent(v.renderConversation())
	v.viewport.GotoBottom()
}

func (v *View) renderConversation() string {
	width := max(v.viewport.Width-2, 20)
	wrap := func(style lipgloss.Style, s string) string {
		return style.Width(width).Render(s)
	}

	if len(v.exchanges) == 0 && v.pending == "" {
		return v.styles.Muted.Render("Ask a question about the indexed papers. Answers cite their sources.")
	}

	var b strings.Builder
	for _, ex := range v.exchanges {
		b.WriteString(wrap(v.styles.Question, "You: "+ex.question))
		b.WriteString("\n\n")

		if ex.result.Degraded() {
			b.WriteString(wrap(v.styles.Degraded, ex.result.Answer))
		} else {
			b.WriteString(wrap(v.styles.Answer, ex.result.Answer))
		}
		b.WriteString("\n")

		if len(ex.result.Citations) > 0 {
			b.WriteString("\n")
			b.WriteString(v.styles.Subtitle.Render("Sources"))
			b.WriteString("\n")
			for _, c := range ex.result.Citations {
				b.WriteString(wrap(v.styles.Citation, c))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	if v.pending != "" {
		b.WriteString(wrap(v.styles.Question, "You: "+v.pending))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Muted.Render("Thinking..."))
	}
	return b.String()
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render("paperchat"),
		v.viewport.View(),
		v.input.View(),
		v.statusbar.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.viewport.Width = width
	v.viewport.Height = max(height-chromeHeight, 3)
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Pending returns the question awaiting an answer, or "".
func (v *View) Pending() string {
	return v.pending
}

// Turns returns the number of answered questions on screen.
func (v *View) Turns() int {
	return len(v.exchanges)
}

// Input returns the text typed so far.
func (v *View) Input() string {
	return v.input.Value()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// StatusBar exposes the status bar for the app's help mode.
func (v *View) StatusBar() *status.Bar {
	return v.statusbar
}
