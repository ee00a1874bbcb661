package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/picatz/chatcli"
	"github.com/picatz/chatcli/internal/chat/storage"
	"github.com/picatz/chatcli/internal/chat/thread"
	"golang.org/x/term"
)

// CommandFunc defines the function signature for executing a command.
type CommandFunc func(ctx context.Context, session *Session, input string)

// Command represents a built-in session command with a name, an
// optional matching function, and an execution function.
type Command struct {
	// Name of the command.
	//
	// If Matches is nil, the command is executed when the input matches the name.
	Name string

	// Description of the command.
	Description string

	// Matches is a function that checks if the command matches the input.
	//
	// If Matches is nil, the command is executed when the input matches the name.
	// If Matches is not nil, the command is executed when Matches returns true.
	Matches func(input string) bool

	// Run is the function that executes the command.
	Run CommandFunc
}

// builtinCommands are the built-in commands available in the
// interactive session, used for inspecting the conversation without
// consuming an exchange.
var builtinCommands = []Command{
	{
		Name:        "/exit",
		Description: "End the session.",
		// Exiting is a special case, used for documentation.
	},
	{
		Name:        "/clear",
		Description: "Clear the terminal screen.",
		Run: func(ctx context.Context, s *Session, input string) {
			s.clearScreen()
		},
	},
	{
		Name:        "/help",
		Description: "Show help for commands.",
		Run: func(ctx context.Context, s *Session, input string) {
			s.ShowHelp()
		},
	},
	{
		Name:        "/messages",
		Description: "Show the messages of the current thread.",
		Run: func(ctx context.Context, s *Session, input string) {
			for _, msg := range s.Thread.Messages {
				s.OutWriter.WriteString(fmt.Sprintf("\n\t%s: %s\n", msg.Role, msg.Content))
			}
		},
	},
	{
		Name: "/history",
		Matches: func(input string) bool {
			// Matches "/history" or "/history <number>".
			switch {
			case strings.TrimSpace(input) == "/history":
				return true
			case strings.HasPrefix(strings.TrimSpace(input), "/history "):
				parts := strings.Fields(input)
				if len(parts) == 2 {
					_, err := strconv.Atoi(parts[1])
					return err == nil
				}
				return false
			default:
				return false
			}
		},
		Description: "Show recent exchanges from the history cache.",
		Run: func(ctx context.Context, s *Session, input string) {
			if s.Driver.History == nil {
				s.OutWriter.WriteString("History is not enabled.\n")
				return
			}

			// Default to showing the last 10 exchanges if no number is provided.
			numToShow := 10
			if parts := strings.Fields(input); len(parts) == 2 {
				if num, err := strconv.Atoi(parts[1]); err == nil {
					numToShow = num
				}
			}

			if numToShow <= 0 {
				s.OutWriter.WriteString("Invalid number of exchanges to show.\n")
				return
			}

			entries, _, err := s.Driver.History.List(ctx, storage.PageSize(numToShow), nil)
			if err != nil {
				s.OutWriter.WriteString(fmt.Sprintf("Error listing history: %s\n", err))
				return
			}

			for key, pair := range entries {
				s.OutWriter.WriteString(fmt.Sprintf("\t%s (%s): %s\n\n", pair.Req.Role, key, pair.Req.Content))
				s.OutWriter.WriteString(fmt.Sprintf("\t%s (%s): %s\n\n", pair.Resp.Role, key, pair.Resp.Content))
				s.OutWriter.WriteString("---\n")
			}
		},
	},
}

// Session encapsulates the state and behavior of an interactive chat
// session: terminal I/O, the current thread, and command processing.
//
// The thread is persisted (and the active marker moved) after every
// successful exchange, never on a failed one.
type Session struct {
	Driver *Driver
	Store  *thread.Store
	Active thread.Active
	Thread thread.Thread

	Terminal   *term.Terminal
	OutWriter  *bufio.Writer
	TermWidth  int
	TermHeight int
	Commands   []Command
}

// NewSession creates and initializes a new interactive chat session
// operating on the given thread.
//
// If w is a real terminal it is put into raw mode, and the returned
// restoration function must be called to reset it on exit.
func NewSession(driver *Driver, store *thread.Store, active thread.Active, th thread.Thread, r io.Reader, w io.Writer) (*Session, func(), error) {
	var (
		restoreFunc     = func() {} // Default no-op restore function.
		termWidth   int = 80        // Terminal width (default 80).
		termHeight  int = 24        // Terminal height (default 24).
	)

	// If we're running in a terminal, set it to "raw" mode.
	if stdout, ok := w.(*os.File); ok && term.IsTerminal(int(stdout.Fd())) {
		fd := int(stdout.Fd())

		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to set terminal to raw mode: %w", err)
		}

		restoreFunc = func() {
			if err := term.Restore(fd, oldState); err != nil {
				fmt.Fprintf(os.Stderr, "\nfailed to restore terminal: %s\n", err)
			}
		}

		termWidth, termHeight, err = term.GetSize(fd)
		if err != nil {
			restoreFunc()
			return nil, nil, fmt.Errorf("failed to get terminal size while creating new chat session: %w", err)
		}
	}

	// Combine the reader and writer into a single io.ReadWriter.
	termReadWriter := struct {
		io.Reader
		io.Writer
	}{r, w}

	t := term.NewTerminal(termReadWriter, "")

	t.SetSize(termWidth, termHeight)

	outWriter := bufio.NewWriter(t)

	cs := &Session{
		Driver:     driver,
		Store:      store,
		Active:     active,
		Thread:     th,
		Terminal:   t,
		OutWriter:  outWriter,
		TermWidth:  termWidth,
		TermHeight: termHeight,
		Commands:   builtinCommands,
	}

	// Route the driver's debug and informational output through the
	// session's writer so it interleaves correctly with the prompt.
	cs.Driver.Out = outWriter

	// Set up tab-completion for the built-in commands.
	t.AutoCompleteCallback = cs.autoComplete

	return cs, restoreFunc, nil
}

func (cs *Session) ShowHelp() {
	cs.OutWriter.WriteString(lipgloss.NewStyle().Bold(true).Render("Commands") + " " +
		lipgloss.NewStyle().Faint(true).Render("(tab complete)") + "\n\n")

	for _, cmd := range cs.Commands {
		cs.OutWriter.WriteString("- " + lipgloss.NewStyle().Faint(true).Render(cmd.Name) + ": " + cmd.Description + "\n")
	}

	cs.OutWriter.WriteString("\n")
	cs.OutWriter.Flush()
}

// Run starts the main loop of the chat session, reading one line of
// input at a time until the user exits.
func (cs *Session) Run(ctx context.Context) {
	if len(cs.Thread.Messages) == 0 {
		cs.OutWriter.WriteString(lipgloss.NewStyle().Bold(true).Render("Welcome to the chat prompt!") + "\n\n")
		cs.ShowHelp()
	}

	for {
		done, err := cs.RunOnce(ctx)
		if err != nil {
			cs.OutWriter.WriteString(fmt.Sprintf("Error: %s\n", err))
			cs.OutWriter.Flush()
			if !done {
				continue
			}
		}

		if done {
			break
		}
	}
}

func doneWithoutError() (bool, error) {
	return true, nil
}

func nonFatalError(err error) (bool, error) {
	return false, err
}

func fatalError(err error) (bool, error) {
	return true, err
}

func ranSuccessfully() (bool, error) {
	return false, nil
}

// RunOnce handles a single line of input: a blank line re-prompts
// without consuming a turn, an exit or built-in command is handled in
// place, and anything else becomes one exchange.
func (cs *Session) RunOnce(ctx context.Context) (bool, error) {
	cs.OutWriter.WriteString("‣ ")
	cs.OutWriter.Flush()

	input, err := cs.Terminal.ReadLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return doneWithoutError()
		}
		return fatalError(fmt.Errorf("failed to read input: %w", err))
	}

	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ranSuccessfully()
	}

	if strings.EqualFold(trimmed, "/exit") {
		return doneWithoutError()
	}

	// Process built-in commands; if one runs, the input is consumed
	// without an exchange.
	if cs.processInput(ctx, input) {
		return ranSuccessfully()
	}

	if err := cs.Ask(ctx, input); err != nil {
		return nonFatalError(err)
	}

	return ranSuccessfully()
}

// Ask performs one exchange with query as if the user had typed it,
// rendering the reply and persisting the thread on success.
//
// On exchange failure the thread is NOT saved, so the failed turn
// never reaches durable storage.
func (cs *Session) Ask(ctx context.Context, query string) error {
	if err := cs.Driver.Exchange(ctx, &cs.Thread, query); err != nil {
		return err
	}

	if last := cs.Thread.Messages[len(cs.Thread.Messages)-1]; last.Role == chatcli.ChatRoleAssistant {
		cs.OutWriter.WriteString(RenderMarkdown(strings.TrimRight(last.Content, "\n"), cs.TermWidth))
		cs.OutWriter.Flush()
	}

	if err := cs.Store.Save(ctx, cs.Thread); err != nil {
		// Loss-tolerant: report and carry on with the in-memory thread.
		cs.OutWriter.WriteString(fmt.Sprintf("Failed to save thread: %s\n", err))
		cs.OutWriter.Flush()
		return nil
	}

	if err := cs.Active.Set(cs.Thread.ID); err != nil {
		cs.OutWriter.WriteString(fmt.Sprintf("Failed to update active thread marker: %s\n", err))
		cs.OutWriter.Flush()
	}

	return nil
}

// processInput iterates over the built-in commands to see if any match the input.
// If a command matches, it is executed and the function returns true.
func (cs *Session) processInput(ctx context.Context, input string) bool {
	// Ensure the output writer is flushed after each command execution,
	// to avoid common boilerplate code that each command wants to do.
	defer cs.OutWriter.Flush()

	for _, cmd := range cs.Commands {
		switch {
		case cmd.Matches == nil:
			if strings.TrimSpace(input) == cmd.Name {
				if cmd.Run != nil {
					cmd.Run(ctx, cs, input)
				}
				return true
			}
		case cmd.Matches(input):
			if cmd.Run != nil {
				cmd.Run(ctx, cs, input)
			}
			return true
		}
	}

	return false
}

// clearScreen clears the terminal.
func (cs *Session) clearScreen() {
	cs.OutWriter.WriteString("\033[2J") // Clear the screen.
	cs.OutWriter.WriteString("\033[H")  // Move cursor to the top-left corner.
	cs.OutWriter.Flush()
}

// autoComplete provides basic tab-completion for the built-in commands.
func (cs *Session) autoComplete(line string, pos int, key rune) (string, int, bool) {
	if key == '\t' {
		for _, cmd := range cs.Commands {
			if strings.HasPrefix(cmd.Name, line) {
				return cmd.Name, len(cmd.Name), true
			}
		}
	}
	return line, pos, false
}
