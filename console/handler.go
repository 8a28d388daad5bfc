package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

const msgUnknownCommand = "Unknown command: "

// ActionFunc executes one command. args is the rest of the command line after the command name.
type ActionFunc func(ctx context.Context, args string, session *Session) error

type actionInfo struct {
	args        string
	description string
	action      ActionFunc
}

// Handler is a registry of named console actions.
type Handler struct {
	actions map[string]actionInfo
}

// NewHandler creates an empty Handler.
func NewHandler() *Handler {
	return &Handler{actions: make(map[string]actionInfo)}
}

// AddAction registers an action under name. The first registration of a name wins.
func (h *Handler) AddAction(name, args, description string, action ActionFunc) {
	if _, exists := h.actions[name]; exists {
		return
	}

	h.actions[name] = actionInfo{args: args, description: description, action: action}
}

// ParseCommand reads one command line from the session and runs the matching action.
// It reports false when the input is exhausted or the action failed.
// Blank lines are skipped and unknown commands are reported to the user, both keep the loop going.
func (h *Handler) ParseCommand(ctx context.Context, session *Session) (bool, error) {
	line, err := session.ReadLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}

		return false, err
	}

	name, args, _ := strings.Cut(strings.TrimSpace(line), " ")
	if name == "" {
		return true, nil
	}

	info, found := h.actions[name]
	if !found {
		session.Println(msgUnknownCommand + name)
		return true, nil
	}

	if actionErr := info.action(ctx, args, session); actionErr != nil {
		return false, actionErr
	}

	return true, nil
}

// Run processes commands until the input is exhausted, an action fails, or ctx is done.
func (h *Handler) Run(ctx context.Context, session *Session) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		next, err := h.ParseCommand(ctx, session)
		if err != nil {
			return err
		}

		if !next {
			return nil
		}
	}
}

// PrintCommandsInfo writes the list of registered commands sorted by name.
func (h *Handler) PrintCommandsInfo(w io.Writer) {
	names := make([]string, 0, len(h.actions))
	for name := range h.actions {
		names = append(names, name)
	}
	sort.Strings(names)

	_, _ = fmt.Fprintln(w, "Commands:")
	for _, name := range names {
		info := h.actions[name]
		_, _ = fmt.Fprintf(w, "|- %s %s %s\n", name, info.args, info.description)
	}
}
