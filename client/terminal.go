// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"github.com/morganforge/clix/clixlog"
	"github.com/morganforge/clix/prompt"
)

// logRateLimit and logBurst bound how fast Terminal.Log will write lines,
// so a hook stuck in a tight loop cannot flood the terminal: lines past the
// limit are dropped.
const (
	logRateLimit rate.Limit = 200
	logBurst                = 400
)

// DefaultTerminalWidth is the fallback width used when the output isn't a
// TTY or the size can't be determined.
const DefaultTerminalWidth = 80

var (
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
)

// Terminal is the default Client, writing to stdout/stderr and delegating
// interactive questions to a prompt.Transport. It detects whether stdout
// is a TTY (muesli/termenv) to decide whether to emit ANSI color.
type Terminal struct {
	Out, Err  *os.File
	Transport prompt.Transport

	mu       sync.Mutex
	colorful bool
	limiter  *rate.Limiter
}

// NewTerminal builds a Terminal writing to os.Stdout/os.Stderr.
func NewTerminal(transport prompt.Transport) *Terminal {
	return &Terminal{
		Out:       os.Stdout,
		Err:       os.Stderr,
		Transport: transport,
		colorful:  termenv.ColorProfile() != termenv.Ascii,
		limiter:   rate.NewLimiter(logRateLimit, logBurst),
	}
}

func (t *Terminal) Log(level Level, message string) {
	if !t.limiter.Allow() {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch level {
	case LevelWarn:
		fmt.Fprintln(t.Err, t.render(warnStyle, message))
	case LevelError:
		fmt.Fprintln(t.Err, t.render(errorStyle, message))
	default:
		fmt.Fprintln(t.Out, t.render(infoStyle, message))
	}
}

// Error prints err's top-level message to stderr, or, with CLIX_DEBUG=1
// set, the full %+v-rendered cause chain underneath it — the development-
// mode "full stack" spec.md §6 asks for, realized as Go's wrap chain
// rather than a captured call stack.
func (t *Terminal) Error(err error) {
	if err == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.Err, "%s %v\n", t.render(errorStyle, "Error:"), err)
	if !clixlog.DebugEnabled() {
		return
	}
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintf(t.Err, "  caused by: %+v\n", cause)
	}
}

func (t *Terminal) render(style lipgloss.Style, s string) string {
	if !t.colorful {
		return s
	}
	return style.Render(s)
}

func (t *Terminal) Prompt(ctx context.Context, req prompt.Request) (any, error) {
	return t.Transport.Prompt(ctx, req)
}

func (t *Terminal) Confirm(ctx context.Context, message string, initial bool) (bool, error) {
	v, err := t.Prompt(ctx, prompt.Request{Type: prompt.Confirm, Message: message, Initial: initial})
	if err != nil {
		return false, err
	}
	b, _ := v.(bool)
	return b, nil
}

// IsTTY reports whether stdin is a terminal, i.e. whether interactive
// prompting is even possible on this process.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Width returns the current terminal width, or DefaultTerminalWidth if it
// can't be determined (piped output, zero/negative size).
func Width() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return DefaultTerminalWidth
	}
	return w
}
