// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/morganforge/clix/prompt"
)

func newPipeTerminal(t *testing.T) (*Terminal, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	t.Cleanup(func() { w.Close(); r.Close() })

	term := NewTerminal(prompt.None{})
	term.Err = w
	return term, r
}

func readAll(t *testing.T, r *os.File, w *os.File) string {
	t.Helper()
	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("io.ReadAll: %v", err)
	}
	return string(out)
}

func TestTerminalErrorPrintsTopLevelMessageOnly(t *testing.T) {
	t.Setenv("CLIX_DEBUG", "")

	term, r := newPipeTerminal(t)
	w := term.Err
	cause := errors.New("disk full")
	wrapped := fmt.Errorf("save failed: %w", cause)
	term.Error(wrapped)

	out := readAll(t, r, w)
	if !strings.Contains(out, "save failed: disk full") {
		t.Fatalf("expected top-level message in output, got %q", out)
	}
	if strings.Contains(out, "caused by:") {
		t.Fatalf("did not expect a cause chain without CLIX_DEBUG, got %q", out)
	}
}

func TestTerminalErrorPrintsCauseChainWhenDebugEnabled(t *testing.T) {
	t.Setenv("CLIX_DEBUG", "1")

	term, r := newPipeTerminal(t)
	w := term.Err
	cause := errors.New("disk full")
	wrapped := fmt.Errorf("save failed: %w", cause)
	term.Error(wrapped)

	out := readAll(t, r, w)
	if !strings.Contains(out, "save failed: disk full") {
		t.Fatalf("expected top-level message in output, got %q", out)
	}
	if !strings.Contains(out, "caused by: disk full") {
		t.Fatalf("expected CLIX_DEBUG=1 to print the cause chain, got %q", out)
	}
}

func TestTerminalErrorHandlesNilWithoutPanicking(t *testing.T) {
	term, r := newPipeTerminal(t)
	w := term.Err
	term.Error(nil)

	out := readAll(t, r, w)
	if out != "" {
		t.Fatalf("expected no output for a nil error, got %q", out)
	}
}
