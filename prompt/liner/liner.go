// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package liner is a prompt.Transport backed by peterh/liner: line-edited
// text/number/password/confirm/invisible/autocomplete prompts with
// persistent history, the same way this codebase's interactive chat mode
// does line editing.
package liner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/morganforge/clix/prompt"
)

// Transport prompts on stdin/stdout via a single shared *liner.State.
type Transport struct {
	line        *liner.State
	historyFile string
}

// New returns a Transport with Ctrl-C aborting the current prompt.
// historyFile, if non-empty, is loaded on construction and saved on Close.
func New(historyFile string) *Transport {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	t := &Transport{line: line, historyFile: historyFile}
	t.loadHistory()
	return t
}

func (t *Transport) loadHistory() {
	if t.historyFile == "" {
		return
	}
	if f, err := os.Open(t.historyFile); err == nil {
		t.line.ReadHistory(f)
		f.Close()
	}
}

func (t *Transport) saveHistory() {
	if t.historyFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(t.historyFile), 0o700); err != nil {
		return
	}
	f, err := os.OpenFile(t.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	t.line.WriteHistory(f)
}

// Close saves history and releases the terminal.
func (t *Transport) Close() error {
	t.saveHistory()
	return t.line.Close()
}

// Prompt implements prompt.Transport.
func (t *Transport) Prompt(ctx context.Context, req prompt.Request) (any, error) {
	switch req.Type {
	case prompt.Password, prompt.Invisible:
		return t.promptPassword(req)
	case prompt.Confirm:
		return t.promptConfirm(req)
	case prompt.Number:
		return t.promptNumber(req)
	case prompt.Select, prompt.Autocomplete:
		return t.promptSelect(req)
	default:
		return t.promptText(req)
	}
}

func (t *Transport) promptText(req prompt.Request) (any, error) {
	label := label(req)
	for {
		answer, err := t.line.Prompt(label)
		if err != nil {
			return nil, err
		}
		if answer == "" && req.Initial != nil {
			if s, ok := req.Initial.(string); ok {
				answer = s
			}
		}
		if req.Validate != nil {
			if ok, msg := req.Validate(answer); !ok {
				fmt.Println(msg)
				continue
			}
		}
		if strings.TrimSpace(answer) != "" {
			t.line.AppendHistory(answer)
		}
		return answer, nil
	}
}

func (t *Transport) promptPassword(req prompt.Request) (any, error) {
	answer, err := t.line.PasswordPrompt(label(req))
	if err != nil {
		return nil, err
	}
	return answer, nil
}

func (t *Transport) promptConfirm(req prompt.Request) (any, error) {
	initial := false
	if b, ok := req.Initial.(bool); ok {
		initial = b
	}
	suffix := " [y/N] "
	if initial {
		suffix = " [Y/n] "
	}
	for {
		raw, err := t.line.Prompt(req.Message + suffix)
		if err != nil {
			return nil, err
		}
		raw = strings.ToLower(strings.TrimSpace(raw))
		switch raw {
		case "":
			return initial, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Println("please answer y or n")
	}
}

func (t *Transport) promptNumber(req prompt.Request) (any, error) {
	for {
		raw, err := t.line.Prompt(label(req))
		if err != nil {
			return nil, err
		}
		n, perr := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if perr != nil {
			fmt.Println("please enter a number")
			continue
		}
		if req.Validate != nil {
			if ok, msg := req.Validate(n); !ok {
				fmt.Println(msg)
				continue
			}
		}
		return n, nil
	}
}

// promptSelect renders choices as a numbered text list; the richer
// arrow-key select widget lives in prompt/tui.
func (t *Transport) promptSelect(req prompt.Request) (any, error) {
	fmt.Println(req.Message)
	for i, c := range req.Choices {
		fmt.Printf("  %d) %s\n", i+1, c.Title)
	}
	for {
		raw, err := t.line.Prompt("> ")
		if err != nil {
			return nil, err
		}
		idx, perr := strconv.Atoi(strings.TrimSpace(raw))
		if perr != nil || idx < 1 || idx > len(req.Choices) {
			fmt.Println("please enter a listed number")
			continue
		}
		return req.Choices[idx-1].Value, nil
	}
}

func label(req prompt.Request) string {
	if req.Initial != nil {
		return fmt.Sprintf("%s [%v]: ", req.Message, req.Initial)
	}
	return req.Message + ": "
}
