// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tui is a prompt.Transport for the widget-driven prompt types
// (select, multiselect, toggle, date) built on bubbletea/bubbles, the way
// this codebase's interactive screens are built.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/clix/prompt"
)

// ErrAborted is returned when the user cancels a widget prompt (Ctrl-C or
// Esc) without answering.
var ErrAborted = errors.New("prompt aborted")

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// Transport implements prompt.Transport for widget-based prompt types and
// delegates everything else to Fallback.
type Transport struct {
	Fallback prompt.Transport
}

// New returns a Transport that renders select/multiselect/toggle/date with
// bubbletea widgets and falls back to fallback for every other prompt.Type.
func New(fallback prompt.Transport) *Transport {
	return &Transport{Fallback: fallback}
}

// Prompt implements prompt.Transport.
func (t *Transport) Prompt(ctx context.Context, req prompt.Request) (any, error) {
	switch req.Type {
	case prompt.Select:
		return t.runSelect(req, false)
	case prompt.Multiselect:
		return t.runSelect(req, true)
	case prompt.Toggle:
		return t.runToggle(req)
	case prompt.Date:
		return t.runDate(req)
	default:
		if t.Fallback != nil {
			return t.Fallback.Prompt(ctx, req)
		}
		return nil, prompt.ErrNoTransport{}
	}
}

type choiceItem struct {
	title string
	value any
}

func (c choiceItem) Title() string       { return c.title }
func (c choiceItem) Description() string { return "" }
func (c choiceItem) FilterValue() string { return c.title }

type selectModel struct {
	list     list.Model
	multi    bool
	selected map[int]bool
	aborted  bool
	done     bool
}

func (m *selectModel) Init() tea.Cmd { return nil }

func (m *selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case " ":
			if m.multi {
				idx := m.list.Index()
				m.selected[idx] = !m.selected[idx]
				return m, nil
			}
		case "enter":
			if !m.multi {
				m.selected[m.list.Index()] = true
			}
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *selectModel) View() string {
	return m.list.View()
}

func (t *Transport) runSelect(req prompt.Request, multi bool) (any, error) {
	items := make([]list.Item, len(req.Choices))
	for i, c := range req.Choices {
		items[i] = choiceItem{title: c.Title, value: c.Value}
	}
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = req.Message
	l.Styles.Title = titleStyle

	m := &selectModel{list: l, multi: multi, selected: make(map[int]bool)}
	program := tea.NewProgram(m)
	final, err := program.Run()
	if err != nil {
		return nil, err
	}
	result := final.(*selectModel)
	if result.aborted {
		return nil, ErrAborted
	}

	if multi {
		var chosen []any
		for i, ok := range result.selected {
			if ok {
				chosen = append(chosen, req.Choices[i].Value)
			}
		}
		return chosen, nil
	}
	for i, ok := range result.selected {
		if ok {
			return req.Choices[i].Value, nil
		}
	}
	return nil, ErrAborted
}

type toggleModel struct {
	message string
	value   bool
	done    bool
	aborted bool
}

func (m *toggleModel) Init() tea.Cmd { return nil }

func (m *toggleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "left", "right", "tab", " ":
			m.value = !m.value
		case "enter":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *toggleModel) View() string {
	on, off := "On", "Off"
	if m.value {
		on = selectedStyle.Render("[On]")
		off = "Off"
	} else {
		on = "On"
		off = selectedStyle.Render("[Off]")
	}
	return fmt.Sprintf("%s\n%s / %s\n", titleStyle.Render(m.message), on, off)
}

func (t *Transport) runToggle(req prompt.Request) (any, error) {
	initial := false
	if b, ok := req.Initial.(bool); ok {
		initial = b
	}
	m := &toggleModel{message: req.Message, value: initial}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, err
	}
	result := final.(*toggleModel)
	if result.aborted {
		return nil, ErrAborted
	}
	return result.value, nil
}

type dateModel struct {
	input   textinput.Model
	done    bool
	aborted bool
}

func (m *dateModel) Init() tea.Cmd { return textinput.Blink }

func (m *dateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *dateModel) View() string {
	return m.input.View()
}

func (t *Transport) runDate(req prompt.Request) (any, error) {
	ti := textinput.New()
	ti.Placeholder = "YYYY-MM-DD"
	ti.Prompt = req.Message + ": "
	ti.Focus()
	if s, ok := req.Initial.(string); ok {
		ti.SetValue(s)
	}

	m := &dateModel{input: ti}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, err
	}
	result := final.(*dateModel)
	if result.aborted {
		return nil, ErrAborted
	}
	parsed, perr := time.Parse("2006-01-02", result.input.Value())
	if perr != nil {
		return nil, perr
	}
	return parsed, nil
}
