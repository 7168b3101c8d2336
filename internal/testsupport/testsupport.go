// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package testsupport holds fixtures shared across this module's package
// tests: a fake in-memory ModuleLoader, a recording Client, and a scripted
// prompt.Transport, grounded on the teacher's own test-double style in
// commands_test.go and cli_test.go (hand-rolled fakes, no mocking library).
package testsupport

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/morganforge/clix"
	"github.com/morganforge/clix/client"
	"github.com/morganforge/clix/prompt"
)

var paramSegmentPattern = regexp.MustCompile(`^\[(\.\.\.)?([A-Za-z0-9_]+)\]$`)

// MemLoader is an in-memory clix.ModuleLoader for tests: modules are
// registered by their commands-relative path ("", "users", "users/[id]",
// "users/[...rest]") without touching the filesystem.
type MemLoader struct {
	modules map[string]*clix.CommandModule
	dirs    map[string]bool
}

// NewMemLoader returns an empty MemLoader.
func NewMemLoader() *MemLoader {
	return &MemLoader{
		modules: make(map[string]*clix.CommandModule),
		dirs:    make(map[string]bool),
	}
}

// Register adds a module at commandPath ("" for the root command) and
// marks every ancestor as a directory.
func (l *MemLoader) Register(commandPath string, module *clix.CommandModule) {
	l.modules[commandPath] = module
	for dir := path.Dir(commandPath); dir != "." && dir != "/"; dir = path.Dir(dir) {
		l.dirs[dir] = true
	}
}

// RegisterDir marks dir as traversable even without a module of its own,
// mirroring a real directory that only holds subcommands.
func (l *MemLoader) RegisterDir(dir string) {
	l.dirs[dir] = true
}

func (l *MemLoader) Join(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

func (l *MemLoader) Load(ctx context.Context, p string) (*clix.CommandModule, error) {
	if m, ok := l.modules[p]; ok {
		return m, nil
	}
	return nil, nil
}

func (l *MemLoader) IsDir(ctx context.Context, p string) (string, bool) {
	if p == "" || l.dirs[p] {
		return p, true
	}
	return "", false
}

// ParamEntries implements clix.ModuleLoader: it finds dir's immediate
// `[name]`/`[...name]` child segments (not segments nested further down,
// e.g. "dir/[id]/delete" is not itself a param entry of dir), keeping
// only those that also have a registered module, mirroring fsloader's
// one-directory-level-at-a-time semantics.
func (l *MemLoader) ParamEntries(ctx context.Context, dir string) ([]clix.ParamEntry, error) {
	prefix := dir + "/"
	if dir == "" {
		prefix = ""
	}

	seen := make(map[string]bool)
	var entries []clix.ParamEntry
	consider := func(childPath string) {
		segment := strings.TrimPrefix(childPath, prefix)
		if idx := strings.Index(segment, "/"); idx >= 0 {
			segment = segment[:idx]
		}
		if seen[segment] {
			return
		}
		m := paramSegmentPattern.FindStringSubmatch(segment)
		if m == nil {
			return
		}
		seen[segment] = true

		childKey := l.Join(dir, segment)
		module, ok := l.modules[childKey]
		if !ok {
			return
		}
		var childDir string
		if l.dirs[childKey] {
			childDir = childKey
		}
		entries = append(entries, clix.ParamEntry{
			Name:   m[2],
			Rest:   m[1] == "...",
			Module: module,
			Dir:    childDir,
		})
	}

	for p := range l.modules {
		if p != dir && strings.HasPrefix(p, prefix) {
			consider(p)
		}
	}
	for d := range l.dirs {
		if d != dir && strings.HasPrefix(d, prefix) {
			consider(d)
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// SiblingNames implements clix.SiblingLister, for tests exercising
// NotFoundError's "did you mean" suggestion.
func (l *MemLoader) SiblingNames(ctx context.Context, dir string) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(childPath string) {
		rel := strings.TrimPrefix(childPath, dir)
		rel = strings.TrimPrefix(rel, "/")
		if idx := strings.Index(rel, "/"); idx >= 0 {
			rel = rel[:idx]
		}
		if rel == "" || strings.HasPrefix(rel, "[") || seen[rel] {
			return
		}
		seen[rel] = true
		names = append(names, rel)
	}
	prefix := dir + "/"
	if dir == "" {
		prefix = ""
	}
	for p := range l.modules {
		if p == dir || strings.HasPrefix(p, prefix) {
			add(p)
		}
	}
	for d := range l.dirs {
		if strings.HasPrefix(d, prefix) && d != dir {
			add(d)
		}
	}
	sort.Strings(names)
	return names
}

// RecordingClient is a client.Client that appends every call to Logs/Errors
// and answers prompts from a caller-supplied Transport (Script, typically).
type RecordingClient struct {
	Transport prompt.Transport
	Logs      []string
	Errors    []error
}

// NewRecordingClient returns a RecordingClient answering prompts via transport.
func NewRecordingClient(transport prompt.Transport) *RecordingClient {
	return &RecordingClient{Transport: transport}
}

func (c *RecordingClient) Log(level client.Level, message string) {
	c.Logs = append(c.Logs, fmt.Sprintf("[%d] %s", level, message))
}

func (c *RecordingClient) Error(err error) {
	c.Errors = append(c.Errors, err)
}

func (c *RecordingClient) Prompt(ctx context.Context, req prompt.Request) (any, error) {
	if c.Transport == nil {
		return nil, prompt.ErrNoTransport{}
	}
	return c.Transport.Prompt(ctx, req)
}

func (c *RecordingClient) Confirm(ctx context.Context, message string, initial bool) (bool, error) {
	v, err := c.Prompt(ctx, prompt.Request{Type: prompt.Confirm, Message: message, Initial: initial})
	if err != nil {
		return false, err
	}
	b, _ := v.(bool)
	return b, nil
}

// Script is a prompt.Transport that answers prompts from a fixed,
// in-order list of canned answers, failing loudly if it runs out —
// grounded on the teacher's scripted-stdin test helpers in cli_test.go.
type Script struct {
	Answers []any
	calls   int
}

// NewScript returns a Script that answers with answers in order.
func NewScript(answers ...any) *Script {
	return &Script{Answers: answers}
}

func (s *Script) Prompt(ctx context.Context, req prompt.Request) (any, error) {
	if s.calls >= len(s.Answers) {
		return nil, fmt.Errorf("testsupport: Script exhausted after %d answers, got prompt %q", s.calls, req.Message)
	}
	answer := s.Answers[s.calls]
	s.calls++
	return answer, nil
}

// Calls reports how many prompts have been answered so far.
func (s *Script) Calls() int { return s.calls }
