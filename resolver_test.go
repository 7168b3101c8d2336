// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package clix

import (
	"context"
	"path"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganforge/clix/internal/clixerr"
)

// fakeLoader is a minimal in-memory ModuleLoader for these white-box
// resolver tests. It is a local copy of internal/testsupport.MemLoader's
// behavior: that package imports this one (to reference CommandModule and
// ParamEntry), so it can't be imported back from a same-package (white-box)
// test file without an import cycle.
var fakeParamSegmentPattern = regexp.MustCompile(`^\[(\.\.\.)?([A-Za-z0-9_]+)\]$`)

type fakeLoader struct {
	modules map[string]*CommandModule
	dirs    map[string]bool
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		modules: make(map[string]*CommandModule),
		dirs:    make(map[string]bool),
	}
}

func (l *fakeLoader) Register(commandPath string, module *CommandModule) {
	l.modules[commandPath] = module
	for dir := path.Dir(commandPath); dir != "." && dir != "/"; dir = path.Dir(dir) {
		l.dirs[dir] = true
	}
}

func (l *fakeLoader) RegisterDir(dir string) {
	l.dirs[dir] = true
}

func (l *fakeLoader) Join(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

func (l *fakeLoader) Load(ctx context.Context, p string) (*CommandModule, error) {
	if m, ok := l.modules[p]; ok {
		return m, nil
	}
	return nil, nil
}

func (l *fakeLoader) IsDir(ctx context.Context, p string) (string, bool) {
	if p == "" || l.dirs[p] {
		return p, true
	}
	return "", false
}

func (l *fakeLoader) ParamEntries(ctx context.Context, dir string) ([]ParamEntry, error) {
	prefix := dir + "/"
	if dir == "" {
		prefix = ""
	}

	seen := make(map[string]bool)
	var entries []ParamEntry
	consider := func(childPath string) {
		segment := strings.TrimPrefix(childPath, prefix)
		if idx := strings.Index(segment, "/"); idx >= 0 {
			segment = segment[:idx]
		}
		if seen[segment] {
			return
		}
		m := fakeParamSegmentPattern.FindStringSubmatch(segment)
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
		entries = append(entries, ParamEntry{
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

func (l *fakeLoader) SiblingNames(ctx context.Context, dir string) []string {
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

func TestResolveStepMatchesLeafModule(t *testing.T) {
	loader := newFakeLoader()
	loader.Register("hello", Command(CommandSpec{Description: "greet"}))

	rc, err := resolveStep(context.Background(), "hello", "", defaultParseFunc, loader)
	require.NoError(t, err)
	assert.Equal(t, "hello", rc.CommandName)
	assert.Empty(t, rc.RemainingCommandString)
	assert.Nil(t, rc.resolveNext)
}

func TestResolveStepAttachesContinuationForRemainingTokens(t *testing.T) {
	loader := newFakeLoader()
	loader.RegisterDir("users")
	loader.Register("users", Command(CommandSpec{Description: "manage users"}))
	loader.Register("users/[id]", Command(CommandSpec{Description: "one user"}))

	rc, err := resolveStep(context.Background(), "users 42", "", defaultParseFunc, loader)
	require.NoError(t, err)
	assert.Equal(t, "42", rc.RemainingCommandString)
	require.NotNil(t, rc.resolveNext)

	next, ok, err := rc.ResolveNext(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"id": "42"}, next.Params)
}

func TestResolveStepRestParamCapturesEverything(t *testing.T) {
	loader := newFakeLoader()
	loader.RegisterDir("run")
	loader.Register("run", Command(CommandSpec{Description: "run"}))
	loader.Register("run/[...args]", Command(CommandSpec{Description: "passthrough args"}))

	rc, err := resolveStep(context.Background(), "run a b c", "", defaultParseFunc, loader)
	require.NoError(t, err)
	require.NotNil(t, rc.resolveNext)

	next, ok, err := rc.ResolveNext(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, next.Params["args"])
	assert.Empty(t, next.RemainingCommandString)
}

func TestResolveStepSingleParamMatchOnlyConsumesOneToken(t *testing.T) {
	loader := newFakeLoader()
	loader.RegisterDir("users")
	loader.Register("users", Command(CommandSpec{Description: "manage users"}))
	loader.Register("users/[id]", Command(CommandSpec{Description: "one user"}))
	loader.Register("users/[id]/delete", Command(CommandSpec{Description: "delete a user"}))

	step1, err := resolveStep(context.Background(), "users 42 delete", "", defaultParseFunc, loader)
	require.NoError(t, err)
	assert.Equal(t, []string{"users"}, step1.CommandTokens)

	step2, ok, err := step1.ResolveNext(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"42"}, step2.CommandTokens, "a [id] match must consume only its own token, not the rest of the command string")

	step3, ok, err := step2.ResolveNext(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"delete"}, step3.CommandTokens)

	// invariant: the queue's concatenated commandTokens is a prefix of
	// (here, exactly equal to) the original input tokens, with no token
	// claimed by more than one step.
	var all []string
	all = append(all, step1.CommandTokens...)
	all = append(all, step2.CommandTokens...)
	all = append(all, step3.CommandTokens...)
	assert.Equal(t, []string{"users", "42", "delete"}, all)
}

func TestResolveStepUnknownCommandIsNotFound(t *testing.T) {
	loader := newFakeLoader()
	_, err := resolveStep(context.Background(), "nope", "", defaultParseFunc, loader)
	require.Error(t, err)
}

func TestResolveStepUnknownCommandSuggestsClosestSibling(t *testing.T) {
	loader := newFakeLoader()
	loader.Register("status", Command(CommandSpec{Description: "status"}))

	_, err := resolveStep(context.Background(), "statuz", "", defaultParseFunc, loader)
	require.Error(t, err)
	var notFound *clixerr.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "status", notFound.Suggestion)
}

func TestResolveStepDirectoryWithoutModuleIsPassThrough(t *testing.T) {
	loader := newFakeLoader()
	loader.RegisterDir("group")
	loader.Register("group/leaf", Command(CommandSpec{Description: "leaf"}))

	rc, err := resolveStep(context.Background(), "group leaf", "", defaultParseFunc, loader)
	require.NoError(t, err)
	assert.Same(t, PassThrough, rc.Command)
	require.NotNil(t, rc.resolveNext)
}

func TestResolveStepNonMiddlewareTerminalGetsPassThroughWhenContinuing(t *testing.T) {
	loader := newFakeLoader()
	loader.RegisterDir("group")
	notMiddleware := false
	loader.Register("group", Command(CommandSpec{Description: "group", IsMiddleware: &notMiddleware}))
	loader.Register("group/leaf", Command(CommandSpec{Description: "leaf"}))

	rc, err := resolveStep(context.Background(), "group leaf", "", defaultParseFunc, loader)
	require.NoError(t, err)
	assert.NotSame(t, PassThrough, rc.Command)
	require.NotNil(t, rc.Command.Handler)
}
