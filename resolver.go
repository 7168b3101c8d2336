// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package clix

import (
	"context"
	"regexp"
	"strings"

	"github.com/morganforge/clix/internal/clixerr"
	"github.com/morganforge/clix/internal/suggest"
	"github.com/morganforge/clix/option"
	"github.com/morganforge/clix/token"
)

// ModuleLoader is the external collaborator the resolver asks for a
// module at a given path. It returns (nil, nil) when there is nothing at
// path (so the resolver can fall back to a directory or a route-param
// match), a module when one exists, or a ModuleError when the lookup
// itself failed in a way that should abort resolution rather than be
// treated as "try the next thing".
type ModuleLoader interface {
	Load(ctx context.Context, path string) (*CommandModule, error)

	// IsDir reports whether path names a directory in whatever backing
	// store the loader uses, and if so returns the opaque subcommandsDir
	// value resolution should pass to the next step.
	IsDir(ctx context.Context, path string) (dir string, ok bool)

	// ParamEntries enumerates the param-segment children of dir in
	// directory order: `[name]` and `[...name]` patterns, each with the
	// module they resolve to (since a param segment names a concrete leaf
	// module, not just a shape).
	ParamEntries(ctx context.Context, dir string) ([]ParamEntry, error)

	// Join builds the opaque path for name under dir, in whatever path
	// convention the loader's backing store uses.
	Join(dir, name string) string
}

// SiblingLister is an optional capability a ModuleLoader can implement to
// support "did you mean" suggestions on a NotFoundError: the names of
// every module and directory directly under dir. Loaders that can't
// enumerate cheaply (a remote store, say) simply don't implement it, and
// resolveStep skips the suggestion.
type SiblingLister interface {
	SiblingNames(ctx context.Context, dir string) []string
}

func notFoundWithSuggestion(ctx context.Context, name, commandsDir string, loader ModuleLoader) error {
	err := clixerr.NewNotFound(name, commandsDir)
	lister, ok := loader.(SiblingLister)
	if !ok {
		return err
	}
	return err.WithSuggestion(suggest.Closest(name, lister.SiblingNames(ctx, commandsDir)))
}

// ParamEntry is one `[name]` or `[...name]` candidate found while
// enumerating a directory for a route-param match.
type ParamEntry struct {
	Name    string // the captured parameter name
	Rest    bool   // true for `[...name]`
	Module  *CommandModule
	Dir     string // subcommandsDir for this entry's continuation, if any
}

// ResolvedCommand is one node in the queue the resolver builds: the
// module that matched, identifying metadata, the params it captured, and
// a continuation to resolve the next node on demand.
type ResolvedCommand struct {
	Command                *CommandModule
	CommandName             string
	CommandPath             string
	CommandTokens           []string
	RemainingCommandString  string
	SubcommandsDir          string
	Params                  map[string]any

	resolveNext func(ctx context.Context) (*ResolvedCommand, bool, error)
}

// ResolveNext returns the next ResolvedCommand in the chain, if this node
// has a continuation (ok=false otherwise).
func (r *ResolvedCommand) ResolveNext(ctx context.Context) (*ResolvedCommand, bool, error) {
	if r.resolveNext == nil {
		return nil, false, nil
	}
	return r.resolveNext(ctx)
}

var commandNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ParseFunc matches option.Parse's shape. It is indirected so a
// beforeResolve hook can swap the flag-peeling parser the resolver uses
// (BeforeResolvePayload.SetParseFn); Context's full parse after
// resolution calls option.Parse directly and cannot be swapped.
type ParseFunc func(cfg *option.Config, tokens []string, opts option.ParseOpts) (*option.Result, error)

// ResolveFunc matches resolveStep's shape, indirected for the same reason.
type ResolveFunc func(ctx context.Context, commandString, commandsDir string, parse ParseFunc, loader ModuleLoader) (*ResolvedCommand, error)

func defaultParseFunc(cfg *option.Config, tokens []string, opts option.ParseOpts) (*option.Result, error) {
	return option.Parse(cfg, tokens, opts)
}

// resolveStep performs one step of the algorithm in spec §4.3.
func resolveStep(ctx context.Context, commandString, commandsDir string, parse ParseFunc, loader ModuleLoader) (*ResolvedCommand, error) {
	tokens := token.Split(commandString, ' ')
	if len(tokens) == 0 {
		return nil, clixerr.NewCommandRequired()
	}

	name := tokens[0]
	rest := tokens[1:]

	if !commandNamePattern.MatchString(name) || strings.HasPrefix(name, "-") || strings.ContainsAny(name, "/\\") {
		return nil, clixerr.NewNotFound(name, commandsDir)
	}

	path := loader.Join(commandsDir, name)
	remaining := token.Join(rest)

	module, err := loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	var subDir string
	var params map[string]any
	var restMatched bool

	switch {
	case module != nil:
		if dir, ok := loader.IsDir(ctx, path); ok {
			subDir = dir
		}
	default:
		if dir, ok := loader.IsDir(ctx, path); ok {
			module = PassThrough
			subDir = dir
		} else {
			entries, ierr := loader.ParamEntries(ctx, commandsDir)
			if ierr != nil {
				return nil, ierr
			}
			matched := false
			for _, e := range entries {
				if e.Rest {
					params = map[string]any{e.Name: append([]string{name}, rest...)}
					module = e.Module
					subDir = e.Dir
					remaining = ""
					matched = true
					restMatched = true
					break
				}
				params = map[string]any{e.Name: name}
				module = e.Module
				subDir = e.Dir
				matched = true
				break
			}
			if !matched {
				return nil, notFoundWithSuggestion(ctx, name, commandsDir, loader)
			}
		}
	}

	if module == nil {
		return nil, clixerr.NewMissingDefaultExport(path)
	}

	commandTokens := []string{name}
	if restMatched {
		// a [...name] match consumed every remaining token, so those
		// tokens belong to this step's commandTokens, not a later one.
		commandTokens = append([]string{name}, rest...)
	}

	if module.Options != nil && module.Options.Len() > 0 && remaining != "" {
		parseResult, perr := parse(module.Options, token.Split(remaining, ' '), option.ParseOpts{Validate: false, AllowUnknown: true})
		if perr == nil && len(parseResult.Tokens) > 0 {
			remaining = token.Join(toAny(parseResult.Tokens))
		} else if perr == nil {
			remaining = ""
		}
	}

	rc := &ResolvedCommand{
		Command:                module,
		CommandName:             name,
		CommandPath:             name,
		CommandTokens:           commandTokens,
		RemainingCommandString:  remaining,
		SubcommandsDir:          subDir,
		Params:                  params,
	}

	if remaining != "" {
		rc.resolveNext = func(ctx context.Context) (*ResolvedCommand, bool, error) {
			next, err := resolveStep(ctx, remaining, subDir, parse, loader)
			if err != nil {
				return nil, false, err
			}
			return next, true, nil
		}
	}

	if !module.IsMiddleware && rc.resolveNext != nil {
		clone := *module
		clone.Handler = passThroughHandler
		rc.Command = &clone
	}

	return rc, nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
