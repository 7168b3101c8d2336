// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package clix

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/morganforge/clix/client"
	"github.com/morganforge/clix/hook"
	"github.com/morganforge/clix/internal/clixerr"
	"github.com/morganforge/clix/option"
	"github.com/morganforge/clix/prompt"
	"github.com/morganforge/clix/token"
)

// Plugin is a registration-time extension: a name, optional metadata, and
// an Init hook that runs once per Context before resolution, with the
// chance to register hooks, mutate options, or swap the resolve/parse
// functions (spec §4.7).
type Plugin struct {
	Name        string
	Version     string
	Description string
	Meta        map[string]any
	Init        func(ctx context.Context, c *Context) error
}

// Info is the shallow-frozen view of a Plugin exposed on Context after its
// Init has run.
type Info struct {
	Name        string
	Version     string
	Description string
	Meta        map[string]any
	IsReady     bool
}

// Context is the process-scoped orchestrator for one invocation: it owns
// the hook registry, the merged option schema, the resolved command queue,
// and the parsed option values, and drives prepare -> execute.
type Context struct {
	// ID uniquely identifies this invocation, for correlating log lines
	// and error reports across a run with multiple hook-observing plugins.
	ID string

	CommandString string
	CommandsDir   string

	client client.Client
	hooks  *hook.Registry

	pluginOrder []string
	plugins     []*Plugin
	pluginInfo  map[string]*Info

	options      *option.Config
	queue        []*ResolvedCommand
	optionValues *option.Values

	result any

	isResolved bool
	isParsed   bool
	isReady    bool

	resolveFn ResolveFunc
	parseFn   ParseFunc
	loader    ModuleLoader

	exitCode      int
	exitRequested bool
}

// NewContext builds a Context for one invocation. loader is the
// ModuleLoader the resolver consults; client is the I/O collaborator hooks
// and the help/logger plugins log and prompt through.
func NewContext(commandString, commandsDir string, loader ModuleLoader, c client.Client) *Context {
	if c == nil {
		c = client.NewTerminal(prompt.None{})
	}
	return &Context{
		ID:            uuid.NewString(),
		CommandString: commandString,
		CommandsDir:   commandsDir,
		client:        c,
		hooks:         hook.NewRegistry(),
		pluginInfo:    make(map[string]*Info),
		options:       option.NewConfig(),
		optionValues:  option.NewValues(),
		loader:        loader,
		resolveFn:     resolveStep,
		parseFn:       defaultParseFunc,
	}
}

// Hooks returns the Registry plugins and callers register handlers on.
func (c *Context) Hooks() *hook.Registry { return c.hooks }

// Client returns the I/O collaborator this Context was built with.
func (c *Context) Client() client.Client { return c.client }

// Options returns the merged option schema accumulated during resolution.
func (c *Context) Options() *option.Config { return c.options }

// OptionValues returns the parsed option values produced by parseAll.
func (c *Context) OptionValues() *option.Values { return c.optionValues }

// Queue returns the resolved command sequence built during prepare.
func (c *Context) Queue() []*ResolvedCommand { return c.queue }

// Result returns the value execute() produced, if any.
func (c *Context) Result() any { return c.result }

// IsReady reports whether prepare() has completed.
func (c *Context) IsReady() bool { return c.isReady }

// PluginInfo returns the frozen Info for a registered plugin by name.
func (c *Context) PluginInfo(name string) (*Info, bool) {
	info, ok := c.pluginInfo[name]
	return info, ok
}

// promptTransport exposes the Context's client as a prompt.Transport: the
// Client interface's Prompt method already has the shape Transport wants,
// so any Client satisfies it without an adapter.
func (c *Context) promptTransport() prompt.Transport {
	return c.client
}

// Use registers a plugin. Plugins run their Init in registration order
// during prepare(); registering after prepare has started has no effect
// on the in-progress call.
func (c *Context) Use(p *Plugin) error {
	if _, exists := c.pluginInfo[p.Name]; exists {
		return clixerr.NewPlugin(p.Name, "a plugin with this name is already registered", nil)
	}
	c.pluginOrder = append(c.pluginOrder, p.Name)
	c.plugins = append(c.plugins, p)
	c.pluginInfo[p.Name] = &Info{
		Name:        p.Name,
		Version:     p.Version,
		Description: p.Description,
		Meta:        p.Meta,
	}
	return nil
}

// SetOptions merges decls into the Context's option schema ahead of
// resolution, per the contract Plugin.Init is granted in spec §4.7.
func (c *Context) SetOptions(decls *option.Config) error {
	return c.options.Merge(decls)
}

// Prepare runs plugin init, resolution, and parsing, in that order,
// idempotently: a second call after isReady is a no-op. See spec §4.5.
func (c *Context) Prepare(ctx context.Context) error {
	if c.isReady {
		return nil
	}

	for i, p := range c.plugins {
		name := c.pluginOrder[i]
		info := c.pluginInfo[name]
		if info.IsReady {
			continue
		}
		if p.Init != nil {
			if err := p.Init(ctx, c); err != nil {
				return c.Throw(ctx, clixerr.NewPlugin(name, "init failed", err))
			}
		}
		info.IsReady = true
	}

	if err := c.resolveAll(ctx); err != nil {
		return c.Throw(ctx, err)
	}
	c.isResolved = true

	if err := c.parseAll(ctx); err != nil {
		return c.Throw(ctx, err)
	}
	c.isParsed = true

	c.isReady = true
	return nil
}

// resolveAll drives the resolution loop described in spec §4.5: fire
// beforeResolve/afterResolve around each step, call the (possibly
// hook-replaced) resolveFn once per step, merge its options, and continue
// with its remainingCommandString/subcommandsDir until the remaining string
// is empty, a step queues nothing, or a hook calls stopResolving. It deliberately ignores ResolvedCommand's
// own resolveNext closure — that continuation exists for callers using the
// resolver directly, without hook dispatch around each step.
func (c *Context) resolveAll(ctx context.Context) error {
	remaining := c.CommandString
	dir := c.CommandsDir

	for {
		before := &BeforeResolvePayload{
			Context:                c,
			RemainingCommandString: remaining,
			NextCommandsDir:        dir,
			resolveFn:              c.resolveFn,
			parseFn:                c.parseFn,
		}
		if err := c.hooks.Call(ctx, hook.BeforeResolve, before); err != nil {
			return err
		}

		if before.resolveFn != nil {
			c.resolveFn = before.resolveFn
		}
		if before.parseFn != nil {
			c.parseFn = before.parseFn
		}

		var rc *ResolvedCommand
		if !before.skipped && !before.stopped {
			var err error
			rc, err = c.resolveFn(ctx, remaining, dir, c.parseFn, c.loader)
			if err != nil {
				return err
			}
			c.queue = append(c.queue, rc)
			if rc.Command != nil && rc.Command.Options != nil {
				if merr := c.options.Merge(rc.Command.Options); merr != nil {
					return merr
				}
			}
		} else if len(before.preseeded) > 0 {
			c.queue = append(c.queue, before.preseeded...)
			rc = before.preseeded[len(before.preseeded)-1]
		}

		after := &AfterResolvePayload{
			Context:                c,
			RemainingCommandString: remaining,
			NextCommandsDir:        dir,
			Skipped:                before.skipped,
		}
		if err := c.hooks.Call(ctx, hook.AfterResolve, after); err != nil {
			return err
		}

		if before.stopped || rc == nil || rc.RemainingCommandString == "" {
			break
		}

		remaining = rc.RemainingCommandString
		dir = rc.SubcommandsDir
	}

	if len(c.queue) > 0 {
		last := c.queue[len(c.queue)-1]
		if last.Command != nil && last.Command.RequiresSubcommand {
			return clixerr.NewSubcommandRequired(last.CommandPath)
		}
	}
	return nil
}

func (c *Context) parseAll(ctx context.Context) error {
	before := &BeforeParsePayload{Context: c}
	if err := c.hooks.Call(ctx, hook.BeforeParse, before); err != nil {
		return err
	}

	if !before.skipped {
		result, err := option.Parse(c.options, token.Split(c.CommandString, ' '), option.ParseOpts{Validate: true})
		if err != nil {
			return err
		}
		if err := option.Validate(c.options, result.Values); err != nil {
			return err
		}
		for _, k := range c.options.Keys() {
			if v, ok := result.Values.Get(k); ok {
				c.optionValues.Set(k, v)
			}
		}
	} else if before.parsedValues != nil {
		for _, k := range before.parsedValues.Keys() {
			v, _ := before.parsedValues.Get(k)
			c.optionValues.Set(k, v)
		}
	}

	return c.hooks.Call(ctx, hook.AfterParse, &AfterParsePayload{Context: c, Skipped: before.skipped})
}

// Execute runs the resolved queue through a fresh State, starting with
// initialData, and stores the result on Context (spec §4.5 execute()).
func (c *Context) Execute(ctx context.Context, initialData any) (any, error) {
	s := newState(c)

	before := &BeforeExecutePayload{State: s}
	if err := c.hooks.Call(ctx, hook.BeforeExecute, before); err != nil {
		return nil, c.Throw(ctx, err)
	}

	if before.skipped {
		c.result = before.result
		if err := c.hooks.Call(ctx, hook.AfterExecute, &AfterExecutePayload{State: s, Skipped: true}); err != nil {
			return nil, c.Throw(ctx, err)
		}
		return c.result, nil
	}

	if !c.isReady {
		return nil, c.Throw(ctx, clixerr.New("context is not ready: call Prepare first", nil))
	}

	result, err := s.start(ctx, initialData)
	if err != nil {
		return nil, c.Throw(ctx, err)
	}

	c.result = result
	if err := c.hooks.Call(ctx, hook.AfterExecute, &AfterExecutePayload{State: s, Skipped: false}); err != nil {
		return nil, c.Throw(ctx, err)
	}
	return c.result, nil
}

// Throw routes err through beforeError, allowing hooks to replace or
// suppress it, then returns whatever should propagate (nil if suppressed).
func (c *Context) Throw(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	payload := &BeforeErrorPayload{Context: c, Error: err}
	if callErr := c.hooks.Call(ctx, hook.BeforeError, payload); callErr != nil {
		return callErr
	}
	if payload.ignored {
		return nil
	}
	return payload.Error
}

// Exit logs a message via the client and signals process termination by
// returning the (possibly hook-replaced) exit code and message; callers
// such as Run decide how to actually terminate the process. A cancelled
// exit returns ok=false and leaves any prior exit request untouched.
//
// A successful call also records the code on Context (see ExitCode), so
// Run can translate it into the process's actual exit status once
// Execute returns, per spec §4.8 step 4 and §7's exit-code table.
func (c *Context) Exit(ctx context.Context, code int, message string) (exitCode int, msg string, ok bool) {
	payload := &BeforeExitPayload{Context: c, Code: code, Message: message}
	if err := c.hooks.Call(ctx, hook.BeforeExit, payload); err != nil {
		return 0, err.Error(), true
	}
	if payload.cancelled {
		return 0, "", false
	}
	level := client.LevelInfo
	if payload.Code != 0 {
		level = client.LevelError
	}
	if payload.Message != "" {
		c.client.Log(level, payload.Message)
	} else if payload.Code != 0 {
		c.client.Log(level, fmt.Sprintf("exit code %d", payload.Code))
	}
	c.exitCode = payload.Code
	c.exitRequested = true
	return payload.Code, payload.Message, true
}

// ExitCode reports the process exit code most recently requested via
// Exit (directly, or through Payload.Exit from a handler). ok is false
// when nothing ever called Exit during this invocation, meaning Run
// should fall back to translating the returned error via
// clixerr.ExitCodeFor instead.
func (c *Context) ExitCode() (code int, ok bool) {
	return c.exitCode, c.exitRequested
}
