// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package clix

import "github.com/morganforge/clix/option"

// mutators is embedded by every payload type below and carries the
// cancellation flags common to most hooks. Payload-specific mutators live
// on the concrete type.
type mutators struct {
	cancelled bool
	skipped   bool
	ignored   bool
}

func (m *mutators) Cancel()  { m.cancelled = true }
func (m *mutators) Skip()    { m.skipped = true }
func (m *mutators) Ignore()  { m.ignored = true }

// BeforeResolvePayload backs the "beforeResolve" hook.
type BeforeResolvePayload struct {
	mutators
	Context                *Context
	RemainingCommandString string
	NextCommandsDir         string

	preseeded   []*ResolvedCommand
	resolveFn   ResolveFunc
	parseFn     ParseFunc
	stopped     bool
}

// AddResolvedCommands pre-seeds the queue for this step, implying Skip.
func (p *BeforeResolvePayload) AddResolvedCommands(cmds ...*ResolvedCommand) {
	p.preseeded = append(p.preseeded, cmds...)
	p.skipped = true
}

// StopResolving ends the resolution loop at this step: the resolver is not
// called for it (commands added with AddResolvedCommands are still queued)
// and no later step runs.
func (p *BeforeResolvePayload) StopResolving() { p.stopped = true }

// SetResolveFn swaps the resolver used for this and future steps.
func (p *BeforeResolvePayload) SetResolveFn(fn ResolveFunc) { p.resolveFn = fn }

// SetParseFn swaps the flag-peeling parser used by the resolver.
func (p *BeforeResolvePayload) SetParseFn(fn ParseFunc) { p.parseFn = fn }

// AfterResolvePayload backs the "afterResolve" hook.
type AfterResolvePayload struct {
	mutators
	Context                 *Context
	RemainingCommandString  string
	NextCommandsDir          string
	Skipped                  bool
}

// BeforeParsePayload backs the "beforeParse" hook.
type BeforeParsePayload struct {
	mutators
	Context *Context

	parsedValues *option.Values
}

// SetParsedOptionsAndSkip supplies pre-parsed values, bypassing the default
// parser for this prepare() call.
func (p *BeforeParsePayload) SetParsedOptionsAndSkip(v *option.Values) {
	p.parsedValues = v
	p.skipped = true
}

// AfterParsePayload backs the "afterParse" hook.
type AfterParsePayload struct {
	mutators
	Context *Context
	Skipped bool
}

// BeforeExecutePayload backs the "beforeExecute" hook.
type BeforeExecutePayload struct {
	mutators
	State *State

	result any
}

// SetResultAndSkip sets the result execute() returns when skipped.
func (p *BeforeExecutePayload) SetResultAndSkip(result any) {
	p.result = result
	p.skipped = true
}

// AfterExecutePayload backs the "afterExecute" hook.
type AfterExecutePayload struct {
	mutators
	State   *State
	Skipped bool
}

// BeforeCommandPayload backs the "beforeCommand" hook.
type BeforeCommandPayload struct {
	mutators
	State *State
}

// AfterCommandPayload backs the "afterCommand" hook.
type AfterCommandPayload struct {
	mutators
	State   *State
	Skipped bool
}

// BeforeEndPayload backs the "beforeEnd" hook.
type BeforeEndPayload struct {
	mutators
	State *State
	Data  any
}

// BeforeErrorPayload backs the "beforeError" hook.
type BeforeErrorPayload struct {
	mutators
	Context *Context
	Error   error
}

// SetError replaces the error that will propagate, unless Ignore was also
// called.
func (p *BeforeErrorPayload) SetError(err error) { p.Error = err }

// BeforeExitPayload backs the "beforeExit" hook.
type BeforeExitPayload struct {
	mutators
	Context *Context
	Code    int
	Message string
}

func (p *BeforeExitPayload) SetCode(code int)       { p.Code = code }
func (p *BeforeExitPayload) SetMessage(msg string)  { p.Message = msg }

// BeforeStateChangePayload backs the "beforeStateChange" hook.
type BeforeStateChangePayload struct {
	mutators
	State   *State
	Changes stateChanges
}

// SetChanges replaces the pending mutation before it is applied.
func (p *BeforeStateChangePayload) SetChanges(c stateChanges) { p.Changes = c }

// AfterStateChangePayload backs the "afterStateChange" hook.
type AfterStateChangePayload struct {
	mutators
	State   *State
	Changes stateChanges
	Skipped bool
}
