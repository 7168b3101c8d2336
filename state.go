// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package clix

import (
	"context"

	"github.com/morganforge/clix/hook"
	"github.com/morganforge/clix/option"
)

// Status is the lifecycle state of a State's walk through the queue.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusEnded
	StatusErrored
)

// stateChanges is the payload applyChanges threads through
// beforeStateChange/afterStateChange. Only the fields with their "has"
// companion set true are meant to be applied; this lets a hook replace a
// partial mutation without having to know the current value of fields it
// doesn't care about.
type stateChanges struct {
	Data       any
	HasData    bool
	Index      int
	HasIndex   bool
	Command    *ResolvedCommand
	HasCommand bool
	Status     Status
	HasStatus  bool
}

// State is the per-execute cursor through Context's resolved queue: the
// current index, the shared data value handlers thread through next/end,
// and the options getter bound to the command at the current index.
type State struct {
	ctx   *Context
	index int
	data  any
	command *ResolvedCommand
	params  map[string]any
	status  Status
	err     error

	nextCalled bool
	endCalled  bool

	stdCtx context.Context
}

func newState(ctx *Context) *State {
	return &State{ctx: ctx, status: StatusPending}
}

// Index returns the current position in the resolved queue.
func (s *State) Index() int { return s.index }

// Data returns the value currently threaded through the handler chain.
func (s *State) Data() any { return s.data }

// Command returns the ResolvedCommand at the current index.
func (s *State) Command() *ResolvedCommand { return s.command }

// Params returns the route params captured for the current command.
func (s *State) Params() map[string]any { return s.params }

// StatusValue returns the current lifecycle status.
func (s *State) StatusValue() Status { return s.status }

// Options returns an option.Getter bound to the current command's own
// option schema, the parsed values on Context, and the client's prompt
// transport.
func (s *State) Options() *option.Getter {
	ctx := s.stdCtx
	if ctx == nil {
		ctx = context.Background()
	}
	if s.command == nil || s.command.Command == nil {
		return option.NewGetter(ctx, option.NewConfig(), s.ctx.optionValues, nil)
	}
	return option.NewGetter(ctx, s.command.Command.Options, s.ctx.optionValues, s.ctx.promptTransport())
}

// applyChanges is the single path every mutation of data/index/command/
// status goes through, bracketed by beforeStateChange/afterStateChange
// (spec's "no intervening state change visible to observers").
func (s *State) applyChanges(ctx context.Context, changes stateChanges) error {
	payload := &BeforeStateChangePayload{State: s, Changes: changes}
	if err := s.ctx.hooks.Call(ctx, hook.BeforeStateChange, payload); err != nil {
		return err
	}

	applied := payload.Changes
	if !payload.skipped {
		if applied.HasData {
			s.data = applied.Data
		}
		if applied.HasIndex {
			s.index = applied.Index
		}
		if applied.HasCommand {
			s.command = applied.Command
		}
		if applied.HasStatus {
			s.status = applied.Status
		}
	}

	after := &AfterStateChangePayload{State: s, Changes: applied, Skipped: payload.skipped}
	return s.ctx.hooks.Call(ctx, hook.AfterStateChange, after)
}

// Next advances to the next queue position, updating data if supplied. It
// is a no-op if already called once during the current handler invocation,
// or if End was already called.
func (s *State) Next(ctx context.Context, data ...any) error {
	if s.nextCalled || s.endCalled {
		return nil
	}
	s.nextCalled = true

	changes := stateChanges{HasIndex: true, Index: s.index + 1}
	if len(data) > 0 {
		changes.HasData = true
		changes.Data = data[0]
	}
	return s.applyChanges(ctx, changes)
}

// End stops the walk, updating data if supplied, and fires beforeEnd before
// marking status ended.
func (s *State) End(ctx context.Context, data ...any) error {
	if s.nextCalled || s.endCalled {
		return nil
	}
	s.endCalled = true

	finalData := s.data
	if len(data) > 0 {
		finalData = data[0]
	}

	payload := &BeforeEndPayload{State: s, Data: finalData}
	if err := s.ctx.hooks.Call(ctx, hook.BeforeEnd, payload); err != nil {
		return err
	}

	return s.applyChanges(ctx, stateChanges{
		HasData:   true,
		Data:      payload.Data,
		HasStatus: true,
		Status:    StatusEnded,
	})
}

// start walks the queue from the beginning, invoking each command's handler
// under the beforeCommand/afterCommand brackets, until the queue drains or
// End is called.
func (s *State) start(ctx context.Context, initialData any) (any, error) {
	s.stdCtx = ctx
	if err := s.applyChanges(ctx, stateChanges{HasStatus: true, Status: StatusRunning, HasData: true, Data: initialData}); err != nil {
		return nil, err
	}

	queue := s.ctx.queue
	for s.index < len(queue) {
		if s.status == StatusEnded {
			break
		}

		cmd := queue[s.index]
		if err := s.applyChanges(ctx, stateChanges{HasCommand: true, Command: cmd}); err != nil {
			return nil, err
		}
		s.params = cmd.Params

		before := &BeforeCommandPayload{State: s}
		if err := s.ctx.hooks.Call(ctx, hook.BeforeCommand, before); err != nil {
			return nil, err
		}

		if before.skipped {
			if err := s.applyChanges(ctx, stateChanges{HasIndex: true, Index: s.index + 1}); err != nil {
				return nil, err
			}
			after := &AfterCommandPayload{State: s, Skipped: true}
			if err := s.ctx.hooks.Call(ctx, hook.AfterCommand, after); err != nil {
				return nil, err
			}
			continue
		}

		s.nextCalled = false
		s.endCalled = false
		s.err = nil

		payload := newPayload(s)
		if cmd.Command != nil && cmd.Command.Handler != nil {
			if err := cmd.Command.Handler(payload); err != nil {
				s.status = StatusErrored
				return nil, err
			}
		}
		if s.err != nil {
			s.status = StatusErrored
			return nil, s.err
		}

		if !s.nextCalled && !s.endCalled {
			if err := s.Next(ctx); err != nil {
				return nil, err
			}
		}

		after := &AfterCommandPayload{State: s, Skipped: false}
		if err := s.ctx.hooks.Call(ctx, hook.AfterCommand, after); err != nil {
			return nil, err
		}

		if s.status == StatusEnded {
			break
		}
	}

	if s.status != StatusEnded {
		s.status = StatusEnded
	}
	return s.data, nil
}
