// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package clix

import (
	"context"

	"github.com/morganforge/clix/client"
	"github.com/morganforge/clix/option"
)

// Payload is the single argument every Handler receives. Next and End are
// bound to the State that spawned this Payload, and each may be called at
// most once per handler invocation.
type Payload struct {
	Context *Context
	State   *State
	Client  client.Client
	Options *option.Getter
	Params  map[string]any
	Command *ResolvedCommand
	Data    any

	ctx context.Context
}

func newPayload(s *State) *Payload {
	ctx := s.stdCtx
	if ctx == nil {
		ctx = context.Background()
	}
	return &Payload{
		Context: s.ctx,
		State:   s,
		Client:  s.ctx.client,
		Options: s.Options(),
		Params:  s.params,
		Command: s.command,
		Data:    s.data,
		ctx:     ctx,
	}
}

// Next advances the walk to the next queued command, optionally replacing
// data. A second call within the same handler invocation is a no-op. A
// hook error raised while applying the change is surfaced to start() via
// State.err and propagates as the handler's own error.
func (p *Payload) Next(data ...any) {
	if err := p.State.Next(p.ctx, data...); err != nil {
		p.State.err = err
	}
}

// End stops the walk after this handler, optionally replacing data. A
// second call (or a call after Next already ran) within the same handler
// invocation is a no-op.
func (p *Payload) End(data ...any) {
	if err := p.State.End(p.ctx, data...); err != nil {
		p.State.err = err
	}
}

// Exit gives a handler the process-exit path Context.Exit exposes,
// without needing a context.Context of its own: it routes code and
// message through beforeExit interception, records the resulting code
// on Context for Run to translate into the process's exit status once
// Execute returns, and ends the walk so no further queued command runs.
// A hook that cancels the exit is a no-op: the walk continues as if Exit
// had not been called, per spec §4.8 step 4.
func (p *Payload) Exit(code int, message string) {
	if _, _, ok := p.Context.Exit(p.ctx, code, message); !ok {
		return
	}
	p.End()
}
