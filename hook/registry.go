// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package hook implements the named, ordered lifecycle hook registry
// described in spec §4.4: a mapping from hook name to an ordered list of
// handlers, each awaited in turn against a shared, mutable payload.
package hook

import "context"

// Func is one hook handler. It receives the payload for this dispatch and
// may mutate it through whatever setters that payload type exposes.
type Func func(ctx context.Context, payload any) error

// Token identifies a registered handler so it can later be removed with
// Off. Go function values aren't comparable (unlike the closures the spec
// was written against), so On/Once hand back an explicit Token instead of
// relying on identity comparison against the Func itself.
type Token struct {
	name string
	seq  uint64
}

type handle struct {
	token Token
	fn    Func
}

// Registry is a mapping from hook name to its ordered handler list.
type Registry struct {
	handlers map[string][]*handle
	seq      uint64
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string][]*handle)}
}

// On appends fn to name's handler list and returns a Token that Off can
// use to remove it later.
func (r *Registry) On(name string, fn Func) Token {
	r.seq++
	tok := Token{name: name, seq: r.seq}
	r.handlers[name] = append(r.handlers[name], &handle{token: tok, fn: fn})
	return tok
}

// Once registers fn to run at most once: it removes itself from the
// registry before its body executes, so a handler that re-triggers the
// same hook from within itself cannot re-enter.
func (r *Registry) Once(name string, fn Func) Token {
	var tok Token
	wrapped := func(ctx context.Context, payload any) error {
		r.Off(tok)
		return fn(ctx, payload)
	}
	tok = r.On(name, wrapped)
	return tok
}

// Off removes the handler identified by tok, if still registered. It is a
// no-op if tok was already removed or never existed.
func (r *Registry) Off(tok Token) {
	list := r.handlers[tok.name]
	for i, h := range list {
		if h.token == tok {
			r.handlers[tok.name] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Call invokes every handler registered under name, in registration order,
// awaiting each before calling the next, passing the same payload value so
// mutations are visible downstream. It snapshots the handler list first,
// so handlers added mid-call never run during this Call (spec §4.4: "adding
// a handler during a call affects only future calls").
func (r *Registry) Call(ctx context.Context, name string, payload any) error {
	snapshot := make([]*handle, len(r.handlers[name]))
	copy(snapshot, r.handlers[name])
	for _, h := range snapshot {
		if err := h.fn(ctx, payload); err != nil {
			return err
		}
	}
	return nil
}

// Len reports how many handlers are currently registered under name.
func (r *Registry) Len(name string) int {
	return len(r.handlers[name])
}
