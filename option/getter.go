// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package option

import (
	"context"
	"strconv"

	"github.com/morganforge/clix/prompt"
)

// AccessOpt customizes a single Accessor call. The three recognized by the
// spec are WithPrompt (a message, which also forces prompting even for a
// non-required option), WithValidate, and WithInitial.
type AccessOpt func(*accessConfig)

type accessConfig struct {
	promptMsg string
	prompt    bool
	validate  Validator
	initial   any
}

func WithPrompt(message string) AccessOpt {
	return func(c *accessConfig) { c.promptMsg = message; c.prompt = true }
}

func WithValidate(v Validator) AccessOpt {
	return func(c *accessConfig) { c.validate = v }
}

func WithInitial(value any) AccessOpt {
	return func(c *accessConfig) { c.initial = value }
}

// Getter is the OptionsGetter of spec §3: for each canonical key it builds
// an Accessor closing over that key's Decl and a shared, mutable Values
// overlay (so a prompted answer is cached and visible to later reads in
// the same execution).
type Getter struct {
	cfg       *Config
	values    *Values
	transport prompt.Transport
	ctx       context.Context
}

// NewGetter builds a Getter bound to cfg/values for the duration of one
// execution step. ctx is passed to the transport's Prompt call.
func NewGetter(ctx context.Context, cfg *Config, values *Values, transport prompt.Transport) *Getter {
	if transport == nil {
		transport = prompt.None{}
	}
	return &Getter{cfg: cfg, values: values, transport: transport, ctx: ctx}
}

// Key returns the accessor for key (or its alias). A key absent from the
// schema still returns a usable Accessor with a nil Decl — Value then
// behaves as if Required=false and Default=nil.
func (g *Getter) Key(key string) *Accessor {
	canon, ok := g.cfg.Canonical(key)
	if !ok {
		return &Accessor{getter: g, key: key}
	}
	decl, _ := g.cfg.Get(canon)
	return &Accessor{getter: g, key: canon, decl: decl}
}

// Accessor is the per-key callable described in spec §3 ("OptionsGetter —
// for each canonical key K a callable K(opts?)").
type Accessor struct {
	getter *Getter
	key    string
	decl   *Decl
}

// Value resolves the option per the four-step policy in spec §3:
//  1. the parsed value, if present;
//  2. else the declared default;
//  3. else, if prompting was requested (explicitly, or implicitly because
//     the option is Required), an interactive prompt, cached back into
//     Values;
//  4. else "absent" (ok=false).
func (a *Accessor) Value(opts ...AccessOpt) (any, bool, error) {
	cfg := &accessConfig{}
	for _, o := range opts {
		o(cfg)
	}

	if v, ok := a.getter.values.Get(a.key); ok {
		return v, true, nil
	}

	if a.decl != nil && a.decl.Default != nil {
		return a.decl.Default, true, nil
	}

	mustPrompt := cfg.prompt || (a.decl != nil && a.decl.Required)
	if !mustPrompt {
		return nil, false, nil
	}

	return a.promptFor(cfg)
}

func (a *Accessor) promptFor(cfg *accessConfig) (any, bool, error) {
	req := prompt.Request{
		Type:    a.promptType(),
		Message: cfg.promptMsg,
		Initial: cfg.initial,
	}
	if req.Message == "" {
		req.Message = a.promptDefaultMessage()
	}
	validate := cfg.validate
	if validate == nil && a.decl != nil {
		validate = a.decl.Validate
	}
	if validate != nil {
		req.Validate = prompt.Validator(validate)
	}
	if a.decl != nil && len(a.decl.Choices) > 0 {
		req.Choices = choicesFrom(a.decl.Choices)
	}

	answer, err := a.getter.transport.Prompt(a.getter.ctx, req)
	if err != nil {
		return nil, false, err
	}
	a.getter.values.Set(a.key, answer)
	return answer, true, nil
}

func (a *Accessor) promptType() prompt.Type {
	if a.decl == nil {
		return prompt.Text
	}
	switch a.decl.Type {
	case Number, NumberArray:
		return prompt.Number
	case Boolean:
		return prompt.Confirm
	default:
		if len(a.decl.Choices) > 0 {
			return prompt.Select
		}
		return prompt.Text
	}
}

func (a *Accessor) promptDefaultMessage() string {
	if a.decl != nil && a.decl.Description != "" {
		return a.decl.Description
	}
	return a.key + ":"
}

func choicesFrom(vals []any) []prompt.Choice {
	out := make([]prompt.Choice, len(vals))
	for i, v := range vals {
		out[i] = prompt.Choice{Title: toDisplay(v), Value: v}
	}
	return out
}

func toDisplay(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// String is a typed convenience wrapper over Value.
func (a *Accessor) String(opts ...AccessOpt) (string, bool, error) {
	v, ok, err := a.Value(opts...)
	if !ok || err != nil {
		return "", ok, err
	}
	s, _ := v.(string)
	return s, true, nil
}

// Number is a typed convenience wrapper over Value.
func (a *Accessor) Number(opts ...AccessOpt) (float64, bool, error) {
	v, ok, err := a.Value(opts...)
	if !ok || err != nil {
		return 0, ok, err
	}
	n, _ := v.(float64)
	return n, true, nil
}

// Bool is a typed convenience wrapper over Value.
func (a *Accessor) Bool(opts ...AccessOpt) (bool, bool, error) {
	v, ok, err := a.Value(opts...)
	if !ok || err != nil {
		return false, ok, err
	}
	b, _ := v.(bool)
	return b, true, nil
}

// Strings is a typed convenience wrapper over Value for array<string>.
func (a *Accessor) Strings(opts ...AccessOpt) ([]string, bool, error) {
	v, ok, err := a.Value(opts...)
	if !ok || err != nil {
		return nil, ok, err
	}
	ss, _ := v.([]string)
	return ss, true, nil
}

// Floats is a typed convenience wrapper over Value for array<number>.
func (a *Accessor) Floats(opts ...AccessOpt) ([]float64, bool, error) {
	v, ok, err := a.Value(opts...)
	if !ok || err != nil {
		return nil, ok, err
	}
	fs, _ := v.([]float64)
	return fs, true, nil
}
