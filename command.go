// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package clix is a framework for building interactive, hierarchical
// command-line tools: given a command invocation and a tree of command
// modules, it resolves which handlers apply, merges and parses their
// options, threads a shared data value through the matched handler chain,
// and dispatches lifecycle hooks around every stage. See DESIGN.md for how
// this maps onto the spec's component table.
package clix

import (
	"github.com/morganforge/clix/option"
)

// Handler is invoked once per matched command in the resolved queue. It
// receives a single Payload and returns an error, which Context.Throw
// routes through beforeError. A Handler that returns without calling
// Next or End yields an implicit Next with the data unchanged (spec §4.6,
// §9's "fire-and-forget handlers behave sensibly").
type Handler func(*Payload) error

// CommandModule is a unit of executable behavior: a description, an
// option schema, and a handler. A module is "middleware" (the default)
// when it should run even though the resolver found a continuation after
// it; setting IsMiddleware to false on a non-terminal module causes the
// resolver to replace its handler with PassThrough (spec §4.3 step 6).
type CommandModule struct {
	Description        string
	Options             *option.Config
	RequiresSubcommand  bool
	IsMiddleware        bool
	Handler             Handler
}

// CommandSpec is the argument to Command — everything but Handler is
// optional. IsMiddleware defaults to true when left unset, matching the
// spec's CommandModule.isMiddleware default.
type CommandSpec struct {
	Description        string
	Options             *option.Config
	RequiresSubcommand  bool
	IsMiddleware        *bool
	Handler             Handler
}

// Command is the public command-module factory. It is the primary entry
// point a user of this framework writes against to define one node of the
// command tree.
func Command(spec CommandSpec) *CommandModule {
	middleware := true
	if spec.IsMiddleware != nil {
		middleware = *spec.IsMiddleware
	}
	opts := spec.Options
	if opts == nil {
		opts = option.NewConfig()
	}
	return &CommandModule{
		Description:       spec.Description,
		Options:           opts,
		RequiresSubcommand: spec.RequiresSubcommand,
		IsMiddleware:      middleware,
		Handler:           spec.Handler,
	}
}

// passThroughHandler forwards data unchanged; it is never authored by a
// user, only inserted by the resolver (spec §4.3, §9).
func passThroughHandler(p *Payload) error {
	p.Next(p.Data)
	return nil
}

// PassThrough is the singleton synthetic module the resolver substitutes
// for a directory that was only traversed, or for a non-middleware module
// in non-terminal position.
var PassThrough = &CommandModule{
	Description: "",
	Options:     option.NewConfig(),
	IsMiddleware: true,
	Handler:     passThroughHandler,
}
