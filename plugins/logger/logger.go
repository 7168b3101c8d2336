// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logger provides the built-in logger plugin: purely observational
// handlers on the core lifecycle hooks, toggled by clixlog's process-global
// enable/disable switches, with an optional rotating file sink (spec §4.9).
package logger

import (
	"context"
	"fmt"

	"github.com/morganforge/clix"
	"github.com/morganforge/clix/clixlog"
)

// Config customizes the built-in logger plugin.
type Config struct {
	// FilePath, if set, appends every record to a lumberjack-rotated file
	// in addition to stdout.
	FilePath string
	Rotation clixlog.Rotation
	Level    clixlog.Level
}

// New returns a Plugin that logs one line per lifecycle event it observes.
// It never mutates flow — every handler it registers only calls log.* — so
// it is safe to install alongside any other plugin.
func New(cfg Config) *clix.Plugin {
	var log *clixlog.Logger
	if cfg.FilePath != "" {
		rot := cfg.Rotation
		if rot == (clixlog.Rotation{}) {
			rot = clixlog.DefaultRotation
		}
		log = clixlog.NewWithFile("clix", cfg.Level, cfg.FilePath, rot)
	} else {
		log = clixlog.New("clix", cfg.Level)
	}

	return &clix.Plugin{
		Name:        "logger",
		Description: "observational logging over lifecycle hooks",
		Init: func(ctx context.Context, c *clix.Context) error {
			observe(c, clix.HookBeforeResolve, log, func(p any) string {
				pp := p.(*clix.BeforeResolvePayload)
				return fmt.Sprintf("resolving %q", pp.RemainingCommandString)
			})
			observe(c, clix.HookAfterResolve, log, func(p any) string {
				pp := p.(*clix.AfterResolvePayload)
				return fmt.Sprintf("resolved, skipped=%v", pp.Skipped)
			})
			observe(c, clix.HookBeforeExecute, log, func(p any) string {
				return "executing"
			})
			observe(c, clix.HookAfterExecute, log, func(p any) string {
				pp := p.(*clix.AfterExecutePayload)
				return fmt.Sprintf("executed, skipped=%v", pp.Skipped)
			})
			observe(c, clix.HookBeforeCommand, log, func(p any) string {
				pp := p.(*clix.BeforeCommandPayload)
				if pp.State.Command() != nil {
					return fmt.Sprintf("command %q", pp.State.Command().CommandName)
				}
				return "command"
			})
			observe(c, clix.HookBeforeError, log, func(p any) string {
				pp := p.(*clix.BeforeErrorPayload)
				return fmt.Sprintf("error: %v", pp.Error)
			})
			return nil
		},
	}
}

func observe(c *clix.Context, name string, log *clixlog.Logger, describe func(any) string) {
	c.Hooks().On(name, func(ctx context.Context, payload any) error {
		line := fmt.Sprintf("[%s] %s", c.ID, describe(payload))
		if name == clix.HookBeforeError {
			log.Error("%s", line)
			return nil
		}
		log.Debug("%s", line)
		return nil
	})
}
