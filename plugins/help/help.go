// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package help provides the built-in help plugin: it adds a boolean
// help/h option, short-circuits resolution and execution when it's set,
// and renders help text on afterExecute (spec §4.9).
package help

import (
	"context"
	"errors"

	"github.com/morganforge/clix"
	"github.com/morganforge/clix/client"
	helprender "github.com/morganforge/clix/help"
	"github.com/morganforge/clix/option"
)

const (
	optionKey = "help"
	optionAlias = "h"
)

// Config customizes the plugin's renderer. The option key (help) and its
// alias (h) are fixed.
type Config struct {
	Renderer helprender.Renderer
}

// New returns a Plugin implementing the help semantic contract: it
// contributes a help/h boolean option, skips resolution once the
// remaining command string is only help flags, skips execution when help
// was requested (or a UsageError was captured and ignored), and renders
// help text (or the captured usage error) on afterExecute.
func New(cfg Config) *clix.Plugin {
	renderer := cfg.Renderer
	if renderer == nil {
		renderer = helprender.NewMarkdownRenderer(0)
	}

	var capturedUsage *option.UsageDiag

	return &clix.Plugin{
		Name:        "help",
		Description: "adds --help/-h and renders help text",
		Init: func(ctx context.Context, c *clix.Context) error {
			opts := option.NewConfig()
			opts.Set(optionKey, &option.Decl{
				Type:        option.Boolean,
				Aliases:     []string{optionAlias},
				Description: "show help for this command",
				Default:     false,
			})
			if err := c.SetOptions(opts); err != nil {
				return err
			}

			c.Hooks().On(clix.HookBeforeResolve, func(ctx context.Context, payload any) error {
				p := payload.(*clix.BeforeResolvePayload)
				if isOnlyHelpFlags(p.RemainingCommandString) {
					p.StopResolving()
				}
				return nil
			})

			c.Hooks().On(clix.HookBeforeExecute, func(ctx context.Context, payload any) error {
				p := payload.(*clix.BeforeExecutePayload)
				v, ok := c.OptionValues().Get(optionKey)
				if (ok && v == true) || capturedUsage != nil {
					p.SetResultAndSkip(nil)
				}
				return nil
			})

			c.Hooks().On(clix.HookBeforeError, func(ctx context.Context, payload any) error {
				p := payload.(*clix.BeforeErrorPayload)
				var usage *option.UsageDiag
				if errors.As(p.Error, &usage) {
					capturedUsage = usage
					p.Ignore()
				}
				return nil
			})

			c.Hooks().On(clix.HookAfterExecute, func(ctx context.Context, payload any) error {
				v, _ := c.OptionValues().Get(optionKey)
				helpRequested := v == true

				if capturedUsage != nil && !helpRequested {
					c.Client().Error(capturedUsage)
					return nil
				}
				if helpRequested {
					text, err := renderer.Render(c)
					if err != nil {
						return err
					}
					c.Client().Log(client.LevelInfo, text)
				}
				return nil
			})

			return nil
		},
	}
}

func isOnlyHelpFlags(remaining string) bool {
	if remaining == "" {
		return false
	}
	for _, tok := range splitSimple(remaining) {
		if tok != "--"+optionKey && tok != "-"+optionAlias {
			return false
		}
	}
	return true
}

func splitSimple(s string) []string {
	var out []string
	cur := ""
	for _, r := range s {
		if r == ' ' {
			if cur != "" {
				out = append(out, cur)
				cur = ""
			}
			continue
		}
		cur += string(r)
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}
