// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package clix

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/morganforge/clix/client"
	"github.com/morganforge/clix/internal/clixerr"
	"github.com/morganforge/clix/token"
)

// RunParams configures a single-shot invocation of the engine. All fields
// are optional; Run derives sensible defaults from the process environment
// per spec §4.8.
type RunParams struct {
	// Command overrides the process argv as the command string to
	// resolve. When empty, Run joins os.Args[1:] (everything after the
	// binary name).
	Command string

	// DefaultCommand is prepended when the effective command is empty or
	// starts with a flag.
	DefaultCommand string

	// CommandsDir overrides the default-lookup rule ("<cwd>/commands",
	// then "<CallerDir>/commands").
	CommandsDir string

	// CallerDir is an opaque hint used by the default-lookup rule; a host
	// binary typically passes the directory its own source file lives in.
	CallerDir string

	Loader       ModuleLoader
	Client       client.Client
	Plugins      []*Plugin
	InitialData  any
}

// Run wires a Context from params, executes it to completion, and returns
// its result plus the process exit code that should follow it. Errors are
// translated per spec §4.8 step 6: a ClientError is returned as a normal
// result (it was already printed), a CliError propagates as-is, and
// anything else is wrapped in a CliError. The exit code honors a
// handler-supplied code from Payload.Exit/Context.Exit when one was
// requested (spec §4.8 step 4, §7); otherwise it falls back to
// clixerr.ExitCodeFor on the returned error, or ExitFailure for a
// ClientError result, or ExitSuccess.
func Run(params RunParams) (any, int, error) {
	ctx := context.Background()

	cmd := params.Command
	if cmd == "" {
		cmd = token.Join(toAny(os.Args[1:])...)
	}
	if (cmd == "" || cmd[0] == '-') && params.DefaultCommand != "" {
		cmd = token.Join(params.DefaultCommand, cmd)
	}

	commandsDir := params.CommandsDir
	if commandsDir == "" {
		dir, err := defaultCommandsDir(params.CallerDir)
		if err != nil {
			return nil, clixerr.ExitFailure, wrapRunError(err)
		}
		commandsDir = dir
	}

	c := NewContext(cmd, commandsDir, params.Loader, params.Client)
	for _, p := range params.Plugins {
		if err := c.Use(p); err != nil {
			return nil, clixerr.ExitFailure, wrapRunError(err)
		}
	}

	if err := c.Prepare(ctx); err != nil {
		result, runErr := translateRunErr(c, err)
		return result, exitCodeFor(c, result, runErr), runErr
	}

	result, err := c.Execute(ctx, params.InitialData)
	if err != nil {
		result, runErr := translateRunErr(c, err)
		return result, exitCodeFor(c, result, runErr), runErr
	}
	return result, exitCodeFor(c, result, nil), nil
}

func translateRunErr(c *Context, err error) (any, error) {
	var clientErr *clixerr.ClientError
	if errors.As(err, &clientErr) {
		return clientErr, nil
	}
	return nil, wrapRunError(err)
}

// exitCodeFor picks Run's exit code: a handler-supplied code takes
// precedence over anything derived from err or result, since it reflects
// an explicit decision made after beforeExit interception.
func exitCodeFor(c *Context, result any, err error) int {
	if code, ok := c.ExitCode(); ok {
		return code
	}
	if err != nil {
		return clixerr.ExitCodeFor(err)
	}
	if _, ok := result.(error); ok {
		return clixerr.ExitFailure
	}
	return clixerr.ExitSuccess
}

func wrapRunError(err error) error {
	if err == nil {
		return nil
	}
	// The taxonomy subtypes embed *CliError rather than being one, so each
	// needs its own errors.As target to pass through unwrapped.
	var (
		cliErr      *clixerr.CliError
		usageErr    *clixerr.UsageError
		requiredErr *clixerr.CommandRequiredError
		notFoundErr *clixerr.NotFoundError
		missingErr  *clixerr.MissingDefaultExportError
		subErr      *clixerr.SubcommandRequiredError
		pluginErr   *clixerr.PluginError
		moduleErr   *clixerr.ModuleError
	)
	if errors.As(err, &cliErr) || errors.As(err, &usageErr) || errors.As(err, &requiredErr) ||
		errors.As(err, &notFoundErr) || errors.As(err, &missingErr) || errors.As(err, &subErr) ||
		errors.As(err, &pluginErr) || errors.As(err, &moduleErr) {
		return err
	}
	return clixerr.New(err.Error(), err)
}

// defaultCommandsDir implements the "<cwd>/commands, else
// <callerDir>/commands, else fail" rule from spec §4.3.
func defaultCommandsDir(callerDir string) (string, error) {
	cwd, err := os.Getwd()
	if err == nil {
		candidate := filepath.Join(cwd, "commands")
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
			return candidate, nil
		}
	}
	if callerDir != "" {
		candidate := filepath.Join(callerDir, "commands")
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
			return candidate, nil
		}
	}
	attempted := []string{}
	if cwd != "" {
		attempted = append(attempted, filepath.Join(cwd, "commands"))
	}
	if callerDir != "" {
		attempted = append(attempted, filepath.Join(callerDir, "commands"))
	}
	return "", clixerr.New("no commands directory found (tried: "+token.Join(toAny(attempted)...)+")", nil)
}
