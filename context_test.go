// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package clix_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clix "github.com/morganforge/clix"
	"github.com/morganforge/clix/hook"
	"github.com/morganforge/clix/internal/clixerr"
	"github.com/morganforge/clix/internal/testsupport"
)

func TestPrepareIsIdempotent(t *testing.T) {
	loader := testsupport.NewMemLoader()
	loader.Register("noop", clix.Command(clix.CommandSpec{Handler: func(p *clix.Payload) error { p.End(nil); return nil }}))
	c := clix.NewContext("noop", "", loader, testsupport.NewRecordingClient(nil))

	require.NoError(t, c.Prepare(context.Background()))
	require.NoError(t, c.Prepare(context.Background()))
	assert.True(t, c.IsReady())
}

func TestUsePluginRunsInitOnce(t *testing.T) {
	loader := testsupport.NewMemLoader()
	loader.Register("noop", clix.Command(clix.CommandSpec{Handler: func(p *clix.Payload) error { p.End(nil); return nil }}))
	c := clix.NewContext("noop", "", loader, testsupport.NewRecordingClient(nil))

	inits := 0
	require.NoError(t, c.Use(&clix.Plugin{
		Name: "counter",
		Init: func(ctx context.Context, c *clix.Context) error {
			inits++
			return nil
		},
	}))
	require.NoError(t, c.Prepare(context.Background()))
	assert.Equal(t, 1, inits)

	info, ok := c.PluginInfo("counter")
	require.True(t, ok)
	assert.True(t, info.IsReady)
}

func TestUseDuplicatePluginNameErrors(t *testing.T) {
	loader := testsupport.NewMemLoader()
	c := clix.NewContext("noop", "", loader, testsupport.NewRecordingClient(nil))
	require.NoError(t, c.Use(&clix.Plugin{Name: "dup"}))
	err := c.Use(&clix.Plugin{Name: "dup"})
	var pluginErr *clixerr.PluginError
	assert.ErrorAs(t, err, &pluginErr)
}

func TestBeforeResolveStopResolvingShortCircuits(t *testing.T) {
	loader := testsupport.NewMemLoader()
	loader.RegisterDir("a")
	loader.Register("a", clix.Command(clix.CommandSpec{Handler: func(p *clix.Payload) error { p.End("a"); return nil }}))
	loader.Register("a/b", clix.Command(clix.CommandSpec{Handler: func(p *clix.Payload) error {
		t.Fatal("resolution should have stopped before reaching a/b")
		return nil
	}}))

	c := clix.NewContext("a b", "", loader, testsupport.NewRecordingClient(nil))
	c.Hooks().On(hook.BeforeResolve, func(ctx context.Context, payload any) error {
		p := payload.(*clix.BeforeResolvePayload)
		if len(c.Queue()) == 1 {
			p.StopResolving()
		}
		return nil
	})
	require.NoError(t, c.Prepare(context.Background()))
	require.Len(t, c.Queue(), 1)

	result, err := c.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "a", result)
}

func TestThrowCanReplaceErrorViaHook(t *testing.T) {
	loader := testsupport.NewMemLoader()
	loader.Register("boom", clix.Command(clix.CommandSpec{Handler: func(p *clix.Payload) error {
		return errors.New("original")
	}}))
	c := clix.NewContext("boom", "", loader, testsupport.NewRecordingClient(nil))

	replacement := errors.New("replaced")
	c.Hooks().On(hook.BeforeError, func(ctx context.Context, payload any) error {
		p := payload.(*clix.BeforeErrorPayload)
		p.SetError(replacement)
		return nil
	})
	require.NoError(t, c.Prepare(context.Background()))

	_, execErr := c.Execute(context.Background(), nil)
	require.Error(t, execErr)

	got := c.Throw(context.Background(), execErr)
	assert.ErrorIs(t, got, replacement)
}

func TestSubcommandRequiredWithoutContinuation(t *testing.T) {
	loader := testsupport.NewMemLoader()
	loader.Register("group", clix.Command(clix.CommandSpec{RequiresSubcommand: true}))
	c := clix.NewContext("group", "", loader, testsupport.NewRecordingClient(nil))

	err := c.Prepare(context.Background())
	var subErr *clixerr.SubcommandRequiredError
	assert.ErrorAs(t, err, &subErr)
}
