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
	"github.com/morganforge/clix/internal/testsupport"
)

func newTestContext(t *testing.T, cmd string) *clix.Context {
	t.Helper()
	loader := testsupport.NewMemLoader()
	loader.RegisterDir("a")
	loader.Register("a", clix.Command(clix.CommandSpec{
		Description: "first",
		Handler: func(p *clix.Payload) error {
			p.Next("from-a")
			return nil
		},
	}))
	loader.Register("a/b", clix.Command(clix.CommandSpec{
		Description: "second",
		Handler: func(p *clix.Payload) error {
			p.End(p.Data.(string) + "-from-b")
			return nil
		},
	}))
	c := clix.NewContext(cmd, "", loader, testsupport.NewRecordingClient(nil))
	require.NoError(t, c.Prepare(context.Background()))
	return c
}

func TestStateNextThreadsDataThroughChain(t *testing.T) {
	c := newTestContext(t, "a b")
	result, err := c.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "from-a-from-b", result)
}

func TestStateEndStopsWalkEarly(t *testing.T) {
	loader := testsupport.NewMemLoader()
	loader.RegisterDir("a")
	loader.Register("a", clix.Command(clix.CommandSpec{
		Handler: func(p *clix.Payload) error {
			p.End("stopped")
			return nil
		},
	}))
	loader.Register("a/b", clix.Command(clix.CommandSpec{
		Handler: func(p *clix.Payload) error {
			t.Fatal("should never reach b once a called End")
			return nil
		},
	}))
	c := clix.NewContext("a b", "", loader, testsupport.NewRecordingClient(nil))
	require.NoError(t, c.Prepare(context.Background()))
	result, err := c.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "stopped", result)
}

func TestStateHandlerReturningWithoutNextOrEndAutoAdvances(t *testing.T) {
	loader := testsupport.NewMemLoader()
	loader.RegisterDir("a")
	loader.Register("a", clix.Command(clix.CommandSpec{
		Handler: func(p *clix.Payload) error {
			return nil // neither Next nor End called
		},
	}))
	loader.Register("a/b", clix.Command(clix.CommandSpec{
		Handler: func(p *clix.Payload) error {
			p.End("reached")
			return nil
		},
	}))
	c := clix.NewContext("a b", "", loader, testsupport.NewRecordingClient(nil))
	require.NoError(t, c.Prepare(context.Background()))
	result, err := c.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "reached", result)
}

func TestStateSecondNextCallWithinSameHandlerIsNoOp(t *testing.T) {
	loader := testsupport.NewMemLoader()
	loader.RegisterDir("a")
	calls := 0
	loader.Register("a", clix.Command(clix.CommandSpec{
		Handler: func(p *clix.Payload) error {
			p.Next("first")
			p.Next("second") // no-op: Next already called this invocation
			calls++
			return nil
		},
	}))
	loader.Register("a/b", clix.Command(clix.CommandSpec{
		Handler: func(p *clix.Payload) error {
			p.End(p.Data)
			return nil
		},
	}))
	c := clix.NewContext("a b", "", loader, testsupport.NewRecordingClient(nil))
	require.NoError(t, c.Prepare(context.Background()))
	result, err := c.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "first", result)
}

func TestStateHandlerErrorStopsWalk(t *testing.T) {
	boom := errors.New("boom")
	loader := testsupport.NewMemLoader()
	loader.Register("a", clix.Command(clix.CommandSpec{
		Handler: func(p *clix.Payload) error {
			return boom
		},
	}))
	c := clix.NewContext("a", "", loader, testsupport.NewRecordingClient(nil))
	require.NoError(t, c.Prepare(context.Background()))
	_, err := c.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
}

func TestBeforeCommandSkipAdvancesWithoutRunningHandler(t *testing.T) {
	loader := testsupport.NewMemLoader()
	loader.RegisterDir("a")
	loader.Register("a", clix.Command(clix.CommandSpec{
		Handler: func(p *clix.Payload) error {
			t.Fatal("skipped command must not run its handler")
			return nil
		},
	}))
	loader.Register("a/b", clix.Command(clix.CommandSpec{
		Handler: func(p *clix.Payload) error {
			p.End("b ran")
			return nil
		},
	}))
	c := clix.NewContext("a b", "", loader, testsupport.NewRecordingClient(nil))
	c.Hooks().On(hook.BeforeCommand, func(ctx context.Context, payload any) error {
		p := payload.(*clix.BeforeCommandPayload)
		if p.State.Index() == 0 {
			p.Skip()
		}
		return nil
	})
	require.NoError(t, c.Prepare(context.Background()))
	result, err := c.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "b ran", result)
}
