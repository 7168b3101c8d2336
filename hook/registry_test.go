// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package hook

import (
	"context"
	"testing"
)

func TestCallRunsInRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	var order []int
	r.On("x", func(ctx context.Context, p any) error {
		order = append(order, 1)
		return nil
	})
	r.On("x", func(ctx context.Context, p any) error {
		order = append(order, 2)
		return nil
	})
	r.On("x", func(ctx context.Context, p any) error {
		order = append(order, 3)
		return nil
	})

	if err := r.Call(context.Background(), "x", nil); err != nil {
		t.Fatal(err)
	}
	want := []int{1, 2, 3}
	for i, v := range want {
		if order[i] != v {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestOnceRemovesBeforeBodyRuns(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.Once("x", func(ctx context.Context, p any) error {
		calls++
		if r.Len("x") != 0 {
			t.Errorf("expected once handler to be removed before its body ran, Len=%d", r.Len("x"))
		}
		return nil
	})

	r.Call(context.Background(), "x", nil)
	r.Call(context.Background(), "x", nil)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestOffRemovesHandler(t *testing.T) {
	r := NewRegistry()
	calls := 0
	tok := r.On("x", func(ctx context.Context, p any) error {
		calls++
		return nil
	})
	r.Off(tok)
	r.Call(context.Background(), "x", nil)

	if calls != 0 {
		t.Errorf("calls = %d, want 0 after Off", calls)
	}
}

func TestHandlerAddedDuringCallDoesNotRunThisCall(t *testing.T) {
	r := NewRegistry()
	var secondRan bool
	r.On("x", func(ctx context.Context, p any) error {
		r.On("x", func(ctx context.Context, p any) error {
			secondRan = true
			return nil
		})
		return nil
	})

	r.Call(context.Background(), "x", nil)
	if secondRan {
		t.Error("handler added mid-call must not run during that same call")
	}

	secondRan = false
	r.Call(context.Background(), "x", nil)
	if !secondRan {
		t.Error("handler added during the previous call must run on the next call")
	}
}

func TestMutationsVisibleToSubsequentHandlers(t *testing.T) {
	r := NewRegistry()
	type payload struct{ n int }
	r.On("x", func(ctx context.Context, p any) error {
		p.(*payload).n = 1
		return nil
	})
	r.On("x", func(ctx context.Context, p any) error {
		p.(*payload).n++
		return nil
	})

	p := &payload{}
	r.Call(context.Background(), "x", p)
	if p.n != 2 {
		t.Errorf("n = %d, want 2", p.n)
	}
}
