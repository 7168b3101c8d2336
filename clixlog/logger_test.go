// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package clixlog

import "testing"

func TestDebugEnabledReflectsEnvVar(t *testing.T) {
	t.Setenv("CLIX_DEBUG", "1")
	if !DebugEnabled() {
		t.Fatal("expected DebugEnabled to be true with CLIX_DEBUG=1")
	}

	t.Setenv("CLIX_DEBUG", "0")
	if DebugEnabled() {
		t.Fatal("expected DebugEnabled to be false with CLIX_DEBUG=0")
	}

	t.Setenv("CLIX_DEBUG", "")
	if DebugEnabled() {
		t.Fatal("expected DebugEnabled to be false with CLIX_DEBUG unset")
	}
}
