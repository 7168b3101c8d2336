// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClosestFindsSingleTypo(t *testing.T) {
	candidates := []string{"status", "config", "session"}
	assert.Equal(t, "status", Closest("statuz", candidates))
	assert.Equal(t, "config", Closest("confg", candidates))
}

func TestClosestReturnsEmptyForExactMatch(t *testing.T) {
	assert.Equal(t, "", Closest("status", []string{"status", "config"}))
}

func TestClosestReturnsEmptyWhenNothingIsClose(t *testing.T) {
	assert.Equal(t, "", Closest("zzz", []string{"status", "config", "session"}))
}

func TestClosestIgnoresVeryShortInput(t *testing.T) {
	assert.Equal(t, "", Closest("s", []string{"status"}))
}

func TestClosestPicksNearestAmongMultipleCandidates(t *testing.T) {
	candidates := []string{"help", "helper", "held"}
	assert.Equal(t, "help", Closest("hepl", candidates))
}
