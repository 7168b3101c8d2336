// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package hook

// Lifecycle hook names, in firing order (spec §5, §4.5, §4.6). Payload
// types live in package clix, next to the orchestrator that builds them,
// to avoid an import cycle (they embed *clix.Context / *clix.State).
const (
	BeforeResolve     = "beforeResolve"
	AfterResolve      = "afterResolve"
	BeforeParse       = "beforeParse"
	AfterParse        = "afterParse"
	BeforeExecute     = "beforeExecute"
	BeforeCommand     = "beforeCommand"
	AfterCommand      = "afterCommand"
	BeforeEnd         = "beforeEnd"
	AfterExecute      = "afterExecute"
	BeforeError       = "beforeError"
	BeforeExit        = "beforeExit"
	BeforeStateChange = "beforeStateChange"
	AfterStateChange  = "afterStateChange"
)
