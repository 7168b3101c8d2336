// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package clix

import "github.com/morganforge/clix/hook"

// Hook name constants, re-exported from package hook so plugin authors
// only need to import this package to register handlers.
const (
	HookBeforeResolve     = hook.BeforeResolve
	HookAfterResolve      = hook.AfterResolve
	HookBeforeParse       = hook.BeforeParse
	HookAfterParse        = hook.AfterParse
	HookBeforeExecute     = hook.BeforeExecute
	HookBeforeCommand     = hook.BeforeCommand
	HookAfterCommand      = hook.AfterCommand
	HookBeforeEnd         = hook.BeforeEnd
	HookAfterExecute      = hook.AfterExecute
	HookBeforeError       = hook.BeforeError
	HookBeforeExit        = hook.BeforeExit
	HookBeforeStateChange = hook.BeforeStateChange
	HookAfterStateChange  = hook.AfterStateChange
)
