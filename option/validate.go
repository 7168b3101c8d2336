// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package option

import "fmt"

// Validate checks every explicitly-set value in values against cfg's
// choices, conflicts, requires, and custom Validate predicates. A required
// option that is simply absent is NOT an error here — per spec §4.2 that
// is deferred to read time, where a Getter may prompt for it.
func Validate(cfg *Config, values *Values) error {
	for _, key := range values.Keys() {
		decl, ok := cfg.Get(key)
		if !ok {
			continue
		}
		val, _ := values.Get(key)

		if ok, msg := decl.checkChoices(val); !ok {
			return &UsageDiag{Message: fmt.Sprintf("--%s %s", key, msg), Key: key}
		}

		for _, peer := range decl.Conflicts {
			if values.Has(peer) {
				return &UsageDiag{
					Message: fmt.Sprintf("--%s conflicts with --%s", key, peer),
					Key:     key,
				}
			}
		}

		for _, peer := range decl.Requires {
			if !values.Has(peer) {
				return &UsageDiag{
					Message: fmt.Sprintf("--%s requires --%s", key, peer),
					Key:     key,
				}
			}
		}

		if decl.Validate != nil {
			if ok, msg := decl.Validate(val); !ok {
				if msg == "" {
					msg = "invalid value"
				}
				return &UsageDiag{Message: fmt.Sprintf("--%s: %s", key, msg), Key: key}
			}
		}
	}
	return nil
}
