// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package option

// Config is a mapping from canonical key to Decl, with insertion order
// preserved so help rendering is deterministic.
type Config struct {
	order   []string
	decls   map[string]*Decl
	aliases map[string]string // alias token -> canonical key
}

// NewConfig returns an empty Config.
func NewConfig() *Config {
	return &Config{
		decls:   make(map[string]*Decl),
		aliases: make(map[string]string),
	}
}

// Set declares key with decl, appending it to insertion order if new.
func (c *Config) Set(key string, decl *Decl) {
	if _, exists := c.decls[key]; !exists {
		c.order = append(c.order, key)
	}
	c.decls[key] = decl
	for _, a := range decl.Aliases {
		c.aliases[a] = key
	}
}

// Get returns the Decl for key (resolving aliases) and whether it exists.
func (c *Config) Get(key string) (*Decl, bool) {
	if d, ok := c.decls[key]; ok {
		return d, true
	}
	if canon, ok := c.aliases[key]; ok {
		d, ok := c.decls[canon]
		return d, ok
	}
	return nil, false
}

// Canonical resolves an alias (or the canonical key itself) to its
// canonical key, and whether anything matched.
func (c *Config) Canonical(key string) (string, bool) {
	if _, ok := c.decls[key]; ok {
		return key, true
	}
	if canon, ok := c.aliases[key]; ok {
		return canon, true
	}
	return "", false
}

// Keys returns the declared canonical keys in insertion order.
func (c *Config) Keys() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len reports the number of declared keys.
func (c *Config) Len() int { return len(c.order) }

// Merge shallow-merges other into c. Declarations from other win on key
// collision (later wins silently, per the option model's merge policy),
// but a colliding Decl whose Required/Default contradicts a peer key's
// already-declared Conflicts set is rejected, since that combination can
// never be satisfied.
func (c *Config) Merge(other *Config) error {
	for _, key := range other.order {
		decl := other.decls[key]
		if existing, ok := c.decls[key]; ok {
			if err := checkNoContradiction(key, existing, decl); err != nil {
				return err
			}
		}
		c.Set(key, decl)
	}
	return nil
}

func checkNoContradiction(key string, existing, incoming *Decl) error {
	if incoming.Required || incoming.Default != nil {
		for _, peer := range existing.Conflicts {
			if peer == key {
				return NewMergeConflictError(key, peer)
			}
		}
	}
	return nil
}

// MergeConflictError is raised by Merge when a colliding declaration can
// never be satisfied alongside an already-merged peer's Conflicts set.
type MergeConflictError struct {
	Key, Peer string
}

func NewMergeConflictError(key, peer string) error {
	return &MergeConflictError{Key: key, Peer: peer}
}

func (e *MergeConflictError) Error() string {
	return "option " + e.Key + " contradicts an existing conflicts declaration against " + e.Peer
}
