// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package token splits and joins shell-like argv strings, with support for
// quoted spans so a single token may contain the delimiter.
package token

import "strings"

// Split partitions s on delim, except that a token opened with an unescaped
// `"` merges every following sub-token until a closing `"`. Inner quotes are
// stripped; an escaped `\"` becomes a literal `"` inside the merged token.
//
// Split("", _) returns an empty, non-nil slice.
func Split(s string, delim byte) []string {
	if s == "" {
		return []string{}
	}

	var (
		tokens  []string
		cur     strings.Builder
		inQuote bool
		started bool
	)

	flush := func() {
		if started {
			tokens = append(tokens, cur.String())
			cur.Reset()
			started = false
		}
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\' && i+1 < len(runes) && runes[i+1] == '"':
			cur.WriteRune('"')
			started = true
			i++
		case r == '"':
			inQuote = !inQuote
			started = true
		case byte(r) == delim && !inQuote && r < 128:
			flush()
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	flush()

	return tokens
}

// JoinOpts controls Join's formatting.
type JoinOpts struct {
	Delimiter    byte
	WrapInQuotes bool
}

// defaultJoinOpts mirrors the spec's {delimiter=' ', wrapInQuotes=true}.
func defaultJoinOpts() JoinOpts {
	return JoinOpts{Delimiter: ' ', WrapInQuotes: true}
}

// Join flattens arbitrarily nested token lists, drops empty strings, and
// (when there is more than one resulting token and opts.WrapInQuotes is
// true) wraps any token containing the delimiter in quotes, escaping inner
// quotes. A trailing JoinOpts argument, if given, overrides the defaults.
func Join(parts ...any) string {
	opts := defaultJoinOpts()
	if n := len(parts); n > 0 {
		if o, ok := parts[n-1].(JoinOpts); ok {
			opts = o
			parts = parts[:n-1]
		}
	}

	flat := flatten(parts)
	flat = dropEmpty(flat)

	wrap := opts.WrapInQuotes && len(flat) > 1
	delim := string(opts.Delimiter)

	out := make([]string, 0, len(flat))
	for _, t := range flat {
		if wrap && strings.ContainsRune(t, rune(opts.Delimiter)) {
			escaped := strings.ReplaceAll(t, `"`, `\"`)
			out = append(out, `"`+escaped+`"`)
		} else {
			out = append(out, t)
		}
	}
	return strings.Join(out, delim)
}

func flatten(parts []any) []string {
	var out []string
	for _, p := range parts {
		switch v := p.(type) {
		case string:
			out = append(out, v)
		case []string:
			out = append(out, flatten(toAny(v))...)
		case [][]string:
			for _, inner := range v {
				out = append(out, flatten(toAny(inner))...)
			}
		case []any:
			out = append(out, flatten(v)...)
		}
	}
	return out
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func dropEmpty(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
