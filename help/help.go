// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package help renders a Context's resolved queue and merged option schema
// as markdown, then through glamour/lipgloss for terminal display — kept
// as an external collaborator per the framework's scope (ANSI rendering of
// help text is deliberately not part of the orchestrator itself), but
// bundled here as the reference implementation the built-in help plugin
// uses by default.
package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/width"

	"github.com/morganforge/clix"
	"github.com/morganforge/clix/option"
)

// Renderer turns a resolved Context into displayable help text.
type Renderer interface {
	Render(c *clix.Context) (string, error)
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	flagStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// MarkdownRenderer builds a markdown document describing the resolved
// command path and its merged options, then renders it through glamour for
// terminal display. WordWrap is applied to the target column width.
type MarkdownRenderer struct {
	WordWrap int
}

// NewMarkdownRenderer returns a MarkdownRenderer wrapping at cols columns.
func NewMarkdownRenderer(cols int) *MarkdownRenderer {
	if cols <= 0 {
		cols = 80
	}
	return &MarkdownRenderer{WordWrap: cols}
}

// Render implements Renderer.
func (r *MarkdownRenderer) Render(c *clix.Context) (string, error) {
	md := r.markdown(c)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(r.WordWrap),
	)
	if err != nil {
		return md, nil
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md, nil
	}
	return out, nil
}

func (r *MarkdownRenderer) markdown(c *clix.Context) string {
	var b strings.Builder

	path := commandPath(c)
	fmt.Fprintf(&b, "# %s\n\n", headingStyle.Render(path))

	if desc := lastDescription(c); desc != "" {
		fmt.Fprintf(&b, "%s\n\n", desc)
	}

	opts := c.Options()
	if opts.Len() == 0 {
		return b.String()
	}

	b.WriteString("## Options\n\n")
	keys := opts.Keys()
	labels := make([]string, len(keys))
	for i, key := range keys {
		decl, _ := opts.Get(key)
		labels[i] = optionLabel(key, decl)
	}
	width := maxLabelWidth(labels)
	for i, key := range keys {
		decl, _ := opts.Get(key)
		writeOptionLine(&b, labels[i], decl, width)
	}
	return b.String()
}

func commandPath(c *clix.Context) string {
	parts := make([]string, 0, len(c.Queue()))
	for _, rc := range c.Queue() {
		parts = append(parts, rc.CommandName)
	}
	if len(parts) == 0 {
		return c.CommandString
	}
	return strings.Join(parts, " ")
}

func lastDescription(c *clix.Context) string {
	q := c.Queue()
	for i := len(q) - 1; i >= 0; i-- {
		if q[i].Command != nil && q[i].Command.Description != "" {
			return q[i].Command.Description
		}
	}
	return ""
}

// optionLabel builds the "--key, -a, --alias" heading for one option.
func optionLabel(key string, decl *option.Decl) string {
	label := "--" + key
	if decl != nil {
		for _, alias := range decl.Aliases {
			if len(alias) == 1 {
				label += ", -" + alias
			} else {
				label += ", --" + alias
			}
		}
	}
	return label
}

// maxLabelWidth reports the display width (go-runewidth, not len, since an
// option key or alias may carry full-width characters) of the widest label
// in a help listing, used to align the option column.
func maxLabelWidth(labels []string) int {
	max := 0
	for _, l := range labels {
		if w := runewidth.StringWidth(l); w > max {
			max = w
		}
	}
	return max
}

// narrowDescription folds fullwidth punctuation a localized command
// description might carry (e.g. a fullwidth colon) to its narrow ASCII
// form, so help columns stay aligned regardless of description language.
func narrowDescription(desc string) string {
	if p, _ := width.LookupString(desc); p.Kind() == width.Neutral {
		return desc
	}
	return width.Narrow.String(desc)
}

func writeOptionLine(b *strings.Builder, label string, decl *option.Decl, width int) {
	padded := label
	if pad := width - runewidth.StringWidth(label); pad > 0 {
		padded += strings.Repeat(" ", pad)
	}
	fmt.Fprintf(b, "- %s", flagStyle.Render(padded))
	if decl != nil {
		fmt.Fprintf(b, " (%s)", decl.Type.String())
		if decl.Required {
			b.WriteString(" **required**")
		}
		if decl.Description != "" {
			fmt.Fprintf(b, " — %s", narrowDescription(decl.Description))
		}
		if decl.Default != nil {
			fmt.Fprintf(b, " [default: %v]", decl.Default)
		}
	}
	b.WriteString("\n")
}
