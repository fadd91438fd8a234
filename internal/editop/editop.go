// Package editop defines the closed set of content edit operations and
// their interpreter.
//
// Ops arrive over the wire as {"op": "replaceAll", "oldText": ..., ...} and
// are applied in order against the evolving in-memory content; the caller
// performs a single file write at the end, so a batch is atomic from the
// caller's point of view.
package editop

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ferrith/carta/internal/apperr"
)

// Kind discriminates the edit operation variants.
type Kind int

const (
	// ReplaceOnce replaces exactly the first occurrence of OldText.
	ReplaceOnce Kind = iota
	// ReplaceAll replaces every occurrence of OldText.
	ReplaceAll
	// ReplaceRegex compiles Pattern with Flags and substitutes Replacement.
	ReplaceRegex
	// ReplaceAllContent discards prior content entirely.
	ReplaceAllContent
)

var kindNames = map[Kind]string{
	ReplaceOnce:       "replaceOnce",
	ReplaceAll:        "replaceAll",
	ReplaceRegex:      "replaceRegex",
	ReplaceAllContent: "replaceAllContent",
}

var kindsByName = map[string]Kind{
	"replaceOnce":       ReplaceOnce,
	"replaceAll":        ReplaceAll,
	"replaceRegex":      ReplaceRegex,
	"replaceAllContent": ReplaceAllContent,
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("editop(%d)", int(k))
}

// Op is one edit operation. Which fields are meaningful depends on Kind.
type Op struct {
	Kind        Kind
	OldText     string // ReplaceOnce, ReplaceAll
	NewText     string // ReplaceOnce, ReplaceAll
	Pattern     string // ReplaceRegex
	Flags       string // ReplaceRegex: any of "i", "m", "s"
	Replacement string // ReplaceRegex
	Content     string // ReplaceAllContent
}

// opWire is the JSON shape shared with the CLI and MCP layers.
type opWire struct {
	Op          string `json:"op"`
	OldText     string `json:"oldText,omitempty"`
	NewText     string `json:"newText,omitempty"`
	Pattern     string `json:"pattern,omitempty"`
	Flags       string `json:"flags,omitempty"`
	Replacement string `json:"replacement,omitempty"`
	Content     string `json:"content,omitempty"`
}

// UnmarshalJSON decodes the wire shape, rejecting unknown op names.
func (o *Op) UnmarshalJSON(data []byte) error {
	var w opWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	kind, ok := kindsByName[w.Op]
	if !ok {
		return fmt.Errorf("editop: unknown op %q", w.Op)
	}
	*o = Op{
		Kind:        kind,
		OldText:     w.OldText,
		NewText:     w.NewText,
		Pattern:     w.Pattern,
		Flags:       w.Flags,
		Replacement: w.Replacement,
		Content:     w.Content,
	}
	return nil
}

// MarshalJSON encodes the wire shape.
func (o Op) MarshalJSON() ([]byte, error) {
	return json.Marshal(opWire{
		Op:          o.Kind.String(),
		OldText:     o.OldText,
		NewText:     o.NewText,
		Pattern:     o.Pattern,
		Flags:       o.Flags,
		Replacement: o.Replacement,
		Content:     o.Content,
	})
}

// Apply runs ops in order against content and returns the final content and
// the number of ops applied. The first failing op aborts the batch; nothing
// is written by this package, so a failed batch leaves the document intact.
func Apply(content string, ops []Op) (string, int, error) {
	applied := 0
	for i, op := range ops {
		next, err := applyOne(content, op)
		if err != nil {
			return "", applied, fmt.Errorf("editop: op %d (%s): %w", i, op.Kind, err)
		}
		content = next
		applied++
	}
	return content, applied, nil
}

func applyOne(content string, op Op) (string, error) {
	switch op.Kind {
	case ReplaceOnce:
		if !strings.Contains(content, op.OldText) || op.OldText == "" {
			return "", fmt.Errorf("%q: %w", op.OldText, apperr.ErrTextNotFound)
		}
		return strings.Replace(content, op.OldText, op.NewText, 1), nil

	case ReplaceAll:
		if !strings.Contains(content, op.OldText) || op.OldText == "" {
			return "", fmt.Errorf("%q: %w", op.OldText, apperr.ErrTextNotFound)
		}
		return strings.ReplaceAll(content, op.OldText, op.NewText), nil

	case ReplaceRegex:
		re, err := compilePattern(op.Pattern, op.Flags)
		if err != nil {
			return "", err
		}
		return re.ReplaceAllString(content, op.Replacement), nil

	case ReplaceAllContent:
		return op.Content, nil
	}
	return "", fmt.Errorf("unknown kind %d", op.Kind)
}

// compilePattern translates the wire-level flags ("i", "m", "s", in any
// order; "g" is implied and ignored) into Go inline flags.
func compilePattern(pattern, flags string) (*regexp.Regexp, error) {
	var inline strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			inline.WriteRune(f)
		case 'g':
			// ReplaceAllString already replaces globally.
		default:
			return nil, fmt.Errorf("unsupported regex flag %q", string(f))
		}
	}
	if inline.Len() > 0 {
		pattern = "(?" + inline.String() + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern: %w", err)
	}
	return re, nil
}
