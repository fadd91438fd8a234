package editop

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ferrith/carta/internal/apperr"
)

func TestReplaceOnce(t *testing.T) {
	out, n, err := Apply("foo bar foo", []Op{
		{Kind: ReplaceOnce, OldText: "foo", NewText: "baz"},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out != "baz bar foo" {
		t.Errorf("got %q", out)
	}
	if n != 1 {
		t.Errorf("applied = %d, want 1", n)
	}
}

func TestReplaceAllOccurrences(t *testing.T) {
	out, _, err := Apply("foo bar foo", []Op{
		{Kind: ReplaceAll, OldText: "foo", NewText: "baz"},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out != "baz bar baz" {
		t.Errorf("got %q", out)
	}
}

func TestReplaceTextNotFound(t *testing.T) {
	for _, kind := range []Kind{ReplaceOnce, ReplaceAll} {
		_, n, err := Apply("hello", []Op{{Kind: kind, OldText: "missing", NewText: "x"}})
		if !errors.Is(err, apperr.ErrTextNotFound) {
			t.Errorf("%s: expected ErrTextNotFound, got %v", kind, err)
		}
		if n != 0 {
			t.Errorf("%s: applied = %d, want 0", kind, n)
		}
	}
}

func TestReplaceEmptyOldTextFails(t *testing.T) {
	_, _, err := Apply("hello", []Op{{Kind: ReplaceOnce, OldText: "", NewText: "x"}})
	if !errors.Is(err, apperr.ErrTextNotFound) {
		t.Errorf("expected ErrTextNotFound for empty oldText, got %v", err)
	}
}

func TestReplaceRegex(t *testing.T) {
	out, _, err := Apply("v1.2 and v3.4", []Op{
		{Kind: ReplaceRegex, Pattern: `v(\d+)\.(\d+)`, Replacement: "version $1-$2"},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out != "version 1-2 and version 3-4" {
		t.Errorf("got %q", out)
	}
}

func TestReplaceRegexFlags(t *testing.T) {
	// Case-insensitive.
	out, _, err := Apply("Hello HELLO hello", []Op{
		{Kind: ReplaceRegex, Pattern: "hello", Flags: "i", Replacement: "hi"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out != "hi hi hi" {
		t.Errorf("flag i: got %q", out)
	}

	// Multiline anchors.
	out, _, err = Apply("a\nb\na", []Op{
		{Kind: ReplaceRegex, Pattern: "^a$", Flags: "m", Replacement: "x"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out != "x\nb\nx" {
		t.Errorf("flag m: got %q", out)
	}

	// "g" is accepted and redundant.
	if _, _, err := Apply("aa", []Op{
		{Kind: ReplaceRegex, Pattern: "a", Flags: "g", Replacement: "b"},
	}); err != nil {
		t.Errorf("flag g should be accepted: %v", err)
	}
}

func TestReplaceRegexBadFlag(t *testing.T) {
	_, _, err := Apply("x", []Op{
		{Kind: ReplaceRegex, Pattern: "x", Flags: "x", Replacement: "y"},
	})
	if err == nil {
		t.Error("expected error for unsupported flag")
	}
}

func TestReplaceRegexNoMatchSucceeds(t *testing.T) {
	// Unlike literal replaces, a regex with zero matches applies cleanly.
	out, n, err := Apply("hello", []Op{
		{Kind: ReplaceRegex, Pattern: "zzz", Replacement: "x"},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out != "hello" || n != 1 {
		t.Errorf("got %q, applied %d", out, n)
	}
}

func TestReplaceAllContent(t *testing.T) {
	out, _, err := Apply("anything at all", []Op{
		{Kind: ReplaceAllContent, Content: "fresh"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out != "fresh" {
		t.Errorf("got %q", out)
	}
}

func TestBatchSequentialAndAborts(t *testing.T) {
	// Second op sees the output of the first.
	out, n, err := Apply("one", []Op{
		{Kind: ReplaceOnce, OldText: "one", NewText: "two"},
		{Kind: ReplaceOnce, OldText: "two", NewText: "three"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out != "three" || n != 2 {
		t.Errorf("got %q, applied %d", out, n)
	}

	// A failing op aborts the batch; later ops never run.
	_, n, err = Apply("one", []Op{
		{Kind: ReplaceOnce, OldText: "one", NewText: "two"},
		{Kind: ReplaceOnce, OldText: "missing", NewText: "x"},
		{Kind: ReplaceAllContent, Content: "never"},
	})
	if !errors.Is(err, apperr.ErrTextNotFound) {
		t.Errorf("expected ErrTextNotFound, got %v", err)
	}
	if n != 1 {
		t.Errorf("applied = %d, want 1", n)
	}
}

func TestUnmarshalWire(t *testing.T) {
	raw := `[
		{"op": "replaceOnce", "oldText": "a", "newText": "b"},
		{"op": "replaceRegex", "pattern": "x+", "flags": "i", "replacement": "y"},
		{"op": "replaceAllContent", "content": "new"}
	]`
	var ops []Op
	if err := json.Unmarshal([]byte(raw), &ops); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(ops) != 3 {
		t.Fatalf("got %d ops", len(ops))
	}
	if ops[0].Kind != ReplaceOnce || ops[0].OldText != "a" {
		t.Errorf("op 0 = %+v", ops[0])
	}
	if ops[1].Kind != ReplaceRegex || ops[1].Flags != "i" {
		t.Errorf("op 1 = %+v", ops[1])
	}
	if ops[2].Kind != ReplaceAllContent || ops[2].Content != "new" {
		t.Errorf("op 2 = %+v", ops[2])
	}
}

func TestUnmarshalRejectsUnknownOp(t *testing.T) {
	var op Op
	if err := json.Unmarshal([]byte(`{"op": "deleteLines"}`), &op); err == nil {
		t.Error("expected error for unknown op name")
	}
}
