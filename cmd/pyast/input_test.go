package main

import "testing"

func feed(t *testing.T, lines ...string) []string {
	t.Helper()
	var b blockReader
	var inputs []string
	for _, line := range lines {
		if source, ok := b.add(line); ok {
			inputs = append(inputs, source)
		}
	}
	if b.pending() {
		t.Fatalf("input still pending after %q", lines)
	}
	return inputs
}

func TestBlockReaderSingleLine(t *testing.T) {
	got := feed(t, "x = 1", "print(x)")
	if len(got) != 2 || got[0] != "x = 1\n" || got[1] != "print(x)\n" {
		t.Errorf("got %q", got)
	}
}

func TestBlockReaderCompoundStatement(t *testing.T) {
	got := feed(t, "for i in xs:", "    if i:", "        f(i)", "")
	want := "for i in xs:\n    if i:\n        f(i)\n"
	if len(got) != 1 || got[0] != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBlockReaderDecorator(t *testing.T) {
	got := feed(t, "@cache", "def f():", "    return 1", "")
	if len(got) != 1 || got[0] != "@cache\ndef f():\n    return 1\n" {
		t.Errorf("got %q", got)
	}
}

func TestBlockReaderOpenBrackets(t *testing.T) {
	got := feed(t, "xs = [", "  1,", "  2]", "y = 2")
	if len(got) != 2 || got[0] != "xs = [\n  1,\n  2]\n" {
		t.Errorf("got %q", got)
	}
}

func TestBlockReaderColonInsideExpression(t *testing.T) {
	got := feed(t, "d = {'a': 1}", "s = xs[1:]")
	if len(got) != 2 {
		t.Errorf("expected two complete inputs, got %q", got)
	}
}

func TestBlockReaderReset(t *testing.T) {
	var b blockReader
	b.add("while True:")
	if !b.pending() {
		t.Fatal("expected a pending block")
	}
	b.reset()
	if source, ok := b.add("x = 1"); !ok || source != "x = 1\n" {
		t.Errorf("after reset: %q, %v", source, ok)
	}
}
