package cst

import (
	"encoding/json"
	"strings"
	"testing"

	"pyast/internal/span"
	"pyast/internal/token"
)

// tok builds a one-line token starting at offset.
func tok(kind token.Kind, lexeme string, offset int) *Node {
	return Leaf(token.Token{
		Kind:   kind,
		Lexeme: lexeme,
		Span: span.Span{
			Start: span.Position{Offset: offset, Line: 1, Column: offset + 1},
			End:   span.Position{Offset: offset + len(lexeme), Line: 1, Column: offset + len(lexeme) + 1},
		},
	})
}

// sum builds the tree of "a + 10".
func sum() *Node {
	return New(Sum,
		New(Atom, tok(token.NAME, "a", 0)),
		tok(token.PLUS, "+", 2),
		New(Atom, tok(token.NUMBER, "10", 4)),
	)
}

func TestNewJoinsChildSpans(t *testing.T) {
	n := sum()
	if n.Span.Start.Offset != 0 || n.Span.End.Offset != 6 {
		t.Errorf("span = %s", n.Span)
	}
	if len(New(Atom, nil).Children) != 0 {
		t.Error("nil children must be dropped")
	}
}

func TestNavigation(t *testing.T) {
	n := sum()
	if got := n.ChildrenOf(Atom); len(got) != 2 {
		t.Errorf("ChildrenOf(Atom) = %d nodes", len(got))
	}
	if n.Child(Atom) != n.Children[0] {
		t.Error("Child must return the first match")
	}
	if n.Child(Primary) != nil {
		t.Error("Child must return nil without a match")
	}
	if len(n.NonTerminals()) != 2 {
		t.Error("NonTerminals must skip the operator")
	}
	if !n.Has(token.PLUS) || n.Has(token.NAME) || n.Count(token.PLUS) != 1 {
		t.Error("Has/Count must only look at direct terminal children")
	}
	if !n.Tok(token.PLUS).IsTerminal() {
		t.Error("Tok must return the terminal")
	}
	if Count(n) != 6 {
		t.Errorf("Count = %d, want 6", Count(n))
	}
}

func TestText(t *testing.T) {
	if got := sum().Text(); got != "a + 10" {
		t.Errorf("Text = %q", got)
	}
	call := New(Primary, tok(token.NAME, "f", 0), tok(token.LPAR, "(", 1), tok(token.RPAR, ")", 2))
	if got := call.Text(); got != "f()" {
		t.Errorf("Text = %q", got)
	}
}

func TestKinds(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range Kinds() {
		name := k.String()
		if k == Terminal || strings.HasPrefix(name, "Kind(") {
			t.Errorf("kind %d has no name", int(k))
		}
		if seen[name] {
			t.Errorf("duplicate kind name %q", name)
		}
		seen[name] = true
	}
	if Kind(-1).String() != "Kind(-1)" {
		t.Errorf("unknown kind: %q", Kind(-1).String())
	}
}

func TestNodeToMap(t *testing.T) {
	data, err := json.Marshal(NodeToMap(New(Atom, tok(token.NAME, "a", 0))))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(data)
	for _, want := range []string{`"kind":"Atom"`, `"kind":"Terminal"`, `"token":"NAME"`, `"lexeme":"a"`} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %s in %s", want, got)
		}
	}
	if NodeToMap(nil) != nil {
		t.Error("nil node must map to nil")
	}
}
