package cst

import "pyast/internal/span"

// NodeToMap converts a CST node to a map suitable for JSON serialization.
// Every production becomes {"kind", "span", "children"}; terminals become
// {"kind": "Terminal", "token", "lexeme", "span"}.
func NodeToMap(n *Node) map[string]interface{} {
	if n == nil {
		return nil
	}
	if n.Kind == Terminal {
		return map[string]interface{}{
			"kind":   n.Kind.String(),
			"token":  n.Token.Kind.String(),
			"lexeme": n.Token.Lexeme,
			"span":   spanToMap(n.Span),
		}
	}
	children := make([]interface{}, len(n.Children))
	for i, c := range n.Children {
		children[i] = NodeToMap(c)
	}
	return map[string]interface{}{
		"kind":     n.Kind.String(),
		"span":     spanToMap(n.Span),
		"children": children,
	}
}

func spanToMap(s span.Span) map[string]interface{} {
	return map[string]interface{}{
		"start": map[string]interface{}{
			"offset": s.Start.Offset,
			"line":   s.Start.Line,
			"column": s.Start.Column,
		},
		"end": map[string]interface{}{
			"offset": s.End.Offset,
			"line":   s.End.Line,
			"column": s.End.Column,
		},
	}
}
