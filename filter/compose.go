/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package filter

// Compose ANDs the caller's filter with system-mandated constraints.
//
// The caller's tree is never mutated. Composing an empty caller filter with a single
// constraint yields exactly that constraint. AND nodes at the top of either side are
// flattened so that every predicate ends up as a direct child of one AND node.
// Constraints are appended after the caller's predicates, so they cannot be shadowed.
func Compose(caller Where, constraints ...Where) Where {
	children := make([]Where, 0, len(constraints)+1)
	children = appendFlattened(children, caller)
	for _, c := range constraints {
		children = appendFlattened(children, c)
	}

	switch len(children) {
	case 0:
		return Where{}
	case 1:
		return children[0]
	default:
		return Where{Op: And, Children: children}
	}
}

func appendFlattened(dst []Where, w Where) []Where {
	if w.IsEmpty() {
		return dst
	}
	if w.Op == And {
		for _, c := range w.Children {
			dst = appendFlattened(dst, c)
		}
		return dst
	}
	return append(dst, w.Clone())
}
