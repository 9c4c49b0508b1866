package ast

import "iter"

// Link sets the parent pointer of every node under root. Builders and
// decoders call it once after constructing a tree.
func Link(root Node) {
	if root == nil {
		return
	}
	for _, child := range root.Children() {
		if child == nil {
			continue
		}
		child.setParent(root)
		Link(child)
	}
}

// Inspect traverses the tree depth-first in source order, calling fn for each
// node. If fn returns false, the children of that node are skipped.
func Inspect(root Node, fn func(Node) bool) {
	if root == nil || !fn(root) {
		return
	}
	for _, child := range root.Children() {
		Inspect(child, fn)
	}
}

// Find yields every node under root (root included) matching pred, in source
// order. When nested is false, function bodies and script block literals
// below root are not entered, which mirrors the host's
// FindAll(predicate, searchNestedScriptBlocks: false).
func Find(root Node, pred func(Node) bool, nested bool) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if root == nil {
			return
		}
		find(root, root, pred, nested, yield)
	}
}

func find(root, n Node, pred func(Node) bool, nested bool, yield func(Node) bool) bool {
	if pred(n) && !yield(n) {
		return false
	}
	if !nested && n != root && isScope(n) {
		return true
	}
	for _, child := range n.Children() {
		if !find(root, child, pred, nested, yield) {
			return false
		}
	}
	return true
}

func isScope(n Node) bool {
	switch n.(type) {
	case *FunctionDefinition, *ScriptBlockExpression, *FunctionMember:
		return true
	default:
		return false
	}
}

// All yields every node of type T under root, in source order, searching
// nested script blocks.
func All[T Node](root Node) iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := range Find(root, func(n Node) bool { _, ok := n.(T); return ok }, true) {
			if !yield(n.(T)) {
				return
			}
		}
	}
}

// Ancestors yields the parents of n from the closest outward.
func Ancestors(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for p := n.Parent(); p != nil; p = p.Parent() {
			if !yield(p) {
				return
			}
		}
	}
}

// Enclosing returns the closest ancestor of type T, if any.
func Enclosing[T Node](n Node) (T, bool) {
	for p := range Ancestors(n) {
		if t, ok := p.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// Root returns the topmost ancestor of n.
func Root(n Node) Node {
	for n.Parent() != nil {
		n = n.Parent()
	}
	return n
}
