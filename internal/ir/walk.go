package ir

import "iter"

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the children of that node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// All yields n and its descendants in preorder.
func All(n *Node) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		all(n, yield)
	}
}

func all(n *Node, yield func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !yield(n) {
		return false
	}
	for _, c := range n.Children {
		if !all(c, yield) {
			return false
		}
	}
	return true
}

// Find returns the first node of kind k in preorder.
func Find(n *Node, k Kind) *Node {
	for x := range All(n) {
		if x.Kind == k {
			return x
		}
	}
	return nil
}

// Rewrite rebuilds n bottom-up. fn receives every node after its children
// were rewritten and returns the nodes that replace it: nil drops it, a
// single element keeps or replaces it, several elements splice in.
// Nodes on unchanged paths are shared with the input.
//
// The root is never dropped or split; if fn does so, the rewritten root is
// returned unchanged.
func Rewrite(n *Node, fn func(*Node) []*Node) *Node {
	if n == nil {
		return nil
	}
	out := rewriteChildren(n, fn)
	if rep := fn(out); len(rep) == 1 {
		return rep[0]
	}
	return out
}

func rewriteChildren(n *Node, fn func(*Node) []*Node) *Node {
	var kids []*Node
	changed := false
	for i, c := range n.Children {
		rc := rewriteChildren(c, fn)
		rep := fn(rc)
		if !changed && len(rep) == 1 && rep[0] == c {
			continue
		}
		if !changed {
			kids = make([]*Node, 0, len(n.Children)+len(rep))
			kids = append(kids, n.Children[:i]...)
			changed = true
		}
		kids = append(kids, rep...)
	}
	if !changed {
		return n
	}
	cp := *n
	cp.Children = kids
	return &cp
}

// Keep is the identity rewrite result.
func Keep(n *Node) []*Node { return []*Node{n} }
