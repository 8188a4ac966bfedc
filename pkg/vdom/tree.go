package vdom

// AppendChild detaches child from its current parent and appends it to n.
func (n *Node) AppendChild(child *Node) {
	if child == nil {
		return
	}
	child.Remove()
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Index returns the position of n in its parent, or -1 if detached.
func (n *Node) Index() int {
	if n == nil || n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// Remove detaches n from its parent. Removing a detached node is a no-op.
func (n *Node) Remove() {
	i := n.Index()
	if i < 0 {
		n.Parent = nil
		return
	}
	p := n.Parent
	p.Children = append(p.Children[:i], p.Children[i+1:]...)
	n.Parent = nil
}

// InsertBefore inserts node immediately before ref.
// It returns false when ref is detached.
func InsertBefore(node, ref *Node) bool {
	return insertAt(node, ref, 0)
}

// InsertAfter inserts node immediately after ref.
// It returns false when ref is detached.
func InsertAfter(node, ref *Node) bool {
	return insertAt(node, ref, 1)
}

func insertAt(node, ref *Node, offset int) bool {
	if node == nil || ref == nil || ref.Parent == nil || node == ref {
		return false
	}
	node.Remove()
	p := ref.Parent
	i := ref.Index() + offset
	p.Children = append(p.Children, nil)
	copy(p.Children[i+1:], p.Children[i:])
	p.Children[i] = node
	node.Parent = p
	return true
}

// ReplaceWith puts nodes where n is and detaches n.
// Fragments in nodes are flattened into their children.
func (n *Node) ReplaceWith(nodes ...*Node) bool {
	if n.Parent == nil {
		return false
	}
	ref := n
	for _, x := range flatten(nodes) {
		if x == n {
			continue
		}
		InsertAfter(x, ref)
		ref = x
	}
	if !containsNode(nodes, n) {
		n.Remove()
	}
	return true
}

// SetChildren replaces all children of n.
func (n *Node) SetChildren(nodes ...*Node) {
	for _, c := range append([]*Node(nil), n.Children...) {
		c.Remove()
	}
	for _, c := range flatten(nodes) {
		n.AppendChild(c)
	}
}

func flatten(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, x := range nodes {
		if x == nil {
			continue
		}
		if x.Kind == KindFragment {
			out = append(out, append([]*Node(nil), x.Children...)...)
			continue
		}
		out = append(out, x)
	}
	return out
}

func containsNode(nodes []*Node, n *Node) bool {
	for _, x := range nodes {
		if x == n {
			return true
		}
	}
	return false
}
