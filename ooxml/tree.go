package ooxml

import "github.com/beevik/etree"

// Generic node operations. These are low level and assume well-formed input:
// malformed input is a programmer error, not a recoverable condition, so they
// no-op safely rather than return errors.

// InsertBefore inserts node into parent immediately before ref. If ref is nil
// or not a child of parent, node is appended. No type compatibility check is
// performed; that is the caller's responsibility.
func InsertBefore(parent, node, ref *etree.Element) {
	if parent == nil || node == nil {
		return
	}
	if ref == nil || ref.Parent() != parent {
		parent.AddChild(node)
		return
	}
	parent.InsertChildAt(ref.Index(), node)
}

// InsertAfter inserts node into parent immediately after ref. If ref is nil
// or not a child of parent, node is appended.
func InsertAfter(parent, node, ref *etree.Element) {
	if parent == nil || node == nil {
		return
	}
	if ref == nil || ref.Parent() != parent {
		parent.AddChild(node)
		return
	}
	parent.InsertChildAt(ref.Index()+1, node)
}

// Remove detaches node from its parent. A node with no parent is a no-op.
func Remove(node *etree.Element) {
	if node == nil {
		return
	}
	if p := node.Parent(); p != nil {
		p.RemoveChild(node)
	}
}

// DeepClone returns a fully independent copy of node sharing no mutable
// state with the original subtree.
func DeepClone(node *etree.Element) *etree.Element {
	if node == nil {
		return nil
	}
	return node.Copy()
}

// Unwrap splices wrapper's child elements into wrapper's parent at wrapper's
// position, preserving order, then removes wrapper. Used to resolve revision
// wrappers whose content survives a transform.
func Unwrap(wrapper *etree.Element) {
	parent := wrapper.Parent()
	if parent == nil {
		return
	}
	idx := wrapper.Index()
	for i, ch := range wrapper.ChildElements() {
		parent.InsertChildAt(idx+i, ch)
	}
	parent.RemoveChild(wrapper)
}

// ChildIndex returns node's position among parent's child tokens, or -1 if
// node has no parent.
func ChildIndex(node *etree.Element) int {
	if node == nil || node.Parent() == nil {
		return -1
	}
	return node.Index()
}

// SetText sets el's text content, adding xml:space="preserve" when the text
// carries leading or trailing whitespace that naive serialization would drop.
func SetText(el *etree.Element, text string) {
	el.SetText(text)
	if text == "" {
		return
	}
	first, last := text[0], text[len(text)-1]
	if first == ' ' || first == '\t' || last == ' ' || last == '\t' {
		el.CreateAttr(AttrSpace, "preserve")
	}
}
