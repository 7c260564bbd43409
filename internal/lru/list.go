// Package lru provides the recency list behind the shadow cache.
//
// The list is intrusive: callers keep the *Node returned by PushFront next
// to their own entry, which makes promotion and removal O(1) without a
// second lookup. The head is the most recently used element, the tail the
// least recently used.
//
// List is not safe for concurrent use.
package lru

// Node is an element of a List.
type Node[V any] struct {
	Value V

	prev *Node[V]
	next *Node[V]
	list *List[V]
}

// List is a doubly-linked list ordered by recency.
type List[V any] struct {
	head *Node[V]
	tail *Node[V]
	len  int
}

// New creates an empty list.
func New[V any]() *List[V] {
	return &List[V]{}
}

// Len returns the number of nodes in the list.
func (l *List[V]) Len() int {
	return l.len
}

// Back returns the least recently used node, or nil.
func (l *List[V]) Back() *Node[V] {
	return l.tail
}

// PushFront inserts v as the most recently used element.
func (l *List[V]) PushFront(v V) *Node[V] {
	node := &Node[V]{Value: v, list: l}
	l.linkFront(node)
	l.len++
	return node
}

// MoveToFront marks node as the most recently used element.
// Nodes that belong to another list are ignored.
func (l *List[V]) MoveToFront(node *Node[V]) {
	if node == nil || node.list != l || node == l.head {
		return
	}
	l.unlink(node)
	l.linkFront(node)
}

// Remove unlinks node from the list. It reports whether the node was a
// member; removing a node twice is a no-op.
func (l *List[V]) Remove(node *Node[V]) bool {
	if node == nil || node.list != l {
		return false
	}
	l.unlink(node)
	node.list = nil
	l.len--
	return true
}

// Each calls fn for every value from most to least recently used until fn
// returns false. fn must not modify the list.
func (l *List[V]) Each(fn func(V) bool) {
	for n := l.head; n != nil; n = n.next {
		if !fn(n.Value) {
			return
		}
	}
}

// Clear drops every node. Nodes handed out earlier become detached.
func (l *List[V]) Clear() {
	for n := l.head; n != nil; {
		next := n.next
		n.prev, n.next, n.list = nil, nil, nil
		n = next
	}
	l.head = nil
	l.tail = nil
	l.len = 0
}

func (l *List[V]) linkFront(node *Node[V]) {
	node.prev = nil
	node.next = l.head
	if l.head != nil {
		l.head.prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
}

// unlink removes node from the chain without touching len or node.list.
func (l *List[V]) unlink(node *Node[V]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}

	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}

	node.prev = nil
	node.next = nil
}
