package player

// Navigator owns a position in a flattened sequence. It never mutates the
// items; a refetched course means a fresh Flatten and a fresh Navigator.
type Navigator struct {
	items []Item
	index int
}

func NewNavigator(items []Item) *Navigator {
	return &Navigator{items: items}
}

func (n *Navigator) Len() int   { return len(n.items) }
func (n *Navigator) Index() int { return n.index }

// Current returns the item at the position; ok is false only for an empty
// sequence, which the caller presents as a "no content" state.
func (n *Navigator) Current() (Item, bool) {
	if len(n.items) == 0 {
		return Item{}, false
	}
	return n.items[n.index], true
}

// Next advances one step. At the last item it is a no-op and reports false;
// the view shows "Finish Course" there instead of a dead control.
func (n *Navigator) Next() bool {
	if n.index >= len(n.items)-1 {
		return false
	}
	n.index++
	return true
}

// Prev steps back, a no-op at the first item.
func (n *Navigator) Prev() bool {
	if n.index <= 0 {
		return false
	}
	n.index--
	return true
}

// Select jumps to an arbitrary position. Indices come from the same
// flattened sequence, so out-of-range is a caller bug; it is refused rather
// than allowed to corrupt the position.
func (n *Navigator) Select(i int) bool {
	if i < 0 || i >= len(n.items) {
		return false
	}
	n.index = i
	return true
}

func (n *Navigator) AtStart() bool { return n.index == 0 }
func (n *Navigator) AtEnd() bool   { return len(n.items) == 0 || n.index == len(n.items)-1 }
