package search

// None is the navigator state with nothing selected.
const None = -1

// Navigator is the keyboard selection over a result list.
type Navigator struct {
	selected int
	count    int
}

// NewNavigator returns a navigator over count entries with no selection.
func NewNavigator(count int) *Navigator {
	return &Navigator{selected: None, count: count}
}

// Selected returns the selected index or None.
func (n *Navigator) Selected() int { return n.selected }

// Count returns the number of entries.
func (n *Navigator) Count() int { return n.count }

// Reset clears the selection for a new result list.
func (n *Navigator) Reset(count int) {
	n.selected = None
	n.count = count
}

// Down moves the selection forward, stopping at the last entry.
func (n *Navigator) Down() {
	if n.count == 0 {
		return
	}
	if n.selected < n.count-1 {
		n.selected++
	}
}

// Up moves the selection back, down to no selection.
func (n *Navigator) Up() {
	if n.selected > None {
		n.selected--
	}
}

// Enter returns the index to activate: the selection, else the first entry.
// ok is false for an empty list.
func (n *Navigator) Enter() (int, bool) {
	if n.count == 0 {
		return None, false
	}
	if n.selected == None {
		return 0, true
	}
	return n.selected, true
}
