package selection

import (
	"maps"
	"slices"
)

// NoNode marks a detail request without a focus node.
const NoNode = -1

// DetailRequest asks the detail view to show one network. SubElementID is
// the focus node or [NoNode]; ClusterPage is the community page or -1 when
// community paging is off.
type DetailRequest struct {
	ItemID       int
	SubElementID int
	ClusterPage  int
}

// Detail is the node-link detail descriptor.
type Detail struct {
	ItemID int
	NodeID int
	Page   int
}

// State is the selection context of one session. It starts empty and is
// not cleared when the dataset is reloaded. It is not safe for concurrent
// use; the session serializes access.
type State struct {
	panels   map[int]bool
	selected map[int]bool
	detail   Detail
	hasDet   bool
	paging   bool
}

// NewState returns an empty state.
func NewState() *State {
	return &State{panels: make(map[int]bool), selected: make(map[int]bool)}
}

// Open records an open graphlet panel and reports whether it was new.
func (s *State) Open(id int) bool {
	if s.panels[id] {
		return false
	}
	s.panels[id] = true
	return true
}

// Close removes a panel and the matching motif column selection. It
// reports whether the panel was open.
func (s *State) Close(id int) bool {
	delete(s.selected, id)
	if !s.panels[id] {
		return false
	}
	delete(s.panels, id)
	return true
}

// IsOpen reports whether a panel is open for id.
func (s *State) IsOpen(id int) bool { return s.panels[id] }

// Panels returns the open panel ids in ascending order.
func (s *State) Panels() []int { return slices.Sorted(maps.Keys(s.panels)) }

// Select marks a column as selected.
func (s *State) Select(id int) { s.selected[id] = true }

// Deselect clears a column selection.
func (s *State) Deselect(id int) { delete(s.selected, id) }

// IsSelected reports whether id is selected.
func (s *State) IsSelected(id int) bool { return s.selected[id] }

// Selected returns the selected ids in ascending order.
func (s *State) Selected() []int { return slices.Sorted(maps.Keys(s.selected)) }

// SetPaging turns community paging of the detail view on or off.
func (s *State) SetPaging(on bool) { s.paging = on }

// Paging reports whether community paging is on.
func (s *State) Paging() bool { return s.paging }

// Detail returns the current detail descriptor.
func (s *State) Detail() (Detail, bool) { return s.detail, s.hasDet }

// ClearDetail drops the detail descriptor.
func (s *State) ClearDetail() {
	s.detail = Detail{}
	s.hasDet = false
}

// Focus points the detail view at item and node. Switching to a different
// item starts again at page 0.
func (s *State) Focus(item, node int) DetailRequest {
	if !s.hasDet || s.detail.ItemID != item {
		s.detail = Detail{ItemID: item, Page: 0}
		s.hasDet = true
	}
	s.detail.NodeID = node
	return s.Request()
}

// NextPage moves the detail view one community page forward and drops the
// focus node. It reports false when there is no detail.
func (s *State) NextPage() (DetailRequest, bool) { return s.turn(1) }

// PrevPage moves one page back, never below 0.
func (s *State) PrevPage() (DetailRequest, bool) { return s.turn(-1) }

func (s *State) turn(step int) (DetailRequest, bool) {
	if !s.hasDet {
		return DetailRequest{}, false
	}
	s.detail.Page = max(0, s.detail.Page+step)
	s.detail.NodeID = NoNode
	return s.Request(), true
}

// Request returns the detail request for the current descriptor.
func (s *State) Request() DetailRequest {
	page := -1
	if s.paging {
		page = s.detail.Page
	}
	return DetailRequest{ItemID: s.detail.ItemID, SubElementID: s.detail.NodeID, ClusterPage: page}
}
