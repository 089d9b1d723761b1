package state

// RouteID identifies a screen in the navigation history.
type RouteID int

const (
	RouteHome RouteID = iota
	RouteSearch
	RouteTrackTable
	RouteSelectDevice
	RouteMadeForYou
)

// Block identifies the focused region within a screen.
type Block int

const (
	BlockEmpty Block = iota
	BlockLibrary
	BlockMyPlaylists
	BlockSearchInput
	BlockSearchResults
	BlockTrackTable
	BlockSelectDevice
	BlockPlayBar
)

// Route pairs a screen with its focused region.
type Route struct {
	ID     RouteID
	Active Block
}

// Stack is the drill-down history. It is never empty while the application
// runs: the root entry cannot be popped.
type Stack struct {
	entries []Route
}

// NewStack returns a stack holding the root route.
func NewStack() Stack {
	return Stack{entries: []Route{{ID: RouteHome, Active: BlockEmpty}}}
}

// Push appends a route on top of the history.
func (s *Stack) Push(r Route) {
	s.entries = append(s.entries, r)
}

// Current returns the top entry.
func (s *Stack) Current() Route {
	return s.entries[len(s.entries)-1]
}

// Len returns the stack depth.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Pop removes and returns the top entry. On a singleton stack it reports
// underflow instead of emptying; the caller treats that as "exit".
func (s *Stack) Pop() (Route, bool) {
	if len(s.entries) <= 1 {
		return Route{}, false
	}
	top := s.Current()
	s.entries = s.entries[:len(s.entries)-1]
	return top, true
}

// Back pops the top entry. When the popped entry is the transient search
// screen it pops once more, so the user lands on the screen that existed
// before the search was opened. The second pop may underflow, which still
// means "exit".
func (s *Stack) Back() (Route, bool) {
	popped, ok := s.Pop()
	if !ok {
		return Route{}, false
	}
	if popped.ID == RouteSearch {
		return s.Pop()
	}
	return popped, true
}
