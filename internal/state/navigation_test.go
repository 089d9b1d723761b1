package state

import "testing"

func TestStackRootCannotPop(t *testing.T) {
	s := NewStack()

	if _, ok := s.Pop(); ok {
		t.Fatal("Pop on root-only stack succeeded, want underflow")
	}
	if got := s.Len(); got != 1 {
		t.Fatalf("Len after underflow = %d, want 1", got)
	}
	if got := s.Current(); got.ID != RouteHome {
		t.Fatalf("Current after underflow = %v, want RouteHome", got.ID)
	}
}

func TestStackPopReturnsPoppedEntry(t *testing.T) {
	s := NewStack()
	s.Push(Route{ID: RouteTrackTable, Active: BlockTrackTable})

	popped, ok := s.Pop()
	if !ok {
		t.Fatal("Pop returned underflow, want success")
	}
	if popped.ID != RouteTrackTable || popped.Active != BlockTrackTable {
		t.Fatalf("popped = %+v, want the track table entry", popped)
	}
	if got := s.Current(); got.ID != RouteHome {
		t.Fatalf("Current after pop = %v, want RouteHome", got.ID)
	}
}

func TestBackSkipsSearchScreen(t *testing.T) {
	s := NewStack()
	s.Push(Route{ID: RouteTrackTable, Active: BlockTrackTable})
	s.Push(Route{ID: RouteSearch, Active: BlockSearchInput})

	if _, ok := s.Back(); !ok {
		t.Fatal("Back returned underflow, want success")
	}
	if got := s.Current(); got.ID != RouteHome {
		t.Fatalf("Current after skipping search = %v, want RouteHome", got.ID)
	}
	if got := s.Len(); got != 1 {
		t.Fatalf("Len = %d, want 1", got)
	}
}

func TestBackFromSearchOverRootExits(t *testing.T) {
	s := NewStack()
	s.Push(Route{ID: RouteSearch, Active: BlockSearchInput})

	if _, ok := s.Back(); ok {
		t.Fatal("Back over [root, search] succeeded, want underflow (exit)")
	}
	if got := s.Len(); got != 1 {
		t.Fatalf("Len = %d, want the root to survive", got)
	}
}

func TestBackOnPlainEntryPopsOnce(t *testing.T) {
	s := NewStack()
	s.Push(Route{ID: RouteSelectDevice, Active: BlockSelectDevice})
	s.Push(Route{ID: RouteTrackTable, Active: BlockTrackTable})

	popped, ok := s.Back()
	if !ok {
		t.Fatal("Back returned underflow, want success")
	}
	if popped.ID != RouteTrackTable {
		t.Fatalf("popped = %v, want RouteTrackTable", popped.ID)
	}
	if got := s.Current(); got.ID != RouteSelectDevice {
		t.Fatalf("Current = %v, want RouteSelectDevice", got.ID)
	}
}
