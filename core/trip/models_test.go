package trip

import "testing"

func Test_CanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusDraft, StatusDispatched, true},
		{StatusDraft, StatusCancelled, true},
		{StatusDraft, StatusInTransit, false},
		{StatusDraft, StatusDelivered, false},
		{StatusDispatched, StatusInTransit, true},
		{StatusDispatched, StatusDraft, false},
		{StatusInTransit, StatusDelivered, true},
		{StatusInTransit, StatusClosed, false},
		{StatusDelivered, StatusClosed, true},
		{StatusDelivered, StatusCancelled, true},
		{StatusClosed, StatusCancelled, false},
		{StatusCancelled, StatusDraft, false},
		{"lol", StatusDraft, false},
		{StatusDraft, "lol", false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%q, %q) = %v; want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func Test_IsTerminalStatus(t *testing.T) {
	for _, status := range []string{StatusClosed, StatusCancelled} {
		if !IsTerminalStatus(status) {
			t.Errorf("IsTerminalStatus(%q) = false; want true", status)
		}
	}
	for _, status := range []string{StatusDraft, StatusDispatched, StatusInTransit, StatusDelivered} {
		if IsTerminalStatus(status) {
			t.Errorf("IsTerminalStatus(%q) = true; want false", status)
		}
	}
}
