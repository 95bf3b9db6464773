package orders

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusPending, StatusPacking}:   true,
		{StatusPacking, StatusShipped}:   true,
		{StatusShipped, StatusCompleted}: true,
	}

	statuses := []Status{StatusPending, StatusPacking, StatusShipped, StatusCompleted}
	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]Status{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	if CanTransition(StatusCompleted, "") {
		t.Error("completed must be terminal")
	}
	if CanTransition("bogus", StatusPacking) {
		t.Error("unknown from-status must not transition")
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "packing", "shipped", "completed"} {
		got, err := ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %s", s, got)
		}
	}

	for _, s := range []string{"", "PENDING", "cancelled", "done"} {
		if _, err := ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error", s)
		}
	}
}
