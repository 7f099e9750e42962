package model

import "testing"

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{"all", FilterAll, false},
		{"Active", FilterActive, false},
		{" completed ", FilterCompleted, false},
		{"done", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFilter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFilter(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFilter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilterKeep(t *testing.T) {
	open := Todo{ID: 1, Text: "a"}
	closed := Todo{ID: 2, Text: "b", Completed: true}

	if !FilterAll.Keep(open) || !FilterAll.Keep(closed) {
		t.Error("all should keep everything")
	}
	if !FilterActive.Keep(open) || FilterActive.Keep(closed) {
		t.Error("active should keep only open todos")
	}
	if FilterCompleted.Keep(open) || !FilterCompleted.Keep(closed) {
		t.Error("completed should keep only completed todos")
	}
}

func TestFilterNext(t *testing.T) {
	if got := FilterAll.Next(); got != FilterActive {
		t.Errorf("all.Next() = %q", got)
	}
	if got := FilterCompleted.Next(); got != FilterAll {
		t.Errorf("completed.Next() = %q", got)
	}
	if got := Filter("bogus").Next(); got != FilterAll {
		t.Errorf("bogus.Next() = %q", got)
	}
}
