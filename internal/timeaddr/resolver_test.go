package timeaddr

import (
	"errors"
	"testing"
	"time"

	_ "time/tzdata"
)

func TestResolve(t *testing.T) {
	r, err := NewResolver()
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	tests := []struct {
		name    string
		date    string
		time    string
		address string
		wantTZ  string
		wantErr bool
	}{
		{
			name:    "manhattan morning",
			date:    "03/15/2026",
			time:    "9:00 AM",
			address: "123 Main St 10001",
			wantTZ:  "America/New_York",
		},
		{
			name:    "los angeles afternoon",
			date:    "03/15/2026",
			time:    "2:30 PM",
			address: "456 Sunset Blvd 90012",
			wantTZ:  "America/Los_Angeles",
		},
		{
			name:    "24 hour clock accepted",
			date:    "03/15/2026",
			time:    "14:30",
			address: "789 Michigan Ave 60601",
			wantTZ:  "America/Chicago",
		},
		{
			name:    "long form date accepted",
			date:    "March 15, 2026",
			time:    "9:00 AM",
			address: "123 Main St 10001",
			wantTZ:  "America/New_York",
		},
		{
			name:    "open sentinel is unresolvable",
			date:    "03/15/2026",
			time:    "OPEN",
			address: "123 Main St 10001",
			wantErr: true,
		},
		{
			name:    "empty time is unresolvable",
			date:    "03/15/2026",
			time:    "",
			address: "123 Main St 10001",
			wantErr: true,
		},
		{
			name:    "zip outside every range",
			date:    "03/15/2026",
			time:    "9:00 AM",
			address: "1 Nowhere Rd 00100",
			wantErr: true,
		},
		{
			name:    "non numeric zip",
			date:    "03/15/2026",
			time:    "9:00 AM",
			address: "1 Nowhere Rd ABCDE",
			wantErr: true,
		},
		{
			name:    "garbage time",
			date:    "03/15/2026",
			time:    "sometime later",
			address: "123 Main St 10001",
			wantErr: true,
		},
		{
			name:    "garbage date",
			date:    "the ides of march",
			time:    "9:00 AM",
			address: "123 Main St 10001",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.date, tt.time, tt.address)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				if !errors.Is(err, ErrUnresolvable) {
					t.Errorf("error should wrap ErrUnresolvable, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got.Location().String() != tt.wantTZ {
				t.Errorf("timezone = %s, want %s", got.Location(), tt.wantTZ)
			}
		})
	}
}

func TestResolveInstant(t *testing.T) {
	r, err := NewResolver()
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	got, err := r.Resolve("03/15/2026", "9:30 AM", "123 Main St 10001")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	loc, _ := time.LoadLocation("America/New_York")
	want := time.Date(2026, 3, 15, 9, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("instant = %v, want %v", got, want)
	}
}

func TestStateCode(t *testing.T) {
	r, err := NewResolver()
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	tests := []struct {
		zip    string
		want   string
		wantOK bool
	}{
		{"10001", "NY", true},
		{"90012", "CA", true},
		{"02140", "MA", true},
		{"00100", "", false},
		{"1234", "", false},
		{"123456", "", false},
	}
	for _, tt := range tests {
		got, ok := r.StateCode(tt.zip)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("StateCode(%q) = %q, %v; want %q, %v", tt.zip, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFormatHelpers(t *testing.T) {
	at := time.Date(2026, 3, 15, 14, 5, 0, 0, time.UTC)
	if got := To12Hour(at); got != "02:05 PM" {
		t.Errorf("To12Hour = %q", got)
	}
	if got := To24Hour(at); got != "14:05" {
		t.Errorf("To24Hour = %q", got)
	}
}
