package library

import (
	"testing"
	"time"
)

func TestDate_Time(t *testing.T) {
	tests := []struct {
		name    string
		date    Date
		want    time.Time
		wantErr bool
	}{
		{
			name: "record format",
			date: "2026-02-05 14:30:00.000Z",
			want: time.Date(2026, 2, 5, 14, 30, 0, 0, time.UTC),
		},
		{
			name: "RFC3339",
			date: "2026-02-05T14:30:00Z",
			want: time.Date(2026, 2, 5, 14, 30, 0, 0, time.UTC),
		},
		{
			name: "bare date",
			date: "2026-02-05",
			want: time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC),
		},
		{name: "empty", date: "", wantErr: true},
		{name: "garbage", date: "soon", wantErr: true},
		{name: "swapped day and month", date: "05-02-2026", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.date.Time()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Time() = %v, expected error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Time() failed: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Time() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewDate_roundTrip(t *testing.T) {
	in := time.Date(2026, 2, 5, 14, 30, 45, int(123*time.Millisecond), time.UTC)

	d := NewDate(in)
	if want := Date("2026-02-05 14:30:45.123Z"); d != want {
		t.Errorf("NewDate() = %s, want %s", d, want)
	}

	out, err := d.Time()
	if err != nil {
		t.Fatalf("Time() failed: %v", err)
	}
	if !out.Equal(in) {
		t.Errorf("round trip = %v, want %v", out, in)
	}
}

func TestNewDate_ordering(t *testing.T) {
	// stored values must order lexicographically the way the instants do,
	// since the store compares them as raw strings
	times := []time.Time{
		time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 5, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 11, 5, 9, 0, 0, 0, time.UTC),
	}
	for i := 1; i < len(times); i++ {
		a, b := NewDate(times[i-1]), NewDate(times[i])
		if !(a < b) {
			t.Errorf("NewDate(%v) = %s not < NewDate(%v) = %s", times[i-1], a, times[i], b)
		}
	}
}

func TestHumanDate(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2026, 2, 5, 14, 30, 0, 0, time.UTC), "5.2 2026"},
		{time.Date(2026, 11, 23, 0, 0, 0, 0, time.UTC), "23.11 2026"},
	}
	for _, tt := range tests {
		if got := HumanDate(tt.in); got != tt.want {
			t.Errorf("HumanDate(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDate_IsZero(t *testing.T) {
	if !Date("").IsZero() {
		t.Error("empty Date should be zero")
	}
	if Date("2026-02-05").IsZero() {
		t.Error("set Date should not be zero")
	}
}
