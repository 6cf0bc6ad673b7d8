package models

import (
	"testing"
	"time"
)

func TestFollowerKey(t *testing.T) {
	tests := []struct {
		name     string
		follower Follower
		want     string
	}{
		{
			name:     "user ID preferred",
			follower: Follower{UserID: "123456", Handle: "alice"},
			want:     "123456",
		},
		{
			name:     "handle fallback",
			follower: Follower{Handle: "alice"},
			want:     "alice",
		},
		{
			name:     "empty follower",
			follower: Follower{},
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.follower.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMonthOf(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{
			name: "utc time",
			t:    time.Date(2024, 2, 15, 10, 30, 0, 0, time.UTC),
			want: "2024-02",
		},
		{
			name: "converted to utc before bucketing",
			t:    time.Date(2024, 1, 31, 23, 0, 0, 0, time.FixedZone("behind", -2*3600)),
			want: "2024-02",
		},
		{
			name: "single digit month padded",
			t:    time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
			want: "2023-03",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthOf(tt.t); got != tt.want {
				t.Errorf("MonthOf(%v) = %q, want %q", tt.t, got, tt.want)
			}
		})
	}
}
