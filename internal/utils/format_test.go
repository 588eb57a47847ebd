package utils

import (
	"testing"
	"time"
)

func TestFormatAccountCreated(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "first",
			in:   time.Date(2026, time.August, 1, 15, 4, 5, 0, time.UTC),
			want: "August 1st 2026, 3:04:05 pm",
		},
		{
			name: "second",
			in:   time.Date(2026, time.January, 2, 9, 30, 0, 0, time.UTC),
			want: "January 2nd 2026, 9:30:00 am",
		},
		{
			name: "third",
			in:   time.Date(2025, time.March, 3, 0, 0, 1, 0, time.UTC),
			want: "March 3rd 2025, 12:00:01 am",
		},
		{
			name: "teens use th",
			in:   time.Date(2025, time.December, 11, 23, 59, 59, 0, time.UTC),
			want: "December 11th 2025, 11:59:59 pm",
		},
		{
			name: "twenty-first",
			in:   time.Date(2025, time.June, 21, 12, 0, 0, 0, time.UTC),
			want: "June 21st 2025, 12:00:00 pm",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FormatAccountCreated(tc.in)

			if got != tc.want {
				t.Fatalf("FormatAccountCreated = %q, want %q", got, tc.want)
			}
		})
	}
}
