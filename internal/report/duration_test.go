package report

import "testing"

func TestDurationText(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		expected string
	}{
		{"same day", "09:00", "17:00", "8 jam 0 menit"},
		{"overnight", "22:00", "02:00", "4 jam 0 menit"},
		{"with minutes", "17:00", "20:45", "3 jam 45 menit"},
		{"zero duration", "08:30", "08:30", "0 jam 0 menit"},
		{"whitespace tolerated", " 09:00 ", "17:00", "8 jam 0 menit"},
		{"missing colon", "9am", "17:00", DurationNotComputable},
		{"non numeric", "ab:cd", "17:00", DurationNotComputable},
		{"bad end", "09:00", "tujuh malam", DurationNotComputable},
		{"hour out of range", "25:00", "17:00", DurationNotComputable},
		{"minute out of range", "09:61", "17:00", DurationNotComputable},
		{"empty", "", "", DurationNotComputable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DurationText(tt.start, tt.end); got != tt.expected {
				t.Errorf("DurationText(%q, %q) = %q, want %q", tt.start, tt.end, got, tt.expected)
			}
		})
	}
}
