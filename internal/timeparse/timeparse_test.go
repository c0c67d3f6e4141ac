package timeparse

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      time.Time
		wantKnown bool
	}{
		{
			name:      "day-month-year with minutes",
			input:     "01-03-2024 08:00",
			want:      time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
			wantKnown: true,
		},
		{
			name:      "day-month-year with seconds",
			input:     "01-03-2024 08:00:30",
			want:      time.Date(2024, 3, 1, 8, 0, 30, 0, time.UTC),
			wantKnown: true,
		},
		{
			name:      "slash separators",
			input:     "15/12/2023 23:45",
			want:      time.Date(2023, 12, 15, 23, 45, 0, 0, time.UTC),
			wantKnown: true,
		},
		{
			name:      "iso date with time",
			input:     "2024-03-01 09:30:00",
			want:      time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
			wantKnown: true,
		},
		{
			name:      "rfc3339",
			input:     "2024-03-01T08:10:00Z",
			want:      time.Date(2024, 3, 1, 8, 10, 0, 0, time.UTC),
			wantKnown: true,
		},
		{
			name:      "surrounding whitespace",
			input:     "  01-03-2024 08:00  ",
			want:      time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
			wantKnown: true,
		},
		{
			name:      "empty string",
			input:     "",
			wantKnown: false,
		},
		{
			name:      "null spelling",
			input:     "NULL",
			wantKnown: false,
		},
		{
			name:      "pandas NaN spelling",
			input:     "NaN",
			wantKnown: false,
		},
		{
			name:      "dash placeholder",
			input:     "-",
			wantKnown: false,
		},
		{
			name:      "garbage",
			input:     "not a timestamp",
			wantKnown: false,
		},
		{
			name:      "month-day-year is rejected when day out of range",
			input:     "03-25-2024 08:00",
			wantKnown: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known := Parse(tt.input)
			if known != tt.wantKnown {
				t.Fatalf("Parse(%q) known = %v, want %v", tt.input, known, tt.wantKnown)
			}

			if tt.wantKnown && !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}

			if !tt.wantKnown && !got.IsZero() {
				t.Errorf("Parse(%q) returned non-zero time %v for unknown value", tt.input, got)
			}
		})
	}
}

func TestKnown(t *testing.T) {
	if Known(time.Time{}) {
		t.Error("Known(zero) = true, want false")
	}

	if !Known(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("Known(non-zero) = false, want true")
	}
}
