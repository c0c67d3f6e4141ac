package canonicalization

import "testing"

func TestShipmentID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain integer unchanged",
			input: "4500123876",
			want:  "4500123876",
		},
		{
			name:  "surrounding whitespace",
			input: "  4500123876  ",
			want:  "4500123876",
		},
		{
			name:  "thousands separators",
			input: "4,500,123,876",
			want:  "4500123876",
		},
		{
			name:  "embedded spaces",
			input: "4500 123 876",
			want:  "4500123876",
		},
		{
			name:  "underscore grouping",
			input: "4500_123_876",
			want:  "4500123876",
		},
		{
			name:  "trailing fractional zero",
			input: "4500123876.0",
			want:  "4500123876",
		},
		{
			name:  "multiple fractional zeros",
			input: "4500123876.000",
			want:  "4500123876",
		},
		{
			name:  "bare trailing dot",
			input: "4500123876.",
			want:  "4500123876",
		},
		{
			name:  "non-zero fraction preserved",
			input: "4500123876.5",
			want:  "4500123876.5",
		},
		{
			name:  "separators and fraction combined",
			input: " 4,500,123,876.0 ",
			want:  "4500123876",
		},
		{
			name:  "leading zeros preserved",
			input: "0004500123",
			want:  "0004500123",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  "",
		},
		{
			name:  "alphanumeric identifier",
			input: "SHP-88421",
			want:  "SHP-88421",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShipmentID(tt.input)
			if got != tt.want {
				t.Errorf("ShipmentID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestShipmentID_Deterministic(t *testing.T) {
	input := " 4,500,123,876.0 "
	first := ShipmentID(input)

	for i := 0; i < 10; i++ {
		if got := ShipmentID(input); got != first {
			t.Fatalf("ShipmentID(%q) not deterministic: %q vs %q", input, got, first)
		}
	}
}

func TestSameShipment(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical raw values", "4500123876", "4500123876", true},
		{"numeric vs spreadsheet float", "4500123876", "4500123876.0", true},
		{"grouped vs plain", "4,500,123,876", "4500123876", true},
		{"different shipments", "4500123876", "4500123877", false},
		{"both empty never match", "", "", false},
		{"one empty never matches", "4500123876", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameShipment(tt.a, tt.b); got != tt.want {
				t.Errorf("SameShipment(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
