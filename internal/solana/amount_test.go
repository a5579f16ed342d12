package solana

import "testing"

func TestParseUnits(t *testing.T) {
	tests := []struct {
		amount   string
		decimals int
		want     string
		wantErr  bool
	}{
		{"250", 9, "250000000000", false},
		{"2.5", 9, "2500000000", false},
		{"0.000000001", 9, "1", false},
		{"1", 0, "1", false},
		{"250", 0, "250", false},
		{"0.9", 0, "0", false}, // truncation, not rounding
		{"1.123456789123", 9, "1123456789", false},
		{"0", 9, "0", false},
		{"", 9, "", true},
		{"1.2.3", 9, "", true},
		{"abc", 9, "", true},
		{"-5", 9, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got, err := ParseUnits(tt.amount, tt.decimals)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseUnits(%q, %d) = %s, want %s", tt.amount, tt.decimals, got, tt.want)
			}
		})
	}
}
