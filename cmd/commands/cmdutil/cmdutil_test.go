package cmdutil

import (
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"30d", 30 * 24 * time.Hour, false},
		{"72h", 72 * time.Hour, false},
		{"90s", 90 * time.Second, false},
		{"0", 0, false},
		{"-1d", 0, true},
		{"-5m", 0, true},
		{"xd", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidateUUID(t *testing.T) {
	if err := ValidateUUID("id", "6a1c2e9f-0000-4000-8000-000000000001"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateUUID("id", ""); err == nil || err.Error() != "--id is required" {
		t.Errorf("empty value: got %v", err)
	}
	if err := ValidateUUID("id", "srv-1"); err == nil {
		t.Error("expected error for non-UUID")
	}
}
