package notification

import "testing"

func TestSMSAddress(t *testing.T) {
	tests := []struct {
		phone   string
		carrier string
		want    string
		ok      bool
	}{
		{"555-123-4567", "verizon", "5551234567@vtext.com", true},
		{"5551234567", "AT&T", "5551234567@txt.att.net", true},
		{"5551234567", "att_mms", "5551234567@mms.att.net", true},
		{"5551234567", "T-Mobile", "5551234567@tmomail.net", true},
		{"5551234567", "Google Fi", "5551234567@msg.fi.google.com", true},
		{"5551234567", "xfinity", "5551234567@vtext.com", true},
		{"5551234567", "sprint", "5551234567@messaging.sprintpcs.com", true},
		{"5551234567", "unknown", "", false},
		{"", "verizon", "", false},
	}

	for _, tt := range tests {
		got, ok := SMSAddress(tt.phone, tt.carrier)
		if got != tt.want || ok != tt.ok {
			t.Errorf("SMSAddress(%q, %q) = %q, %v; want %q, %v", tt.phone, tt.carrier, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCarriers(t *testing.T) {
	keys := Carriers()
	if len(keys) != 8 {
		t.Fatalf("Carriers() = %v, want 8 entries", keys)
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Errorf("Carriers() not sorted: %v", keys)
		}
	}
	if !IsSupportedCarrier("Verizon") {
		t.Error("IsSupportedCarrier(Verizon) = false")
	}
}
