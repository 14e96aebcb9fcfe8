package claimcode

import "testing"

func TestGenerate(t *testing.T) {
	code, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(code) != Length {
		t.Fatalf("Generate returned %d chars, want %d", len(code), Length)
	}
	if _, err := Normalize(code); err != nil {
		t.Errorf("generated code %q failed Normalize: %v", code, err)
	}
}

func TestGenerateUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 10_000)
	for i := 0; i < 10_000; i++ {
		code, err := Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if _, dup := seen[code]; dup {
			t.Fatalf("duplicate code after %d draws: %s", i, code)
		}
		seen[code] = struct{}{}
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"A1B2C3D4E5F60718", "A1B2C3D4E5F60718", true},
		{"a1b2c3d4e5f60718", "A1B2C3D4E5F60718", true},
		{"a1b2c3d4e5f6071", "", false},  // too short
		{"a1b2c3d4e5f607181", "", false}, // too long
		{"g1b2c3d4e5f60718", "", false},  // non-hex
		{"", "", false},
	}

	for _, tc := range cases {
		got, err := Normalize(tc.in)
		if tc.ok != (err == nil) {
			t.Errorf("Normalize(%q) error = %v, want ok=%v", tc.in, err, tc.ok)
			continue
		}
		if tc.ok && got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
