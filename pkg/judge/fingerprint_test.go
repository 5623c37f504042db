package judge

import (
	"testing"

	"github.com/google/uuid"
)

func TestFingerprint_Deterministic(t *testing.T) {
	a := map[string]any{
		"temperature": 75.5,
		"vibration":   map[string]any{"rms": 2.1, "peak": 4.0},
		"samples":     []any{1.0, 2.0, 3.0},
	}
	b := map[string]any{
		"samples":     []any{1.0, 2.0, 3.0},
		"vibration":   map[string]any{"peak": 4.0, "rms": 2.1},
		"temperature": 75.5,
	}

	fa, err := Fingerprint(a)
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	fb, err := Fingerprint(b)
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	if fa != fb {
		t.Errorf("equal inputs fingerprint differently: %s vs %s", fa, fb)
	}
	if len(fa) != fingerprintLen {
		t.Errorf("len(fingerprint) = %d, want %d", len(fa), fingerprintLen)
	}
}

func TestFingerprint_ValueSensitive(t *testing.T) {
	fa, _ := Fingerprint(map[string]any{"temperature": 75.5})
	fb, _ := Fingerprint(map[string]any{"temperature": 75.6})
	if fa == fb {
		t.Error("different values produced the same fingerprint")
	}
}

func TestFingerprint_ArrayOrderSignificant(t *testing.T) {
	fa, _ := Fingerprint(map[string]any{"samples": []any{1.0, 2.0}})
	fb, _ := Fingerprint(map[string]any{"samples": []any{2.0, 1.0}})
	if fa == fb {
		t.Error("array order was not significant")
	}
}

func TestFingerprint_Unserializable(t *testing.T) {
	if _, err := Fingerprint(map[string]any{"ch": make(chan int)}); err == nil {
		t.Error("Fingerprint() accepted an unserializable input")
	}
}

func TestCacheKeyPrefixes(t *testing.T) {
	tenant := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	rs := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	key := cacheKey(tenant, rs, "abc123")
	want := "judgment:11111111-1111-1111-1111-111111111111:22222222-2222-2222-2222-222222222222:abc123"
	if key != want {
		t.Errorf("cacheKey() = %q, want %q", key, want)
	}

	if tp := TenantPrefix(tenant); key[:len(tp)] != tp {
		t.Errorf("TenantPrefix %q does not prefix key %q", tp, key)
	}
	if rp := RulesetPrefix(tenant, rs); key[:len(rp)] != rp {
		t.Errorf("RulesetPrefix %q does not prefix key %q", rp, key)
	}
}
