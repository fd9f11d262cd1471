package application

import (
	"encoding/hex"
	"testing"
)

func TestGenerateCodeIsDistinctAndHex(t *testing.T) {
	t.Parallel()

	const n = 100_000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		code, err := GenerateCode(8)
		if err != nil {
			t.Fatalf("generate code: %v", err)
		}
		if len(code) != 16 {
			t.Fatalf("expected 16 hex chars, got %q", code)
		}
		if _, err := hex.DecodeString(code); err != nil {
			t.Fatalf("code %q is not hex: %v", code, err)
		}
		if _, dup := seen[code]; dup {
			t.Fatalf("duplicate code %q after %d draws", code, i)
		}
		seen[code] = struct{}{}
	}
}

func TestGenerateCodeRejectsNonPositiveLength(t *testing.T) {
	t.Parallel()

	if _, err := GenerateCode(0); err == nil {
		t.Fatalf("expected error for zero length")
	}
}

func TestSHA256HexLeavesBlankEmpty(t *testing.T) {
	t.Parallel()

	if got := sha256Hex("  "); got != "" {
		t.Fatalf("expected empty hash for blank input, got %q", got)
	}
	if got := sha256Hex("203.0.113.9"); len(got) != 64 {
		t.Fatalf("expected 64 char digest, got %q", got)
	}
}
