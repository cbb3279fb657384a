package language

import "testing"

func TestNormalizeCode(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		" EN-us ": "en",
		"vi_VN":   "vi",
		"zh":      "zh",
		" ":       "",
		"e1":      "",
		"-en":     "",
	}
	for in, want := range cases {
		if got := NormalizeCode(in); got != want {
			t.Fatalf("NormalizeCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLabel(t *testing.T) {
	t.Parallel()

	if got := Label("VI"); got != "Vietnamese" {
		t.Fatalf("unexpected label: %q", got)
	}
	if got := Label("xx"); got != "xx" {
		t.Fatalf("unknown codes should echo back, got %q", got)
	}
}

func TestNewPair(t *testing.T) {
	t.Parallel()

	pair, err := NewPair("en-US", "vi")
	if err != nil {
		t.Fatalf("new pair: %v", err)
	}
	if pair.String() != "en-vi" {
		t.Fatalf("unexpected pair: %s", pair)
	}
	if reversed := pair.Reverse(); reversed.Source != "vi" || reversed.Target != "en" {
		t.Fatalf("unexpected reverse: %+v", reversed)
	}

	if _, err := NewPair("en", "EN"); err == nil {
		t.Fatalf("expected identical languages to fail")
	}
	if _, err := NewPair("en", "xx"); err == nil {
		t.Fatalf("expected unsupported language to fail")
	}
}
