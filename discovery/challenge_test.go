package discovery

import "testing"

func TestValidateEmptyChallenge(t *testing.T) {
	if got := Validate("", SecretKey); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}
}

func TestValidateDeterministic(t *testing.T) {
	a := Validate("abc123", SecretKey)
	b := Validate("abc123", SecretKey)
	if a != b {
		t.Fatalf("expected deterministic output, got %q vs %q", a, b)
	}
	if len(a)%4 != 0 {
		t.Fatalf("token length must be a multiple of 4, got %d", len(a))
	}
	for _, c := range a {
		if !((c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '+' || c == '/') {
			t.Fatalf("token contains out-of-alphabet char %q", c)
		}
	}
}

func TestValidateDiffersByChallenge(t *testing.T) {
	if Validate("one", SecretKey) == Validate("two", SecretKey) {
		t.Fatal("different challenges should not collide in this test vector")
	}
}

func TestBuildValidateFormat(t *testing.T) {
	out := string(BuildValidate("xyz"))
	if out[:10] != "\\validate\\" {
		t.Fatalf("unexpected prefix: %q", out)
	}
	if want := "\\queryid\\1.1"; len(out) < len(want) || out[len(out)-len(want):] != want {
		t.Fatalf("expected suffix %q, got %q", want, out)
	}
}
