package testfixtures

import "testing"

func TestPasswordSequenceProducesSequentialPasswords(t *testing.T) {
	seq := NewPasswordSequence("pw")

	first, _ := seq.Source()()
	second := seq.Next()

	if first != "pw-1" || second != "pw-2" {
		t.Fatalf("unexpected passwords: %q, %q", first, second)
	}
}

func TestFastHasherRoundTrip(t *testing.T) {
	hasher := FastHasher()

	hash, err := hasher.Hash("secret")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if err := hasher.Verify(hash, "secret"); err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if err := hasher.Verify(hash, "other"); err == nil {
		t.Fatalf("expected mismatch for wrong password")
	}
}
