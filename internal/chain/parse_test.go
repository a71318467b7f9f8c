package chain

import "testing"

func TestParseTxHash(t *testing.T) {
	const hash = "0xb5c8bd9430b6cc87a0e2fe110ece6bf527fa4f170a4bc8cd032f768fc5219838"
	got, err := ParseTxHash(" " + hash + " ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Hex() != hash {
		t.Fatalf("hash mismatch: %s", got.Hex())
	}

	for _, bad := range []string{"", "0x", "b5c8bd94", "0x1234", "0xzz"} {
		if _, err := ParseTxHash(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
