package password

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndVerify_Roundtrip(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hashed, err := hasher.Hash("pw123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hashed == "" || hashed == "pw123" {
		t.Fatalf("hashed = %q, want non-empty hash distinct from plaintext", hashed)
	}

	match, needsRehash := hasher.Verify("pw123", hashed)
	if !match {
		t.Error("expected match for correct password")
	}
	if needsRehash {
		t.Error("expected no rehash signal for up-to-date parameters")
	}
}

func TestBcryptHasher_Verify_WrongPassword(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hashed, err := hasher.Hash("pw123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	match, _ := hasher.Verify("pw456", hashed)
	if match {
		t.Error("expected mismatch for wrong password")
	}
}

func TestBcryptHasher_Verify_CorruptHash(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	match, needsRehash := hasher.Verify("pw123", "not-a-bcrypt-hash")
	if match || needsRehash {
		t.Errorf("Verify = (%t, %t), want (false, false)", match, needsRehash)
	}
}

// 古いコストパラメータで保存されたハッシュは、照合成功時に再ハッシュを促す
func TestBcryptHasher_Verify_OutdatedCost_SignalsRehash(t *testing.T) {
	old, err := bcrypt.GenerateFromPassword([]byte("pw123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword failed: %v", err)
	}

	hasher := NewBcryptHasher(bcrypt.MinCost + 1)

	match, needsRehash := hasher.Verify("pw123", string(old))
	if !match {
		t.Fatal("expected match")
	}
	if !needsRehash {
		t.Error("expected rehash signal for outdated cost")
	}
}

// ソルトが個別に生成されるため、同一パスワードでもハッシュは毎回異なる
func TestBcryptHasher_Hash_UniqueSalts(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	first, err := hasher.Hash("pw123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	second, err := hasher.Hash("pw123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if first == second {
		t.Error("expected distinct hashes for the same password")
	}
	if !strings.HasPrefix(first, "$2") {
		t.Errorf("hash = %q, want bcrypt format", first)
	}
}

func TestNewBcryptHasher_OutOfRangeCost_UsesDefault(t *testing.T) {
	hasher := NewBcryptHasher(100)
	if hasher.cost != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want %d", hasher.cost, bcrypt.DefaultCost)
	}
}
