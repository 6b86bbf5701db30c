package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestNewBcryptHasher_DefaultCost(t *testing.T) {
	hasher := NewBcryptHasher(0)
	if hasher.cost != bcrypt.DefaultCost {
		t.Fatalf("unexpected cost: %d", hasher.cost)
	}
}

func TestNewBcryptHasher_CustomCost(t *testing.T) {
	cost := bcrypt.DefaultCost + 2
	hasher := NewBcryptHasher(cost)
	if hasher.cost != cost {
		t.Fatalf("unexpected cost: %d", hasher.cost)
	}
}

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "" {
		t.Fatal("expected non-empty hash")
	}
	if err := hasher.Compare(hash, "secret"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := hasher.Compare(hash, "wrong"); err == nil {
		t.Fatal("expected compare error for wrong password")
	}
}

func TestBcryptHasher_HashError(t *testing.T) {
	hasher := &BcryptHasher{cost: bcrypt.MaxCost + 1}
	if _, err := hasher.Hash("password"); err == nil {
		t.Fatal("expected hash error for invalid cost")
	}
}

func TestArgon2Hasher_Defaults(t *testing.T) {
	hasher := NewArgon2Hasher(Argon2Params{})
	if hasher.params.Time != 1 || hasher.params.Memory != 64*1024 || hasher.params.Threads != 4 {
		t.Fatalf("unexpected params: %+v", hasher.params)
	}
	if hasher.params.KeyLen != 32 || hasher.params.SaltLen != 16 {
		t.Fatalf("unexpected lengths: %+v", hasher.params)
	}
}

func TestArgon2Hasher_HashAndCompare(t *testing.T) {
	hasher := NewArgon2Hasher(Argon2Params{Memory: 8 * 1024})
	hash, err := hasher.Hash("pw1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=4$") {
		t.Fatalf("unexpected encoding: %s", hash)
	}
	if err := hasher.Compare(hash, "pw1"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := hasher.Compare(hash, "pw2"); !errors.Is(err, ErrMismatchedHash) {
		t.Fatalf("expected mismatch, got %v", err)
	}
}

func TestArgon2Hasher_SaltsEveryHash(t *testing.T) {
	hasher := NewArgon2Hasher(Argon2Params{Memory: 8 * 1024})
	first, err := hasher.Hash("same")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := hasher.Hash("same")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatal("expected different hashes for the same password")
	}
}

func TestArgon2Hasher_SaltReadError(t *testing.T) {
	hasher := NewArgon2Hasher(Argon2Params{})
	hasher.rand = strings.NewReader("")
	if _, err := hasher.Hash("pw"); err == nil {
		t.Fatal("expected salt error")
	}
}

func TestArgon2Hasher_MalformedHash(t *testing.T) {
	hasher := NewArgon2Hasher(Argon2Params{})
	cases := []string{
		"",
		"plain",
		"$2a$10$abcdefghijklmnopqrstuv",
		"$argon2id$v=18$m=8192,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=4$!!!$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=4$c2FsdA$",
	}
	for _, hash := range cases {
		if err := hasher.Compare(hash, "pw"); !errors.Is(err, ErrMalformedHash) {
			t.Fatalf("expected malformed error for %q, got %v", hash, err)
		}
	}
}

func TestNewPasswordHasher(t *testing.T) {
	if h, err := NewPasswordHasher(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	} else if _, ok := h.(*Argon2Hasher); !ok {
		t.Fatalf("expected argon2 hasher by default, got %T", h)
	}
	if h, err := NewPasswordHasher("BCRYPT"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	} else if _, ok := h.(*BcryptHasher); !ok {
		t.Fatalf("expected bcrypt hasher, got %T", h)
	}
	if _, err := NewPasswordHasher("sha512"); err == nil {
		t.Fatal("expected error for unknown hasher")
	}
}
