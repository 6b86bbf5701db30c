package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/polkiloo/tradedesk/internal/domain/model"
)

func TestNewJWTStrategy_DefaultTTL(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	if string(strategy.secret) != "secret" {
		t.Fatalf("unexpected secret: %q", string(strategy.secret))
	}
	if strategy.ttl != 24*time.Hour {
		t.Fatalf("unexpected ttl: %s", strategy.ttl)
	}
}

func TestNewJWTStrategy_CustomTTL(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{TTL: 2 * time.Hour})
	if strategy.ttl != 2*time.Hour {
		t.Fatalf("unexpected ttl: %s", strategy.ttl)
	}
}

func TestJWTStrategy_IssueAndParse(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{TTL: time.Minute})
	token, err := strategy.IssueToken(model.Identity{ID: "u-1", Name: "alice"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	identity, err := strategy.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if identity.ID != "u-1" || identity.Name != "alice" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestJWTStrategy_PayloadExcludesBalance(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	token, err := strategy.IssueToken(model.Identity{ID: "u-1", Name: "alice"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	for _, key := range []string{"balance", "stocks", "password"} {
		if _, ok := claims[key]; ok {
			t.Fatalf("token payload must not contain %q: %v", key, claims)
		}
	}
	if claims["id"] != "u-1" || claims["name"] != "alice" {
		t.Fatalf("unexpected claims: %v", claims)
	}
}

func TestJWTStrategy_ParseWrongSecret(t *testing.T) {
	token, err := NewJWTStrategy("right", Options{}).IssueToken(model.Identity{ID: "1", Name: "a"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := NewJWTStrategy("wrong", Options{}).ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTStrategy_ParseExpired(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{TTL: time.Minute})
	strategy.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := strategy.IssueToken(model.Identity{ID: "1", Name: "a"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	strategy.now = time.Now
	if _, err := strategy.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTStrategy_ParseGarbage(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	for _, token := range []string{"", "not-a-jwt", strings.Repeat("a.", 2) + "a"} {
		if _, err := strategy.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}

func TestJWTStrategy_RejectsOtherAlgorithms(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{ID: "1", Name: "a"})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := strategy.ParseToken(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTStrategy_RejectsMissingIdentity(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	token, err := strategy.IssueToken(model.Identity{})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := strategy.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTStrategy_Name(t *testing.T) {
	if name := NewJWTStrategy("secret", Options{}).Name(); name != "jwt" {
		t.Fatalf("unexpected name: %s", name)
	}
}
