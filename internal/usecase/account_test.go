package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/tradedesk/internal/config"
	domainErrors "github.com/polkiloo/tradedesk/internal/domain/errors"
	"github.com/polkiloo/tradedesk/internal/domain/model"
	pkgAuth "github.com/polkiloo/tradedesk/internal/pkg/auth"
	testhelpers "github.com/polkiloo/tradedesk/internal/test"
)

func newAccountUseCase(repo *testhelpers.UserRepositoryStub) *AccountUseCase {
	cfg := &config.Config{StartingBalance: decimal.NewFromInt(50000)}
	return NewAccountUseCase(repo, testhelpers.HasherStub{}, testhelpers.StrategyStub{}, cfg)
}

func signUp(t *testing.T, uc *AccountUseCase, name, password string) *model.User {
	t.Helper()
	user, err := uc.SignUp(context.Background(), name, password)
	if err != nil {
		t.Fatalf("sign up %q failed: %v", name, err)
	}
	return user
}

func TestAccountUseCaseScenario(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	uc := newAccountUseCase(repo)
	ctx := context.Background()

	signUp(t, uc, "alice", "pw1")
	if _, err := uc.SignUp(ctx, "alice", "pw2"); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if repo.Len() != 1 {
		t.Fatalf("duplicate sign up must not touch the store")
	}

	user, token, err := uc.SignIn(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("sign in returned error: %v", err)
	}
	if !user.Balance.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("expected starting balance 50000, got %s", user.Balance)
	}
	if token != user.ID+"|alice" {
		t.Fatalf("unexpected token %q", token)
	}

	if _, _, err := uc.SignIn(ctx, "alice", "pw2"); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAccountUseCaseSignUp(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	uc := newAccountUseCase(repo)
	ctx := context.Background()

	user := signUp(t, uc, "  bob  ", "secret")
	if user.Name != "bob" {
		t.Fatalf("expected trimmed name, got %q", user.Name)
	}
	if user.ID == "" {
		t.Fatalf("expected id to be assigned")
	}
	stored, err := repo.GetByName(ctx, "bob")
	if err != nil {
		t.Fatalf("expected user in repository: %v", err)
	}
	if stored.PasswordHash != "hash:secret" {
		t.Fatalf("password hash not stored: %v", stored.PasswordHash)
	}

	for _, tc := range []struct{ name, password string }{{"", "pw"}, {"   ", "pw"}, {"carol", ""}} {
		if _, err := uc.SignUp(ctx, tc.name, tc.password); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for %q/%q, got %v", tc.name, tc.password, err)
		}
	}

	failing := NewAccountUseCase(testhelpers.NewUserRepositoryStub(), testhelpers.HasherStub{HashFn: func(string) (string, error) {
		return "", errors.New("entropy exhausted")
	}}, testhelpers.StrategyStub{}, &config.Config{})
	if _, err := failing.SignUp(ctx, "dave", "pw"); err == nil {
		t.Fatal("expected hashing failure to surface")
	}

	broken := testhelpers.NewUserRepositoryStub()
	broken.Err = errors.New("io")
	if _, err := newAccountUseCase(broken).SignUp(ctx, "erin", "pw"); err == nil || errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestAccountUseCaseSignInUnknown(t *testing.T) {
	uc := newAccountUseCase(testhelpers.NewUserRepositoryStub())
	if _, _, err := uc.SignIn(context.Background(), "ghost", "pw"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountUseCaseSignInTokenFailure(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	strategy := testhelpers.StrategyStub{IssueFn: func(model.Identity) (string, error) {
		return "", errors.New("sign failed")
	}}
	uc := NewAccountUseCase(repo, testhelpers.HasherStub{}, strategy, &config.Config{})
	signUp(t, uc, "alice", "pw")
	if _, _, err := uc.SignIn(context.Background(), "alice", "pw"); err == nil {
		t.Fatal("expected token failure to surface")
	}
}

func TestAccountUseCaseDelete(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	uc := newAccountUseCase(repo)
	ctx := context.Background()

	alice := signUp(t, uc, "alice", "pw1")
	bob := signUp(t, uc, "bob", "pw2")

	if err := uc.Delete(ctx, "alice", "wrong"); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := uc.Delete(ctx, "ghost", "pw"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if repo.Len() != 2 {
		t.Fatalf("failed deletes must not touch the store")
	}

	if err := uc.Delete(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	if ok, err := uc.Exists(ctx, alice.Identity()); err != nil || ok {
		t.Fatalf("expected alice to be gone, ok=%v err=%v", ok, err)
	}
	if ok, err := uc.Exists(ctx, bob.Identity()); err != nil || !ok {
		t.Fatalf("expected bob to remain with the same id, ok=%v err=%v", ok, err)
	}
}

// recreatingRepo replaces the looked-up account with a fresh one under the same
// name right after GetByName returns, as a concurrent delete and sign up would.
type recreatingRepo struct {
	*testhelpers.UserRepositoryStub
	once sync.Once
	hash string
}

func (r *recreatingRepo) GetByName(ctx context.Context, name string) (*model.User, error) {
	usr, err := r.UserRepositoryStub.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	r.once.Do(func() {
		_ = r.UserRepositoryStub.Delete(ctx, usr.ID)
		_, _ = r.UserRepositoryStub.Create(ctx, model.User{Name: name, PasswordHash: r.hash})
	})
	return usr, nil
}

func TestAccountUseCaseDeleteSparesRecreatedAccount(t *testing.T) {
	stub := testhelpers.NewUserRepositoryStub()
	signUp(t, newAccountUseCase(stub), "alice", "pw1")

	repo := &recreatingRepo{UserRepositoryStub: stub, hash: "hash:pw2"}
	cfg := &config.Config{StartingBalance: decimal.NewFromInt(50000)}
	uc := NewAccountUseCase(repo, testhelpers.HasherStub{}, testhelpers.StrategyStub{}, cfg)
	ctx := context.Background()

	if err := uc.Delete(ctx, "alice", "pw1"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for the replaced account, got %v", err)
	}
	current, err := stub.GetByName(ctx, "alice")
	if err != nil {
		t.Fatalf("re-created account was removed: %v", err)
	}
	if current.PasswordHash != "hash:pw2" {
		t.Fatalf("unexpected surviving account %+v", current)
	}
}

func TestAccountUseCaseExists(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	uc := newAccountUseCase(repo)
	ctx := context.Background()
	alice := signUp(t, uc, "alice", "pw")

	tests := []struct {
		name     string
		identity model.Identity
		want     bool
	}{
		{name: "matching", identity: alice.Identity(), want: true},
		{name: "name mismatch", identity: model.Identity{ID: alice.ID, Name: "mallory"}, want: false},
		{name: "unknown id", identity: model.Identity{ID: "nope", Name: "alice"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := uc.Exists(ctx, tt.identity)
			if err != nil {
				t.Fatalf("exists returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}

	repo.Err = errors.New("io")
	if _, err := uc.Exists(ctx, alice.Identity()); err == nil {
		t.Fatal("expected store error to surface")
	}
}

func TestAccountUseCaseIdentify(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	uc := newAccountUseCase(repo)
	ctx := context.Background()
	signUp(t, uc, "alice", "pw")
	_, token, err := uc.SignIn(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}

	identity, err := uc.Identify(ctx, token)
	if err != nil || identity.Name != "alice" {
		t.Fatalf("unexpected identity %+v err %v", identity, err)
	}

	if _, err := uc.Identify(ctx, ""); !errors.Is(err, pkgAuth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for empty token, got %v", err)
	}
	if _, err := uc.Identify(ctx, "garbage"); !errors.Is(err, pkgAuth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	if err := uc.Delete(ctx, "alice", "pw"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := uc.Identify(ctx, token); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for deleted user, got %v", err)
	}
}

func TestAccountUseCaseSetFavoriteStock(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	uc := newAccountUseCase(repo)
	ctx := context.Background()
	alice := signUp(t, uc, "alice", "pw")

	user, err := uc.SetFavoriteStock(ctx, alice.ID, " msft.us ")
	if err != nil {
		t.Fatalf("set favorite returned error: %v", err)
	}
	if user.FavoriteStock != "MSFT.US" {
		t.Fatalf("expected MSFT.US, got %q", user.FavoriteStock)
	}
	if _, err := uc.SetFavoriteStock(ctx, alice.ID, ""); !errors.Is(err, domainErrors.ErrInvalidSymbol) {
		t.Fatalf("expected ErrInvalidSymbol, got %v", err)
	}
	if _, err := uc.SetFavoriteStock(ctx, "nope", "AAPL.US"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	stored, _ := uc.Account(ctx, alice.ID)
	if stored.FavoriteStock != "MSFT.US" {
		t.Fatalf("favorite not persisted: %q", stored.FavoriteStock)
	}
}

func TestAccountUseCaseBuy(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	uc := newAccountUseCase(repo)
	ctx := context.Background()
	alice := signUp(t, uc, "alice", "pw")
	at := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	user, err := uc.Buy(ctx, alice.ID, "aapl.us", 4, decimal.RequireFromString("185.25"), at)
	if err != nil {
		t.Fatalf("buy returned error: %v", err)
	}
	if !user.Balance.Equal(decimal.RequireFromString("49259")) {
		t.Fatalf("unexpected balance %s", user.Balance)
	}
	if len(user.Holdings) != 1 || user.Holdings[0].Symbol != "AAPL.US" || !user.Holdings[0].Timestamp.Equal(at) {
		t.Fatalf("unexpected holdings %+v", user.Holdings)
	}

	tests := []struct {
		name     string
		symbol   string
		quantity int64
		price    decimal.Decimal
		want     error
	}{
		{name: "blank symbol", symbol: " ", quantity: 1, price: decimal.NewFromInt(1), want: domainErrors.ErrInvalidSymbol},
		{name: "zero quantity", symbol: "AAPL.US", quantity: 0, price: decimal.NewFromInt(1), want: domainErrors.ErrInvalidQuantity},
		{name: "negative quantity", symbol: "AAPL.US", quantity: -3, price: decimal.NewFromInt(1), want: domainErrors.ErrInvalidQuantity},
		{name: "zero price", symbol: "AAPL.US", quantity: 1, price: decimal.Zero, want: domainErrors.ErrInvalidAmount},
		{name: "insufficient balance", symbol: "AAPL.US", quantity: 1, price: decimal.NewFromInt(49260), want: domainErrors.ErrInsufficientBalance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := uc.Buy(ctx, alice.ID, tt.symbol, tt.quantity, tt.price, at); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	stored, _ := uc.Account(ctx, alice.ID)
	if len(stored.Holdings) != 1 || !stored.Balance.Equal(decimal.RequireFromString("49259")) {
		t.Fatalf("rejected buys must leave the account untouched: %+v", stored)
	}

	user, err = uc.Buy(ctx, alice.ID, "AAPL.US", 1, decimal.RequireFromString("49259"), at)
	if err != nil {
		t.Fatalf("buying with the exact balance should succeed: %v", err)
	}
	if !user.Balance.IsZero() {
		t.Fatalf("expected zero balance, got %s", user.Balance)
	}
}

func TestAccountUseCaseConcurrentBuys(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	uc := newAccountUseCase(repo)
	ctx := context.Background()
	alice := signUp(t, uc, "alice", "pw")

	const buyers = 20
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := uc.Buy(ctx, alice.ID, "AAPL.US", 1, decimal.NewFromInt(100), time.Now()); err != nil {
				t.Errorf("buy failed: %v", err)
			}
		}()
	}
	wg.Wait()

	stored, _ := uc.Account(ctx, alice.ID)
	if len(stored.Holdings) != buyers || !stored.Balance.Equal(decimal.NewFromInt(50000-buyers*100)) {
		t.Fatalf("lost updates: %d holdings, balance %s", len(stored.Holdings), stored.Balance)
	}
}
