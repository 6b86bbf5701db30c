package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/tradedesk/internal/config"
	domainErrors "github.com/polkiloo/tradedesk/internal/domain/errors"
	"github.com/polkiloo/tradedesk/internal/domain/model"
	"github.com/polkiloo/tradedesk/internal/domain/repository"
	pkgAuth "github.com/polkiloo/tradedesk/internal/pkg/auth"
)

// AccountUseCase handles the account lifecycle, sessions and trading on a balance.
type AccountUseCase struct {
	users           repository.UserRepository
	hasher          pkgAuth.PasswordHasher
	tokens          pkgAuth.Strategy
	startingBalance decimal.Decimal
}

// NewAccountUseCase constructs AccountUseCase.
func NewAccountUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy, cfg *config.Config) *AccountUseCase {
	return &AccountUseCase{
		users:           users,
		hasher:          hasher,
		tokens:          strategy,
		startingBalance: cfg.StartingBalance,
	}
}

// SignUp stores a new account credited with the starting balance.
func (u *AccountUseCase) SignUp(ctx context.Context, name, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return nil, domainErrors.ErrInvalidCredentials
	}

	if _, err := u.users.GetByName(ctx, name); err == nil {
		return nil, domainErrors.ErrAlreadyExists
	} else if !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, err
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return u.users.Create(ctx, model.User{
		Name:         name,
		PasswordHash: hash,
		Balance:      u.startingBalance,
	})
}

// SignIn verifies credentials and issues a session token.
func (u *AccountUseCase) SignIn(ctx context.Context, name, password string) (*model.User, string, error) {
	usr, err := u.verify(ctx, name, password)
	if err != nil {
		return nil, "", err
	}

	token, err := u.tokens.IssueToken(usr.Identity())
	if err != nil {
		return nil, "", err
	}
	return usr, token, nil
}

// Delete removes the account after verifying credentials.
func (u *AccountUseCase) Delete(ctx context.Context, name, password string) error {
	usr, err := u.verify(ctx, name, password)
	if err != nil {
		return err
	}
	return u.users.Delete(ctx, usr.ID)
}

func (u *AccountUseCase) verify(ctx context.Context, name, password string) (*model.User, error) {
	usr, err := u.users.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, domainErrors.ErrInvalidCredentials
	}
	return usr, nil
}

// Exists reports whether identity still names a stored account.
func (u *AccountUseCase) Exists(ctx context.Context, identity model.Identity) (bool, error) {
	usr, err := u.users.GetByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return usr.Name == identity.Name, nil
}

// Identify resolves a session token to a live account identity.
func (u *AccountUseCase) Identify(ctx context.Context, token string) (model.Identity, error) {
	if token == "" {
		return model.Identity{}, pkgAuth.ErrInvalidToken
	}
	identity, err := u.tokens.ParseToken(token)
	if err != nil {
		return model.Identity{}, err
	}

	ok, err := u.Exists(ctx, identity)
	if err != nil {
		return model.Identity{}, err
	}
	if !ok {
		return model.Identity{}, domainErrors.ErrNotFound
	}
	return identity, nil
}

// Account returns the stored account.
func (u *AccountUseCase) Account(ctx context.Context, id string) (*model.User, error) {
	return u.users.GetByID(ctx, id)
}

// SetFavoriteStock records symbol as the account's favorite.
func (u *AccountUseCase) SetFavoriteStock(ctx context.Context, id, symbol string) (*model.User, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	return u.users.Update(ctx, id, func(usr *model.User) error {
		usr.FavoriteStock = symbol
		return nil
	})
}

// Buy debits quantity*price and records the lot. The account is left
// untouched when the purchase is rejected.
func (u *AccountUseCase) Buy(ctx context.Context, id, symbol string, quantity int64, price decimal.Decimal, at time.Time) (*model.User, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, domainErrors.ErrInvalidQuantity
	}
	if !price.IsPositive() {
		return nil, domainErrors.ErrInvalidAmount
	}

	lot := model.Holding{Symbol: symbol, Quantity: quantity, Price: price, Timestamp: at}
	return u.users.Update(ctx, id, func(usr *model.User) error {
		cost := lot.Cost()
		if usr.Balance.LessThan(cost) {
			return domainErrors.ErrInsufficientBalance
		}
		usr.Balance = usr.Balance.Sub(cost)
		usr.Holdings = append(usr.Holdings, lot)
		return nil
	})
}
