package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/tradedesk/internal/domain/errors"
	"github.com/polkiloo/tradedesk/internal/domain/model"
)

const (
	selectUsers = `SELECT id::text, name, password_hash, balance::text, COALESCE(favorite_stock, ''), created_at FROM users`

	selectHoldings = `SELECT user_id::text, symbol, quantity, price::text, bought_at FROM holdings`

	insertUser = `INSERT INTO users (id, name, password_hash, balance, favorite_stock)
                  VALUES ($1, $2, $3, $4::numeric, NULLIF($5, ''))
                  RETURNING created_at`

	insertHolding = `INSERT INTO holdings (user_id, symbol, quantity, price, bought_at)
                     VALUES ($1, $2, $3, $4::numeric, $5)`

	updateUser = `UPDATE users SET balance=$2::numeric, favorite_stock=NULLIF($3, '') WHERE id=$1`

	uniqueViolation = "23505"
)

var errHoldingsRewritten = errors.New("holdings are append-only")

type userRepository struct {
	storage *Storage
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.storage.pool.Query(ctx, selectUsers+` ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	holdings, err := loadHoldings(ctx, r.storage.pool, selectHoldings+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Holdings = holdings[users[i].ID]
	}
	return users, nil
}

func (r *userRepository) GetByName(ctx context.Context, name string) (*model.User, error) {
	return getUser(ctx, r.storage.pool, selectUsers+` WHERE name=$1`, name)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domainErrors.ErrNotFound
	}
	return getUser(ctx, r.storage.pool, selectUsers+` WHERE id=$1`, id)
}

func (r *userRepository) Create(ctx context.Context, user model.User) (*model.User, error) {
	created := user.Clone()
	created.ID = uuid.NewString()

	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertUser,
			created.ID, created.Name, created.PasswordHash, created.Balance.String(), created.FavoriteStock,
		).Scan(&created.CreatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return domainErrors.ErrAlreadyExists
			}
			return fmt.Errorf("insert user: %w", err)
		}
		return insertHoldings(ctx, tx, created.ID, created.Holdings)
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domainErrors.ErrNotFound
	}
	tag, err := r.storage.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// Update locks the row, applies fn to a copy and writes back balance, favorite
// stock and any holdings appended by fn.
func (r *userRepository) Update(ctx context.Context, id string, fn func(*model.User) error) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domainErrors.ErrNotFound
	}

	var updated model.User
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		current, err := getUser(ctx, tx, selectUsers+` WHERE id=$1 FOR UPDATE`, id)
		if err != nil {
			return err
		}

		next := current.Clone()
		if err := fn(&next); err != nil {
			return err
		}
		if len(next.Holdings) < len(current.Holdings) {
			return errHoldingsRewritten
		}

		if _, err := tx.Exec(ctx, updateUser, id, next.Balance.String(), next.FavoriteStock); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		if err := insertHoldings(ctx, tx, id, next.Holdings[len(current.Holdings):]); err != nil {
			return err
		}

		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func getUser(ctx context.Context, q querier, query string, arg any) (*model.User, error) {
	u, err := scanUser(q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	holdings, err := loadHoldings(ctx, q, selectHoldings+` WHERE user_id=$1 ORDER BY id`, u.ID)
	if err != nil {
		return nil, err
	}
	u.Holdings = holdings[u.ID]
	return u, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		u       model.User
		balance string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.PasswordHash, &balance, &u.FavoriteStock, &u.CreatedAt); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse balance: %w", err)
	}
	u.Balance = amount
	return &u, nil
}

func loadHoldings(ctx context.Context, q querier, query string, args ...any) (map[string][]model.Holding, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load holdings: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]model.Holding)
	for rows.Next() {
		var (
			userID string
			price  string
			at     time.Time
			h      model.Holding
		)
		if err := rows.Scan(&userID, &h.Symbol, &h.Quantity, &price, &at); err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		if h.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse holding price: %w", err)
		}
		h.Timestamp = at
		result[userID] = append(result[userID], h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load holdings: %w", err)
	}
	return result, nil
}

func insertHoldings(ctx context.Context, tx pgx.Tx, userID string, holdings []model.Holding) error {
	for _, h := range holdings {
		if _, err := tx.Exec(ctx, insertHolding, userID, h.Symbol, h.Quantity, h.Price.String(), h.Timestamp); err != nil {
			return fmt.Errorf("insert holding: %w", err)
		}
	}
	return nil
}
