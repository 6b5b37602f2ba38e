package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/oksasatya/vidstream-accounts/internal/domain/entity"
	"github.com/oksasatya/vidstream-accounts/internal/domain/repository"
)

const uniqueViolation = "23505"

// Querier is the subset of *pgxpool.Pool used by the repository.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const accountColumns = `id, username, email, fullname, password_hash, avatar_url, cover_image_url, refresh_token, created_at, updated_at`

type AccountRepository struct {
	db Querier
}

func NewAccountRepository(db Querier) *AccountRepository {
	return &AccountRepository{db: db}
}

func scanAccount(row pgx.Row) (*entity.Account, error) {
	a := &entity.Account{}
	var refresh pgtype.Text
	if err := row.Scan(&a.ID, &a.Username, &a.Email, &a.Fullname, &a.Password,
		&a.AvatarURL, &a.CoverImageURL, &refresh, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrAccountNotFound
		}
		return nil, mapErr(err)
	}
	if refresh.Valid {
		a.RefreshToken = &refresh.String
	}
	return a, nil
}

func mapErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", repository.ErrDuplicateAccount, pgErr.ConstraintName)
	}
	return err
}

func (r *AccountRepository) Create(ctx context.Context, a *entity.Account) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO accounts (username, email, fullname, password_hash, avatar_url, cover_image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, a.Username, a.Email, a.Fullname, a.Password, a.AvatarURL, a.CoverImageURL)

	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return mapErr(err)
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, id))
}

func (r *AccountRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*entity.Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
		LIMIT 1
	`, username, email))
}

func (r *AccountRepository) SetRefreshToken(ctx context.Context, id string, token *string) error {
	res, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET refresh_token = $1, updated_at = now()
		WHERE id = $2
	`, token, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	res, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET password_hash = $1, updated_at = now()
		WHERE id = $2
	`, hash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) UpdateDetails(ctx context.Context, id string, d repository.AccountDetails) (*entity.Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `
		UPDATE accounts
		SET fullname = $1, email = $2, updated_at = now()
		WHERE id = $3
		RETURNING `+accountColumns, d.Fullname, d.Email, id))
}

func (r *AccountRepository) UpdateAvatar(ctx context.Context, id, url string) (*entity.Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `
		UPDATE accounts
		SET avatar_url = $1, updated_at = now()
		WHERE id = $2
		RETURNING `+accountColumns, url, id))
}

func (r *AccountRepository) UpdateCoverImage(ctx context.Context, id, url string) (*entity.Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `
		UPDATE accounts
		SET cover_image_url = $1, updated_at = now()
		WHERE id = $2
		RETURNING `+accountColumns, url, id))
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
