package db

import (
	"context"

	"github.com/Spok95/telegram-events-bot/internal/ctxutil"
	"github.com/Spok95/telegram-events-bot/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const userCols = `id, fio, phone, nickname, is_payer, created_at`

// EnsureUser создаёт пользователя при первом обращении и обновляет ник.
func EnsureUser(ctx context.Context, database *sqlx.DB, id int64, nickname string) (*models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var u models.User
	err := database.GetContext(ctx, &u, `
		INSERT INTO users (id, nickname) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET nickname = EXCLUDED.nickname
		RETURNING `+userCols, id, nickname)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func GetUser(ctx context.Context, database *sqlx.DB, id int64) (*models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var u models.User
	if err := database.GetContext(ctx, &u, `SELECT `+userCols+` FROM users WHERE id = $1`, id); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func SetUserFio(ctx context.Context, database *sqlx.DB, id int64, fio string) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	return execOne(ctx, database, `UPDATE users SET fio = $1 WHERE id = $2`, fio, id)
}

func SetUserPhone(ctx context.Context, database *sqlx.DB, id int64, phone string) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	return execOne(ctx, database, `UPDATE users SET phone = $1 WHERE id = $2`, phone, id)
}

// SetPayers массово ставит/снимает флаг платника. Неизвестные id пропускаются.
func SetPayers(ctx context.Context, database *sqlx.DB, ids []int64, payer bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := database.ExecContext(ctx,
		`UPDATE users SET is_payer = $1 WHERE id = ANY($2::bigint[])`, payer, pq.Array(ids))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListUsers: все пользователи по алфавиту ФИО.
func ListUsers(ctx context.Context, database *sqlx.DB) ([]models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var out []models.User
	err := database.SelectContext(ctx, &out, `SELECT `+userCols+` FROM users ORDER BY fio, id`)
	return out, err
}

func execOne(ctx context.Context, database sqlx.ExecerContext, q string, args ...any) error {
	res, err := database.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
