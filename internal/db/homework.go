package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Spok95/telegram-events-bot/internal/ctxutil"
	"github.com/Spok95/telegram-events-bot/internal/models"
	"github.com/jmoiron/sqlx"
)

const homeworkCols = `id, created_at, answer_end_date, text, file_path`

// HomeworkFilter: Open: только те, что ещё принимают ответы (answer_end_date > Now).
type HomeworkFilter struct {
	Open bool
	Now  time.Time
}

func (f HomeworkFilter) where(args []any) (string, []any) {
	if !f.Open {
		return "", args
	}
	args = append(args, f.Now)
	return fmt.Sprintf(" WHERE answer_end_date > $%d", len(args)), args
}

func CreateHomework(ctx context.Context, database *sqlx.DB, h models.Homework) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := database.QueryRowxContext(ctx, `
		INSERT INTO homeworks (answer_end_date, text, file_path)
		VALUES ($1, $2, $3)
		RETURNING id`, h.AnswerEndDate, h.Text, h.FilePath).Scan(&id)
	return id, err
}

func GetHomework(ctx context.Context, database *sqlx.DB, id int64) (*models.Homework, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var h models.Homework
	if err := database.GetContext(ctx, &h, `SELECT `+homeworkCols+` FROM homeworks WHERE id = $1`, id); err != nil {
		return nil, notFound(err)
	}
	return &h, nil
}

// GetOpenHomework: задание, которое ещё принимает ответы; иначе ErrNotFound.
func GetOpenHomework(ctx context.Context, database *sqlx.DB, id int64, now time.Time) (*models.Homework, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var h models.Homework
	err := database.GetContext(ctx, &h,
		`SELECT `+homeworkCols+` FROM homeworks WHERE id = $1 AND answer_end_date > $2`, id, now)
	if err != nil {
		return nil, notFound(err)
	}
	return &h, nil
}

// DeleteHomework удаляет задание вместе с ответами.
func DeleteHomework(ctx context.Context, database *sqlx.DB, id int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	return execOne(ctx, database, `DELETE FROM homeworks WHERE id = $1`, id)
}

// ListHomeworks: новые сверху.
func ListHomeworks(ctx context.Context, database *sqlx.DB, f HomeworkFilter, p Page) ([]models.Homework, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	where, args := f.where(nil)
	args = append(args, p.Limit, p.Offset)
	q := `SELECT ` + homeworkCols + ` FROM homeworks` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	var out []models.Homework
	err := database.SelectContext(ctx, &out, q, args...)
	return out, err
}

func CountHomeworks(ctx context.Context, database *sqlx.DB, f HomeworkFilter) (int, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	where, args := f.where(nil)
	var n int
	err := database.GetContext(ctx, &n, `SELECT count(*) FROM homeworks`+where, args...)
	return n, err
}
