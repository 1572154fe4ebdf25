package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Spok95/telegram-events-bot/internal/ctxutil"
	"github.com/Spok95/telegram-events-bot/internal/models"
	"github.com/jmoiron/sqlx"
)

const eventCols = `id, name, date_start, place, users_count, payers_count, created_at`

// EventFilter: Upcoming: только не начавшиеся (date_start >= Now).
type EventFilter struct {
	Upcoming bool
	Now      time.Time
}

func (f EventFilter) where(args []any) (string, []any) {
	if !f.Upcoming {
		return "", args
	}
	args = append(args, f.Now)
	return fmt.Sprintf(" WHERE date_start >= $%d", len(args)), args
}

func CreateEvent(ctx context.Context, database *sqlx.DB, e models.Event) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := database.QueryRowxContext(ctx, `
		INSERT INTO events (name, date_start, place, users_count, payers_count)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		e.Name, e.DateStart, e.Place, e.UsersCount, e.PayersCount).Scan(&id)
	return id, err
}

func GetEvent(ctx context.Context, database *sqlx.DB, id int64) (*models.Event, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var e models.Event
	if err := database.GetContext(ctx, &e, `SELECT `+eventCols+` FROM events WHERE id = $1`, id); err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

// DeleteEvent удаляет мероприятие вместе с записями на него.
func DeleteEvent(ctx context.Context, database *sqlx.DB, id int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	return execOne(ctx, database, `DELETE FROM events WHERE id = $1`, id)
}

// ListEvents: свежие сверху (по дате начала).
func ListEvents(ctx context.Context, database *sqlx.DB, f EventFilter, p Page) ([]models.Event, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	where, args := f.where(nil)
	args = append(args, p.Limit, p.Offset)
	q := `SELECT ` + eventCols + ` FROM events` + where +
		fmt.Sprintf(" ORDER BY date_start DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	var out []models.Event
	err := database.SelectContext(ctx, &out, q, args...)
	return out, err
}

func CountEvents(ctx context.Context, database *sqlx.DB, f EventFilter) (int, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	where, args := f.where(nil)
	var n int
	err := database.GetContext(ctx, &n, `SELECT count(*) FROM events`+where, args...)
	return n, err
}

// EventRoster: записавшиеся на мероприятие, по алфавиту.
func EventRoster(ctx context.Context, database *sqlx.DB, eventID int64) ([]models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var out []models.User
	err := database.SelectContext(ctx, &out, `
		SELECT u.id, u.fio, u.phone, u.nickname, u.is_payer, u.created_at
		FROM event_registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1
		ORDER BY u.fio, u.id`, eventID)
	return out, err
}
