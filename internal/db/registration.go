package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Spok95/telegram-events-bot/internal/booking"
	"github.com/Spok95/telegram-events-bot/internal/ctxutil"
	"github.com/Spok95/telegram-events-bot/internal/models"
	"github.com/jmoiron/sqlx"
)

// RegisterForEvent: запись с проверкой квоты. Строка мероприятия блокируется
// до конца транзакции, поэтому параллельные записи на одно мероприятие идут по очереди.
func RegisterForEvent(ctx context.Context, database *sqlx.DB, policy booking.Policy, userID, eventID int64) (booking.Outcome, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	tx, err := database.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var ev models.Event
	err = tx.GetContext(ctx, &ev, `SELECT `+eventCols+` FROM events WHERE id = $1 FOR UPDATE`, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.NotFound, nil
	}
	if err != nil {
		return 0, err
	}

	var payer bool
	if err := tx.GetContext(ctx, &payer, `SELECT is_payer FROM users WHERE id = $1`, userID); err != nil {
		return booking.NotFound, notFound(err)
	}

	var already bool
	if err := tx.GetContext(ctx, &already, `
		SELECT EXISTS (SELECT 1 FROM event_registrations WHERE user_id = $1 AND event_id = $2)`,
		userID, eventID); err != nil {
		return 0, err
	}

	var taken int
	if err := tx.GetContext(ctx, &taken, `
		SELECT count(*)
		FROM event_registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1 AND u.is_payer = $2`, eventID, payer); err != nil {
		return 0, err
	}

	out := policy.Decide(already, taken, ev.Quota(payer))
	if out != booking.Registered {
		return out, nil
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO event_registrations (user_id, event_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, userID, eventID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return booking.Registered, nil
}

// Unregister удаляет запись; отсутствие записи не ошибка.
func Unregister(ctx context.Context, database *sqlx.DB, userID, eventID int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := database.ExecContext(ctx,
		`DELETE FROM event_registrations WHERE user_id = $1 AND event_id = $2`, userID, eventID)
	return err
}

// ListUserUpcomingEvents: предстоящие мероприятия, на которые записан пользователь.
func ListUserUpcomingEvents(ctx context.Context, database *sqlx.DB, userID int64, now time.Time) ([]models.Event, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var out []models.Event
	err := database.SelectContext(ctx, &out, `
		SELECT e.id, e.name, e.date_start, e.place, e.users_count, e.payers_count, e.created_at
		FROM event_registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1 AND e.date_start >= $2
		ORDER BY e.date_start`, userID, now)
	return out, err
}
