package db

import (
	"context"
	"time"

	"github.com/Spok95/telegram-events-bot/internal/ctxutil"
	"github.com/Spok95/telegram-events-bot/internal/models"
	"github.com/jmoiron/sqlx"
)

func CountStats(ctx context.Context, database *sqlx.DB, now time.Time) (models.Stats, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var s models.Stats
	err := database.GetContext(ctx, &s, `
		SELECT
			(SELECT count(*) FROM users) AS users,
			(SELECT count(*) FROM events WHERE date_start >= $1) AS upcoming_events,
			(SELECT count(*) FROM homeworks WHERE answer_end_date > $1) AS open_homeworks`, now)
	return s, err
}
