package jobs

import (
	"context"
	"time"

	"github.com/Spok95/telegram-events-bot/internal/metrics"
	"github.com/Spok95/telegram-events-bot/internal/models"
)

// StatsSource: откуда брать счётчики для гейджей.
type StatsSource func(ctx context.Context, now time.Time) (models.Stats, error)

// Stats обновляет гейджи предстоящих мероприятий, открытых ДЗ и пользователей.
func Stats(src StatsSource) Job {
	return func(ctx context.Context) error {
		s, err := src(ctx, time.Now())
		if err != nil {
			return err
		}
		metrics.Users.Set(float64(s.Users))
		metrics.UpcomingEvents.Set(float64(s.UpcomingEvents))
		metrics.OpenHomeworks.Set(float64(s.OpenHomeworks))
		return nil
	}
}
