package app

import (
	"context"
	"time"

	"github.com/Spok95/telegram-events-bot/internal/booking"
	"github.com/Spok95/telegram-events-bot/internal/db"
	"github.com/Spok95/telegram-events-bot/internal/models"
	"github.com/Spok95/telegram-events-bot/internal/wizard"
)

// Store: данные, с которыми работают обработчики. Реализация в *db.Repo.
type Store interface {
	wizard.Store

	EnsureUser(ctx context.Context, id int64, nickname string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	ListEvents(ctx context.Context, f db.EventFilter, p db.Page) ([]models.Event, error)
	CountEvents(ctx context.Context, f db.EventFilter) (int, error)
	EventRoster(ctx context.Context, eventID int64) ([]models.User, error)

	Register(ctx context.Context, userID, eventID int64) (booking.Outcome, error)
	Unregister(ctx context.Context, userID, eventID int64) error
	ListUserUpcomingEvents(ctx context.Context, userID int64, now time.Time) ([]models.Event, error)

	GetHomework(ctx context.Context, id int64) (*models.Homework, error)
	DeleteHomework(ctx context.Context, id int64) error
	ListHomeworks(ctx context.Context, f db.HomeworkFilter, p db.Page) ([]models.Homework, error)
	CountHomeworks(ctx context.Context, f db.HomeworkFilter) (int, error)
	ListAnswers(ctx context.Context, homeworkID int64, kind models.AnswerKind) ([]models.AnswerRow, error)
}

var _ Store = (*db.Repo)(nil)
