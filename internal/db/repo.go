package db

import (
	"context"
	"time"

	"github.com/Spok95/telegram-events-bot/internal/booking"
	"github.com/Spok95/telegram-events-bot/internal/models"
	"github.com/jmoiron/sqlx"
)

// Repo привязывает функции пакета к одному подключению и политике записи.
// Через него работают мастера и обработчики бота.
type Repo struct {
	DB     *sqlx.DB
	Policy booking.Policy
}

func (r *Repo) EnsureUser(ctx context.Context, id int64, nickname string) (*models.User, error) {
	return EnsureUser(ctx, r.DB, id, nickname)
}

func (r *Repo) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return GetUser(ctx, r.DB, id)
}

func (r *Repo) SetUserFio(ctx context.Context, id int64, fio string) error {
	return SetUserFio(ctx, r.DB, id, fio)
}

func (r *Repo) SetUserPhone(ctx context.Context, id int64, phone string) error {
	return SetUserPhone(ctx, r.DB, id, phone)
}

func (r *Repo) SetPayers(ctx context.Context, ids []int64, payer bool) (int64, error) {
	return SetPayers(ctx, r.DB, ids, payer)
}

func (r *Repo) ListUsers(ctx context.Context) ([]models.User, error) {
	return ListUsers(ctx, r.DB)
}

func (r *Repo) CreateEvent(ctx context.Context, e models.Event) (int64, error) {
	return CreateEvent(ctx, r.DB, e)
}

func (r *Repo) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	return GetEvent(ctx, r.DB, id)
}

func (r *Repo) DeleteEvent(ctx context.Context, id int64) error {
	return DeleteEvent(ctx, r.DB, id)
}

func (r *Repo) ListEvents(ctx context.Context, f EventFilter, p Page) ([]models.Event, error) {
	return ListEvents(ctx, r.DB, f, p)
}

func (r *Repo) CountEvents(ctx context.Context, f EventFilter) (int, error) {
	return CountEvents(ctx, r.DB, f)
}

func (r *Repo) EventRoster(ctx context.Context, eventID int64) ([]models.User, error) {
	return EventRoster(ctx, r.DB, eventID)
}

func (r *Repo) Register(ctx context.Context, userID, eventID int64) (booking.Outcome, error) {
	return RegisterForEvent(ctx, r.DB, r.Policy, userID, eventID)
}

func (r *Repo) Unregister(ctx context.Context, userID, eventID int64) error {
	return Unregister(ctx, r.DB, userID, eventID)
}

func (r *Repo) ListUserUpcomingEvents(ctx context.Context, userID int64, now time.Time) ([]models.Event, error) {
	return ListUserUpcomingEvents(ctx, r.DB, userID, now)
}

func (r *Repo) CreateHomework(ctx context.Context, h models.Homework) (int64, error) {
	return CreateHomework(ctx, r.DB, h)
}

func (r *Repo) GetHomework(ctx context.Context, id int64) (*models.Homework, error) {
	return GetHomework(ctx, r.DB, id)
}

func (r *Repo) GetOpenHomework(ctx context.Context, id int64, now time.Time) (*models.Homework, error) {
	return GetOpenHomework(ctx, r.DB, id, now)
}

func (r *Repo) DeleteHomework(ctx context.Context, id int64) error {
	return DeleteHomework(ctx, r.DB, id)
}

func (r *Repo) ListHomeworks(ctx context.Context, f HomeworkFilter, p Page) ([]models.Homework, error) {
	return ListHomeworks(ctx, r.DB, f, p)
}

func (r *Repo) CountHomeworks(ctx context.Context, f HomeworkFilter) (int, error) {
	return CountHomeworks(ctx, r.DB, f)
}

func (r *Repo) GetAnswer(ctx context.Context, userID, homeworkID int64) (*models.HomeworkAnswer, error) {
	return GetAnswer(ctx, r.DB, userID, homeworkID)
}

func (r *Repo) UpsertAnswer(ctx context.Context, userID, homeworkID int64, kind models.AnswerKind, value string) error {
	return UpsertAnswer(ctx, r.DB, userID, homeworkID, kind, value)
}

func (r *Repo) ListAnswers(ctx context.Context, homeworkID int64, kind models.AnswerKind) ([]models.AnswerRow, error) {
	return ListAnswers(ctx, r.DB, homeworkID, kind)
}
