package db

import (
	"context"
	"fmt"

	"github.com/Spok95/telegram-events-bot/internal/ctxutil"
	"github.com/Spok95/telegram-events-bot/internal/models"
	"github.com/jmoiron/sqlx"
)

// UpsertAnswer сохраняет последний ответ пользователя. Значение другого типа затирается.
func UpsertAnswer(ctx context.Context, database *sqlx.DB, userID, homeworkID int64, kind models.AnswerKind, value string) error {
	var filePath, link *string
	switch kind {
	case models.AnswerFile:
		filePath = &value
	case models.AnswerLink:
		link = &value
	default:
		return fmt.Errorf("unknown answer kind %q", kind)
	}

	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := database.ExecContext(ctx, `
		INSERT INTO homework_answers (user_id, homework_id, file_path, link, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id, homework_id) DO UPDATE
		SET file_path = EXCLUDED.file_path,
		    link = EXCLUDED.link,
		    updated_at = now()`, userID, homeworkID, filePath, link)
	return err
}

// GetAnswer: текущий ответ пользователя на задание.
func GetAnswer(ctx context.Context, database *sqlx.DB, userID, homeworkID int64) (*models.HomeworkAnswer, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var a models.HomeworkAnswer
	err := database.GetContext(ctx, &a, `
		SELECT id, user_id, homework_id, file_path, link, updated_at
		FROM homework_answers WHERE user_id = $1 AND homework_id = $2`, userID, homeworkID)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// ListAnswers: ответы на задание заданного типа, по алфавиту ФИО.
func ListAnswers(ctx context.Context, database *sqlx.DB, homeworkID int64, kind models.AnswerKind) ([]models.AnswerRow, error) {
	var cond string
	switch kind {
	case models.AnswerFile:
		cond = "a.file_path IS NOT NULL"
	case models.AnswerLink:
		cond = "a.link IS NOT NULL"
	default:
		return nil, fmt.Errorf("unknown answer kind %q", kind)
	}

	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var out []models.AnswerRow
	err := database.SelectContext(ctx, &out, `
		SELECT u.fio, u.nickname, a.file_path, a.link
		FROM homework_answers a
		JOIN users u ON u.id = a.user_id
		WHERE a.homework_id = $1 AND `+cond+`
		ORDER BY u.fio, u.id`, homeworkID)
	return out, err
}
