package export

import (
	"context"
	"strconv"
	"time"

	"github.com/Spok95/telegram-events-bot/internal/logging"
	"github.com/Spok95/telegram-events-bot/internal/models"
	"go.uber.org/zap"
)

// FileResolver превращает file_id в ссылку на скачивание.
type FileResolver interface {
	GetFileDirectURL(fileID string) (string, error)
}

const unavailableFile = "файл недоступен"

func yesNo(b bool) string {
	if b {
		return "Да"
	}
	return "Нет"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Roster: участники мероприятия.
func Roster(e models.Event, users []models.User, loc *time.Location) (Document, error) {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.Fio, u.Phone, u.Nickname, yesNo(u.IsPayer)})
	}
	data, err := Build(SheetSpec{
		Title:   e.Name,
		Caption: e.Name,
		Header:  []string{"ФИО", "Номер телефона", "Telegram username", "Платник"},
		Rows:    rows,
	})
	if err != nil {
		return Document{}, err
	}
	return Document{Name: FileName(e.Name, e.CreatedAt, loc), Data: data}, nil
}

// Users: все пользователи, в имени файла дата выгрузки.
func Users(users []models.User, now time.Time, loc *time.Location) (Document, error) {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{strconv.FormatInt(u.ID, 10), u.Fio, u.Phone, u.Nickname, yesNo(u.IsPayer)})
	}
	data, err := Build(SheetSpec{
		Title:  "Пользователи",
		Header: []string{"ID", "ФИО", "Номер телефона", "Telegram username", "Платник"},
		Rows:   rows,
	})
	if err != nil {
		return Document{}, err
	}
	return Document{Name: FileName("Пользователи", now, loc), Data: data}, nil
}

// HomeworkLinks: ответы-ссылки на задание.
func HomeworkLinks(h models.Homework, answers []models.AnswerRow, loc *time.Location) (Document, error) {
	rows := make([][]string, 0, len(answers))
	for _, a := range answers {
		if a.Link == nil {
			continue
		}
		rows = append(rows, []string{a.Fio, a.Nickname, *a.Link})
	}
	data, err := Build(SheetSpec{
		Title:  "Ссылки",
		Header: []string{"ФИО", "Telegram username", "Ссылка"},
		Rows:   rows,
	})
	if err != nil {
		return Document{}, err
	}
	return Document{Name: FileName("Ссылки", h.CreatedAt, loc), Data: data}, nil
}

// HomeworkFiles: ответы-файлы; file_id заменяется ссылкой на скачивание.
// Ответы без ФИО пропускаются, файл, который не удалось получить, помечается в таблице.
func HomeworkFiles(ctx context.Context, h models.Homework, answers []models.AnswerRow, files FileResolver, log *zap.Logger, loc *time.Location) (Document, error) {
	rows := make([][]string, 0, len(answers))
	for _, a := range answers {
		if a.FilePath == nil || a.Fio == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Document{}, err
		}
		link, err := files.GetFileDirectURL(*a.FilePath)
		if err != nil {
			logging.FromContext(ctx, log).Warn("resolve answer file", zap.String("file_id", deref(a.FilePath)), zap.Error(err))
			link = unavailableFile
		}
		rows = append(rows, []string{a.Fio, a.Nickname, link})
	}
	data, err := Build(SheetSpec{
		Title:  "Файлы",
		Header: []string{"ФИО", "Telegram username", "Ссылка на файл"},
		Rows:   rows,
	})
	if err != nil {
		return Document{}, err
	}
	return Document{Name: FileName("Файлы", h.CreatedAt, loc), Data: data}, nil
}
