package models

import "time"

// Homework содержит ровно одно из Text / FilePath (file_id в Telegram).
type Homework struct {
	ID            int64     `db:"id"`
	CreatedAt     time.Time `db:"created_at"`
	AnswerEndDate time.Time `db:"answer_end_date"`
	Text          *string   `db:"text"`
	FilePath      *string   `db:"file_path"`
}

type AnswerKind string

const (
	AnswerFile AnswerKind = "file"
	AnswerLink AnswerKind = "link"
)

// HomeworkAnswer: последний ответ пользователя на задание (файл или ссылка).
type HomeworkAnswer struct {
	ID         int64     `db:"id"`
	UserID     int64     `db:"user_id"`
	HomeworkID int64     `db:"homework_id"`
	FilePath   *string   `db:"file_path"`
	Link       *string   `db:"link"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// AnswerRow: строка выгрузки ответов.
type AnswerRow struct {
	Fio      string  `db:"fio"`
	Nickname string  `db:"nickname"`
	FilePath *string `db:"file_path"`
	Link     *string `db:"link"`
}
