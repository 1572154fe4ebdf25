package models

import (
	"errors"
	"time"
)

// User: участник. ID совпадает с Telegram ID.
type User struct {
	ID        int64     `db:"id"`
	Fio       string    `db:"fio"`
	Phone     string    `db:"phone"`
	Nickname  string    `db:"nickname"`
	IsPayer   bool      `db:"is_payer"`
	CreatedAt time.Time `db:"created_at"`
}

// Registered: заполнены ли ФИО и телефон.
func (u User) Registered() bool {
	return u.Fio != "" && u.Phone != ""
}

// ErrNotFound: запрошенной записи нет.
var ErrNotFound = errors.New("not found")
