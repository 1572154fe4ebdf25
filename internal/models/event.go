package models

import "time"

type Event struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	DateStart   time.Time `db:"date_start"`
	Place       string    `db:"place"`
	UsersCount  int       `db:"users_count"`
	PayersCount int       `db:"payers_count"`
	CreatedAt   time.Time `db:"created_at"`
}

// Quota: лимит мест для группы участника (платники считаются отдельно).
func (e Event) Quota(payer bool) int {
	if payer {
		return e.PayersCount
	}
	return e.UsersCount
}
