package db

import (
	"database/sql"
	"errors"

	"github.com/Spok95/telegram-events-bot/internal/models"
)

var ErrNotFound = models.ErrNotFound

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Page: окно выборки для постраничных списков.
type Page struct {
	Limit  int
	Offset int
}
