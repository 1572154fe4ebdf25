package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Spok95/telegram-events-bot/internal/ctxutil"
	"github.com/Spok95/telegram-events-bot/internal/session"
	"github.com/jmoiron/sqlx"
)

// SessionStore хранит состояния мастеров в таблице sessions (JSONB).
type SessionStore struct {
	DB *sqlx.DB
}

func (s SessionStore) Load(ctx context.Context, chatID int64) (session.State, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var raw []byte
	err := s.DB.GetContext(ctx, &raw, `SELECT data FROM sessions WHERE chat_id = $1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return session.State{}, nil
	}
	if err != nil {
		return session.State{}, err
	}
	return session.Unmarshal(raw)
}

// Save: пустое состояние удаляет строку.
func (s SessionStore) Save(ctx context.Context, chatID int64, st session.State) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	if !st.Active() {
		_, err := s.DB.ExecContext(ctx, `DELETE FROM sessions WHERE chat_id = $1`, chatID)
		return err
	}
	raw, err := session.Marshal(st)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO sessions (chat_id, data, updated_at) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (chat_id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		chatID, string(raw))
	return err
}
