//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/Spok95/telegram-events-bot/internal/db"
	"github.com/Spok95/telegram-events-bot/internal/models"
	"github.com/Spok95/telegram-events-bot/internal/testutil/testdb"
	"github.com/jmoiron/sqlx"
)

func startDB(t *testing.T) *testdb.DBHandle {
	t.Helper()
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(h.Close)
	return h
}

func mustUser(t *testing.T, database *sqlx.DB, id int64, fio string, payer bool) {
	t.Helper()
	ctx := context.Background()
	if _, err := db.EnsureUser(ctx, database, id, "nick"+fio); err != nil {
		t.Fatal(err)
	}
	if err := db.SetUserFio(ctx, database, id, fio); err != nil {
		t.Fatal(err)
	}
	if err := db.SetUserPhone(ctx, database, id, "+79001234567"); err != nil {
		t.Fatal(err)
	}
	if payer {
		if _, err := db.SetPayers(ctx, database, []int64{id}, true); err != nil {
			t.Fatal(err)
		}
	}
}

func mustEvent(t *testing.T, database *sqlx.DB, name string, start time.Time, users, payers int) int64 {
	t.Helper()
	id, err := db.CreateEvent(context.Background(), database, models.Event{
		Name: name, DateStart: start, Place: "Зал", UsersCount: users, PayersCount: payers,
	})
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func ptr(s string) *string { return &s }
