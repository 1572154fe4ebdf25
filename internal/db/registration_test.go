//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Spok95/telegram-events-bot/internal/booking"
	"github.com/Spok95/telegram-events-bot/internal/db"
)

func TestRegisterForEvent_Quotas(t *testing.T) {
	h := startDB(t)
	ctx := context.Background()

	mustUser(t, h.DB, 1, "Иванов", false)
	mustUser(t, h.DB, 2, "Петров", false)
	mustUser(t, h.DB, 3, "Сидоров", true)
	mustUser(t, h.DB, 4, "Смирнов", true)
	ev := mustEvent(t, h.DB, "Meetup", time.Now().Add(24*time.Hour), 1, 1)

	p := booking.Policy{}
	steps := []struct {
		user int64
		want booking.Outcome
	}{
		{1, booking.Registered},
		{1, booking.AlreadyRegistered},
		{2, booking.Full}, // общая квота занята
		{3, booking.Registered},
		{4, booking.Full}, // квота платников занята
	}
	for _, s := range steps {
		got, err := db.RegisterForEvent(ctx, h.DB, p, s.user, ev)
		if err != nil {
			t.Fatal(err)
		}
		if got != s.want {
			t.Fatalf("user %d: получили %v, ожидали %v", s.user, got, s.want)
		}
	}

	roster, err := db.EventRoster(ctx, h.DB, ev)
	if err != nil {
		t.Fatal(err)
	}
	if len(roster) != 2 {
		t.Fatalf("ожидали 2 записи, получили %d", len(roster))
	}

	got, err := db.RegisterForEvent(ctx, h.DB, p, 1, 9999)
	if err != nil || got != booking.NotFound {
		t.Fatalf("несуществующее мероприятие: %v, %v", got, err)
	}
}

func TestRegisterForEvent_ZeroQuota(t *testing.T) {
	h := startDB(t)
	ctx := context.Background()
	mustUser(t, h.DB, 1, "Иванов", false)
	ev := mustEvent(t, h.DB, "Open", time.Now().Add(time.Hour), 0, 0)

	if got, _ := db.RegisterForEvent(ctx, h.DB, booking.Policy{}, 1, ev); got != booking.Full {
		t.Fatalf("нулевая квота по умолчанию закрыта, получили %v", got)
	}
	if got, _ := db.RegisterForEvent(ctx, h.DB, booking.Policy{ZeroUnlimited: true}, 1, ev); got != booking.Registered {
		t.Fatalf("с ZeroUnlimited запись проходит, получили %v", got)
	}
}

// Параллельные попытки на последние места не переполняют квоту.
func TestRegisterForEvent_Parallel(t *testing.T) {
	h := startDB(t)
	ctx := context.Background()

	const users = 20
	for i := int64(1); i <= users; i++ {
		mustUser(t, h.DB, i, "user", false)
	}
	ev := mustEvent(t, h.DB, "Hot", time.Now().Add(time.Hour), 5, 0)

	var wg sync.WaitGroup
	for i := int64(1); i <= users; i++ {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			_, _ = db.RegisterForEvent(ctx, h.DB, booking.Policy{}, uid, ev)
		}(i)
	}
	wg.Wait()

	roster, err := db.EventRoster(ctx, h.DB, ev)
	if err != nil {
		t.Fatal(err)
	}
	if len(roster) != 5 {
		t.Fatalf("ожидали ровно 5 записей, получили %d", len(roster))
	}
}

func TestDeleteEvent_Cascade(t *testing.T) {
	h := startDB(t)
	ctx := context.Background()
	mustUser(t, h.DB, 1, "Иванов", false)
	ev := mustEvent(t, h.DB, "Meetup", time.Now().Add(time.Hour), 3, 3)

	if _, err := db.RegisterForEvent(ctx, h.DB, booking.Policy{}, 1, ev); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteEvent(ctx, h.DB, ev); err != nil {
		t.Fatal(err)
	}

	var n int
	if err := h.DB.GetContext(ctx, &n, `SELECT count(*) FROM event_registrations WHERE event_id = $1`, ev); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("остались записи удалённого мероприятия: %d", n)
	}
	if err := db.DeleteEvent(ctx, h.DB, ev); err != db.ErrNotFound {
		t.Fatalf("повторное удаление: ожидали ErrNotFound, получили %v", err)
	}
}

func TestUnregisterAndUpcoming(t *testing.T) {
	h := startDB(t)
	ctx := context.Background()
	mustUser(t, h.DB, 1, "Иванов", false)
	now := time.Now()
	past := mustEvent(t, h.DB, "Прошлое", now.Add(-time.Hour), 3, 3)
	next := mustEvent(t, h.DB, "Будущее", now.Add(time.Hour), 3, 3)

	for _, ev := range []int64{past, next} {
		if _, err := db.RegisterForEvent(ctx, h.DB, booking.Policy{}, 1, ev); err != nil {
			t.Fatal(err)
		}
	}
	list, err := db.ListUserUpcomingEvents(ctx, h.DB, 1, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != next {
		t.Fatalf("ожидали одно будущее мероприятие, получили %+v", list)
	}

	if err := db.Unregister(ctx, h.DB, 1, next); err != nil {
		t.Fatal(err)
	}
	if err := db.Unregister(ctx, h.DB, 1, next); err != nil {
		t.Fatalf("повторная отписка не ошибка: %v", err)
	}
	list, _ = db.ListUserUpcomingEvents(ctx, h.DB, 1, now)
	if len(list) != 0 {
		t.Fatalf("после отписки список пуст, получили %+v", list)
	}
}

func TestListEvents_Filter(t *testing.T) {
	h := startDB(t)
	ctx := context.Background()
	now := time.Now()
	mustEvent(t, h.DB, "old", now.Add(-48*time.Hour), 1, 1)
	mustEvent(t, h.DB, "soon", now.Add(time.Hour), 1, 1)
	mustEvent(t, h.DB, "later", now.Add(48*time.Hour), 1, 1)

	all, err := db.CountEvents(ctx, h.DB, db.EventFilter{})
	if err != nil || all != 3 {
		t.Fatalf("всего: %d, %v", all, err)
	}
	up, err := db.CountEvents(ctx, h.DB, db.EventFilter{Upcoming: true, Now: now})
	if err != nil || up != 2 {
		t.Fatalf("предстоящих: %d, %v", up, err)
	}

	page, err := db.ListEvents(ctx, h.DB, db.EventFilter{Upcoming: true, Now: now}, db.Page{Limit: 1, Offset: 0})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 1 || page[0].Name != "later" {
		t.Fatalf("первым идёт самое позднее, получили %+v", page)
	}
}
