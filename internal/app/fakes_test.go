package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Spok95/telegram-events-bot/internal/booking"
	"github.com/Spok95/telegram-events-bot/internal/db"
	"github.com/Spok95/telegram-events-bot/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// fakeBot запоминает всё, что бот отправил.
type fakeBot struct {
	mu   sync.Mutex
	sent []tgbotapi.Chattable
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, c)
	return tgbotapi.Message{MessageID: len(b.sent)}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) GetFileDirectURL(fileID string) (string, error) {
	return "https://files.example/" + fileID, nil
}

func (b *fakeBot) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = nil
}

// texts: тексты сообщений, правок и ответов на кнопки по порядку.
func (b *fakeBot) texts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, c := range b.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		case tgbotapi.CallbackConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

func (b *fakeBot) documents() []tgbotapi.DocumentConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []tgbotapi.DocumentConfig
	for _, c := range b.sent {
		if d, ok := c.(tgbotapi.DocumentConfig); ok {
			out = append(out, d)
		}
	}
	return out
}

func (b *fakeBot) last() string {
	t := b.texts()
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1]
}

type regKey struct{ user, event int64 }

type fakeStore struct {
	mu        sync.Mutex
	policy    booking.Policy
	users     map[int64]*models.User
	events    map[int64]*models.Event
	regs      map[regKey]bool
	homeworks map[int64]*models.Homework
	answers   map[regKey]models.HomeworkAnswer
	nextID    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     map[int64]*models.User{},
		events:    map[int64]*models.Event{},
		regs:      map[regKey]bool{},
		homeworks: map[int64]*models.Homework{},
		answers:   map[regKey]models.HomeworkAnswer{},
	}
}

func (f *fakeStore) addUser(u models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = &u
}

func (f *fakeStore) addEvent(e models.Event) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e.ID = f.nextID
	f.events[e.ID] = &e
	return e.ID
}

func (f *fakeStore) EnsureUser(_ context.Context, id int64, nickname string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		u = &models.User{ID: id}
		f.users[id] = u
	}
	u.Nickname = nickname
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetUser(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) SetUserFio(_ context.Context, id int64, fio string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id].Fio = fio
	return nil
}

func (f *fakeStore) SetUserPhone(_ context.Context, id int64, phone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id].Phone = phone
	return nil
}

func (f *fakeStore) SetPayers(_ context.Context, ids []int64, payer bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			u.IsPayer = payer
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ListUsers(context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fio < out[j].Fio })
	return out, nil
}

func (f *fakeStore) CreateEvent(_ context.Context, e models.Event) (int64, error) {
	return f.addEvent(e), nil
}

func (f *fakeStore) GetEvent(_ context.Context, id int64) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeStore) DeleteEvent(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.events, id)
	for k := range f.regs {
		if k.event == id {
			delete(f.regs, k)
		}
	}
	return nil
}

func (f *fakeStore) filteredEvents(fl db.EventFilter) []models.Event {
	var out []models.Event
	for _, e := range f.events {
		if fl.Upcoming && e.DateStart.Before(fl.Now) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateStart.After(out[j].DateStart) })
	return out
}

func window[T any](list []T, p db.Page) []T {
	if p.Offset >= len(list) {
		return nil
	}
	end := p.Offset + p.Limit
	if end > len(list) {
		end = len(list)
	}
	return list[p.Offset:end]
}

func (f *fakeStore) ListEvents(_ context.Context, fl db.EventFilter, p db.Page) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return window(f.filteredEvents(fl), p), nil
}

func (f *fakeStore) CountEvents(_ context.Context, fl db.EventFilter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.filteredEvents(fl)), nil
}

func (f *fakeStore) EventRoster(_ context.Context, eventID int64) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for k := range f.regs {
		if k.event == eventID {
			out = append(out, *f.users[k.user])
		}
	}
	return out, nil
}

func (f *fakeStore) Register(_ context.Context, userID, eventID int64) (booking.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[eventID]
	if !ok {
		return booking.NotFound, nil
	}
	payer := f.users[userID].IsPayer
	taken := 0
	for k := range f.regs {
		if k.event == eventID && f.users[k.user].IsPayer == payer {
			taken++
		}
	}
	out := f.policy.Decide(f.regs[regKey{userID, eventID}], taken, e.Quota(payer))
	if out == booking.Registered {
		f.regs[regKey{userID, eventID}] = true
	}
	return out, nil
}

func (f *fakeStore) Unregister(_ context.Context, userID, eventID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.regs, regKey{userID, eventID})
	return nil
}

func (f *fakeStore) ListUserUpcomingEvents(_ context.Context, userID int64, now time.Time) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Event
	for _, e := range f.filteredEvents(db.EventFilter{Upcoming: true, Now: now}) {
		if f.regs[regKey{userID, e.ID}] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateHomework(_ context.Context, h models.Homework) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	h.ID = f.nextID
	f.homeworks[h.ID] = &h
	return h.ID, nil
}

func (f *fakeStore) GetHomework(_ context.Context, id int64) (*models.Homework, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.homeworks[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *h
	return &cp, nil
}

func (f *fakeStore) GetOpenHomework(ctx context.Context, id int64, now time.Time) (*models.Homework, error) {
	h, err := f.GetHomework(ctx, id)
	if err != nil {
		return nil, err
	}
	if !h.AnswerEndDate.After(now) {
		return nil, models.ErrNotFound
	}
	return h, nil
}

func (f *fakeStore) DeleteHomework(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.homeworks[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.homeworks, id)
	return nil
}

func (f *fakeStore) filteredHomeworks(fl db.HomeworkFilter) []models.Homework {
	var out []models.Homework
	for _, h := range f.homeworks {
		if fl.Open && !h.AnswerEndDate.After(fl.Now) {
			continue
		}
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeStore) ListHomeworks(_ context.Context, fl db.HomeworkFilter, p db.Page) ([]models.Homework, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return window(f.filteredHomeworks(fl), p), nil
}

func (f *fakeStore) CountHomeworks(_ context.Context, fl db.HomeworkFilter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.filteredHomeworks(fl)), nil
}

func (f *fakeStore) GetAnswer(_ context.Context, userID, homeworkID int64) (*models.HomeworkAnswer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.answers[regKey{userID, homeworkID}]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &a, nil
}

func (f *fakeStore) UpsertAnswer(_ context.Context, userID, homeworkID int64, kind models.AnswerKind, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := models.HomeworkAnswer{UserID: userID, HomeworkID: homeworkID}
	if kind == models.AnswerFile {
		a.FilePath = &value
	} else {
		a.Link = &value
	}
	f.answers[regKey{userID, homeworkID}] = a
	return nil
}

func (f *fakeStore) ListAnswers(_ context.Context, homeworkID int64, kind models.AnswerKind) ([]models.AnswerRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AnswerRow
	for k, a := range f.answers {
		if k.event != homeworkID {
			continue
		}
		u := f.users[k.user]
		row := models.AnswerRow{Fio: u.Fio, Nickname: u.Nickname, FilePath: a.FilePath, Link: a.Link}
		if (kind == models.AnswerFile) != (a.FilePath != nil) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}
