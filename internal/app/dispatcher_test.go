package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Spok95/telegram-events-bot/internal/bot/menu"
	"github.com/Spok95/telegram-events-bot/internal/bot/messages"
	"github.com/Spok95/telegram-events-bot/internal/config"
	"github.com/Spok95/telegram-events-bot/internal/intent"
	"github.com/Spok95/telegram-events-bot/internal/models"
	"github.com/Spok95/telegram-events-bot/internal/session"
	"github.com/Spok95/telegram-events-bot/internal/wizard"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const adminID = int64(1)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	t        *testing.T
	bot      *fakeBot
	store    *fakeStore
	sessions *session.Memory
	d        *Dispatcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	bot := &fakeBot{}
	store := newFakeStore()
	sessions := session.NewMemory()
	engine := wizard.New(store)
	engine.Now = func() time.Time { return testNow }
	cfg := &config.Config{AdminIDs: []int64{adminID}, Location: time.UTC}
	d := NewDispatcher(bot, store, sessions, engine, cfg, nil)
	d.now = func() time.Time { return testNow }
	return &harness{t: t, bot: bot, store: store, sessions: sessions, d: d}
}

func (h *harness) registeredUser(id int64) {
	h.store.addUser(models.User{ID: id, Fio: "Петров Пётр", Phone: "+79123456789", Nickname: "petrov"})
}

func (h *harness) text(from int64, text string) {
	m := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: from, UserName: "user"},
		Chat:      &tgbotapi.Chat{ID: from},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		m.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}}
	}
	h.d.Dispatch(context.Background(), tgbotapi.Update{Message: m})
}

func (h *harness) press(from int64, data string) {
	cb := &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: from, UserName: "user"},
		Message: &tgbotapi.Message{MessageID: 10, Chat: &tgbotapi.Chat{ID: from}},
		Data:    data,
	}
	h.d.Dispatch(context.Background(), tgbotapi.Update{CallbackQuery: cb})
}

func (h *harness) state(chatID int64) session.State {
	st, err := h.sessions.Load(context.Background(), chatID)
	if err != nil {
		h.t.Fatal(err)
	}
	return st
}

func (h *harness) wantLast(want string) {
	h.t.Helper()
	if got := h.bot.last(); got != want {
		h.t.Fatalf("последний ответ %q, ожидали %q (все: %q)", got, want, h.bot.texts())
	}
}

func TestGlobalIDBypassesGate(t *testing.T) {
	h := newHarness(t)
	h.text(100, "/id")
	h.wantLast("Ваш ID: <code>100</code>")
	if h.state(100).Active() {
		t.Fatal("/id не должен запускать регистрацию")
	}
}

func TestGateAndRegistration(t *testing.T) {
	h := newHarness(t)

	h.text(100, menu.BtnEvents)
	h.wantLast(wizard.MsgFio)
	if !h.state(100).In(session.KindRegistration) {
		t.Fatal("незарегистрированного пользователя должна встретить регистрация")
	}

	h.press(100, intent.Data(intent.EventsSetPage, 2))
	h.wantLast(msgFinishRegistration)

	h.text(100, "Иванов Иван")
	h.wantLast(wizard.MsgPhone)
	h.text(100, "12345")
	h.wantLast(wizard.MsgBadPhone)
	h.text(100, "+79123456789")
	h.wantLast(wizard.MsgRegistered)
	if h.state(100).Active() {
		t.Fatal("после регистрации мастер должен закрыться")
	}

	h.text(100, menu.BtnEvents)
	h.wantLast(messages.NoEvents)
}

func TestAdminCreatesEvent(t *testing.T) {
	h := newHarness(t)

	h.press(adminID, intent.Data(intent.CreateEvent, 0))
	texts := h.bot.texts()
	if len(texts) != 2 || texts[0] != "Начало создания мероприятия" || texts[1] != wizard.MsgEventName {
		t.Fatalf("начало мастера: %q", texts)
	}
	for _, in := range []string{"Meetup", "10", "2", "2030-01-01T10:00:00Z", "Hall"} {
		h.text(adminID, in)
	}
	h.wantLast(wizard.MsgEventCreated)

	list, _ := h.store.ListUsers(context.Background())
	if len(list) != 0 {
		t.Fatal("админ не проходит через ensure-user")
	}
	if len(h.store.events) != 1 {
		t.Fatalf("мероприятий %d, ожидали 1", len(h.store.events))
	}
	for _, e := range h.store.events {
		if e.Name != "Meetup" || e.UsersCount != 10 || e.PayersCount != 2 || e.Place != "Hall" {
			t.Fatalf("неверное мероприятие: %+v", e)
		}
	}
}

func TestAdminCancel(t *testing.T) {
	h := newHarness(t)
	h.press(adminID, intent.Data(intent.CreateEvent, 0))
	h.text(adminID, "Отмена")
	h.wantLast(wizard.MsgCancelled)
	if h.state(adminID).Active() {
		t.Fatal("отмена должна сбросить мастер")
	}

	h.bot.reset()
	h.press(adminID, intent.Data(intent.Cancel, 0))
	h.wantLast("Нечего отменять")
}

func TestRegisterOutcomes(t *testing.T) {
	h := newHarness(t)
	h.registeredUser(100)
	h.registeredUser(101)
	id := h.store.addEvent(models.Event{Name: "Meetup", DateStart: testNow.Add(24 * time.Hour), UsersCount: 1})

	data := intent.Data(intent.RegisterToEvent, id)
	h.press(100, data)
	h.wantLast("Вы успешно записаны!")
	h.press(100, data)
	h.wantLast("Вы уже записаны!")
	h.press(101, data)
	h.wantLast("Нет мест!")
	h.press(101, intent.Data(intent.RegisterToEvent, 999))
	h.wantLast(msgNotFound)

	h.text(100, menu.BtnRegisteredEvents)
	if !strings.Contains(h.bot.last(), "Meetup") {
		t.Fatalf("в списке записей нет мероприятия: %q", h.bot.last())
	}
	h.press(100, intent.Data(intent.DeleteRegisterToEvent, id))
	texts := h.bot.texts()
	if texts[len(texts)-2] != messages.NoRegistered || texts[len(texts)-1] != "Успешно!" {
		t.Fatalf("после отписки: %q", texts[len(texts)-2:])
	}
}

func TestEventsPagination(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 7; i++ {
		h.store.addEvent(models.Event{Name: "E", DateStart: testNow.Add(time.Duration(i+1) * time.Hour)})
	}
	h.store.addEvent(models.Event{Name: "Past", DateStart: testNow.Add(-time.Hour)})

	h.text(adminID, menu.BtnEvents)
	if !strings.Contains(h.bot.last(), "Страница 1 из 2") {
		t.Fatalf("админ видит все 8 мероприятий: %q", h.bot.last())
	}

	h.registeredUser(100)
	h.press(100, intent.Data(intent.EventsSetPage, 2))
	texts := h.bot.texts()
	if got := texts[len(texts)-2]; !strings.Contains(got, "Страница 2 из 2") || strings.Contains(got, "Past") {
		t.Fatalf("вторая страница участника: %q", got)
	}

	h.press(100, intent.Data(intent.EventsSetPage, 9))
	texts = h.bot.texts()
	if got := texts[len(texts)-2]; !strings.Contains(got, "Страница 2 из 2") {
		t.Fatalf("номер страницы должен ограничиваться: %q", got)
	}
}

func TestUnmatchedUpdatesAreIgnored(t *testing.T) {
	h := newHarness(t)
	h.registeredUser(100)

	h.text(100, "просто текст")
	h.press(100, "Unknown:1")
	h.press(adminID, intent.Data(intent.RegisterToEvent, 1))
	if n := len(h.bot.texts()); n != 0 {
		t.Fatalf("бот ответил на непонятные апдейты: %q", h.bot.texts())
	}
}

func TestHomeworkAnswerFlow(t *testing.T) {
	h := newHarness(t)
	h.registeredUser(100)
	task := "Решить задачу"
	hwID, _ := h.store.CreateHomework(context.Background(), models.Homework{
		CreatedAt: testNow.Add(-time.Hour), AnswerEndDate: testNow.Add(time.Hour), Text: &task,
	})

	h.press(100, intent.Data(intent.ShowHomeWork, hwID))
	texts := h.bot.texts()
	if texts[0] != task || !strings.HasPrefix(texts[1], "Задание от") {
		t.Fatalf("показ задания: %q", texts)
	}

	h.press(100, intent.Data(intent.SendAnswerHomeWork, hwID))
	h.wantLast(wizard.MsgAnswer)
	h.text(100, "https://example.com/solution")
	h.wantLast(wizard.MsgAnswerSaved)

	a := h.store.answers[regKey{100, hwID}]
	if a.Link == nil || *a.Link != "https://example.com/solution" {
		t.Fatalf("ответ не сохранён: %+v", a)
	}
}

func TestAdminExportsUsers(t *testing.T) {
	h := newHarness(t)
	h.registeredUser(100)

	h.text(adminID, menu.BtnUsers)
	h.d.Wait()
	docs := h.bot.documents()
	if len(docs) != 1 {
		t.Fatalf("ожидали один документ, получили %d", len(docs))
	}
	if _, ok := docs[0].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); !ok {
		t.Fatal("к выгрузке пользователей прикладывается меню платников")
	}
}

func TestAdminPayers(t *testing.T) {
	h := newHarness(t)
	h.registeredUser(100)
	h.registeredUser(101)

	h.press(adminID, intent.Data(intent.MakePayers, 0))
	h.wantLast(wizard.MsgPayerIDs)
	h.text(adminID, "100, 101, abc")
	if !h.store.users[100].IsPayer || !h.store.users[101].IsPayer {
		t.Fatal("пользователи не стали платниками")
	}
}

func TestExtractLinks(t *testing.T) {
	text := "Моё решение: https://example.com/a"
	ents := []tgbotapi.MessageEntity{{Type: "url", Offset: 13, Length: 21}}
	got := extractLinks(text, ents)
	if len(got) != 1 || got[0] != "https://example.com/a" {
		t.Fatalf("ссылка из сущности: %q", got)
	}
	if got := extractLinks("см. http://x.ru/y и ftp://z", nil); len(got) != 1 || got[0] != "http://x.ru/y" {
		t.Fatalf("ссылка из текста: %q", got)
	}
}

func TestInputFromMessage_FileKinds(t *testing.T) {
	from := &tgbotapi.User{ID: 7}
	cases := []struct {
		name string
		msg  *tgbotapi.Message
		id   string
		kind wizard.FileKind
	}{
		{"document", &tgbotapi.Message{From: from, Document: &tgbotapi.Document{FileID: "d"}}, "d", wizard.FileDocument},
		{"photo", &tgbotapi.Message{From: from, Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "big"}}}, "big", wizard.FilePhoto},
		{"voice", &tgbotapi.Message{From: from, Voice: &tgbotapi.Voice{FileID: "v"}}, "v", wizard.FileVoice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := inputFromMessage(tc.msg)
			if in.FileID != tc.id || in.FileKind != tc.kind || in.UserID != 7 {
				t.Fatalf("получили %+v", in)
			}
		})
	}
}

func TestAdminHomeworkRejectsPhoto(t *testing.T) {
	h := newHarness(t)
	h.press(adminID, intent.Data(intent.CreateHomeWork, 0))

	photo := &tgbotapi.Message{
		MessageID: 2,
		From:      &tgbotapi.User{ID: adminID},
		Chat:      &tgbotapi.Chat{ID: adminID},
		Photo:     []tgbotapi.PhotoSize{{FileID: "p"}},
	}
	h.d.Dispatch(context.Background(), tgbotapi.Update{Message: photo})
	h.wantLast(wizard.MsgHomeworkDoc + " " + wizard.MsgHomework)
	if st := h.state(adminID); st.Step != session.StepHomeworkContent {
		t.Fatalf("шаг не должен меняться: %s", st.Step)
	}
	if len(h.store.homeworks) != 0 {
		t.Fatal("задание с фото не должно создаваться")
	}
}

func TestAnswerReplacesPrevious(t *testing.T) {
	h := newHarness(t)
	h.registeredUser(100)
	task := "Эссе"
	hwID, _ := h.store.CreateHomework(context.Background(), models.Homework{
		CreatedAt: testNow.Add(-time.Hour), AnswerEndDate: testNow.Add(time.Hour), Text: &task,
	})
	for i, want := range []string{wizard.MsgAnswerSaved, wizard.MsgAnswerUpdated} {
		h.press(100, intent.Data(intent.SendAnswerHomeWork, hwID))
		h.text(100, "https://example.com/v"+string(rune('1'+i)))
		h.wantLast(want)
	}
}
