package wizard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Spok95/telegram-events-bot/internal/models"
	"github.com/Spok95/telegram-events-bot/internal/session"
)

// Keyboard: какую клавиатуру приложить к ответу.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardCancel
	KeyboardPhone
	KeyboardUserMenu
)

type Reply struct {
	Text     string
	Keyboard Keyboard
}

// Result: при Consumed=false сообщение не для мастера, роутер идёт дальше.
// Committed: мастер, который завершился на этом шаге.
type Result struct {
	Consumed  bool
	Replies   []Reply
	Committed session.Kind
}

type Store interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	SetUserFio(ctx context.Context, id int64, fio string) error
	SetUserPhone(ctx context.Context, id int64, phone string) error
	SetPayers(ctx context.Context, ids []int64, payer bool) (int64, error)
	CreateEvent(ctx context.Context, e models.Event) (int64, error)
	CreateHomework(ctx context.Context, h models.Homework) (int64, error)
	GetOpenHomework(ctx context.Context, id int64, now time.Time) (*models.Homework, error)
	GetAnswer(ctx context.Context, userID, homeworkID int64) (*models.HomeworkAnswer, error)
	UpsertAnswer(ctx context.Context, userID, homeworkID int64, kind models.AnswerKind, value string) error
}

const (
	MsgEventName     = "Введите название мероприятия"
	MsgUsersCount    = "Введите количество участников"
	MsgPayersCount   = "Введите количество платных участников"
	MsgEventStart    = "Введите дату начала в формате год-месяц-деньTчасы:минуты:секундыZ\nПример: 2024-06-10T12:00:00Z"
	MsgEventPlace    = "Введите место проведения"
	MsgEventCreated  = "Мероприятие создано!"
	MsgHomework      = "Прикрепите файл или отправьте текст задания"
	MsgHomeworkDoc   = "Задание можно прикрепить только файлом-документом."
	MsgAnswerEnd     = "Введите дату окончания приёма ответов в формате год-месяц-деньTчасы:минуты:секундыZ\nПример: 2024-06-10T12:00:00Z"
	MsgHomeworkSaved = "Создано!"
	MsgPayerIDs      = "Укажите через запятую ID пользователей"
	MsgFio           = "Введите ФИО"
	MsgPhone         = "Введите номер телефона в формате +79123456789"
	MsgBadPhone      = "Вы некорректно ввели телефон. Попробуйте ещё раз!"
	MsgRegistered    = "Регистрация окончена!"
	MsgAnswer        = "Отправьте файл или ссылку"
	MsgAnswerSaved   = "Ответ отправлен! Учитываться будет только последний ответ"
	MsgAnswerUpdated = "Ответ обновлён! Предыдущий ответ заменён"
	MsgNotFound      = "Не найдено"
	MsgCancelled     = "Действие отменено"
	MsgBadNumber     = "Нужно целое число не меньше нуля."
	MsgBadDate       = "Не удалось разобрать дату."
	MsgNoIDs         = "Не найдено ни одного ID."
)

// Engine ведёт все пошаговые мастера. Состояние чата передаётся снаружи
// и меняется на месте; сохраняет его вызывающий.
type Engine struct {
	Store Store
	Now   func() time.Time
}

func New(store Store) *Engine {
	return &Engine{Store: store, Now: time.Now}
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Engine) StartCreateEvent(st *session.State) Reply {
	st.Start(session.KindCreateEvent, session.StepEventName)
	return Reply{Text: MsgEventName, Keyboard: KeyboardCancel}
}

func (e *Engine) StartCreateHomework(st *session.State) Reply {
	st.Start(session.KindCreateHomework, session.StepHomeworkContent)
	return Reply{Text: MsgHomework, Keyboard: KeyboardCancel}
}

func (e *Engine) StartPayers(st *session.State, mode session.PayersMode) Reply {
	st.Start(session.KindPayers, session.StepPayerIDs)
	st.Draft.PayersMode = mode
	return Reply{Text: MsgPayerIDs, Keyboard: KeyboardCancel}
}

// StartRegistration начинает с ФИО, а если оно уже есть, то сразу с телефона.
func (e *Engine) StartRegistration(st *session.State, u models.User) Reply {
	if u.Fio == "" {
		st.Start(session.KindRegistration, session.StepFio)
		return Reply{Text: MsgFio}
	}
	st.Start(session.KindRegistration, session.StepPhone)
	return Reply{Text: MsgPhone, Keyboard: KeyboardPhone}
}

func (e *Engine) StartAnswer(st *session.State, homeworkID int64) Reply {
	st.Start(session.KindHomeworkAnswer, session.StepAnswer)
	st.Draft.HomeworkID = homeworkID
	return Reply{Text: MsgAnswer, Keyboard: KeyboardCancel}
}

// Cancel сбрасывает мастер. Регистрацию отменить нельзя.
func (e *Engine) Cancel(st *session.State) (Reply, bool) {
	if !st.Active() || st.Kind == session.KindRegistration {
		return Reply{}, false
	}
	st.Clear()
	return Reply{Text: MsgCancelled}, true
}

// Handle применяет сообщение к текущему шагу.
func (e *Engine) Handle(ctx context.Context, st *session.State, in Input) (Result, error) {
	if !st.Active() {
		return Result{}, nil
	}
	switch st.Kind {
	case session.KindCreateEvent:
		return e.createEvent(ctx, st, in)
	case session.KindCreateHomework:
		return e.createHomework(ctx, st, in)
	case session.KindPayers:
		return e.payers(ctx, st, in)
	case session.KindRegistration:
		return e.registration(ctx, st, in)
	case session.KindHomeworkAnswer:
		return e.answer(ctx, st, in)
	}
	return Result{}, nil
}

func consumed(replies ...Reply) Result {
	return Result{Consumed: true, Replies: replies}
}

func (e *Engine) createEvent(ctx context.Context, st *session.State, in Input) (Result, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return consumed(), nil
	}
	d := &st.Draft
	switch st.Step {
	case session.StepEventName:
		d.Name = text
		st.Step = session.StepEventUsersCount
		return consumed(Reply{Text: MsgUsersCount, Keyboard: KeyboardCancel}), nil

	case session.StepEventUsersCount:
		n, ok := parseCount(text)
		if !ok {
			return consumed(Reply{Text: MsgBadNumber + " " + MsgUsersCount, Keyboard: KeyboardCancel}), nil
		}
		d.UsersCount = &n
		st.Step = session.StepEventPayersCount
		return consumed(Reply{Text: MsgPayersCount, Keyboard: KeyboardCancel}), nil

	case session.StepEventPayersCount:
		n, ok := parseCount(text)
		if !ok {
			return consumed(Reply{Text: MsgBadNumber + " " + MsgPayersCount, Keyboard: KeyboardCancel}), nil
		}
		d.PayersCount = &n
		st.Step = session.StepEventDateStart
		return consumed(Reply{Text: MsgEventStart, Keyboard: KeyboardCancel}), nil

	case session.StepEventDateStart:
		at, err := time.Parse(time.RFC3339, text)
		if err != nil {
			return consumed(Reply{Text: MsgBadDate + " " + MsgEventStart, Keyboard: KeyboardCancel}), nil
		}
		d.DateStart = &at
		st.Step = session.StepEventPlace
		return consumed(Reply{Text: MsgEventPlace, Keyboard: KeyboardCancel}), nil

	case session.StepEventPlace:
		if d.UsersCount == nil || d.PayersCount == nil || d.DateStart == nil {
			return Result{}, fmt.Errorf("create event: incomplete draft at step %s", st.Step)
		}
		ev := models.Event{
			Name:        d.Name,
			DateStart:   *d.DateStart,
			Place:       text,
			UsersCount:  *d.UsersCount,
			PayersCount: *d.PayersCount,
		}
		if _, err := e.Store.CreateEvent(ctx, ev); err != nil {
			return Result{}, fmt.Errorf("create event: %w", err)
		}
		st.Clear()
		return Result{Consumed: true, Replies: []Reply{{Text: MsgEventCreated}}, Committed: session.KindCreateEvent}, nil
	}
	return Result{}, nil
}

func (e *Engine) createHomework(ctx context.Context, st *session.State, in Input) (Result, error) {
	d := &st.Draft
	switch st.Step {
	case session.StepHomeworkContent:
		switch {
		case in.FileID != "" && in.FileKind != FileDocument:
			return consumed(Reply{Text: MsgHomeworkDoc + " " + MsgHomework, Keyboard: KeyboardCancel}), nil
		case in.FileID != "":
			d.FileID, d.Text = in.FileID, ""
		case strings.TrimSpace(in.Text) != "":
			d.Text, d.FileID = strings.TrimSpace(in.Text), ""
		default:
			return consumed(), nil
		}
		st.Step = session.StepHomeworkAnswerEnd
		return consumed(Reply{Text: MsgAnswerEnd, Keyboard: KeyboardCancel}), nil

	case session.StepHomeworkAnswerEnd:
		text := strings.TrimSpace(in.Text)
		if text == "" {
			return consumed(), nil
		}
		end, err := time.Parse(time.RFC3339, text)
		if err != nil {
			return consumed(Reply{Text: MsgBadDate + " " + MsgAnswerEnd, Keyboard: KeyboardCancel}), nil
		}
		hw := models.Homework{AnswerEndDate: end}
		if d.FileID != "" {
			fileID := d.FileID
			hw.FilePath = &fileID
		} else {
			body := d.Text
			hw.Text = &body
		}
		if _, err := e.Store.CreateHomework(ctx, hw); err != nil {
			return Result{}, fmt.Errorf("create homework: %w", err)
		}
		st.Clear()
		return Result{Consumed: true, Replies: []Reply{{Text: MsgHomeworkSaved}}, Committed: session.KindCreateHomework}, nil
	}
	return Result{}, nil
}

func (e *Engine) payers(ctx context.Context, st *session.State, in Input) (Result, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return consumed(), nil
	}
	ids := ParseIDs(text)
	if len(ids) == 0 {
		return consumed(Reply{Text: MsgNoIDs + " " + MsgPayerIDs, Keyboard: KeyboardCancel}), nil
	}
	n, err := e.Store.SetPayers(ctx, ids, st.Draft.PayersMode == session.PayersAdd)
	if err != nil {
		return Result{}, fmt.Errorf("set payers: %w", err)
	}
	st.Clear()
	return Result{
		Consumed:  true,
		Replies:   []Reply{{Text: fmt.Sprintf("Обновлено! Изменено пользователей: %d", n)}},
		Committed: session.KindPayers,
	}, nil
}

func (e *Engine) registration(ctx context.Context, st *session.State, in Input) (Result, error) {
	switch st.Step {
	case session.StepFio:
		fio := strings.TrimSpace(in.Text)
		if fio == "" {
			return consumed(), nil
		}
		if err := e.Store.SetUserFio(ctx, in.UserID, fio); err != nil {
			return Result{}, fmt.Errorf("set fio: %w", err)
		}
		u, err := e.Store.GetUser(ctx, in.UserID)
		if err != nil {
			return Result{}, fmt.Errorf("get user: %w", err)
		}
		if u.Phone != "" {
			st.Clear()
			return Result{Consumed: true, Replies: []Reply{{Text: MsgRegistered, Keyboard: KeyboardUserMenu}}, Committed: session.KindRegistration}, nil
		}
		st.Step = session.StepPhone
		return consumed(Reply{Text: MsgPhone, Keyboard: KeyboardPhone}), nil

	case session.StepPhone:
		var phone string
		switch {
		case in.Contact != nil && (in.Contact.UserID == 0 || in.Contact.UserID == in.UserID):
			phone = contactPhone(in.Contact.Phone)
		case strings.TrimSpace(in.Text) != "":
			phone = strings.TrimSpace(in.Text)
			if !ValidPhone(phone) {
				return consumed(Reply{Text: MsgBadPhone, Keyboard: KeyboardPhone}), nil
			}
		case in.Empty():
			return consumed(), nil
		default:
			return consumed(Reply{Text: MsgBadPhone, Keyboard: KeyboardPhone}), nil
		}
		if err := e.Store.SetUserPhone(ctx, in.UserID, phone); err != nil {
			return Result{}, fmt.Errorf("set phone: %w", err)
		}
		st.Clear()
		return Result{Consumed: true, Replies: []Reply{{Text: MsgRegistered, Keyboard: KeyboardUserMenu}}, Committed: session.KindRegistration}, nil
	}
	return Result{}, nil
}

// answer: файл или ссылка. Прочий текст мастер пропускает дальше по цепочке.
func (e *Engine) answer(ctx context.Context, st *session.State, in Input) (Result, error) {
	var (
		kind  models.AnswerKind
		value string
	)
	switch {
	case in.FileID != "":
		kind, value = models.AnswerFile, in.FileID
	case len(in.Links) > 0:
		kind, value = models.AnswerLink, in.Links[0]
	default:
		return Result{}, nil
	}

	hwID := st.Draft.HomeworkID
	if _, err := e.Store.GetOpenHomework(ctx, hwID, e.now()); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			st.Clear()
			return consumed(Reply{Text: MsgNotFound}), nil
		}
		return Result{}, fmt.Errorf("get homework %d: %w", hwID, err)
	}
	reply := MsgAnswerSaved
	switch _, err := e.Store.GetAnswer(ctx, in.UserID, hwID); {
	case err == nil:
		reply = MsgAnswerUpdated
	case !errors.Is(err, models.ErrNotFound):
		return Result{}, fmt.Errorf("get answer: %w", err)
	}
	if err := e.Store.UpsertAnswer(ctx, in.UserID, hwID, kind, value); err != nil {
		return Result{}, fmt.Errorf("upsert answer: %w", err)
	}
	st.Clear()
	return Result{Consumed: true, Replies: []Reply{{Text: reply}}, Committed: session.KindHomeworkAnswer}, nil
}

func parseCount(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ParseIDs разбирает список id через запятую; мусор пропускается.
func ParseIDs(s string) []int64 {
	var out []int64
	seen := make(map[int64]bool)
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
