package app

import (
	"context"
	"errors"

	"github.com/Spok95/telegram-events-bot/internal/booking"
	"github.com/Spok95/telegram-events-bot/internal/bot/menu"
	"github.com/Spok95/telegram-events-bot/internal/bot/messages"
	"github.com/Spok95/telegram-events-bot/internal/intent"
	"github.com/Spok95/telegram-events-bot/internal/metrics"
	"github.com/Spok95/telegram-events-bot/internal/models"
	"github.com/Spok95/telegram-events-bot/internal/session"
	"github.com/Spok95/telegram-events-bot/internal/tg"
	"github.com/Spok95/telegram-events-bot/internal/wizard"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const msgFinishRegistration = "Сначала завершите регистрацию"

func (d *Dispatcher) userRoutes() []Route {
	return []Route{
		{Name: "ensure_user", Handle: d.ensureUser},
		{Name: "registration", Match: inRegistration, Handle: d.registration},
		{Name: "gate", Match: unregistered, Handle: handled(d.gate)},

		{Name: "start", Match: command("start"), Handle: handled(d.start)},
		{Name: "cancel", Match: isCancel, Handle: d.cancel},
		{Name: "answer", Match: wizardMessage, Handle: d.applyWizard},

		{Name: "events", Match: hears(menu.BtnEvents), Handle: handled(d.eventsFirstPage)},
		{Name: "registered", Match: hears(menu.BtnRegisteredEvents), Handle: handled(d.registeredEvents)},
		{Name: "homeworks", Match: hears(menu.BtnHomeworks), Handle: handled(d.homeworksFirstPage)},

		{Name: "events_page", Match: callback(intent.EventsSetPage), Handle: handled(d.eventsSetPage)},
		{Name: "register", Match: callback(intent.RegisterToEvent), Handle: handled(d.register)},
		{Name: "unregister", Match: callback(intent.DeleteRegisterToEvent), Handle: handled(d.unregister)},
		{Name: "homeworks_page", Match: callback(intent.HomeWorksSetPage), Handle: handled(d.homeworksSetPage)},
		{Name: "homework_show", Match: callback(intent.ShowHomeWork), Handle: handled(d.showHomework)},
		{Name: "homework_answer", Match: callback(intent.SendAnswerHomeWork), Handle: handled(d.startAnswer)},
	}
}

// ensureUser заводит пользователя при первом обращении и обновляет ник. Апдейт идёт дальше.
func (d *Dispatcher) ensureUser(ctx context.Context, u *Update) (bool, error) {
	usr, err := d.store.EnsureUser(ctx, u.From.ID, u.From.UserName)
	if err != nil {
		return true, err
	}
	u.User = usr
	return false, nil
}

func inRegistration(u *Update) bool {
	return u.Session != nil && u.Session.In(session.KindRegistration)
}

func unregistered(u *Update) bool {
	return u.User == nil || !u.User.Registered()
}

// registration поглощает всё, пока идёт мастер регистрации. Нажатия кнопок только отвечаются.
func (d *Dispatcher) registration(ctx context.Context, u *Update) (bool, error) {
	if u.Msg == nil {
		return true, d.answer(u, msgFinishRegistration)
	}
	_, err := d.applyWizard(ctx, u)
	return true, err
}

// gate запускает регистрацию для пользователя без ФИО или телефона.
func (d *Dispatcher) gate(_ context.Context, u *Update) error {
	var usr models.User
	if u.User != nil {
		usr = *u.User
	}
	r := d.wizard.StartRegistration(u.Session, usr)
	if u.CB != nil {
		if err := d.answer(u, msgFinishRegistration); err != nil {
			return err
		}
	}
	return d.sendReplies(u.ChatID, []wizard.Reply{r})
}

func (d *Dispatcher) registeredEvents(ctx context.Context, u *Update) error {
	list, err := d.store.ListUserUpcomingEvents(ctx, u.User.ID, d.now())
	if err != nil {
		return err
	}
	return d.sendView(u.ChatID, messages.Registered(list, d.cfg.Location))
}

func registrationAnswer(o booking.Outcome) string {
	switch o {
	case booking.Registered:
		return "Вы успешно записаны!"
	case booking.AlreadyRegistered:
		return "Вы уже записаны!"
	case booking.Full:
		return "Нет мест!"
	}
	return msgNotFound
}

func (d *Dispatcher) register(ctx context.Context, u *Update) error {
	outcome, err := d.store.Register(ctx, u.User.ID, u.Intent.Arg)
	if errors.Is(err, models.ErrNotFound) {
		outcome, err = booking.NotFound, nil
	}
	if err != nil {
		return err
	}
	metrics.Registrations.WithLabelValues(outcome.String()).Inc()
	return d.answer(u, registrationAnswer(outcome))
}

// unregister отписывает и перерисовывает список записей на месте.
func (d *Dispatcher) unregister(ctx context.Context, u *Update) error {
	if err := d.store.Unregister(ctx, u.User.ID, u.Intent.Arg); err != nil {
		return err
	}
	list, err := d.store.ListUserUpcomingEvents(ctx, u.User.ID, d.now())
	if err != nil {
		return err
	}
	if err := d.editView(u, messages.Registered(list, d.cfg.Location)); err != nil {
		return err
	}
	return d.answer(u, "Успешно!")
}

// showHomework отправляет текст или файл задания с кнопкой ответа.
func (d *Dispatcher) showHomework(ctx context.Context, u *Update) error {
	h, err := d.store.GetOpenHomework(ctx, u.Intent.Arg, d.now())
	if errors.Is(err, models.ErrNotFound) {
		return d.answer(u, msgNotFound)
	}
	if err != nil {
		return err
	}
	kb := messages.HomeworkAnswerKeyboard(*h, d.cfg.Location)
	switch {
	case h.FilePath != nil:
		doc := tgbotapi.NewDocument(u.ChatID, tgbotapi.FileID(*h.FilePath))
		doc.ReplyMarkup = kb
		if _, err := tg.Send(d.bot, doc); err != nil {
			return err
		}
	case h.Text != nil:
		if err := d.reply(u.ChatID, *h.Text, kb); err != nil {
			return err
		}
	}
	return d.answer(u, messages.HomeworkTitle(*h, d.cfg.Location))
}

func (d *Dispatcher) startAnswer(ctx context.Context, u *Update) error {
	_, err := d.store.GetOpenHomework(ctx, u.Intent.Arg, d.now())
	if errors.Is(err, models.ErrNotFound) {
		return d.answer(u, msgNotFound)
	}
	if err != nil {
		return err
	}
	r := d.wizard.StartAnswer(u.Session, u.Intent.Arg)
	if err := d.answer(u, ""); err != nil {
		return err
	}
	return d.sendReplies(u.ChatID, []wizard.Reply{r})
}
