package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Spok95/telegram-events-bot/internal/bot/menu"
	"github.com/Spok95/telegram-events-bot/internal/bot/messages"
	"github.com/Spok95/telegram-events-bot/internal/db"
	"github.com/Spok95/telegram-events-bot/internal/export"
	"github.com/Spok95/telegram-events-bot/internal/intent"
	"github.com/Spok95/telegram-events-bot/internal/models"
	"github.com/Spok95/telegram-events-bot/internal/session"
	"github.com/Spok95/telegram-events-bot/internal/wizard"
)

const (
	msgNotFound   = "Не найдено"
	msgExportBusy = "Выгрузка уже формируется, подождите"
)

func (d *Dispatcher) adminRoutes() []Route {
	return []Route{
		{Name: "start", Match: command("start"), Handle: handled(d.start)},
		{Name: "cancel", Match: isCancel, Handle: d.cancel},
		{Name: "wizard", Match: wizardMessage, Handle: d.applyWizard},

		{Name: "events", Match: hears(menu.BtnEvents), Handle: handled(d.eventsFirstPage)},
		{Name: "homeworks", Match: hears(menu.BtnHomeworks), Handle: handled(d.homeworksFirstPage)},
		{Name: "users", Match: hears(menu.BtnUsers), Handle: handled(d.exportUsers)},

		{Name: "create_event", Match: callback(intent.CreateEvent), Handle: handled(d.createEvent)},
		{Name: "events_page", Match: callback(intent.EventsSetPage), Handle: handled(d.eventsSetPage)},
		{Name: "event_manage", Match: callback(intent.EventsManage), Handle: handled(d.eventManage)},
		{Name: "event_delete", Match: callback(intent.DeleteEvent), Handle: handled(d.deleteEvent)},
		{Name: "event_roster", Match: callback(intent.ShowUsersOnEvent), Handle: handled(d.exportRoster)},
		{Name: "create_homework", Match: callback(intent.CreateHomeWork), Handle: handled(d.createHomework)},
		{Name: "homeworks_page", Match: callback(intent.HomeWorksSetPage), Handle: handled(d.homeworksSetPage)},
		{Name: "homework_manage", Match: callback(intent.HomeWorksManage), Handle: handled(d.homeworkManage)},
		{Name: "homework_links", Match: callback(intent.LinkTypeHomeWork), Handle: handled(d.exportAnswers(models.AnswerLink))},
		{Name: "homework_files", Match: callback(intent.FileTypeHomeWork), Handle: handled(d.exportAnswers(models.AnswerFile))},
		{Name: "homework_delete", Match: callback(intent.DeleteHomeWork), Handle: handled(d.deleteHomework)},
		{Name: "make_payers", Match: callback(intent.MakePayers), Handle: handled(d.startPayers(session.PayersAdd))},
		{Name: "delete_payers", Match: callback(intent.DeletePayers), Handle: handled(d.startPayers(session.PayersRemove))},
	}
}

func (d *Dispatcher) createEvent(_ context.Context, u *Update) error {
	r := d.wizard.StartCreateEvent(u.Session)
	if err := d.answer(u, "Начало создания мероприятия"); err != nil {
		return err
	}
	return d.sendReplies(u.ChatID, []wizard.Reply{r})
}

func (d *Dispatcher) createHomework(_ context.Context, u *Update) error {
	r := d.wizard.StartCreateHomework(u.Session)
	if err := d.answer(u, "Начало создания ДЗ"); err != nil {
		return err
	}
	return d.sendReplies(u.ChatID, []wizard.Reply{r})
}

func (d *Dispatcher) startPayers(mode session.PayersMode) func(ctx context.Context, u *Update) error {
	return func(_ context.Context, u *Update) error {
		r := d.wizard.StartPayers(u.Session, mode)
		if err := d.answer(u, ""); err != nil {
			return err
		}
		return d.sendReplies(u.ChatID, []wizard.Reply{r})
	}
}

func (d *Dispatcher) eventManage(ctx context.Context, u *Update) error {
	e, err := d.store.GetEvent(ctx, u.Intent.Arg)
	if errors.Is(err, models.ErrNotFound) {
		return d.answer(u, msgNotFound)
	}
	if err != nil {
		return err
	}
	if err := d.sendView(u.ChatID, messages.EventManage(*e, d.cfg.Location)); err != nil {
		return err
	}
	return d.answer(u, "Выберите действие")
}

func (d *Dispatcher) deleteEvent(ctx context.Context, u *Update) error {
	err := d.store.DeleteEvent(ctx, u.Intent.Arg)
	if errors.Is(err, models.ErrNotFound) {
		return d.answer(u, msgNotFound)
	}
	if err != nil {
		return err
	}
	if err := d.deleteMessage(u); err != nil {
		return err
	}
	return d.answer(u, "Удалено")
}

func (d *Dispatcher) homeworkManage(ctx context.Context, u *Update) error {
	h, err := d.store.GetHomework(ctx, u.Intent.Arg)
	if errors.Is(err, models.ErrNotFound) {
		return d.answer(u, msgNotFound)
	}
	if err != nil {
		return err
	}
	if err := d.sendView(u.ChatID, messages.HomeworkManage(*h, d.cfg.Location)); err != nil {
		return err
	}
	return d.answer(u, "Выберите тип")
}

func (d *Dispatcher) deleteHomework(ctx context.Context, u *Update) error {
	err := d.store.DeleteHomework(ctx, u.Intent.Arg)
	if errors.Is(err, models.ErrNotFound) {
		return d.answer(u, msgNotFound)
	}
	if err != nil {
		return err
	}
	if err := d.deleteMessage(u); err != nil {
		return err
	}
	return d.answer(u, "Удалено")
}

func (d *Dispatcher) exportUsers(ctx context.Context, u *Update) error {
	err := d.exportAsync(ctx, u.ChatID, "export:users", func(ctx context.Context) (export.Document, any, error) {
		users, err := d.store.ListUsers(ctx)
		if err != nil {
			return export.Document{}, nil, err
		}
		doc, err := export.Users(users, d.now(), d.cfg.Location)
		return doc, menu.PayersMenu(), err
	})
	if errors.Is(err, errExportBusy) {
		return d.reply(u.ChatID, msgExportBusy, nil)
	}
	return err
}

func (d *Dispatcher) exportRoster(ctx context.Context, u *Update) error {
	e, err := d.store.GetEvent(ctx, u.Intent.Arg)
	if errors.Is(err, models.ErrNotFound) {
		return d.answer(u, msgNotFound)
	}
	if err != nil {
		return err
	}
	key := fmt.Sprintf("export:roster:%d", e.ID)
	err = d.exportAsync(ctx, u.ChatID, key, func(ctx context.Context) (export.Document, any, error) {
		users, err := d.store.EventRoster(ctx, e.ID)
		if err != nil {
			return export.Document{}, nil, err
		}
		doc, err := export.Roster(*e, users, d.cfg.Location)
		return doc, nil, err
	})
	if errors.Is(err, errExportBusy) {
		return d.answer(u, msgExportBusy)
	}
	if err != nil {
		return err
	}
	return d.answer(u, "Вам будет отправлен файл")
}

// exportAnswers выгружает ответы на задание. Файлы превращаются в ссылки Bot API.
func (d *Dispatcher) exportAnswers(kind models.AnswerKind) func(ctx context.Context, u *Update) error {
	return func(ctx context.Context, u *Update) error {
		h, err := d.store.GetHomework(ctx, u.Intent.Arg)
		if errors.Is(err, models.ErrNotFound) {
			return d.answer(u, msgNotFound)
		}
		if err != nil {
			return err
		}
		key := fmt.Sprintf("export:answers:%s:%d", kind, h.ID)
		err = d.exportAsync(ctx, u.ChatID, key, func(ctx context.Context) (export.Document, any, error) {
			rows, err := d.store.ListAnswers(ctx, h.ID, kind)
			if err != nil {
				return export.Document{}, nil, err
			}
			var doc export.Document
			if kind == models.AnswerFile {
				doc, err = export.HomeworkFiles(ctx, *h, rows, d.bot, d.log, d.cfg.Location)
			} else {
				doc, err = export.HomeworkLinks(*h, rows, d.cfg.Location)
			}
			return doc, nil, err
		})
		if errors.Is(err, errExportBusy) {
			return d.answer(u, msgExportBusy)
		}
		if err != nil {
			return err
		}
		return d.answer(u, "Файл отправлен")
	}
}

// eventsPage рисует страницу мероприятий; участникам только предстоящие.
func (d *Dispatcher) eventsPage(ctx context.Context, u *Update, page int) (messages.View, error) {
	f := db.EventFilter{Upcoming: !u.IsAdmin, Now: d.now()}
	total, err := d.store.CountEvents(ctx, f)
	if err != nil {
		return messages.View{}, err
	}
	page = messages.ClampPage(page, messages.PageCount(total, messages.EventsPageSize))
	list, err := d.store.ListEvents(ctx, f, db.Page{
		Limit:  messages.EventsPageSize,
		Offset: messages.Offset(page, messages.EventsPageSize),
	})
	if err != nil {
		return messages.View{}, err
	}
	return messages.Events(list, page, total, u.IsAdmin, d.cfg.Location), nil
}

func (d *Dispatcher) homeworksPage(ctx context.Context, u *Update, page int) (messages.View, error) {
	f := db.HomeworkFilter{Open: !u.IsAdmin, Now: d.now()}
	total, err := d.store.CountHomeworks(ctx, f)
	if err != nil {
		return messages.View{}, err
	}
	page = messages.ClampPage(page, messages.PageCount(total, messages.HomeworksPageSize))
	list, err := d.store.ListHomeworks(ctx, f, db.Page{
		Limit:  messages.HomeworksPageSize,
		Offset: messages.Offset(page, messages.HomeworksPageSize),
	})
	if err != nil {
		return messages.View{}, err
	}
	return messages.Homeworks(list, page, total, u.IsAdmin, d.cfg.Location), nil
}

func (d *Dispatcher) eventsFirstPage(ctx context.Context, u *Update) error {
	v, err := d.eventsPage(ctx, u, 1)
	if err != nil {
		return err
	}
	return d.sendView(u.ChatID, v)
}

func (d *Dispatcher) homeworksFirstPage(ctx context.Context, u *Update) error {
	v, err := d.homeworksPage(ctx, u, 1)
	if err != nil {
		return err
	}
	return d.sendView(u.ChatID, v)
}

func (d *Dispatcher) eventsSetPage(ctx context.Context, u *Update) error {
	v, err := d.eventsPage(ctx, u, int(u.Intent.Arg))
	if err != nil {
		return err
	}
	if err := d.editView(u, v); err != nil {
		return err
	}
	return d.answer(u, "")
}

func (d *Dispatcher) homeworksSetPage(ctx context.Context, u *Update) error {
	v, err := d.homeworksPage(ctx, u, int(u.Intent.Arg))
	if err != nil {
		return err
	}
	if err := d.editView(u, v); err != nil {
		return err
	}
	return d.answer(u, "")
}
