// Package messages собирает тексты и inline-клавиатуры списков.
package messages

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Spok95/telegram-events-bot/internal/bot/menu"
	"github.com/Spok95/telegram-events-bot/internal/intent"
	"github.com/Spok95/telegram-events-bot/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	EventsPageSize    = 5
	HomeworksPageSize = 1

	NoEvents     = "Мероприятий нет!"
	NoHomeworks  = "Домашних заданий ещё нет!"
	NoRegistered = "Вы ещё никуда не записаны!"

	dateLayout     = "02.01.2006"
	dateTimeLayout = "02.01.2006, 15:04"
)

// View: текст сообщения (HTML) и клавиатура к нему. Keyboard может быть nil.
type View struct {
	Text     string
	Keyboard *tgbotapi.InlineKeyboardMarkup
}

// PageCount: число страниц, не меньше одной.
func PageCount(n, size int) int {
	if size <= 0 || n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// ClampPage приводит номер страницы к [1, pages].
func ClampPage(page, pages int) int {
	if page < 1 {
		return 1
	}
	if page > pages {
		return pages
	}
	return page
}

// Offset первой записи страницы.
func Offset(page, size int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * size
}

// NavRow: кнопки листания. На единственной странице кнопок нет.
func NavRow(a intent.Action, page, pages int) []tgbotapi.InlineKeyboardButton {
	btn := func(label string, p int) tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardButtonData(label, intent.Data(a, int64(p)))
	}
	switch {
	case pages <= 1:
		return nil
	case page == 1:
		return tgbotapi.NewInlineKeyboardRow(btn("Следующая страница", 2))
	case page == pages:
		return tgbotapi.NewInlineKeyboardRow(btn("Предыдущая страница", page-1))
	default:
		return tgbotapi.NewInlineKeyboardRow(
			btn("<", page-1),
			btn("первая", 1),
			btn("последняя", pages),
			btn(">", page+1),
		)
	}
}

func markup(rows [][]tgbotapi.InlineKeyboardButton) *tgbotapi.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func fmtDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}

func fmtDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateTimeLayout)
}

func eventBlock(b *strings.Builder, e models.Event, n int, loc *time.Location) {
	fmt.Fprintf(b, "<b>%s</b> (#%d)\n%s\nМесто: %s\nМаксимальное кол-во участников: %d\nМаксимальное кол-во платных участников: %d\n\n",
		html.EscapeString(e.Name), n, fmtDateTime(e.DateStart, loc), html.EscapeString(e.Place), e.UsersCount, e.PayersCount)
}

// Events: страница мероприятий. total показывает, сколько всего записей под фильтром.
func Events(events []models.Event, page, total int, isAdmin bool, loc *time.Location) View {
	pages := PageCount(total, EventsPageSize)
	var rows [][]tgbotapi.InlineKeyboardButton
	if isAdmin {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(menu.BtnCreateEvent, intent.Data(intent.CreateEvent, 0)),
		))
	}
	if len(events) == 0 {
		return View{Text: NoEvents, Keyboard: markup(rows)}
	}

	var b strings.Builder
	b.WriteString("Список мероприятий (Кнопками выберите действие)\n\n")
	for i, e := range events {
		eventBlock(&b, e, i+1, loc)
		if isAdmin {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Управлять %d", i+1), intent.Data(intent.EventsManage, e.ID)),
			))
		} else {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Записаться на #%d", i+1), intent.Data(intent.RegisterToEvent, e.ID)),
			))
		}
	}
	fmt.Fprintf(&b, "Страница %d из %d", page, pages)
	if nav := NavRow(intent.EventsSetPage, page, pages); nav != nil {
		rows = append(rows, nav)
	}
	return View{Text: b.String(), Keyboard: markup(rows)}
}

// EventManage: карточка мероприятия для админа.
func EventManage(e models.Event, loc *time.Location) View {
	text := fmt.Sprintf("<b>%s</b> (id: %d)\n%s\nМесто: %s\nКол-во участников: %d\nКол-во платных участников: %d\n\nВыберите действие",
		html.EscapeString(e.Name), e.ID, fmtDateTime(e.DateStart, loc), html.EscapeString(e.Place), e.UsersCount, e.PayersCount)
	return View{Text: text, Keyboard: markup([][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Удалить", intent.Data(intent.DeleteEvent, e.ID))),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Показать участников", intent.Data(intent.ShowUsersOnEvent, e.ID))),
	})}
}

// Registered: предстоящие записи пользователя с кнопками отписки.
func Registered(events []models.Event, loc *time.Location) View {
	if len(events) == 0 {
		return View{Text: NoRegistered}
	}
	var b strings.Builder
	b.WriteString("Список мероприятий (Кнопками выберите действие)\n\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, e := range events {
		eventBlock(&b, e, i+1, loc)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Отписаться от #%d", i+1), intent.Data(intent.DeleteRegisterToEvent, e.ID)),
		))
	}
	return View{Text: strings.TrimRight(b.String(), "\n"), Keyboard: markup(rows)}
}

// Homeworks: страница домашних заданий.
func Homeworks(list []models.Homework, page, total int, isAdmin bool, loc *time.Location) View {
	pages := PageCount(total, HomeworksPageSize)
	var rows [][]tgbotapi.InlineKeyboardButton
	if isAdmin {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(menu.BtnCreateHomework, intent.Data(intent.CreateHomeWork, 0)),
		))
	}
	if len(list) == 0 {
		return View{Text: NoHomeworks, Keyboard: markup(rows)}
	}

	var b strings.Builder
	b.WriteString("Список домашних заданий (Кнопками выберите задание)\n\n")
	for i, h := range list {
		fmt.Fprintf(&b, "<b>Задание от %s</b> (#%d)\nОтветы принимаются до %s\n\n",
			fmtDate(h.CreatedAt, loc), i+1, fmtDateTime(h.AnswerEndDate, loc))
		if isAdmin {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Управлять %d", i+1), intent.Data(intent.HomeWorksManage, h.ID)),
			))
		} else {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Посмотреть #%d", i+1), intent.Data(intent.ShowHomeWork, h.ID)),
			))
		}
	}
	fmt.Fprintf(&b, "Страница %d из %d", page, pages)
	if nav := NavRow(intent.HomeWorksSetPage, page, pages); nav != nil {
		rows = append(rows, nav)
	}
	return View{Text: b.String(), Keyboard: markup(rows)}
}

// HomeworkManage: выбор выгрузки ответов и удаление задания.
func HomeworkManage(h models.Homework, loc *time.Location) View {
	text := fmt.Sprintf("Задание от %s, ответы до %s\nВыберите тип:", fmtDate(h.CreatedAt, loc), fmtDateTime(h.AnswerEndDate, loc))
	return View{Text: text, Keyboard: markup([][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Ссылки", intent.Data(intent.LinkTypeHomeWork, h.ID)),
			tgbotapi.NewInlineKeyboardButtonData("Файлы", intent.Data(intent.FileTypeHomeWork, h.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Удалить", intent.Data(intent.DeleteHomeWork, h.ID)),
		),
	})}
}

// HomeworkTitle: "Задание от DD.MM.YYYY".
func HomeworkTitle(h models.Homework, loc *time.Location) string {
	return "Задание от " + fmtDate(h.CreatedAt, loc)
}

// HomeworkAnswerKeyboard: кнопка "Выполнить" под текстом или файлом задания.
func HomeworkAnswerKeyboard(h models.Homework, loc *time.Location) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Выполнить (%s)", fmtDate(h.CreatedAt, loc)), intent.Data(intent.SendAnswerHomeWork, h.ID)),
	))
}
