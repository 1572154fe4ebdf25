package menu

import (
	"github.com/Spok95/telegram-events-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/telegram-events-bot/internal/intent"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Надписи reply-кнопок; роутер сравнивает текст сообщения с ними.
const (
	BtnEvents           = "Мероприятия"
	BtnRegisteredEvents = "Мои записи"
	BtnHomeworks        = "Домашние задания"
	BtnUsers            = "Пользователи"
	BtnSendContact      = "Отправить контакт"

	BtnCreateEvent    = "Создать мероприятие"
	BtnCreateHomework = "Создать ДЗ"
	BtnMakePayers     = "Добавить платников"
	BtnDeletePayers   = "Удалить платников"
)

// GetMenu возвращает главное меню для админа или участника.
func GetMenu(isAdmin bool) tgbotapi.ReplyKeyboardMarkup {
	if isAdmin {
		return adminMenu()
	}
	return userMenu()
}

func adminMenu() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnEvents),
			tgbotapi.NewKeyboardButton(BtnHomeworks),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnUsers),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func userMenu() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnEvents),
			tgbotapi.NewKeyboardButton(BtnRegisteredEvents),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnHomeworks),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// PhoneMenu: кнопка "поделиться контактом" на шаге телефона.
func PhoneMenu() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact(BtnSendContact),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// PayersMenu прикладывается к выгрузке пользователей.
func PayersMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(BtnMakePayers, intent.Data(intent.MakePayers, 0)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(BtnDeletePayers, intent.Data(intent.DeletePayers, 0)),
		),
	)
}

func CancelMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(fsmutil.CancelRow(intent.Data(intent.Cancel, 0)))
}
