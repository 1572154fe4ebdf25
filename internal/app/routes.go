package app

import (
	"context"
	"fmt"

	"github.com/Spok95/telegram-events-bot/internal/bot/menu"
	"github.com/Spok95/telegram-events-bot/internal/bot/messages"
	"github.com/Spok95/telegram-events-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/telegram-events-bot/internal/intent"
)

const MsgWelcome = "Добро пожаловать!"

func command(name string) func(u *Update) bool {
	return func(u *Update) bool {
		return u.Msg != nil && u.Msg.IsCommand() && u.Msg.Command() == name
	}
}

// hears: нажатие reply-кнопки (точное совпадение текста).
func hears(label string) func(u *Update) bool {
	return func(u *Update) bool {
		return u.Msg != nil && u.Msg.Text == label
	}
}

func callback(a intent.Action) func(u *Update) bool {
	return func(u *Update) bool {
		return u.CB != nil && u.HasIntent && u.Intent.Action == a
	}
}

func wizardMessage(u *Update) bool {
	return u.Msg != nil && u.Session != nil && u.Session.Active()
}

// handled оборачивает обработчик, который всегда поглощает апдейт.
func handled(fn func(ctx context.Context, u *Update) error) func(ctx context.Context, u *Update) (bool, error) {
	return func(ctx context.Context, u *Update) (bool, error) {
		return true, fn(ctx, u)
	}
}

func (d *Dispatcher) globalRoutes() []Route {
	return []Route{
		{Name: "id", Match: command("id"), Handle: handled(d.showID)},
	}
}

func (d *Dispatcher) showID(_ context.Context, u *Update) error {
	return d.sendView(u.ChatID, messages.View{Text: fmt.Sprintf("Ваш ID: <code>%d</code>", u.From.ID)})
}

func (d *Dispatcher) start(_ context.Context, u *Update) error {
	return d.reply(u.ChatID, MsgWelcome, menu.GetMenu(u.IsAdmin))
}

func isCancel(u *Update) bool {
	if u.CB != nil {
		return u.HasIntent && u.Intent.Action == intent.Cancel
	}
	return u.Msg != nil && fsmutil.IsCancelText(u.Msg.Text)
}

// cancel сбрасывает активный мастер. Текст "отмена" без мастера идёт дальше по цепочке.
func (d *Dispatcher) cancel(_ context.Context, u *Update) (bool, error) {
	r, ok := d.wizard.Cancel(u.Session)
	if u.CB != nil {
		if !ok {
			return true, d.answer(u, "Нечего отменять")
		}
		if err := d.answer(u, ""); err != nil {
			return true, err
		}
		return true, d.reply(u.ChatID, r.Text, menu.GetMenu(u.IsAdmin))
	}
	if !ok {
		return false, nil
	}
	return true, d.reply(u.ChatID, r.Text, menu.GetMenu(u.IsAdmin))
}

