package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/Spok95/telegram-events-bot/internal/bot/menu"
	"github.com/Spok95/telegram-events-bot/internal/bot/messages"
	"github.com/Spok95/telegram-events-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/telegram-events-bot/internal/ctxutil"
	"github.com/Spok95/telegram-events-bot/internal/export"
	"github.com/Spok95/telegram-events-bot/internal/logging"
	"github.com/Spok95/telegram-events-bot/internal/metrics"
	"github.com/Spok95/telegram-events-bot/internal/observability"
	"github.com/Spok95/telegram-events-bot/internal/tg"
	"github.com/Spok95/telegram-events-bot/internal/wizard"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (d *Dispatcher) reply(chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := tg.Send(d.bot, msg)
	return err
}

func (d *Dispatcher) sendView(chatID int64, v messages.View) error {
	msg := tgbotapi.NewMessage(chatID, v.Text)
	msg.ParseMode = tgbotapi.ModeHTML
	if v.Keyboard != nil {
		msg.ReplyMarkup = *v.Keyboard
	}
	_, err := tg.Send(d.bot, msg)
	return err
}

// editView перерисовывает сообщение с кнопкой; без исходного сообщения шлёт новое.
func (d *Dispatcher) editView(u *Update, v messages.View) error {
	if u.CB == nil || u.CB.Message == nil {
		return d.sendView(u.ChatID, v)
	}
	edit := tgbotapi.NewEditMessageText(u.ChatID, u.CB.Message.MessageID, v.Text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.ReplyMarkup = v.Keyboard
	_, err := tg.Send(d.bot, edit)
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}

func (d *Dispatcher) deleteMessage(u *Update) error {
	if u.CB == nil || u.CB.Message == nil {
		return nil
	}
	_, err := tg.Request(d.bot, tgbotapi.NewDeleteMessage(u.ChatID, u.CB.Message.MessageID))
	return err
}

func (d *Dispatcher) answer(u *Update, text string) error {
	return tg.Answer(d.bot, u.CB, text)
}

func (d *Dispatcher) sendDocument(chatID int64, doc export.Document, markup any) error {
	msg := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: doc.Name, Bytes: doc.Data})
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := tg.Send(d.bot, msg)
	return err
}

// sendReplies отправляет ответы мастера с нужной клавиатурой.
func (d *Dispatcher) sendReplies(chatID int64, replies []wizard.Reply) error {
	for _, r := range replies {
		var markup any
		switch r.Keyboard {
		case wizard.KeyboardCancel:
			markup = menu.CancelMenu()
		case wizard.KeyboardPhone:
			markup = menu.PhoneMenu()
		case wizard.KeyboardUserMenu:
			markup = menu.GetMenu(false)
		}
		if err := d.reply(chatID, r.Text, markup); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) applyWizard(ctx context.Context, u *Update) (bool, error) {
	res, err := d.wizard.Handle(ctx, u.Session, inputFromMessage(u.Msg))
	if err != nil {
		return true, err
	}
	if res.Committed != "" {
		metrics.WizardCommits.WithLabelValues(string(res.Committed)).Inc()
		logging.FromContext(ctx, d.log).Info("wizard committed", zap.String("wizard", string(res.Committed)))
	}
	if !res.Consumed {
		return false, nil
	}
	return true, d.sendReplies(u.ChatID, res.Replies)
}

const exportTimeout = 2 * time.Minute

var errExportBusy = errors.New("export already running")

// exportAsync собирает выгрузку вне очереди чата; вторая выгрузка в том же чате
// до окончания первой отклоняется.
func (d *Dispatcher) exportAsync(ctx context.Context, chatID int64, key string, build func(ctx context.Context) (export.Document, any, error)) error {
	if !fsmutil.SetPending(chatID, key) {
		return errExportBusy
	}
	bg := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer fsmutil.ClearPending(chatID, key)

		ctx, cancel := ctxutil.WithTimeout(bg, exportTimeout)
		defer cancel()
		doc, markup, err := build(ctx)
		if err == nil {
			err = d.sendDocument(chatID, doc, markup)
		}
		if err != nil {
			err = fmt.Errorf("export %s: %w", key, err)
			metrics.HandlerErrors.Inc()
			logging.FromContext(ctx, d.log).Error("export", zap.Error(err))
			observability.CaptureCtx(ctx, err)
			_ = d.reply(chatID, "Не удалось сформировать файл, попробуйте позже", nil)
		}
	}()
	return nil
}

// inputFromMessage переводит сообщение Telegram во ввод мастера.
func inputFromMessage(m *tgbotapi.Message) wizard.Input {
	if m == nil {
		return wizard.Input{}
	}
	in := wizard.Input{Text: m.Text}
	if m.From != nil {
		in.UserID = m.From.ID
	}
	switch {
	case m.Document != nil:
		in.FileID, in.FileKind = m.Document.FileID, wizard.FileDocument
	case len(m.Photo) > 0:
		in.FileID, in.FileKind = m.Photo[len(m.Photo)-1].FileID, wizard.FilePhoto
	case m.Video != nil:
		in.FileID, in.FileKind = m.Video.FileID, wizard.FileVideo
	case m.Audio != nil:
		in.FileID, in.FileKind = m.Audio.FileID, wizard.FileAudio
	case m.Voice != nil:
		in.FileID, in.FileKind = m.Voice.FileID, wizard.FileVoice
	}
	if m.Contact != nil {
		in.Contact = &wizard.Contact{UserID: m.Contact.UserID, Phone: m.Contact.PhoneNumber}
	}
	in.Links = extractLinks(m.Text, m.Entities)
	return in
}

// extractLinks берёт ссылки из сущностей сообщения, а если их нет: ищет http(s)-адреса в тексте.
func extractLinks(text string, entities []tgbotapi.MessageEntity) []string {
	var out []string
	if len(entities) > 0 {
		units := utf16.Encode([]rune(text))
		for _, e := range entities {
			switch {
			case e.IsTextLink() && e.URL != "":
				out = append(out, e.URL)
			case e.IsURL():
				end := e.Offset + e.Length
				if e.Offset < 0 || end > len(units) {
					continue
				}
				out = append(out, string(utf16.Decode(units[e.Offset:end])))
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	for _, f := range strings.Fields(text) {
		if isHTTPURL(f) {
			out = append(out, f)
		}
	}
	return out
}

func isHTTPURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
