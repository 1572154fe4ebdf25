package tg

import (
	"errors"
	"testing"

	"github.com/Spok95/telegram-events-bot/internal/metrics"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIsSystemErr(t *testing.T) {
	cases := map[string]bool{
		"Too Many Requests: retry after 5":                   true,
		"Post \"https://api.telegram.org\": 502 Bad Gateway": true,
		"context deadline exceeded (Client.Timeout) timeout": true,
		"Bad Request: message is not modified":               false,
		"Bad Request: chat not found":                        false,
		"Forbidden: bot was blocked by the user":             false,
	}
	for msg, want := range cases {
		if got := isSystemErr(errors.New(msg)); got != want {
			t.Errorf("isSystemErr(%q) = %v, ожидали %v", msg, got, want)
		}
	}
	if isSystemErr(nil) {
		t.Error("nil не системная ошибка")
	}
}

type failingBot struct{ err error }

func (b failingBot) Send(tgbotapi.Chattable) (tgbotapi.Message, error) { return tgbotapi.Message{}, b.err }

func (b failingBot) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) { return nil, b.err }

func (b failingBot) GetFileDirectURL(string) (string, error) { return "", b.err }

func TestSendDoesNotCountHandlerErrors(t *testing.T) {
	before := testutil.ToFloat64(metrics.HandlerErrors)
	bot := failingBot{err: errors.New("Bad Request: message is not modified")}

	if _, err := Send(bot, tgbotapi.NewMessage(1, "x")); err == nil {
		t.Fatal("ошибка Send должна возвращаться")
	}
	if _, err := Request(bot, tgbotapi.NewDeleteMessage(1, 2)); err == nil {
		t.Fatal("ошибка Request должна возвращаться")
	}
	if got := testutil.ToFloat64(metrics.HandlerErrors); got != before {
		t.Fatalf("HandlerErrors изменился: %v -> %v", before, got)
	}
}
