package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Spok95/telegram-events-bot/internal/config"
	"github.com/Spok95/telegram-events-bot/internal/ctxutil"
	"github.com/Spok95/telegram-events-bot/internal/intent"
	"github.com/Spok95/telegram-events-bot/internal/logging"
	"github.com/Spok95/telegram-events-bot/internal/metrics"
	"github.com/Spok95/telegram-events-bot/internal/models"
	"github.com/Spok95/telegram-events-bot/internal/observability"
	"github.com/Spok95/telegram-events-bot/internal/session"
	"github.com/Spok95/telegram-events-bot/internal/tg"
	"github.com/Spok95/telegram-events-bot/internal/wizard"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Update: входящий апдейт, разобранный один раз перед маршрутизацией.
type Update struct {
	ChatID    int64
	From      *tgbotapi.User
	Msg       *tgbotapi.Message
	CB        *tgbotapi.CallbackQuery
	Intent    intent.Intent
	HasIntent bool
	IsAdmin   bool

	// Session: состояние мастеров чата; сохраняется после обработки.
	Session *session.State
	// User заполняет middleware цепочки участников.
	User *models.User
}

// Route: звено цепочки. Handle возвращает false, если апдейт нужно отдать дальше.
type Route struct {
	Name   string
	Match  func(u *Update) bool
	Handle func(ctx context.Context, u *Update) (bool, error)
}

type Dispatcher struct {
	bot      tg.Sender
	store    Store
	sessions session.Store
	wizard   *wizard.Engine
	cfg      *config.Config
	log      *zap.Logger
	limiter  *ChatLimiter
	now      func() time.Time

	global []Route
	admin  []Route
	user   []Route

	wg sync.WaitGroup
}

func NewDispatcher(bot tg.Sender, store Store, sessions session.Store, engine *wizard.Engine, cfg *config.Config, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dispatcher{
		bot:      bot,
		store:    store,
		sessions: sessions,
		wizard:   engine,
		cfg:      cfg,
		log:      log,
		limiter:  NewChatLimiter(),
		now:      time.Now,
	}
	d.global = d.globalRoutes()
	d.admin = d.adminRoutes()
	d.user = d.userRoutes()
	return d
}

// Run читает апдейты до отмены ctx. Каждый апдейт идёт в своей горутине,
// апдейты одного чата идут по очереди.
func (d *Dispatcher) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			d.Wait()
			return
		case upd, ok := <-updates:
			if !ok {
				d.Wait()
				return
			}
			d.wg.Add(1)
			go func(upd tgbotapi.Update) {
				defer d.wg.Done()
				d.Dispatch(ctx, upd)
			}(upd)
		}
	}
}

// Wait дожидается обработки апдейтов и фоновых выгрузок.
func (d *Dispatcher) Wait() { d.wg.Wait() }

func newUpdate(upd tgbotapi.Update) (*Update, string) {
	switch {
	case upd.CallbackQuery != nil:
		cb := upd.CallbackQuery
		u := &Update{CB: cb, From: cb.From}
		if cb.Message != nil && cb.Message.Chat != nil {
			u.ChatID = cb.Message.Chat.ID
		} else if cb.From != nil {
			u.ChatID = cb.From.ID
		}
		u.Intent, u.HasIntent = intent.Parse(cb.Data)
		return u, "callback"
	case upd.Message != nil:
		m := upd.Message
		u := &Update{Msg: m, From: m.From}
		if m.Chat != nil {
			u.ChatID = m.Chat.ID
		}
		return u, "message"
	}
	return nil, ""
}

// Dispatch обрабатывает один апдейт целиком: состояние, цепочка, сохранение.
func (d *Dispatcher) Dispatch(ctx context.Context, upd tgbotapi.Update) {
	u, kind := newUpdate(upd)
	if u == nil || u.From == nil || u.From.IsBot {
		return
	}
	metrics.BotUpdates.WithLabelValues(kind).Inc()

	ctx = ctxutil.WithTraceID(ctx)
	ctx = ctxutil.WithChatID(ctx, u.ChatID)
	ctx = ctxutil.WithUserID(ctx, u.From.ID)

	unlock := d.limiter.lock(u.ChatID)
	defer unlock()

	defer func() {
		if r := recover(); r != nil {
			d.fail(ctx, u, fmt.Errorf("panic: %v", r))
		}
	}()

	st, err := d.sessions.Load(ctx, u.ChatID)
	if err != nil {
		d.fail(ctx, u, fmt.Errorf("load session: %w", err))
		return
	}
	before := st
	u.Session = &st
	u.IsAdmin = d.cfg.IsAdmin(u.From.ID)

	chain, name := d.user, "user"
	if u.IsAdmin {
		chain, name = d.admin, "admin"
	}
	done, err := d.runChain(ctx, "global", d.global, u)
	if err == nil && !done {
		_, err = d.runChain(ctx, name, chain, u)
	}
	if err != nil {
		d.fail(ctx, u, err)
	}

	if !session.Equal(before, st) {
		if err := d.sessions.Save(ctx, u.ChatID, st); err != nil {
			d.fail(ctx, u, fmt.Errorf("save session: %w", err))
		}
	}
}

// runChain: первый маршрут, который совпал и вернул true, завершает обработку.
// Апдейт, который никто не взял, молча игнорируется.
func (d *Dispatcher) runChain(ctx context.Context, chainName string, chain []Route, u *Update) (bool, error) {
	for _, r := range chain {
		if r.Match != nil && !r.Match(u) {
			continue
		}
		rctx := ctxutil.WithOp(ctx, r.Name)
		done, err := r.Handle(rctx, u)
		if err != nil {
			return true, fmt.Errorf("%s/%s: %w", chainName, r.Name, err)
		}
		if done {
			metrics.RouteHits.WithLabelValues(chainName, r.Name).Inc()
			logging.FromContext(rctx, d.log).Debug("update handled")
			return true, nil
		}
	}
	return false, nil
}

func (d *Dispatcher) fail(ctx context.Context, u *Update, err error) {
	metrics.HandlerErrors.Inc()
	logging.FromContext(ctx, d.log).Error("handle update", zap.Error(err))
	observability.CaptureCtx(ctx, err)
	if u != nil && u.CB != nil {
		_ = tg.Answer(d.bot, u.CB, "Произошла ошибка, попробуйте позже")
	}
}
