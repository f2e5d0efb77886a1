package bot

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ryab476/hotel-booking/booking"
	"github.com/ryab476/hotel-booking/storage"
)

// msgStoreFailure is the generic failure message for unrecoverable storage
// errors. Detail goes to the log, never to the user.
const msgStoreFailure = "❌ Произошла ошибка. Попробуйте позже."

// Options carries the presentation settings the bot needs.
type Options struct {
	AdminName    string
	AdminContact string
	MiniAppURL   string
}

// Bot represents the Telegram transport of the booking assistant
type Bot struct {
	api      *tgbotapi.BotAPI
	store    storage.Store
	svc      *booking.Service
	form     *Form
	sessions *sessionStore
	opts     Options
	logger   *zap.Logger
}

// New creates a new bot instance on an already-authorized API client. The
// client is shared with the operator notifier, so it is constructed once at
// startup and passed in.
func New(api *tgbotapi.BotAPI, store storage.Store, svc *booking.Service, opts Options, logger *zap.Logger) *Bot {
	sessions := newSessionStore()
	return &Bot{
		api:      api,
		store:    store,
		svc:      svc,
		form:     NewForm(store, svc, sessions, opts.MiniAppURL, logger),
		sessions: sessions,
		opts:     opts,
		logger:   logger,
	}
}

// Start runs the update loop until Stop is called
func (b *Bot) Start() error {
	b.logger.Info("Bot started", zap.String("username", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message != nil {
			b.handleMessage(update.Message)
		} else if update.CallbackQuery != nil {
			b.handleCallbackQuery(update.CallbackQuery)
		}
	}

	return nil
}

// Stop shuts down the update loop
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}

// ReapIdleSessions discards guided-form sessions idle longer than ttl.
// The background worker calls this periodically.
func (b *Bot) ReapIdleSessions(ttl time.Duration) int {
	return b.sessions.DeleteIdle(ttl)
}

// send delivers one reply to a chat, logging delivery failures
func (b *Bot) send(chatID int64, r reply) {
	msg := tgbotapi.NewMessage(chatID, r.text)
	if r.keyboard != nil {
		msg.ReplyMarkup = r.keyboard
	}
	if r.parseMode != "" {
		msg.ParseMode = r.parseMode
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// answerCallbackQuery sends an answer to a callback query.
func (b *Bot) answerCallbackQuery(queryID string, text string, alert bool) {
	callback := tgbotapi.NewCallback(queryID, text)
	callback.ShowAlert = alert
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Error("Failed to answer callback query", zap.String("query_id", queryID), zap.Error(err))
	}
}

// username extracts a printable handle from a Telegram user
func username(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	return user.UserName
}
