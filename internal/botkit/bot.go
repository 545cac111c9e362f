package botkit

import (
	"context"
	"runtime/debug"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

type Bot struct {
	// Инстанс апи телеграма
	api *tgbotapi.BotAPI
	// Мапа в которой храним view по имени команды
	cmdViews map[string]ViewFunc
	log      logrus.FieldLogger
}

// Update - любой эвент, который приходит от телеграма при взаимодействии пользователя с ботом.
// ViewFunc реагирует на определенную команду
type ViewFunc func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error

func New(api *tgbotapi.BotAPI, log logrus.FieldLogger) *Bot {
	return &Bot{
		api:      api,
		cmdViews: make(map[string]ViewFunc),
		log:      log.WithField("component", "bot"),
	}
}

// Метод для регистрации View для команды
func (b *Bot) RegisterCmdView(cmd string, view ViewFunc) {
	b.cmdViews[cmd] = view
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case update := <-updates:
			updateCtx, updateCancel := context.WithTimeout(ctx, 10*time.Second)
			b.HandleUpdate(updateCtx, update)
			updateCancel()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// HandleUpdate роутит команду на соответствующую view
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	// Паника в одной view не должна ронять бота
	defer func() {
		if p := recover(); p != nil {
			b.log.WithField("panic", p).WithField("stack", string(debug.Stack())).Error("panic recovered")
		}
	}()

	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	cmd := update.Message.Command()

	view, ok := b.cmdViews[cmd]
	if !ok {
		return
	}

	if err := view(ctx, b.api, update); err != nil {
		b.log.WithError(err).WithField("command", cmd).Error("failed to handle update")

		if _, err := b.api.Send(
			tgbotapi.NewMessage(update.Message.Chat.ID, "internal error"),
		); err != nil {
			b.log.WithError(err).Error("failed to send message")
		}
	}
}
