package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"

	"sheet_ledger_bot/internal/commands"
	"sheet_ledger_bot/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// messageSender is the part of tgbotapi.BotAPI the bot replies through.
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type updateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type commandHandler func(ctx context.Context, inv commands.Invocation) string

// Bot long-polls Telegram and answers commands with a fixed pool of workers.
type Bot struct {
	sender  messageSender
	updates updateSource
	service *commands.Service
	routes  map[string]commandHandler
	workers int
}

func NewBot(api *tgbotapi.BotAPI, service *commands.Service, workers int) (*Bot, error) {
	if api == nil {
		return nil, errors.New("bot api is nil")
	}
	if service == nil {
		return nil, errors.New("command service is nil")
	}
	if workers <= 0 {
		workers = 4
	}
	return &Bot{
		sender:  api,
		updates: api,
		service: service,
		routes:  commandRoutes(service),
		workers: workers,
	}, nil
}

// commandRoutes maps command names to their handlers.
func commandRoutes(s *commands.Service) map[string]commandHandler {
	return map[string]commandHandler{
		"start":   func(_ context.Context, inv commands.Invocation) string { return s.Start(inv) },
		"help":    func(_ context.Context, inv commands.Invocation) string { return s.Help(inv) },
		"balance": s.Balance,
		"price":   s.Price,
		"pay":     s.Pay,
		"ops":     s.Ops,
	}
}

// Run polls for updates until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.updates.GetUpdatesChan(u)

	var wg sync.WaitGroup
	work := make(chan tgbotapi.Update, 100)

	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for update := range work {
				b.handleUpdate(ctx, update)
			}
			log.Debug().Int("worker", workerID).Msg("Update worker stopped")
		}(i + 1)
	}

	log.Info().Int("workers", b.workers).Msg("Listening for Telegram updates")

	func() {
		defer close(work)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case work <- update:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	b.updates.StopReceivingUpdates()
	wg.Wait()
	return ctx.Err()
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || !msg.IsCommand() {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("command", msg.Command()).
				Int64("chat_id", msg.Chat.ID).
				Msg("Command handler panicked")
			b.reply(msg, b.service.Internal())
		}
	}()

	reply, ok := b.dispatch(ctx, msg)
	if !ok {
		return
	}
	b.reply(msg, reply)
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	if _, err := b.sender.Send(out); err != nil {
		metrics.IncReplyFailed()
		log.Warn().Err(err).Int64("chat_id", msg.Chat.ID).Msg("Failed to send reply")
	}
}

// dispatch runs the handler for msg and returns its reply. Unknown commands
// are answered only in private chats; ok is false when there is nothing to send.
func (b *Bot) dispatch(ctx context.Context, msg *tgbotapi.Message) (reply string, ok bool) {
	command := strings.ToLower(msg.Command())
	inv := commands.Invocation{Args: msg.CommandArguments()}
	if msg.From != nil {
		inv.Username = msg.From.UserName
	}

	handler, known := b.routes[command]
	if !known {
		metrics.IncTelegramCommand("unknown")
		if msg.Chat == nil || !msg.Chat.IsPrivate() {
			return "", false
		}
		return b.service.Unknown(inv), true
	}
	metrics.IncTelegramCommand(command)

	log.Debug().
		Str("command", command).
		Str("username", inv.Username).
		Str("args", inv.Args).
		Msg("Handling command")
	return handler(ctx, inv), true
}
