package telegram

import (
	"context"
	"errors"
	"net/http"

	"sheet_ledger_bot/internal/retry"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// Connect checks token with getMe. A token Telegram rejects fails at once;
// network and server errors are retried per cfg. An empty endpoint means the
// public Bot API.
func Connect(ctx context.Context, token, endpoint string, cfg retry.Config) (*tgbotapi.BotAPI, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	return retry.WithRetry(ctx, cfg, func(ctx context.Context) (*tgbotapi.BotAPI, error) {
		api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{
			Transport: contextTransport{ctx: ctx},
		})
		if err != nil {
			log.Warn().Err(err).Msg("Telegram getMe failed")
			return nil, classifyConnectError(err)
		}
		// Long polling outlives the attempt deadline.
		api.Client = &http.Client{}
		return api, nil
	})
}

// contextTransport binds requests to ctx; tgbotapi builds them without one.
type contextTransport struct {
	ctx context.Context
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return http.DefaultTransport.RoundTrip(req.WithContext(t.ctx))
}

func classifyConnectError(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusNotFound:
			return retry.Permanent(err)
		}
	}
	return err
}
