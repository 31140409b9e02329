// Package telegram serves the assistant over the Telegram Bot API using long
// polling.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"staff-assistant/internal/common/config"
	"staff-assistant/internal/common/errors"
	"staff-assistant/internal/common/logger"
	"staff-assistant/internal/common/metrics"
	answerquestion "staff-assistant/internal/workers/assistant/answer-question"
)

const (
	Channel = "telegram"

	parseModeHTML = "HTML"
	retryDelay    = time.Second
)

const (
	WelcomeText = "Добро пожаловать! Я помогу вам найти информацию о сотрудниках, мероприятиях, задачах и днях рождения. Нажмите /help, чтобы узнать больше."

	HelpText = `Вы можете спросить меня:
- "Найди Иванова Петра"
- "Какие мероприятия завтра?"
- "У кого день рождения в июне?"
- "Мои задачи на сегодня"
- "Свободен ли я завтра в 10?"

Просто напишите ваш вопрос в свободной форме!`
)

var helpKeyboard = &replyKeyboard{
	Keyboard:       [][]keyboardButton{{{Text: "/help"}}},
	ResizeKeyboard: true,
}

// Answerer produces the reply for one question.
type Answerer interface {
	Respond(ctx context.Context, channel, question string) *answerquestion.Reply
}

type Config struct {
	Token       string
	APIURL      string
	PollTimeout int // seconds
	Timeout     time.Duration
}

func LoadConfig(cfg config.TelegramConfig) Config {
	return Config{
		Token:       cfg.Token,
		APIURL:      cfg.APIURL,
		PollTimeout: cfg.PollTimeout,
		Timeout:     config.GetDuration(cfg.Timeout),
	}
}

type Bot struct {
	client   *resty.Client
	config   Config
	answerer Answerer
	logger   logger.Logger
	offset   int64
}

func NewBot(cfg Config, answerer Answerer, log logger.Logger) *Bot {
	base := strings.TrimRight(cfg.APIURL, "/") + "/bot" + cfg.Token

	// long polls hold the request open for PollTimeout seconds
	c := resty.New().
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout + time.Duration(cfg.PollTimeout)*time.Second)

	return &Bot{
		client:   c,
		config:   cfg,
		answerer: answerer,
		logger:   log.WithFields(map[string]interface{}{"component": "telegram-bot"}),
	}
}

// Run polls for updates until ctx is cancelled. Polling errors are logged and
// retried.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Telegram bot started", map[string]interface{}{
		"pollTimeout": b.config.PollTimeout,
	})

	for {
		updates, err := b.getUpdates(ctx)
		if ctx.Err() != nil {
			b.logger.Info("Telegram bot stopped", nil)
			return nil
		}
		if err != nil {
			b.logger.Warn("getUpdates failed", map[string]interface{}{"error": err.Error()})
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(retryDelay):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= b.offset {
				b.offset = u.UpdateID + 1
			}
			b.HandleUpdate(ctx, u)
		}
	}
}

// HandleUpdate replies to one incoming message. Commands other than /start and
// /help are ignored.
func (b *Bot) HandleUpdate(ctx context.Context, u Update) {
	msg := u.Message
	if msg == nil || strings.TrimSpace(msg.Text) == "" {
		return
	}
	metrics.ChatMessages.WithLabelValues(Channel, "in").Inc()

	var err error
	switch command(msg.Text) {
	case "":
		b.logger.Info("Question received", map[string]interface{}{
			"chatId":   msg.Chat.ID,
			"updateId": u.UpdateID,
		})
		reply := b.answerer.Respond(ctx, Channel, msg.Text)
		err = b.SendMessage(ctx, msg.Chat.ID, reply.Text, parseModeHTML)
	case "/start":
		err = b.SendMessage(ctx, msg.Chat.ID, WelcomeText, "")
	case "/help":
		err = b.SendMessage(ctx, msg.Chat.ID, HelpText, "")
	default:
		return
	}

	if err != nil {
		b.logger.Error("Failed to deliver reply", map[string]interface{}{
			"chatId": msg.Chat.ID,
			"error":  err.Error(),
		})
	}
}

// command returns the bot command in text, without any @botname suffix, or ""
// for plain text.
func command(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0]
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd)
}

func (b *Bot) getUpdates(ctx context.Context) ([]Update, error) {
	var updates []Update
	err := b.call(ctx, "/getUpdates", getUpdatesRequest{
		Offset:         b.offset,
		Timeout:        b.config.PollTimeout,
		AllowedUpdates: []string{"message"},
	}, &updates)
	return updates, err
}

// SendMessage posts text to chatID with the /help keyboard attached.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text, parseMode string) error {
	err := b.call(ctx, "/sendMessage", sendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   parseMode,
		ReplyMarkup: helpKeyboard,
	}, nil)
	if err != nil {
		return errors.NewChatDeliveryFailedError(err)
	}
	metrics.ChatMessages.WithLabelValues(Channel, "out").Inc()
	return nil
}

func (b *Bot) call(ctx context.Context, method string, body interface{}, result interface{}) error {
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(method)
	if err != nil {
		// transport errors quote the URL, which carries the token
		return fmt.Errorf("telegram %s: %s", method, b.redact(err.Error()))
	}

	var api apiResponse
	if err := json.Unmarshal(resp.Body(), &api); err != nil {
		return fmt.Errorf("telegram %s: status %d: decode response: %w", method, resp.StatusCode(), err)
	}
	if !api.OK {
		return fmt.Errorf("telegram %s: error %d: %s", method, api.ErrorCode, api.Description)
	}
	if result != nil && len(api.Result) > 0 {
		if err := json.Unmarshal(api.Result, result); err != nil {
			return fmt.Errorf("telegram %s: decode result: %w", method, err)
		}
	}
	return nil
}

func (b *Bot) redact(s string) string {
	if b.config.Token == "" {
		return s
	}
	return strings.ReplaceAll(s, b.config.Token, "<token>")
}
