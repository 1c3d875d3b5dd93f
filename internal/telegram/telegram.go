package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"mindease/internal/companion"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const welcomeMessage = "Hi, I'm MindEase, a supportive companion for student life. " +
	"Tell me how you're feeling, or send /breathe for a short breathing exercise.\n\n" +
	"If you are in crisis, please " + companion.CrisisLines + "."

// Handler relays Telegram chats through companion sessions, one per chat.
type Handler struct {
	bot      *tgbotapi.BotAPI
	sessions *companion.Sessions
}

func NewHandler(token string, sessions *companion.Sessions) (*Handler, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise Telegram bot: %w", err)
	}
	logrus.Infof("Telegram bot authorised as %s", bot.Self.UserName)
	return &Handler{bot: bot, sessions: sessions}, nil
}

// Run long-polls for updates until ctx is done.
func (h *Handler) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := h.bot.GetUpdatesChan(u)
	defer h.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if update.Message.IsCommand() {
		h.reply(chatID, commandReply(update.Message.Command()))
		return
	}
	if strings.TrimSpace(update.Message.Text) == "" {
		return
	}

	if _, err := h.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		logrus.Debugf("typing indicator failed for chat %d: %v", chatID, err)
	}
	h.reply(chatID, Respond(ctx, h.sessions, update.Message.From.ID, update.Message.Text))
}

func (h *Handler) reply(chatID int64, text string) {
	if text == "" {
		return
	}
	if err := h.SendMessage(chatID, text); err != nil {
		logrus.Errorf("chat %d: %v", chatID, err)
	}
}

// UserID is the persisted user id for a Telegram account.
func UserID(telegramID int64) string {
	return "telegram:" + strconv.FormatInt(telegramID, 10)
}

// Respond runs one chat turn for a Telegram user and returns the reply text.
func Respond(ctx context.Context, sessions *companion.Sessions, telegramID int64, text string) string {
	userID := UserID(telegramID)
	session := sessions.Get(ctx, userID, userID)
	_, assistant, err := session.Send(ctx, text)
	if err != nil {
		logrus.WithField("user_id", userID).Warnf("chat turn failed: %v", err)
		return companion.FallbackMessage
	}
	return assistant.Content
}

func commandReply(command string) string {
	switch command {
	case "start", "help":
		return welcomeMessage
	case "breathe":
		return companion.Pool(companion.IntentBreathing)[0]
	default:
		return "I don't know that command. Just write to me, or try /breathe."
	}
}
