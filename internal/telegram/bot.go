package telegram

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"reality-archive/internal/database"
	"reality-archive/internal/services"
	"reality-archive/internal/utils"
)

// botAPI is the part of *tgbotapi.BotAPI the host uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Bot struct {
	bot      botAPI
	username string
	chatID   int64
	services *services.ServiceManager
	handlers map[string]func(args string)
	dispatch func(func())
	log      *zap.Logger
}

func NewBot(token string, chatID int64, sm *services.ServiceManager, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	bot := newBot(api, api.Self.UserName, chatID, sm, log)
	log.Info("🤖 Telegram bot ready", zap.String("username", bot.username))
	return bot, nil
}

func newBot(api botAPI, username string, chatID int64, sm *services.ServiceManager, log *zap.Logger) *Bot {
	b := &Bot{
		bot:      api,
		username: username,
		chatID:   chatID,
		services: sm,
		handlers: make(map[string]func(string)),
		dispatch: func(fn func()) { fn() },
		log:      log,
	}
	b.registerHandlers()
	return b
}

// SetDispatcher routes update handling through fn, so that all access to the
// services happens on the caller's goroutine.
func (b *Bot) SetDispatcher(fn func(func())) {
	b.dispatch = fn
}

func (b *Bot) GetUsername() string {
	return b.username
}

// RequestPermission grants notifications when a chat is configured.
func (b *Bot) RequestPermission() bool {
	return b.chatID != 0
}

func (b *Bot) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.bot.Send(msg)
	return err
}

func (b *Bot) sendWithKeyboard(text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if len(keyboard.InlineKeyboard) > 0 {
		msg.ReplyMarkup = keyboard
	}
	_, err := b.bot.Send(msg)
	return err
}

// SendNotification implements services.NotificationSender.
func (b *Bot) SendNotification(title, body string) error {
	return b.SendMessage(fmt.Sprintf("<b>%s</b>\n\n%s", html.EscapeString(title), html.EscapeString(body)))
}

// SendDocument uploads raw bytes as a file.
func (b *Bot) SendDocument(name string, data []byte) error {
	doc := tgbotapi.NewDocument(b.chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	_, err := b.bot.Send(doc)
	return err
}

// phaseKeyboard offers the single forward action of the current phase.
func (b *Bot) phaseKeyboard() tgbotapi.InlineKeyboardMarkup {
	w := b.services.Workflow
	switch {
	case w.Phase() == services.PhaseArchive:
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("💾 Guardar experimento", "commit"),
			),
		)
	case w.CanAdvance():
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("➡️ Siguiente", "advance"),
			),
		)
	default:
		return tgbotapi.InlineKeyboardMarkup{}
	}
}

func (b *Bot) bodyPartKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, part := range database.BodyParts {
		label := fmt.Sprintf("%s %s", utils.GetBodyPartEmoji(part), utils.GetBodyPartName(part))
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, "bodypart_"+string(part)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.dispatch(func() { b.handleUpdate(update) })
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallbackQuery(update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.Chat == nil {
		return
	}

	if update.Message.Chat.ID != b.chatID {
		b.log.Warn("⛔ Message from unknown chat ignored", zap.Int64("chat_id", update.Message.Chat.ID))
		return
	}

	b.handleMessage(update.Message)
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	if !strings.HasPrefix(text, "/") {
		b.handlePlainText(text)
		return
	}

	command, args, _ := strings.Cut(text, " ")
	command = strings.ToLower(command)
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}

	handler, exists := b.handlers[command]
	if !exists {
		b.SendMessageOrLogError("❌ Comando desconocido. Usa /ayuda")
		return
	}
	handler(strings.TrimSpace(args))
}

func (b *Bot) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	defer func() {
		if _, err := b.bot.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
			b.log.Warn("⚠️ Callback ack failed", zap.Error(err))
		}
	}()

	if callback.Message == nil || callback.Message.Chat == nil || callback.Message.Chat.ID != b.chatID {
		return
	}

	data := callback.Data
	b.log.Debug("Received callback", zap.String("data", data))

	switch {
	case data == "advance":
		b.handleAdvance("")
	case data == "commit":
		b.handleCommit("")
	case strings.HasPrefix(data, "bodypart_"):
		b.editField(services.FieldBodyPart, strings.TrimPrefix(data, "bodypart_"))
	}
}
