package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "hive-vision/internal/application"
	"hive-vision/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я бот для оценки здоровья пчелиных ульев по фотографии.

📸 Отправьте мне фото улья, и я скажу, выглядит ли он здоровым.

📋 Команды:
/check — начать проверку улья
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото улья
2️⃣ Бот найдёт на изображении характерные фрагменты
3️⃣ Вы получите результат: здоров улей или нет

💡 Рекомендации:
• Снимайте при хорошем освещении
• Улей должен занимать большую часть кадра
• Фото должно быть чётким

📋 Команды:
/check — начать проверку
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото улья для проверки."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото улья для проверки."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgHealthy         = "✅ Улей выглядит здоровым."
	msgUnhealthy       = "🐝 Улей выглядит нездоровым. Рекомендуем осмотреть его."
	msgDescriptors     = "\n\n🔍 Найдено фрагментов: %d"
	msgUninformative   = "\n\n⚠️ На фото почти нет различимых деталей, результат может быть неточным."
	msgNotReady        = "⚠️ Модель ещё не обучена. Попробуйте позже."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
)

// Bot представляет Telegram-бота
type Bot struct {
	api        *tgbotapi.BotAPI
	users      *app.UserService
	inspection *app.InspectionService
	client     *http.Client
	logger     *slog.Logger
}

// NewBot создаёт нового бота
func NewBot(token string, users *app.UserService, inspection *app.InspectionService, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "telegram")

	logger.Info("authorized on account", "username", api.Self.UserName)

	return &Bot{
		api:        api,
		users:      users,
		inspection: inspection,
		client:     http.DefaultClient,
		logger:     logger,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены контекста
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	var (
		reply string
		err   error
	)
	switch msg.Command() {
	case "start":
		_, err = b.users.Cancel(ctx, userID, chatID)
		reply = msgStart
	case "help":
		reply = msgHelp
	case "check":
		_, err = b.users.BeginCheck(ctx, userID, chatID)
		reply = msgAwaitingPhoto
	case "cancel":
		_, err = b.users.Cancel(ctx, userID, chatID)
		reply = msgCancelled
	default:
		reply = msgUnknownCommand
	}

	if err != nil {
		b.logger.ErrorContext(ctx, "update user state", "user_id", userID, "error", err)
	}
	b.sendMessage(chatID, reply)
}

// handlePhoto обрабатывает входящее фото
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	if !b.inspection.Ready() {
		b.sendMessage(chatID, msgNotReady)
		return
	}

	b.sendMessage(chatID, msgProcessing)

	// Получаем файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]

	imageData, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		b.logger.ErrorContext(ctx, "download photo", "user_id", userID, "error", err)
		b.sendMessage(chatID, msgProcessingError)
		if _, err := b.users.Cancel(ctx, userID, chatID); err != nil {
			b.logger.ErrorContext(ctx, "update user state", "user_id", userID, "error", err)
		}
		return
	}

	verdict, err := b.inspection.AcceptPhoto(ctx, userID, chatID, imageData)
	switch {
	case errors.Is(err, app.ErrModelNotLoaded):
		b.sendMessage(chatID, msgNotReady)
		return
	case errors.Is(err, app.ErrModelMismatch):
		b.logger.ErrorContext(ctx, "model and dictionary disagree", "error", err)
		b.sendMessage(chatID, msgNotReady)
		return
	case err != nil:
		b.logger.WarnContext(ctx, "classify photo", "user_id", userID, "bytes", len(imageData), "error", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	b.logger.InfoContext(ctx, "photo classified",
		"user_id", userID,
		"healthy", verdict.Healthy,
		"descriptors", verdict.Descriptors,
	)
	b.sendMessage(chatID, formatVerdict(verdict))
}

// formatVerdict формирует текст ответа по результату проверки
func formatVerdict(v *entity.HealthVerdict) string {
	text := msgUnhealthy
	if v.Healthy {
		text = msgHealthy
	}
	if !v.Informative() {
		return text + msgUninformative
	}
	return text + fmt.Sprintf(msgDescriptors, v.Descriptors)
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	fileURL := file.Link(b.api.Token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("send message", "chat_id", chatID, "error", err)
	}
}
