package api

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "sprayer-backend/internal/application"
	"sprayer-backend/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я бот умного опрыскивателя.

📸 Отправьте мне фото листа растения, и я решу, нужна ли обработка пестицидом.

📋 Команды:
/check — проверить лист
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото листа
2️⃣ Бот оценит вероятность заражения
3️⃣ Вы получите вердикт: опрыскать или пропустить, с дозой и длительностью

💡 Рекомендации:
• Снимайте при дневном свете
• Лист должен занимать большую часть кадра

📋 Команды:
/check — проверить лист
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото листа для проверки."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото листа растения."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Анализирую снимок..."
	msgBadImage        = "⚠️ Не удалось разобрать изображение. Попробуйте сделать другое фото."
	msgProcessingError = "⚠️ Не удалось сохранить результат анализа. Попробуйте позже."
)

// Bot — Telegram-канал конвейера: тот же анализ, что и по HTTP,
// но для оператора в поле.
type Bot struct {
	api      *tgbotapi.BotAPI
	users    *app.UserService
	analysis *app.AnalysisService
}

// NewBot создаёт бота поверх сервисов приложения.
func NewBot(token string, users *app.UserService, analysis *app.AnalysisService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:      api,
		users:    users,
		analysis: analysis,
	}, nil
}

// Run запускает основной цикл обработки сообщений.
func (b *Bot) Run() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	ctx := context.Background()

	for update := range updates {
		if update.Message == nil {
			continue
		}

		b.handleMessage(ctx, update.Message)
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		log.Printf("Error getting user: %v", err)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	switch msg.Command() {
	case "start":
		_, _ = b.users.SetState(ctx, user.ID, user.ChatID, entity.StateMainMenu)
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "check":
		_, _ = b.users.BeginCheck(ctx, user.ID, user.ChatID)
		b.sendMessage(msg.Chat.ID, msgAwaitingPhoto)

	case "cancel":
		_, _ = b.users.Cancel(ctx, user.ID, user.ChatID)
		b.sendMessage(msg.Chat.ID, msgCancelled)

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}
}

// handlePhoto прогоняет присланное фото через конвейер анализа.
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID
	_, _ = b.users.SetState(ctx, userID, chatID, entity.StateProcessing)

	b.sendMessage(chatID, msgProcessing)

	// Берём файл с максимальным разрешением.
	photo := msg.Photo[len(msg.Photo)-1]

	imageData, err := b.downloadFile(photo.FileID)
	if err != nil {
		log.Printf("Error downloading photo: %v", err)
		b.sendMessage(chatID, msgBadImage)
		_, _ = b.users.SetState(ctx, userID, chatID, entity.StateMainMenu)
		return
	}

	// Снимки из чата не привязаны к узлу, node_id остаётся пустым.
	res, err := b.analysis.Analyze(ctx, app.AnalyzeInput{
		Filename: photo.FileID + ".jpg",
		Image:    imageData,
	})
	if err != nil {
		log.Printf("Error analyzing photo: %v", err)
		b.sendMessage(chatID, msgProcessingError)
		_, _ = b.users.SetState(ctx, userID, chatID, entity.StateMainMenu)
		return
	}

	b.sendMessage(chatID, formatResult(res))
	_, _ = b.users.SetState(ctx, userID, chatID, entity.StateMainMenu)
}

// formatResult собирает человекочитаемый вердикт для чата.
func formatResult(res *app.AnalyzeResult) string {
	prob := res.InfectedProb * 100
	if res.Decision.Sprays() {
		return fmt.Sprintf(
			"⚠️ Обнаружены признаки заражения: %s (вероятность %.0f%%).\n💦 Решение: опрыскать — %.2f мл за %d мс.",
			res.Label, prob, res.Decision.AmountML, res.Decision.DurationMS,
		)
	}
	return fmt.Sprintf(
		"✅ Лист выглядит здоровым: %s (вероятность заражения %.0f%%).\nОпрыскивание не требуется.",
		res.Label, prob,
	)
}

// downloadFile скачивает файл из Telegram.
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	fileURL := file.Link(b.api.Token)

	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}
