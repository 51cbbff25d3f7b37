package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"photo-style-studio/internal/batch"
	"photo-style-studio/internal/catalog"
	"photo-style-studio/internal/media"
	"photo-style-studio/internal/mediagroup"
	"photo-style-studio/internal/prompt"
	"photo-style-studio/internal/studio"
	"photo-style-studio/internal/telegram"
)

// Messenger is the part of the Telegram client the handler talks to.
type Messenger interface {
	SendTyping(chatID int64)
	SendText(chatID int64, text string) error
	SendTextWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) (int, error)
	EditTextWithKeyboard(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) error
	AnswerCallback(callbackID, text string, alert bool) error
	SendImage(chatID int64, img media.Image, filename, caption string) error
	DownloadFile(ctx context.Context, fileID string) (media.Image, error)
}

var _ Messenger = (*telegram.Client)(nil)

type Options struct {
	Telegram  Messenger
	Generator *batch.Generator
	Sessions  *studio.Store
	Logger    *slog.Logger
	// MaxBatches bounds the batches running at once. Zero means 4.
	MaxBatches int
}

type Handler struct {
	tg         Messenger
	gen        *batch.Generator
	sessions   *studio.Store
	idx        *catalog.Index
	logger     *slog.Logger
	aggregator *mediagroup.Aggregator

	batches  chan struct{}
	inflight sync.WaitGroup
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = studio.NewStore(nil)
	}

	maxBatches := opts.MaxBatches
	if maxBatches < 1 {
		maxBatches = 4
	}

	return &Handler{
		tg:       opts.Telegram,
		gen:      opts.Generator,
		sessions: sessions,
		idx:      sessions.Index(),
		logger:   logger,
		batches:  make(chan struct{}, maxBatches),
	}
}

// Wait blocks until every started batch has delivered its outcome.
func (h *Handler) Wait() {
	h.inflight.Wait()
}

func (h *Handler) SetMediaGroupAggregator(ag *mediagroup.Aggregator) {
	h.aggregator = ag
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(ctx, update.CallbackQuery)
	}
	if update.Message == nil || update.Message.From == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID
	userID := msg.From.ID

	if msg.IsCommand() {
		return h.handleCommand(chatID, userID, msg)
	}

	if len(msg.Photo) > 0 {
		return h.handlePhoto(chatID, userID, msg)
	}

	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return h.setSource(chatID, userID, msg.Document.FileID, "")
	}

	if strings.TrimSpace(msg.Text) != "" {
		return h.tg.SendText(chatID, "📷 Send a portrait photo to start, or /help.")
	}

	return nil
}

// HandleAlbum keeps the first photo of an album as the source image.
func (h *Handler) HandleAlbum(ctx context.Context, album mediagroup.Album) {
	note := ""
	if n := album.Ignored(); n > 0 {
		note = fmt.Sprintf("Only the first photo of the album is used (%d ignored).", n)
	}
	if err := h.setSource(album.ChatID, album.UserID, album.Source(), note); err != nil {
		h.logger.Error("album processing failed", "chat_id", album.ChatID, "err", err)
	}
}

const helpText = "🎨 Photo Style Studio\n\n" +
	"1. Send a portrait photo.\n" +
	"2. Pick lighting, layout, costume, background, emotion and poses.\n" +
	"3. Choose how many images and press Generate.\n\n" +
	"Commands:\n" +
	"/studio - Open the style editor\n" +
	"/prompt - Show the prompt for the current options\n" +
	"/reset - Start over\n" +
	"/help - This message"

func (h *Handler) handleCommand(chatID int64, userID int64, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start", "help":
		return h.tg.SendText(chatID, helpText)
	case "studio":
		return h.renderStudio(chatID, userID, 0, mainMenu)
	case "reset":
		h.sessions.Reset(chatID, userID)
		_ = h.tg.SendText(chatID, "✅ Everything was reset. Send a new photo.")
		return h.renderStudio(chatID, userID, 0, mainMenu)
	case "prompt":
		return h.tg.SendText(chatID, h.promptPreview(chatID, userID))
	default:
		return h.tg.SendText(chatID, "❌ Unknown command. Use /help.")
	}
}

func (h *Handler) handlePhoto(chatID int64, userID int64, msg *tgbotapi.Message) error {
	photo := msg.Photo[len(msg.Photo)-1]

	if msg.MediaGroupID != "" && h.aggregator != nil {
		h.aggregator.Add(mediagroup.Item{
			ChatID:       chatID,
			UserID:       userID,
			MediaGroupID: msg.MediaGroupID,
			Caption:      msg.Caption,
			FileID:       photo.FileID,
		})
		return nil
	}

	return h.setSource(chatID, userID, photo.FileID, "")
}

func (h *Handler) setSource(chatID, userID int64, fileID, note string) error {
	if fileID == "" {
		return nil
	}
	h.sessions.Update(chatID, userID, func(s *studio.Session) {
		s.SetSource(studio.Source{Ref: fileID})
	})

	text := "📷 Photo saved."
	if note != "" {
		text += " " + note
	}
	_ = h.tg.SendText(chatID, text)
	return h.renderStudio(chatID, userID, 0, mainMenu)
}

// promptPreview shows the prompt each selected pose would be sent with.
func (h *Handler) promptPreview(chatID, userID int64) string {
	s := h.sessions.Get(chatID, userID)
	base := prompt.Base(h.idx, s.Selections)

	poseIDs := s.Selections.PoseIDs(h.idx)
	if len(poseIDs) == 0 {
		return base + "\n\n(no pose selected)"
	}

	var b strings.Builder
	for i, id := range poseIDs {
		pose, ok := h.idx.PoseOption(id)
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "#%d %s\n%s", i+1, pose.Title, prompt.WithPose(base, pose))
	}
	return b.String()
}
