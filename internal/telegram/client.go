package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"photo-style-studio/internal/media"
)

// Telegram Bot API size limits, in bytes.
const (
	maxMessageBytes = 4096
	maxCaptionBytes = 1024
)

const defaultPollTimeout = 30 * time.Second

type Update = tgbotapi.Update

type Options struct {
	Token      string
	HTTPClient *http.Client
	Logger     *slog.Logger
	Debug      bool
}

// Client is the studio's view of the Bot API: menus, result files and the
// uploaded source photo.
type Client struct {
	bot        *tgbotapi.BotAPI
	httpClient *http.Client
	logger     *slog.Logger
}

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if opts.HTTPClient == nil {
		return nil, errors.New("http client is nil")
	}

	bot, err := tgbotapi.NewBotAPIWithClient(opts.Token, tgbotapi.APIEndpoint, opts.HTTPClient)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	bot.Debug = opts.Debug

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{bot: bot, httpClient: opts.HTTPClient, logger: logger}, nil
}

func (c *Client) Username() string {
	return c.bot.Self.UserName
}

// Updates starts long polling. A non-positive timeout uses 30s.
func (c *Client) Updates(pollTimeout time.Duration) tgbotapi.UpdatesChannel {
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = int(pollTimeout.Seconds())
	return c.bot.GetUpdatesChan(cfg)
}

func (c *Client) StopUpdates() {
	c.bot.StopReceivingUpdates()
}

// SendTyping is best effort; failures are only logged.
func (c *Client) SendTyping(chatID int64) {
	if _, err := c.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatUploadDocument)); err != nil {
		c.logger.Debug("chat action failed", "chat_id", chatID, "err", err)
	}
}

// SendText sends long texts (prompt previews) as several messages.
func (c *Client) SendText(chatID int64, text string) error {
	for _, chunk := range chunks(text, maxMessageBytes) {
		if _, err := c.bot.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			return fmt.Errorf("send text: %w", err)
		}
	}
	return nil
}

// SendTextWithKeyboard posts a studio menu and returns its message id.
func (c *Client) SendTextWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) (int, error) {
	msg := tgbotapi.NewMessage(chatID, truncate(text, maxMessageBytes))
	msg.ReplyMarkup = kb
	sent, err := c.bot.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send menu: %w", err)
	}
	return sent.MessageID, nil
}

// EditTextWithKeyboard redraws a studio menu in place.
func (c *Client) EditTextWithKeyboard(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) error {
	_, err := c.bot.Send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, truncate(text, maxMessageBytes), kb))
	return err
}

func (c *Client) AnswerCallback(callbackID, text string, alert bool) error {
	answer := tgbotapi.NewCallback(callbackID, text)
	answer.ShowAlert = alert
	_, err := c.bot.Request(answer)
	return err
}

// SendImage delivers one generated image as a document so the user gets the
// uncompressed file under its download name.
func (c *Client) SendImage(chatID int64, img media.Image, filename, caption string) error {
	if img.Empty() {
		return media.ErrEmpty
	}
	if filename == "" {
		filename = media.Filename("image")
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: img.Data})
	doc.Caption = truncate(caption, maxCaptionBytes)
	if _, err := c.bot.Send(doc); err != nil {
		return fmt.Errorf("send %s: %w", filename, err)
	}
	return nil
}

// DownloadFile resolves an uploaded photo into the studio's source image.
// Photos come from Telegram's own picker, so no image type check is done.
func (c *Client) DownloadFile(ctx context.Context, fileID string) (media.Image, error) {
	fileURL, err := c.bot.GetFileDirectURL(fileID)
	if err != nil {
		return media.Image{}, fmt.Errorf("resolve file %s: %w", fileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return media.Image{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return media.Image{}, fmt.Errorf("download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return media.Image{}, fmt.Errorf("read file %s: %w", fileID, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return media.Image{}, fmt.Errorf("download file %s: %s", fileID, resp.Status)
	}

	c.logger.Debug("source photo downloaded", "bytes", len(data))
	return media.FromPicker(resp.Header.Get("Content-Type"), data)
}

// chunks cuts text into pieces of at most maxBytes without splitting a rune.
// A single rune wider than maxBytes becomes its own piece.
func chunks(text string, maxBytes int) []string {
	if maxBytes <= 0 || len(text) <= maxBytes {
		return []string{text}
	}

	var out []string
	for len(text) > maxBytes {
		cut := maxBytes
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			_, cut = utf8.DecodeRuneInString(text)
		}
		out = append(out, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

func truncate(text string, maxBytes int) string {
	return chunks(text, maxBytes)[0]
}
