package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"photo-style-studio/internal/catalog"
	"photo-style-studio/internal/studio"
)

const studioCallbackPrefix = "ps"

// mainMenu is the menu value for the overview; group menus use the group's
// position in the index.
const mainMenu = -1

type callback struct {
	Owner  int64
	Action string
	Args   []string
}

func parseCallback(data string) (callback, bool) {
	parts := strings.Split(strings.TrimSpace(data), ":")
	if len(parts) < 3 || parts[0] != studioCallbackPrefix {
		return callback{}, false
	}
	owner, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return callback{}, false
	}
	return callback{Owner: owner, Action: parts[2], Args: parts[3:]}, true
}

// cb encodes a callback. Groups and options are referenced by position to
// stay inside Telegram's 64-byte callback data limit.
func cb(ownerID int64, parts ...string) string {
	return fmt.Sprintf("%s:%d:%s", studioCallbackPrefix, ownerID, strings.Join(parts, ":"))
}

func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q == nil || q.Message == nil || q.From == nil {
		return nil
	}
	c, ok := parseCallback(q.Data)
	if !ok {
		return nil
	}
	if c.Owner != q.From.ID {
		_ = h.tg.AnswerCallback(q.ID, "This menu is not yours.", true)
		return nil
	}

	chatID := q.Message.Chat.ID
	msgID := q.Message.MessageID
	menu := mainMenu

	var opErr error
	switch c.Action {
	case "menu":
		if gi, ok := h.groupArg(c.Args, 0); ok {
			menu = gi
		}
	case "opt":
		gi, ok := h.groupArg(c.Args, 0)
		if !ok || len(c.Args) < 2 {
			break
		}
		group := h.idx.Groups()[gi]
		oi, err := strconv.Atoi(c.Args[1])
		if err != nil || oi < 0 || oi >= len(group.Options) {
			break
		}
		h.sessions.Update(chatID, c.Owner, func(s *studio.Session) {
			opErr = s.Select(h.idx, group.ID, group.Options[oi].ID)
		})
		if group.AllowMultiple {
			menu = gi
		}
	case "all", "none":
		gi, ok := h.groupArg(c.Args, 0)
		if !ok {
			break
		}
		groupID := h.idx.Groups()[gi].ID
		h.sessions.Update(chatID, c.Owner, func(s *studio.Session) {
			if c.Action == "all" {
				opErr = s.SelectAll(h.idx, groupID)
			} else {
				opErr = s.DeselectAll(h.idx, groupID)
			}
		})
		menu = gi
	case "count":
		if len(c.Args) < 1 {
			break
		}
		n, err := strconv.Atoi(c.Args[0])
		if err != nil {
			opErr = studio.ErrInvalidCount
			break
		}
		h.sessions.Update(chatID, c.Owner, func(s *studio.Session) {
			opErr = s.SetCount(n)
		})
	case "prompt":
		_ = h.tg.AnswerCallback(q.ID, "Sending prompt…", false)
		return h.tg.SendText(chatID, h.promptPreview(chatID, c.Owner))
	case "back":
		h.sessions.Update(chatID, c.Owner, func(s *studio.Session) { s.Back() })
	case "reset":
		h.sessions.Reset(chatID, c.Owner)
	case "gen":
		return h.generate(ctx, chatID, c.Owner, msgID, q.ID)
	}

	if opErr != nil {
		h.logger.Debug("studio callback rejected", "action", c.Action, "args", c.Args, "err", opErr)
		_ = h.tg.AnswerCallback(q.ID, "That option is not available.", true)
	} else {
		_ = h.tg.AnswerCallback(q.ID, "OK", false)
	}

	return h.renderStudio(chatID, c.Owner, msgID, menu)
}

func (h *Handler) groupArg(args []string, i int) (int, bool) {
	if len(args) <= i {
		return 0, false
	}
	gi, err := strconv.Atoi(args[i])
	if err != nil || gi < 0 || gi >= len(h.idx.Groups()) {
		return 0, false
	}
	return gi, true
}

// renderStudio edits messageID in place when possible and otherwise sends a
// new message.
func (h *Handler) renderStudio(chatID, userID int64, messageID int, menu int) error {
	s := h.sessions.Get(chatID, userID)

	text := h.studioText(s, menu)
	kb := h.studioKeyboard(userID, s, menu)

	if messageID != 0 {
		err := h.tg.EditTextWithKeyboard(chatID, messageID, text, kb)
		if err == nil || isNotModified(err) {
			return nil
		}
		h.logger.Debug("studio edit failed, sending new message", "chat_id", chatID, "err", err)
	}

	_, err := h.tg.SendTextWithKeyboard(chatID, text, kb)
	return err
}

func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}

func (h *Handler) studioText(s studio.Session, menu int) string {
	var b strings.Builder

	if s.View == studio.ViewResults {
		fmt.Fprintf(&b, "✅ %d image(s) ready.\n\n", len(s.Results))
		for i, img := range s.Results {
			fmt.Fprintf(&b, "%d) %s\n", i+1, img.Title)
		}
		b.WriteString("\nPress Back to edit the options or Reset to start over.")
		return strings.TrimSpace(b.String())
	}

	groups := h.idx.Groups()
	if menu >= 0 && menu < len(groups) {
		g := groups[menu]
		b.WriteString(g.Title + "\n\n")
		if g.AllowMultiple {
			fmt.Fprintf(&b, "Pick any (%d selected).\n", len(s.Selections.Multi(g.ID)))
		} else {
			b.WriteString("Pick one.\n")
		}
		if g.Kind == catalog.KindCard {
			for _, o := range g.Options {
				if s.Selections.IsSelected(g.ID, o.ID) && o.Description != "" {
					b.WriteString("\n" + o.Description + "\n")
				}
			}
		}
		return strings.TrimSpace(b.String())
	}

	b.WriteString("🎨 Photo Style Studio\n\n")
	if s.Source.Empty() {
		b.WriteString("Photo: (none)\n")
	} else {
		b.WriteString("Photo: saved ✅\n")
	}
	for _, g := range groups {
		fmt.Fprintf(&b, "%s: %s\n", g.Title, h.groupSummary(s, g))
	}
	fmt.Fprintf(&b, "Images: %d\n", s.Count)

	switch {
	case s.Generating:
		fmt.Fprintf(&b, "\n⏳ Generating %d image(s), please wait…\n", s.Count)
	case s.Err != "":
		b.WriteString("\n❌ " + s.Err + "\n")
	case s.Source.Empty():
		b.WriteString("\n📷 Send a portrait photo.\n")
	default:
		b.WriteString("\n🎨 Press Generate when ready.\n")
	}

	return strings.TrimSpace(b.String())
}

func (h *Handler) groupSummary(s studio.Session, g catalog.OptionGroup) string {
	if g.AllowMultiple {
		return fmt.Sprintf("%d/%d", len(s.Selections.Multi(g.ID)), len(g.Options))
	}
	id, ok := s.Selections.Single(g.ID)
	if !ok {
		return "-"
	}
	if o, ok := h.idx.Option(g.ID, id); ok {
		return o.Title
	}
	return "-"
}

func (h *Handler) studioKeyboard(ownerID int64, s studio.Session, menu int) tgbotapi.InlineKeyboardMarkup {
	if s.View == studio.ViewResults {
		return tgbotapi.NewInlineKeyboardMarkup(
			[]tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData("⬅ Back", cb(ownerID, "back")),
				tgbotapi.NewInlineKeyboardButtonData("Reset", cb(ownerID, "reset")),
			},
		)
	}

	groups := h.idx.Groups()
	if menu >= 0 && menu < len(groups) {
		return groupKeyboard(ownerID, s, menu, groups[menu])
	}
	return h.mainKeyboard(ownerID, s, groups)
}

func (h *Handler) mainKeyboard(ownerID int64, s studio.Session, groups []catalog.OptionGroup) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	var row []tgbotapi.InlineKeyboardButton
	for gi, g := range groups {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(g.Title, cb(ownerID, "menu", strconv.Itoa(gi))))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	var countRow []tgbotapi.InlineKeyboardButton
	for _, n := range studio.AllowedCounts {
		label := strconv.Itoa(n)
		if s.Count == n {
			label = "✅ " + label
		}
		countRow = append(countRow, tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, "count", strconv.Itoa(n))))
	}
	rows = append(rows, countRow,
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("📄 Prompt", cb(ownerID, "prompt")),
			tgbotapi.NewInlineKeyboardButtonData("🎨 Generate", cb(ownerID, "gen")),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("Reset", cb(ownerID, "reset")),
		},
	)

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func groupKeyboard(ownerID int64, s studio.Session, gi int, g catalog.OptionGroup) tgbotapi.InlineKeyboardMarkup {
	perRow := 1
	if g.Kind == catalog.KindPill {
		perRow = 3
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for oi, o := range g.Options {
		label := o.Title
		switch {
		case s.Selections.IsSelected(g.ID, o.ID):
			label = "✅ " + label
		case g.AllowMultiple:
			label = "⬜ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, "opt", strconv.Itoa(gi), strconv.Itoa(oi))))
		if len(row) == perRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	if g.ShowSelectAll {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("Select all", cb(ownerID, "all", strconv.Itoa(gi))),
			tgbotapi.NewInlineKeyboardButtonData("Clear", cb(ownerID, "none", strconv.Itoa(gi))),
		})
	}

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅ Back", cb(ownerID, "menu", "main")),
	})
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
