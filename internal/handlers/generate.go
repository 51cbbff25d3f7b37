package handlers

import (
	"context"
	"errors"
	"fmt"

	"photo-style-studio/internal/batch"
	"photo-style-studio/internal/studio"
)

// generate starts one batch for the user's session and returns once it is
// dispatched, so the update loop stays free for other callbacks. The inputs
// are pinned by a ticket; a reset while the batch runs makes its outcome a
// no-op.
func (h *Handler) generate(ctx context.Context, chatID, userID int64, messageID int, callbackID string) error {
	var (
		ticket studio.Ticket
		err    error
	)
	h.sessions.Update(chatID, userID, func(s *studio.Session) {
		ticket, err = s.Begin()
	})
	if errors.Is(err, studio.ErrBusy) {
		_ = h.tg.AnswerCallback(callbackID, "A generation is already running.", true)
		return nil
	}
	if callbackID != "" {
		_ = h.tg.AnswerCallback(callbackID, "Generating…", false)
	}
	_ = h.renderStudio(chatID, userID, messageID, mainMenu)

	// The batch outlives the update that started it.
	batchCtx := context.WithoutCancel(ctx)
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()

		h.batches <- struct{}{}
		defer func() { <-h.batches }()

		if err := h.deliver(batchCtx, chatID, userID, messageID, ticket); err != nil {
			h.logger.Error("deliver batch failed", "chat_id", chatID, "user_id", userID, "err", err)
		}
	}()
	return nil
}

// deliver runs the batch and applies its outcome to the session.
func (h *Handler) deliver(ctx context.Context, chatID, userID int64, messageID int, ticket studio.Ticket) error {
	h.tg.SendTyping(chatID)
	images, genErr := h.runBatch(ctx, ticket)

	var applied bool
	h.sessions.Update(chatID, userID, func(s *studio.Session) {
		applied = s.Finish(ticket, images, genErr)
	})
	if !applied {
		h.logger.Info("stale generation dropped", "chat_id", chatID, "user_id", userID, "images", len(images))
		return nil
	}

	if genErr != nil {
		h.logger.Warn("generation failed", "chat_id", chatID, "user_id", userID, "err", genErr)
		return h.renderStudio(chatID, userID, messageID, mainMenu)
	}

	for i, img := range images {
		caption := fmt.Sprintf("%d/%d %s", i+1, len(images), img.Title)
		if err := h.tg.SendImage(chatID, img.Image, img.Filename(), caption); err != nil {
			h.logger.Error("send image failed", "chat_id", chatID, "pose", img.PoseID, "err", err)
		}
	}

	// The results menu goes below the images.
	return h.renderStudio(chatID, userID, 0, mainMenu)
}

// runBatch resolves the source photo and runs the generator. Downloading
// happens once per batch; every request shares the same bytes.
func (h *Handler) runBatch(ctx context.Context, t studio.Ticket) ([]batch.GeneratedImage, error) {
	if h.gen == nil {
		return nil, batch.ErrMissingAPIKey
	}

	img := t.Source.Image
	if img.Empty() && t.Source.Ref != "" {
		downloaded, err := h.tg.DownloadFile(ctx, t.Source.Ref)
		if err != nil {
			return nil, fmt.Errorf("download source photo: %w", err)
		}
		img = downloaded
	}

	return h.gen.Generate(ctx, batch.Request{
		Selections: t.Selections,
		Image:      img,
		Count:      t.Count,
	})
}
