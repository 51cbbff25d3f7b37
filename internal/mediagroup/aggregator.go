// Package mediagroup collapses Telegram albums into a single event. Telegram
// delivers each album photo as its own message sharing a media group id; the
// studio only keeps one source photo, so the album is reported once after a
// quiet period.
package mediagroup

import (
	"fmt"
	"sync"
	"time"
)

const DefaultDebounce = 1200 * time.Millisecond

type Item struct {
	ChatID       int64
	UserID       int64
	MediaGroupID string
	Caption      string
	FileID       string
}

type Album struct {
	ChatID  int64
	UserID  int64
	Caption string
	FileIDs []string
}

// Source is the photo the studio keeps: the first one received.
func (a Album) Source() string {
	if len(a.FileIDs) == 0 {
		return ""
	}
	return a.FileIDs[0]
}

// Ignored reports how many album photos were dropped in favor of Source.
func (a Album) Ignored() int {
	if len(a.FileIDs) <= 1 {
		return 0
	}
	return len(a.FileIDs) - 1
}

type Options struct {
	Debounce time.Duration
	OnFlush  func(Album)
}

type Aggregator struct {
	mu       sync.Mutex
	debounce time.Duration
	onFlush  func(Album)
	pending  map[string]*pendingAlbum
	stopped  bool
}

type pendingAlbum struct {
	album Album
	timer *time.Timer
}

func New(opts Options) *Aggregator {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Aggregator{
		debounce: debounce,
		onFlush:  opts.OnFlush,
		pending:  make(map[string]*pendingAlbum),
	}
}

// Add records one album photo and restarts the album's quiet timer. Items
// without a media group id or file id are ignored.
func (a *Aggregator) Add(item Item) {
	if item.MediaGroupID == "" || item.FileID == "" {
		return
	}

	key := makeKey(item.ChatID, item.MediaGroupID)

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return
	}

	pa, ok := a.pending[key]
	if !ok {
		pa = &pendingAlbum{
			album: Album{
				ChatID:  item.ChatID,
				UserID:  item.UserID,
				Caption: item.Caption,
			},
		}
		a.pending[key] = pa
	}
	pa.album.FileIDs = append(pa.album.FileIDs, item.FileID)
	if item.Caption != "" {
		pa.album.Caption = item.Caption
	}

	if pa.timer != nil {
		pa.timer.Stop()
	}
	pa.timer = time.AfterFunc(a.debounce, func() {
		a.flush(key)
	})
}

// Pending returns the number of albums still waiting for their quiet period.
func (a *Aggregator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Stop drops every pending album without flushing it.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopped = true
	for key, pa := range a.pending {
		if pa.timer != nil {
			pa.timer.Stop()
		}
		delete(a.pending, key)
	}
}

func (a *Aggregator) flush(key string) {
	a.mu.Lock()
	pa, ok := a.pending[key]
	if !ok {
		a.mu.Unlock()
		return
	}
	delete(a.pending, key)
	album := pa.album
	onFlush := a.onFlush
	a.mu.Unlock()

	if onFlush != nil {
		onFlush(album)
	}
}

func makeKey(chatID int64, mediaGroupID string) string {
	return fmt.Sprintf("%d:%s", chatID, mediaGroupID)
}
