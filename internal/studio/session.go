package studio

import (
	"errors"
	"fmt"

	"photo-style-studio/internal/batch"
	"photo-style-studio/internal/catalog"
	"photo-style-studio/internal/media"
	"photo-style-studio/internal/selection"
)

type View string

const (
	ViewEditor  View = "editor"
	ViewResults View = "results"
)

const DefaultCount = 4

// AllowedCounts are the image counts offered to the user.
var AllowedCounts = []int{1, 4, 8}

var (
	ErrBusy         = errors.New("a generation is already running")
	ErrInvalidCount = errors.New("unsupported image count")
)

// Source is the uploaded photo. Ref is a front-end handle (a Telegram file
// id) resolved into bytes right before generation; Image holds bytes that are
// already in memory.
type Source struct {
	Ref   string
	Image media.Image
}

func (s Source) Empty() bool {
	return s.Ref == "" && s.Image.Empty()
}

type Session struct {
	View       View
	Selections selection.State
	Source     Source
	Count      int
	Results    []batch.GeneratedImage
	Err        string
	Generating bool

	epoch uint64
}

// New returns a session seeded from configuration defaults.
func New(idx *catalog.Index) Session {
	return Session{
		View:       ViewEditor,
		Selections: selection.Defaults(idx),
		Count:      DefaultCount,
	}
}

// Ticket pins one generation to the session state it was started from.
type Ticket struct {
	Epoch      uint64
	Selections selection.State
	Source     Source
	Count      int
}

func (s *Session) Select(idx *catalog.Index, groupID, optionID string) error {
	return s.Selections.Toggle(idx, groupID, optionID)
}

func (s *Session) SelectAll(idx *catalog.Index, groupID string) error {
	return s.Selections.SelectAll(idx, groupID)
}

func (s *Session) DeselectAll(idx *catalog.Index, groupID string) error {
	return s.Selections.DeselectAll(idx, groupID)
}

func (s *Session) SetSource(src Source) {
	s.Source = src
	s.Err = ""
}

func (s *Session) SetCount(n int) error {
	for _, c := range AllowedCounts {
		if c == n {
			s.Count = n
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrInvalidCount, n)
}

// Begin marks a generation as running and snapshots its inputs.
func (s *Session) Begin() (Ticket, error) {
	if s.Generating {
		return Ticket{}, ErrBusy
	}
	s.Generating = true
	s.Err = ""
	s.Results = nil
	return Ticket{
		Epoch:      s.epoch,
		Selections: s.Selections.Clone(),
		Source:     Source{Ref: s.Source.Ref, Image: s.Source.Image.Clone()},
		Count:      s.Count,
	}, nil
}

// Finish applies a generation outcome. It reports false and changes nothing
// when the session was reset after the ticket was issued.
func (s *Session) Finish(t Ticket, images []batch.GeneratedImage, err error) bool {
	if t.Epoch != s.epoch {
		return false
	}
	s.Generating = false

	switch {
	case err != nil:
		s.Err = batch.UserMessage(err)
	case len(images) == 0:
		s.Err = batch.UserMessage(batch.ErrEmptyResult)
	default:
		s.Results = append([]batch.GeneratedImage(nil), images...)
		s.View = ViewResults
	}
	return true
}

// Back leaves the results view and drops the results.
func (s *Session) Back() {
	s.View = ViewEditor
	s.Results = nil
}

// Reset restores every field to its initial value. Generations started before
// the reset can no longer finish into this session.
func (s *Session) Reset(idx *catalog.Index) {
	epoch := s.epoch + 1
	*s = New(idx)
	s.epoch = epoch
}

// Clone returns a copy that shares no mutable state with s.
func (s Session) Clone() Session {
	out := s
	out.Selections = s.Selections.Clone()
	out.Results = append([]batch.GeneratedImage(nil), s.Results...)
	return out
}
