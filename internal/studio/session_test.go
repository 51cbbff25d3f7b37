package studio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-style-studio/internal/batch"
	"photo-style-studio/internal/catalog"
	"photo-style-studio/internal/media"
	"photo-style-studio/internal/selection"
)

var someImages = []batch.GeneratedImage{{ID: "khoeTamLungTran-0", Title: "Khoe Tấm Lưng Trần", ImageURL: "data:image/png;base64,eA=="}}

func TestNewSession(t *testing.T) {
	idx := catalog.MustDefaultIndex()
	s := New(idx)

	assert.Equal(t, ViewEditor, s.View)
	assert.Equal(t, DefaultCount, s.Count)
	assert.True(t, s.Source.Empty())
	assert.Equal(t, selection.Defaults(idx), s.Selections)
}

func TestFinishSuccessMovesToResults(t *testing.T) {
	idx := catalog.MustDefaultIndex()
	s := New(idx)

	ticket, err := s.Begin()
	require.NoError(t, err)
	assert.True(t, s.Generating)

	_, err = s.Begin()
	assert.ErrorIs(t, err, ErrBusy)

	assert.True(t, s.Finish(ticket, someImages, nil))
	assert.False(t, s.Generating)
	assert.Equal(t, ViewResults, s.View)
	assert.Equal(t, someImages, s.Results)
	assert.Empty(t, s.Err)

	s.Back()
	assert.Equal(t, ViewEditor, s.View)
	assert.Nil(t, s.Results)
}

func TestFinishFailureStaysInEditor(t *testing.T) {
	idx := catalog.MustDefaultIndex()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "validation", err: batch.ErrNoPoseSelected, want: batch.ErrNoPoseSelected.Message},
		{name: "empty", err: &batch.EmptyResultError{Requested: 4}, want: batch.UserMessage(batch.ErrEmptyResult)},
		{name: "unexpected", err: errors.New("boom"), want: batch.UserMessage(errors.New("boom"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(idx)
			ticket, err := s.Begin()
			require.NoError(t, err)

			assert.True(t, s.Finish(ticket, nil, tt.err))
			assert.Equal(t, ViewEditor, s.View)
			assert.Equal(t, tt.want, s.Err)
			assert.Nil(t, s.Results)
		})
	}

	s := New(idx)
	ticket, _ := s.Begin()
	s.Finish(ticket, nil, nil)
	assert.Equal(t, ViewEditor, s.View, "no images never reaches results")
	assert.NotEmpty(t, s.Err)
}

func TestResetRestoresDefaults(t *testing.T) {
	idx := catalog.MustDefaultIndex()
	s := New(idx)

	require.NoError(t, s.Select(idx, catalog.GroupLighting, "gentle"))
	require.NoError(t, s.Select(idx, catalog.GroupCostume, "aoDaiCachTan"))
	require.NoError(t, s.SelectAll(idx, catalog.GroupBodyPoses))
	require.NoError(t, s.Select(idx, catalog.GroupPosesWithProps, "tuaBenDauLan"))
	require.NoError(t, s.SetCount(8))
	s.SetSource(Source{Image: media.Image{Data: []byte("x"), MIMEType: "image/png"}})
	ticket, _ := s.Begin()
	s.Finish(ticket, someImages, nil)
	require.Equal(t, ViewResults, s.View)

	s.Reset(idx)

	fresh := New(idx)
	assert.Equal(t, fresh.View, s.View)
	assert.Equal(t, fresh.Selections, s.Selections)
	assert.Equal(t, fresh.Count, s.Count)
	assert.True(t, s.Source.Empty())
	assert.Nil(t, s.Results)
	assert.Empty(t, s.Err)
	assert.False(t, s.Generating)
}

func TestStaleTicketIsIgnoredAfterReset(t *testing.T) {
	idx := catalog.MustDefaultIndex()
	s := New(idx)

	stale, err := s.Begin()
	require.NoError(t, err)
	s.Reset(idx)

	assert.False(t, s.Finish(stale, someImages, nil))
	assert.Equal(t, ViewEditor, s.View)
	assert.Nil(t, s.Results)

	fresh, err := s.Begin()
	require.NoError(t, err, "reset clears the running flag")
	assert.True(t, s.Finish(fresh, someImages, nil))
	assert.Equal(t, ViewResults, s.View)
}

func TestTicketSnapshotIsDetached(t *testing.T) {
	idx := catalog.MustDefaultIndex()
	s := New(idx)
	require.NoError(t, s.Select(idx, catalog.GroupBodyPoses, "tayThoOTrenCo"))
	s.SetSource(Source{Image: media.Image{Data: []byte("abc"), MIMEType: "image/png"}})

	ticket, err := s.Begin()
	require.NoError(t, err)

	require.NoError(t, s.Select(idx, catalog.GroupBodyPoses, "tayThoOTrenCo"))
	s.Source.Image.Data[0] = 'z'

	assert.Equal(t, []string{"tayThoOTrenCo"}, ticket.Selections.PoseIDs(idx))
	assert.Equal(t, []byte("abc"), ticket.Source.Image.Data)
}

func TestSetCount(t *testing.T) {
	s := New(catalog.MustDefaultIndex())
	require.NoError(t, s.SetCount(1))
	assert.Equal(t, 1, s.Count)
	assert.ErrorIs(t, s.SetCount(3), ErrInvalidCount)
	assert.Equal(t, 1, s.Count)
}
