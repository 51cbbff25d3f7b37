package batch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"photo-style-studio/internal/catalog"
	"photo-style-studio/internal/gemini"
	"photo-style-studio/internal/media"
	"photo-style-studio/internal/selection"
)

type mockImageGenerator struct {
	mock.Mock
}

func (m *mockImageGenerator) HasCredentials() bool {
	return m.Called().Bool(0)
}

func (m *mockImageGenerator) GenerateImage(ctx context.Context, req gemini.ImageRequest) (gemini.Response, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(gemini.Response), args.Error(1)
}

var sourceImage = media.Image{Data: []byte("source-bytes"), MIMEType: "image/jpeg"}

func forPose(t *testing.T, poseID string) interface{} {
	t.Helper()
	pose, ok := catalog.MustDefaultIndex().PoseOption(poseID)
	require.True(t, ok)
	return mock.MatchedBy(func(req gemini.ImageRequest) bool {
		return strings.Contains(req.Prompt, "She is in the pose: '"+pose.Title+"'")
	})
}

func imageResponse(data string) gemini.Response {
	return gemini.Response{Parts: []gemini.Part{
		{Text: "here"},
		{Data: []byte(data), MIMEType: "image/png"},
		{Data: []byte("second-" + data), MIMEType: "image/png"},
	}}
}

func selectPoses(t *testing.T, ids ...string) selection.State {
	t.Helper()
	idx := catalog.MustDefaultIndex()
	st := selection.Defaults(idx)
	for _, id := range ids {
		group := catalog.GroupBodyPoses
		if _, ok := idx.Option(catalog.GroupPosesWithProps, id); ok {
			group = catalog.GroupPosesWithProps
		}
		require.NoError(t, st.Toggle(idx, group, id))
	}
	return st
}

func TestGenerateValidation(t *testing.T) {
	tests := []struct {
		name  string
		creds bool
		req   Request
		want  error
	}{
		{
			name:  "missing image",
			creds: true,
			req:   Request{Selections: selectPoses(t, "khoeTamLungTran"), Count: 1},
			want:  ErrMissingImage,
		},
		{
			name:  "missing api key",
			creds: false,
			req:   Request{Selections: selectPoses(t, "khoeTamLungTran"), Image: sourceImage, Count: 1},
			want:  ErrMissingAPIKey,
		},
		{
			name:  "no pose selected",
			creds: true,
			req:   Request{Selections: selection.Defaults(catalog.MustDefaultIndex()), Image: sourceImage, Count: 4},
			want:  ErrNoPoseSelected,
		},
		{
			name:  "zero count",
			creds: true,
			req:   Request{Selections: selectPoses(t, "khoeTamLungTran"), Image: sourceImage, Count: 0},
			want:  ErrInvalidCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockImageGenerator{}
			client.On("HasCredentials").Return(tt.creds).Maybe()

			g := New(Options{Client: client})
			images, err := g.Generate(context.Background(), tt.req)

			assert.Nil(t, images)
			assert.ErrorIs(t, err, tt.want)
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
			client.AssertNotCalled(t, "GenerateImage", mock.Anything, mock.Anything)
		})
	}
}

func TestGenerateNilClientIsMissingKey(t *testing.T) {
	g := New(Options{})
	_, err := g.Generate(context.Background(), Request{
		Selections: selectPoses(t, "khoeTamLungTran"),
		Image:      sourceImage,
		Count:      1,
	})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGeneratePartialFailureKeepsQueueOrder(t *testing.T) {
	client := &mockImageGenerator{}
	client.On("HasCredentials").Return(true)
	client.On("GenerateImage", mock.Anything, forPose(t, "nangCanhLuuDo")).
		Return(gemini.Response{}, errors.New("boom")).Once()
	client.On("GenerateImage", mock.Anything, forPose(t, "khoeTamLungTran")).
		Return(imageResponse("img-1"), nil).After(50 * time.Millisecond).Once()
	client.On("GenerateImage", mock.Anything, forPose(t, "tayThoOTrenCo")).
		Return(gemini.Response{}, errors.New("quota")).Once()
	client.On("GenerateImage", mock.Anything, forPose(t, "dangNgoiThanhTu")).
		Return(imageResponse("img-3"), nil).Once()

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	g := New(Options{Client: client, Metrics: metrics})

	st := selectPoses(t, "nangCanhLuuDo", "khoeTamLungTran", "tayThoOTrenCo", "dangNgoiThanhTu")
	images, err := g.Generate(context.Background(), Request{Selections: st, Image: sourceImage, Count: 4})
	require.NoError(t, err)

	require.Len(t, images, 2)
	assert.Equal(t, "khoeTamLungTran-1", images[0].ID)
	assert.Equal(t, "dangNgoiThanhTu-3", images[1].ID)
	assert.Equal(t, "data:image/png;base64,"+media.Image{Data: []byte("img-1")}.Base64(), images[0].ImageURL)
	assert.Equal(t, []byte("img-3"), images[1].Image.Data)
	assert.Equal(t, "Khoe Tấm Lưng Trần", images[0].Title)
	assert.Equal(t, "Khoe_Tấm_Lưng_Trần.png", images[0].Filename())

	client.AssertNumberOfCalls(t, "GenerateImage", 4)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues(outcomeOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues(outcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.batches.WithLabelValues(outcomeOK)))
}

func TestGenerateCyclesPosesAcrossCount(t *testing.T) {
	client := &mockImageGenerator{}
	client.On("HasCredentials").Return(true)
	client.On("GenerateImage", mock.Anything, mock.Anything).Return(imageResponse("x"), nil)

	g := New(Options{Client: client})
	st := selectPoses(t, "tuaBenDauLan", "dangNgoiThanhTu")
	images, err := g.Generate(context.Background(), Request{Selections: st, Image: sourceImage, Count: 5})
	require.NoError(t, err)

	var ids []string
	for _, img := range images {
		ids = append(ids, img.ID)
	}
	assert.Equal(t, []string{
		"tuaBenDauLan-0", "dangNgoiThanhTu-1", "tuaBenDauLan-2", "dangNgoiThanhTu-3", "tuaBenDauLan-4",
	}, ids)
}

func TestGenerateTextOnlyIsEmptyResult(t *testing.T) {
	client := &mockImageGenerator{}
	client.On("HasCredentials").Return(true)
	client.On("GenerateImage", mock.Anything, mock.Anything).
		Return(gemini.Response{Parts: []gemini.Part{{Text: "I can't do that"}}}, nil)

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	g := New(Options{Client: client, Metrics: metrics})

	images, err := g.Generate(context.Background(), Request{
		Selections: selectPoses(t, "khoeTamLungTran", "tayThoOTrenCo"),
		Image:      sourceImage,
		Count:      4,
	})

	assert.Nil(t, images)
	require.ErrorIs(t, err, ErrEmptyResult)
	var ee *EmptyResultError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 4, ee.Requested)
	assert.Equal(t, 0, ee.Failed)
	assert.Equal(t, msgEmpty, UserMessage(err))
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.requests.WithLabelValues(outcomeNoImage)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.batches.WithLabelValues(outcomeEmpty)))
}

func TestGenerateAllFailedIsEmptyResult(t *testing.T) {
	client := &mockImageGenerator{}
	client.On("HasCredentials").Return(true)
	client.On("GenerateImage", mock.Anything, mock.Anything).Return(gemini.Response{}, errors.New("down"))

	g := New(Options{Client: client})
	_, err := g.Generate(context.Background(), Request{
		Selections: selectPoses(t, "khoeTamLungTran"),
		Image:      sourceImage,
		Count:      2,
	})

	var ee *EmptyResultError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 2, ee.Failed)
}

func TestGenerateSharesOneSourceSnapshot(t *testing.T) {
	var mu sync.Mutex
	var seen [][]byte

	client := &mockImageGenerator{}
	client.On("HasCredentials").Return(true)
	client.On("GenerateImage", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			req := args.Get(1).(gemini.ImageRequest)
			mu.Lock()
			seen = append(seen, req.Image.Data)
			mu.Unlock()
		}).
		Return(imageResponse("x"), nil)

	src := media.Image{Data: []byte("abc"), MIMEType: "image/png"}
	g := New(Options{Client: client})
	_, err := g.Generate(context.Background(), Request{
		Selections: selectPoses(t, "khoeTamLungTran", "nangCanhLuuDo"),
		Image:      src,
		Count:      3,
	})
	require.NoError(t, err)

	require.Len(t, seen, 3)
	for _, data := range seen {
		assert.Equal(t, []byte("abc"), data)
		assert.Same(t, &seen[0][0], &data[0], "all requests share one snapshot")
		assert.NotSame(t, &src.Data[0], &data[0], "snapshot is detached from the caller")
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, ErrNoPoseSelected.Message, UserMessage(ErrNoPoseSelected))
	assert.Equal(t, msgEmpty, UserMessage(&EmptyResultError{Requested: 1}))
	assert.Equal(t, msgGeneric, UserMessage(errors.New("kaboom")))
}
