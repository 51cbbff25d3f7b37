package batch

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"photo-style-studio/internal/catalog"
	"photo-style-studio/internal/gemini"
	"photo-style-studio/internal/media"
	"photo-style-studio/internal/prompt"
	"photo-style-studio/internal/selection"
)

// ImageGenerator is the remote image model.
type ImageGenerator interface {
	HasCredentials() bool
	GenerateImage(ctx context.Context, req gemini.ImageRequest) (gemini.Response, error)
}

type Options struct {
	Client  ImageGenerator
	Index   *catalog.Index
	Logger  *slog.Logger
	Metrics *Metrics
}

type Generator struct {
	client  ImageGenerator
	idx     *catalog.Index
	logger  *slog.Logger
	metrics *Metrics
}

func New(opts Options) *Generator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	idx := opts.Index
	if idx == nil {
		idx = catalog.MustDefaultIndex()
	}

	return &Generator{
		client:  opts.Client,
		idx:     idx,
		logger:  logger,
		metrics: opts.Metrics,
	}
}

type Request struct {
	Selections selection.State
	Image      media.Image
	Count      int
}

// slot is the settled outcome of one queue entry.
type slot struct {
	image *GeneratedImage
	err   error
}

// Generate fans out one request per queue entry and waits for all of them.
// Failed requests are logged and dropped; the result keeps queue order.
func (g *Generator) Generate(ctx context.Context, req Request) ([]GeneratedImage, error) {
	poseIDs, err := g.validate(req)
	if err != nil {
		g.metrics.batch(outcomeValidation)
		return nil, err
	}

	runID := uuid.NewString()
	logger := g.logger.With("run_id", runID)
	started := time.Now()

	// Every request of this run reads the same snapshot.
	src := req.Image.Clone()
	base := prompt.Base(g.idx, req.Selections)
	queue := BuildQueue(poseIDs, req.Count)

	logger.Info("batch started", "requested", len(queue), "poses", len(poseIDs), "mime", src.MIMEType)

	slots := make([]slot, len(queue))
	var eg errgroup.Group
	for i, poseID := range queue {
		eg.Go(func() error {
			slots[i] = g.generateOne(ctx, logger, i, poseID, base, src)
			return nil
		})
	}
	_ = eg.Wait()

	images := make([]GeneratedImage, 0, len(slots))
	failed := 0
	for _, s := range slots {
		if s.err != nil {
			failed++
			continue
		}
		if s.image != nil {
			images = append(images, *s.image)
		}
	}

	elapsed := time.Since(started)
	g.metrics.observe(elapsed)

	if len(images) == 0 {
		g.metrics.batch(outcomeEmpty)
		logger.Warn("batch produced no images", "requested", len(queue), "failed", failed, "dur_ms", elapsed.Milliseconds())
		return nil, &EmptyResultError{Requested: len(queue), Failed: failed}
	}

	g.metrics.batch(outcomeOK)
	logger.Info("batch finished", "requested", len(queue), "images", len(images), "failed", failed, "dur_ms", elapsed.Milliseconds())
	return images, nil
}

func (g *Generator) validate(req Request) ([]string, error) {
	if req.Image.Empty() {
		return nil, ErrMissingImage
	}
	if g.client == nil || !g.client.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	poseIDs := req.Selections.PoseIDs(g.idx)
	if len(poseIDs) == 0 {
		return nil, ErrNoPoseSelected
	}
	if req.Count < 1 {
		return nil, ErrInvalidCount
	}
	return poseIDs, nil
}

func (g *Generator) generateOne(ctx context.Context, logger *slog.Logger, queueIndex int, poseID, base string, src media.Image) slot {
	pose, ok := g.idx.PoseOption(poseID)
	if !ok {
		logger.Warn("unknown pose skipped", "pose", poseID, "index", queueIndex)
		return slot{}
	}

	resp, err := g.client.GenerateImage(ctx, gemini.ImageRequest{
		Image:  src,
		Prompt: prompt.WithPose(base, pose),
	})
	if err != nil {
		rerr := &RemoteError{PoseID: poseID, QueueIndex: queueIndex, Err: err}
		g.metrics.request(outcomeFailed)
		logger.Warn("generation request failed", "pose", poseID, "index", queueIndex, "err", err)
		return slot{err: rerr}
	}

	img, ok := resp.FirstImage()
	if !ok {
		g.metrics.request(outcomeNoImage)
		logger.Info("response carried no image", "pose", poseID, "index", queueIndex, "parts", len(resp.Parts))
		return slot{}
	}

	g.metrics.request(outcomeOK)
	return slot{image: &GeneratedImage{
		ID:          uniqueID(poseID, queueIndex),
		PoseID:      poseID,
		Title:       pose.Title,
		Description: pose.Description,
		ImageURL:    img.DataURI(),
		Image:       img,
	}}
}
