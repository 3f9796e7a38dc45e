package chart

import (
	"sync"
	"time"

	common_models "go-analytics/internal/common/models"
	"go-analytics/internal/metrics"
)

// Backend serializes drawing. There is one per process; every render holds
// it from the first draw call until the encoded image is in memory.
type Backend struct {
	mu sync.Mutex
}

func NewBackend() *Backend {
	return &Backend{}
}

// Do runs draw while holding the backend. The backend is released on every
// exit path, and a panic inside draw becomes a RenderError.
func (b *Backend) Do(draw func() ([]byte, error)) (out []byte, err error) {
	queued := time.Now()
	b.mu.Lock()
	metrics.RenderQueueWait.Observe(time.Since(queued).Seconds())

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = common_models.NewError(common_models.KindRenderError, "drawing panicked: %v", r)
		}
		metrics.ChartRenderDuration.Observe(time.Since(start).Seconds())
		b.mu.Unlock()
	}()

	out, err = draw()
	if err != nil && common_models.KindOf(err) == "" {
		err = common_models.WrapError(common_models.KindRenderError, err, "drawing failed")
	}
	return out, err
}
