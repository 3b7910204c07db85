package propagation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/propagation"
)

type recordingService struct {
	mu    sync.Mutex
	names []string
	block chan struct{}
}

func (s *recordingService) PropagateTemplate(ctx context.Context, templateName string) (*propagation.TemplateResult, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = append(s.names, templateName)
	return &propagation.TemplateResult{Template: templateName}, nil
}

func (s *recordingService) PurgeAddendum(ctx context.Context, uid string, before time.Time) (*propagation.Result, error) {
	return &propagation.Result{}, nil
}

func (s *recordingService) processed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.names...)
}

func TestRunner_DrainsQueueOnStop(t *testing.T) {
	svc := &recordingService{}
	r := NewRunner(svc, 4)

	assert.True(t, r.Enqueue("leave"))
	assert.True(t, r.Enqueue("tour plan"))
	r.Start()

	require.NoError(t, r.Stop(context.Background()))
	assert.Equal(t, []string{"leave", "tour plan"}, svc.processed())
	assert.False(t, r.Enqueue("leave"), "a stopped runner refuses work")
}

func TestRunner_QueueFull(t *testing.T) {
	r := NewRunner(&recordingService{}, 1)

	assert.True(t, r.Enqueue("leave"))
	assert.False(t, r.Enqueue("leave"))
	require.NoError(t, r.Stop(context.Background()))
}

func TestRunner_StopTimeoutCancelsWork(t *testing.T) {
	svc := &recordingService{block: make(chan struct{})}
	r := NewRunner(svc, 2)
	r.Start()
	require.True(t, r.Enqueue("leave"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, r.Stop(ctx), context.DeadlineExceeded)
	assert.Empty(t, svc.processed())
}
