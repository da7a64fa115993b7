package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/catalog/internal/models"
	"github.com/Skotchmaster/catalog/internal/testutil"
)

func TestWorker_RunOnceDeletesOnlyRowsPastRetention(t *testing.T) {
	rp := testutil.NewRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	record := func(exp time.Time) string {
		jti := uuid.NewString()
		require.NoError(t, rp.RecordToken(ctx, &models.IssuedToken{
			JTI: jti, TokenType: "access", Owner: "user@example.com", ExpiresAt: exp,
		}))
		return jti
	}

	old := record(now.Add(-48 * time.Hour))
	recent := record(now.Add(-1 * time.Hour))
	live := record(now.Add(time.Hour))

	w := New(rp, nil, nil, 24*time.Hour)
	w.now = func() time.Time { return now }

	n, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = rp.FindTokenByJTI(ctx, old)
	assert.Error(t, err)
	for _, jti := range []string{recent, live} {
		_, err = rp.FindTokenByJTI(ctx, jti)
		assert.NoError(t, err)
	}
}

type countingPruner struct {
	calls chan time.Time
}

func (p *countingPruner) DeleteExpiredTokens(_ context.Context, before time.Time) (int64, error) {
	p.calls <- before
	return 0, nil
}

func TestWorker_StartStopsOnCancel(t *testing.T) {
	p := &countingPruner{calls: make(chan time.Time, 16)}
	w := New(p, nil, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx, 10*time.Millisecond)
		close(done)
	}()

	for range 2 {
		select {
		case <-p.calls:
		case <-time.After(time.Second):
			t.Fatal("worker did not run")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
