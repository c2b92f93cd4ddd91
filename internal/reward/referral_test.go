package reward

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weks-labs/rewards-bot/internal/ledger"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages map[string][]string
	fail     bool
}

func (n *recordingNotifier) Notify(_ context.Context, userID, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.fail {
		return errors.New("telegram unreachable")
	}

	if n.messages == nil {
		n.messages = make(map[string][]string)
	}
	n.messages[userID] = append(n.messages[userID], message)
	return nil
}

func setupReferralProcessor(t *testing.T) (*Processor, ledger.Store, *recordingNotifier) {
	t.Helper()

	p, store := setupProcessor(t)
	notifier := &recordingNotifier{}
	p.notifier = notifier
	return p, store, notifier
}

func TestOnArrival_GrantsBonusOnce(t *testing.T) {
	p, store, notifier := setupReferralProcessor(t)
	ctx := context.Background()

	credited, err := p.OnArrival(ctx, "7", "ref_42")
	require.NoError(t, err)
	assert.True(t, credited)

	balance, err := store.GetBalance(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), balance)
	assert.Len(t, notifier.messages["42"], 1)

	// Duplicate delivery of the same arrival event is a no-op.
	credited, err = p.OnArrival(ctx, "7", "ref_42")
	require.NoError(t, err)
	assert.False(t, credited)

	balance, err = store.GetBalance(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), balance)
	assert.Len(t, notifier.messages["42"], 1)
}

func TestOnArrival_IgnoresSelfReferral(t *testing.T) {
	p, store, _ := setupReferralProcessor(t)
	ctx := context.Background()

	credited, err := p.OnArrival(ctx, "7", "ref_7")
	require.NoError(t, err)
	assert.False(t, credited)

	balance, err := store.GetBalance(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestOnArrival_IgnoresNonReferralPayloads(t *testing.T) {
	p, _, notifier := setupReferralProcessor(t)
	ctx := context.Background()

	for _, payload := range []string{"", "ref_", "promo_10", "refx_42"} {
		credited, err := p.OnArrival(ctx, "7", payload)
		require.NoError(t, err)
		assert.False(t, credited, "payload %q", payload)
	}

	assert.Empty(t, notifier.messages)
}

func TestOnArrival_ConcurrentDuplicatesCreditOnce(t *testing.T) {
	p, store, _ := setupReferralProcessor(t)
	ctx := context.Background()

	const workers = 16
	results := make(chan bool, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			credited, err := p.OnArrival(ctx, "7", "ref_42")
			assert.NoError(t, err)
			results <- credited
		}()
	}
	wg.Wait()
	close(results)

	granted := 0
	for credited := range results {
		if credited {
			granted++
		}
	}
	assert.Equal(t, 1, granted)

	balance, err := store.GetBalance(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), balance)
}

func TestOnArrival_NotificationFailureKeepsBonus(t *testing.T) {
	p, store, notifier := setupReferralProcessor(t)
	notifier.fail = true
	ctx := context.Background()

	credited, err := p.OnArrival(ctx, "7", "ref_42")
	require.NoError(t, err)
	assert.True(t, credited)

	balance, err := store.GetBalance(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), balance)
}
