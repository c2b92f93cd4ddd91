// Package reward orchestrates claim crediting and referral bonuses on top of
// the ledger store.
package reward

import (
	"context"
	"log/slog"
	"time"

	"github.com/weks-labs/rewards-bot/internal/domain"
	apperrors "github.com/weks-labs/rewards-bot/internal/errors"
	"github.com/weks-labs/rewards-bot/internal/ledger"
	"github.com/weks-labs/rewards-bot/internal/quota"
	"github.com/weks-labs/rewards-bot/pkg/metrics"
)

// MessageDailyCapReached is the machine-readable marker returned on claims
// clipped to zero by the quota.
const MessageDailyCapReached = "DAILY_CAP_REACHED"

// Config carries the crediting policy knobs.
type Config struct {
	DailyCap       int64
	CoinsPerUnit   int64
	ReferralBonus  int64
	ReferralPrefix string
}

const defaultReferralPrefix = "ref_"

// Notifier pushes a message to a user outside the current request, e.g. to
// tell an inviter their bonus landed. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, userID, message string) error
}

// Processor runs the claim and referral pipelines. All cross-request
// coordination relies on the atomicity of individual store operations; the
// processor itself holds no locks.
type Processor struct {
	store    ledger.Store
	cfg      Config
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

// NewProcessor constructs a Processor. notifier may be nil when no outbound
// channel is available (e.g. in the HTTP-only deployment).
func NewProcessor(store ledger.Store, cfg Config, notifier Notifier, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	if cfg.ReferralPrefix == "" {
		cfg.ReferralPrefix = defaultReferralPrefix
	}

	return &Processor{
		store:    store,
		cfg:      cfg,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// DailyCap exposes the configured quota for rendering.
func (p *Processor) DailyCap() int64 { return p.cfg.DailyCap }

// CoinsPerUnit exposes the configured per-unit reward for rendering.
func (p *Processor) CoinsPerUnit() int64 { return p.cfg.CoinsPerUnit }

// ReferralBonus exposes the configured bonus for rendering.
func (p *Processor) ReferralBonus() int64 { return p.cfg.ReferralBonus }

// EnsureUser creates the user record on first contact.
func (p *Processor) EnsureUser(ctx context.Context, identity *domain.Identity) (*domain.User, error) {
	user, err := p.store.GetOrCreateUser(ctx, identity.ID, identity.Name)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}

	return user, nil
}

// ProcessClaim credits a reported gameplay result, clipped by the daily
// quota. Reading the daily count and incrementing it are separate atomic
// operations, so two concurrent claims can both pass the clip against the
// same stale count; the combined overshoot is bounded by one claim's worth
// and is an accepted trade-off of the single-key store model.
func (p *Processor) ProcessClaim(ctx context.Context, identity *domain.Identity, reported int64) (*domain.ClaimResult, error) {
	start := p.now()

	result, err := p.processClaim(ctx, identity, reported)
	metrics.RecordClaim(claimStatus(result, err), time.Since(start))
	if err == nil && result.Coins > 0 {
		metrics.RecordCoinsCredited(result.Coins, result.CreditedUnits)
	}

	return result, err
}

func (p *Processor) processClaim(ctx context.Context, identity *domain.Identity, reported int64) (*domain.ClaimResult, error) {
	if _, err := p.EnsureUser(ctx, identity); err != nil {
		return nil, err
	}

	if reported <= 0 {
		return nil, apperrors.NewNothingToClaimError()
	}

	day := quota.Day(p.now())

	done, err := p.store.GetDailyCount(ctx, identity.ID, day)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}

	credited := quota.Clip(reported, done, p.cfg.DailyCap)
	if credited <= 0 {
		balance, err := p.store.GetBalance(ctx, identity.ID)
		if err != nil {
			return nil, apperrors.NewStoreError(err)
		}

		return &domain.ClaimResult{
			CreditedUnits: 0,
			Coins:         0,
			Today:         done,
			DailyCap:      p.cfg.DailyCap,
			Balance:       balance,
			Message:       MessageDailyCapReached,
		}, nil
	}

	newDaily, err := p.store.AddDailyCount(ctx, identity.ID, day, credited)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}

	coins := credited * p.cfg.CoinsPerUnit

	newBalance, err := p.store.AddBalance(ctx, identity.ID, coins)
	if err != nil {
		// The daily counter increment is already durable. That bounded
		// inconsistency is accepted: the next claim recomputes from the
		// persisted counter, and no false success is reported here.
		return nil, apperrors.NewStoreError(err)
	}

	return &domain.ClaimResult{
		CreditedUnits: credited,
		Coins:         coins,
		Today:         newDaily,
		DailyCap:      p.cfg.DailyCap,
		Balance:       newBalance,
	}, nil
}

// Balance returns the authoritative balance for the user.
func (p *Processor) Balance(ctx context.Context, userID string) (int64, error) {
	balance, err := p.store.GetBalance(ctx, userID)
	if err != nil {
		return 0, apperrors.NewStoreError(err)
	}

	return balance, nil
}

// TodayCount returns the units already credited today.
func (p *Processor) TodayCount(ctx context.Context, userID string) (int64, error) {
	count, err := p.store.GetDailyCount(ctx, userID, quota.Day(p.now()))
	if err != nil {
		return 0, apperrors.NewStoreError(err)
	}

	return count, nil
}

// Leaderboard returns the top n entries with display names resolved. The
// ranking is an eventually consistent view over balances.
func (p *Processor) Leaderboard(ctx context.Context, n int64) ([]domain.LeaderboardEntry, error) {
	entries, err := p.store.TopN(ctx, n)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}

	for i := range entries {
		user, err := p.store.GetUser(ctx, entries[i].UserID)
		if err != nil {
			p.log.Warn("failed to resolve leaderboard name",
				slog.String("user_id", entries[i].UserID), slog.Any("error", err))
			continue
		}
		if user != nil {
			entries[i].Name = user.Name
		}
	}

	metrics.RecordLeaderboardQuery(len(entries))

	return entries, nil
}

func claimStatus(result *domain.ClaimResult, err error) string {
	switch {
	case err != nil:
		return "error"
	case result != nil && result.Message == MessageDailyCapReached:
		return "cap_reached"
	default:
		return "credited"
	}
}
