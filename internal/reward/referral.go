package reward

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/weks-labs/rewards-bot/internal/errors"
	"github.com/weks-labs/rewards-bot/pkg/metrics"
)

// OnArrival handles a first-contact event carrying an optional referral
// payload of the form "ref_<inviter_id>". The SETNX referral marker is the
// idempotency guard: a given invitee can trigger at most one bonus grant
// across its lifetime, no matter how often the arrival event is replayed or
// how many replays race each other. Returns true when this call granted the
// bonus.
func (p *Processor) OnArrival(ctx context.Context, inviteeID, payload string) (bool, error) {
	inviterID, ok := p.parseReferralPayload(payload)
	if !ok || inviterID == inviteeID {
		return false, nil
	}

	claimed, err := p.store.TryClaimReferral(ctx, inviteeID, inviterID)
	if err != nil {
		return false, apperrors.NewStoreError(err)
	}
	if !claimed {
		return false, nil
	}

	if _, err := p.store.AddBalance(ctx, inviterID, p.cfg.ReferralBonus); err != nil {
		// The marker is already durable, so the bonus for this invitee is
		// lost rather than double-granted. Surface it loudly.
		p.log.Error("referral marker written but bonus credit failed",
			slog.String("invitee_id", inviteeID),
			slog.String("inviter_id", inviterID),
			slog.Any("error", err))
		return false, apperrors.NewStoreError(err)
	}

	metrics.RecordReferralBonus(p.cfg.ReferralBonus)

	p.notifyInviter(ctx, inviterID)

	return true, nil
}

func (p *Processor) parseReferralPayload(payload string) (string, bool) {
	if !strings.HasPrefix(payload, p.cfg.ReferralPrefix) {
		return "", false
	}

	inviterID := strings.TrimPrefix(payload, p.cfg.ReferralPrefix)
	if inviterID == "" {
		return "", false
	}

	return inviterID, true
}

// notifyInviter pushes a best-effort message to the inviter. Failure never
// rolls back the granted bonus.
func (p *Processor) notifyInviter(ctx context.Context, inviterID string) {
	if p.notifier == nil {
		return
	}

	message := fmt.Sprintf("🎉 Your invite joined! +%d coins credited.", p.cfg.ReferralBonus)

	err := apperrors.WithRetry(ctx, func() error {
		return p.notifier.Notify(ctx, inviterID, message)
	})
	if err != nil {
		p.log.Warn("failed to notify inviter about referral bonus",
			slog.String("inviter_id", inviterID), slog.Any("error", err))
	}
}
