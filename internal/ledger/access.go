package ledger

import (
	"context"
	"log/slog"

	"lookup_bot/internal/logger"
)

// MembershipChecker answers whether a user belongs to the required
// channel. It is an external call and a suspension point, so the
// controller never holds the ledger lock across it.
type MembershipChecker interface {
	IsMember(ctx context.Context, userID int64) (bool, error)
}

// Controller decides whether a user may perform a guarded lookup and
// at what cost: banned, then membership, then credit, with the admin
// and active unlimited users bypassing everything after the ban check.
type Controller struct {
	ledger     *Ledger
	membership MembershipChecker
	log        *slog.Logger
}

func NewController(l *Ledger, membership MembershipChecker) *Controller {
	return &Controller{
		ledger:     l,
		membership: membership,
		log:        logger.With("component", "access"),
	}
}

// Authorization is a pending debit. Exactly one of Commit or Refund
// must follow; later calls on a settled authorization are no-ops.
type Authorization struct {
	ctl       *Controller
	userID    int64
	unlimited bool
	settled   bool
}

// Unlimited reports whether the authorized user bypassed the credit
// check; the caller uses it for display only.
func (a *Authorization) Unlimited() bool { return a.unlimited }

// Authorize walks the request gates in order. A nil error means the
// action may proceed and its outcome must be reported back through the
// returned Authorization.
func (c *Controller) Authorize(ctx context.Context, userID int64) (*Authorization, error) {
	if c.ledger.IsBanned(userID) {
		return nil, ErrBanned
	}

	bypass := userID == c.ledger.cfg.AdminID && c.ledger.cfg.AdminID != 0
	if !bypass {
		bypass = c.ledger.IsUnlimited(ctx, userID)
	}

	if !bypass && c.membership != nil {
		ok, err := c.membership.IsMember(ctx, userID)
		if err != nil {
			c.log.Error("membership check failed", "user_id", userID, "error", err)
			return nil, ErrNotMember
		}
		if !ok {
			return nil, ErrNotMember
		}
	}

	if !bypass {
		if err := c.ledger.AuthorizeDebit(ctx, userID); err != nil {
			return nil, err
		}
	}

	return &Authorization{ctl: c, userID: userID, unlimited: bypass}, nil
}

// Commit settles the authorization after the guarded action returned a
// definitive answer, empty results included: the attempt consumed the
// quota. History and counters are best-effort and never undo the debit.
func (a *Authorization) Commit(ctx context.Context, number string) error {
	if a.settled {
		return nil
	}
	a.settled = true

	if !a.unlimited {
		if err := a.ctl.ledger.CommitDebit(ctx, a.userID); err != nil {
			return err
		}
	}
	if err := a.ctl.ledger.AppendSearch(ctx, a.userID, number); err != nil {
		a.ctl.log.Error("failed to append search history", "user_id", a.userID, "error", err)
	}
	return nil
}

// Refund settles the authorization after a timeout, transport error or
// unexpected failure, restoring the pre-authorization balance.
func (a *Authorization) Refund(ctx context.Context) error {
	if a.settled {
		return nil
	}
	a.settled = true

	if a.unlimited {
		return nil
	}
	return a.ctl.ledger.Refund(ctx, a.userID)
}
