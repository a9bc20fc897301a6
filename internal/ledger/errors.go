package ledger

import "errors"

var (
	// ErrBanned denies every credit-consuming or referral-granting
	// action. Bans do not erase balances, grants or history.
	ErrBanned = errors.New("user is banned")

	// ErrNotMember means the required-channel membership check failed
	// or came back negative.
	ErrNotMember = errors.New("user is not a channel member")

	// ErrNoCredit means the balance is exhausted.
	ErrNoCredit = errors.New("insufficient credits")

	// ErrInvalidAmount rejects non-positive credit amounts.
	ErrInvalidAmount = errors.New("invalid amount")
)
