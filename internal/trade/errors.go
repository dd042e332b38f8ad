package trade

import "errors"

// Negotiation and settlement errors. Validation errors are reported to the
// acting user only; settlement errors are reported to both parties because
// the session stays open for renegotiation.
var (
	ErrSelfTrade         = errors.New("cannot trade with yourself")
	ErrAlreadyTrading    = errors.New("one or both users are already in an active trade")
	ErrSessionNotFound   = errors.New("trade is no longer active")
	ErrNotParticipant    = errors.New("user is not part of this trade")
	ErrForbidden         = errors.New("user may not perform this action")
	ErrInvalidQuantity   = errors.New("quantity must be a positive number")
	ErrInvalidAmount     = errors.New("amount must not be negative")
	ErrItemNotTradeable  = errors.New("item cannot be traded")
	ErrInsufficientFunds = errors.New("insufficient balance to complete the trade")
	ErrInsufficientItems = errors.New("insufficient items to complete the trade")
)
