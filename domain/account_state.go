package domain

import (
	"fmt"
	"time"
)

// DefaultLockoutThreshold is the number of consecutive failed logins that locks an account
const DefaultLockoutThreshold = 3

// AccountState is the explicit form of the flags stored in AccountActivity.
// Storage keeps two booleans and a counter; every transition goes through the
// functions in this file so the rules live in one place.
type AccountState int

const (
	StateOK AccountState = iota
	StateWarn
	StateLocked
	StateInactive
)

func (s AccountState) String() string {
	switch s {
	case StateOK:
		return "ACTIVE_OK"
	case StateWarn:
		return "ACTIVE_WARN"
	case StateLocked:
		return "LOCKED"
	case StateInactive:
		return "INACTIVE"
	default:
		return fmt.Sprintf("AccountState(%d)", int(s))
	}
}

// StateOf derives the account state from a ledger row.
// Inactive wins over locked: a deactivated account reports inactive even if it is also blocked.
func StateOf(a AccountActivity) AccountState {
	switch {
	case !a.Active:
		return StateInactive
	case a.Blocked:
		return StateLocked
	case a.FailedAttempts > 0:
		return StateWarn
	default:
		return StateOK
	}
}

// CanAttemptLogin reports whether a password check may be performed for the row
func CanAttemptLogin(a AccountActivity) error {
	switch StateOf(a) {
	case StateInactive:
		return ErrAccountInactive
	case StateLocked:
		return ErrAccountLocked
	default:
		return nil
	}
}

// NextOnFailure returns the row after one wrong password. Reaching threshold locks the account.
func NextOnFailure(a AccountActivity, now time.Time, threshold int) AccountActivity {
	if threshold <= 0 {
		threshold = DefaultLockoutThreshold
	}
	next := a
	next.FailedAttempts = a.FailedAttempts + 1
	if next.FailedAttempts >= threshold {
		next.Blocked = true
		at := now
		next.BlockedAt = &at
	}
	return next
}

// NextOnSuccess returns the row after a correct password
func NextOnSuccess(a AccountActivity, now time.Time) AccountActivity {
	next := a
	next.FailedAttempts = 0
	next.Blocked = false
	next.BlockedAt = nil
	at := now
	next.LastActivity = &at
	return next
}

// NextOnUnlock clears a lock. The counter is reset together with the flag.
func NextOnUnlock(a AccountActivity) AccountActivity {
	next := a
	next.Blocked = false
	next.BlockedAt = nil
	next.FailedAttempts = 0
	return next
}

// NextOnLock applies an administrative lock
func NextOnLock(a AccountActivity, now time.Time) AccountActivity {
	next := a
	next.Blocked = true
	if next.BlockedAt == nil {
		at := now
		next.BlockedAt = &at
	}
	return next
}

// NextOnActivation sets the active flag. Other fields are untouched.
func NextOnActivation(a AccountActivity, active bool) AccountActivity {
	next := a
	next.Active = active
	return next
}
