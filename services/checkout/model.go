package checkout

import (
	"fmt"
	"time"
)

// PendingPurchase remembers the single product a guest tried to buy before
// authenticating. A later attempt overwrites an earlier one.
type PendingPurchase struct {
	VisitorUID string
	ProductUID string
	CreatedAt  time.Time
}

// Credentials is what the login form carries.
type Credentials struct {
	Email    string
	Password string
}

// Registration is what the signup form carries. Role distinguishes regular
// users from chapter admins.
type Registration struct {
	Email    string
	Password string
	Username string
	Role     string
}

// LoginResult reports what the login flow accomplished. Replayed is true when
// a pending purchase was pushed to the backend and mirrored into the cart.
type LoginResult struct {
	Username   string
	Replayed   bool
	ProductUID string
}

// ReplayError signals that authentication succeeded but replaying the pending
// purchase did not. The session is kept and the pending purchase stays stored
// so the visitor can retry.
type ReplayError struct {
	ProductUID string
	Cause      error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("could not replay pending purchase of product %s: %s", e.ProductUID, e.Cause)
}

func (e *ReplayError) Unwrap() error {
	return e.Cause
}

const minPasswordLength = 8
