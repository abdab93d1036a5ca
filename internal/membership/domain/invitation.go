package domain

import "time"

// DefaultInvitationTTL is how long an invitation stays redeemable. Expiry
// is fixed per invitation at creation.
const DefaultInvitationTTL = 7 * 24 * time.Hour

type InvitationStatus string

const (
	InvitationPending InvitationStatus = "pending"
	InvitationUsed    InvitationStatus = "used"
	InvitationExpired InvitationStatus = "expired"
)

type Invitation struct {
	ID        string
	Email     string // normalised
	TokenHash string // sha-256 hex of the secret; the secret is never stored
	CreatedBy PrincipalRef
	Used      bool
	UsedAt    *time.Time
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsExpired reports whether the invitation has reached its expiry at now.
func (i *Invitation) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// IsRedeemable reports whether the invitation can still be consumed.
func (i *Invitation) IsRedeemable(now time.Time) bool {
	return !i.Used && !i.IsExpired(now)
}

func (i *Invitation) Status(now time.Time) InvitationStatus {
	switch {
	case i.Used:
		return InvitationUsed
	case i.IsExpired(now):
		return InvitationExpired
	default:
		return InvitationPending
	}
}
