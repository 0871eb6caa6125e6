package models

import "time"

// DefaultBanReason is recorded when an admin bans without a reason.
const DefaultBanReason = "Admin Ban"

// BlockedIP is a banned visitor identity.
type BlockedIP struct {
	IPAddress string    `gorm:"primaryKey;size:64" json:"ip_address"`
	Reason    string    `gorm:"size:255" json:"reason"`
	BlockedAt time.Time `gorm:"index" json:"blocked_at"`
}
