package domain

import "time"

// DealStatus is the lifecycle state of a deal.
type DealStatus string

const (
	DealStatusNew        DealStatus = "new"
	DealStatusInProgress DealStatus = "in_progress"
	DealStatusClosed     DealStatus = "closed"
)

// ValidDealStatus reports whether s is a known deal status.
func ValidDealStatus(s DealStatus) bool {
	switch s {
	case DealStatusNew, DealStatusInProgress, DealStatusClosed:
		return true
	}
	return false
}

// Deal belongs to exactly one client and is cascade-deleted with it.
// ClosedAt is a planned close date; it must lie in the future when set
// through the API, but the column itself carries no such constraint.
type Deal struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	ClientID  uint       `json:"client_id" gorm:"not null;index"`
	Title     string     `json:"title" gorm:"uniqueIndex;not null"`
	Status    DealStatus `json:"status" gorm:"not null;index"`
	Value     int64      `json:"value" gorm:"not null"`
	CreatedAt time.Time  `json:"created_at" gorm:"not null;index"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at" gorm:"index"`
}
