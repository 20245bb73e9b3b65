package domain

// Client is a CRM account. UserID is nil while the client sits in the
// unassigned pool; otherwise exactly one user owns it.
type Client struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID *uint  `json:"user_id" gorm:"index"`
	Name   string `json:"name" gorm:"uniqueIndex;not null"`
	Email  string `json:"email" gorm:"index;not null"`
	Phone  string `json:"phone" gorm:"index;not null"`
	Notes  string `json:"notes"`

	Owner *User  `json:"-" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Deals []Deal `json:"-" gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// Assigned reports whether the client currently has an owner.
func (c *Client) Assigned() bool {
	return c.UserID != nil
}
