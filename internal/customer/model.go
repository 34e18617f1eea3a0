package customer

import (
	"time"
)

type Customer struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:50;not null" json:"name"`
	LastName  string    `gorm:"size:50" json:"lastName,omitempty"`
	Email     string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone1    string    `gorm:"size:20" json:"phone1,omitempty"`
	Phone2    string    `gorm:"size:20" json:"phone2,omitempty"`
	Facebook  string    `gorm:"size:100" json:"facebook,omitempty"`
	Instagram string    `gorm:"size:100" json:"instagram,omitempty"`
	TikTok    string    `gorm:"size:100" json:"tikTok,omitempty"`
	Line      string    `gorm:"size:100" json:"line,omitempty"`
	X         string    `gorm:"size:100" json:"x,omitempty"`
	IsActive  bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Customer) TableName() string {
	return "customers"
}
