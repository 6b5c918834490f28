// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is an off-chain account. Role is stored as the UI label ("Farmer",
// "Warehouse", ...) because Farmer and Customer exist only off-chain; the
// on-chain identity is the wallet address, which is authoritative.
type User struct {
	BaseModel
	Name          string     `json:"name" gorm:"size:255;not null"`
	Email         string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash  string     `json:"-" gorm:"size:255;not null"`
	Role          string     `json:"role" gorm:"size:50;not null"`
	Phone         string     `json:"phone" gorm:"size:50"`
	WalletAddress string     `json:"wallet_address" gorm:"size:42;index"`
	Location      string     `json:"location" gorm:"size:255"`
	LastLoginAt   *time.Time `json:"last_login_at"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
