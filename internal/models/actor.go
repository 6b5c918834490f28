// internal/models/actor.go
package models

import "time"

// Actor is a registered on-chain participant. The wallet address is the
// primary identity and the profile is immutable after the claim succeeds.
type Actor struct {
	Address      string    `json:"address" gorm:"primaryKey;size:42"`
	Role         Role      `json:"role" gorm:"not null"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Phone        string    `json:"phone" gorm:"size:50"`
	Location     string    `json:"location" gorm:"size:255"`
	RegisteredAt time.Time `json:"registered_at" gorm:"autoCreateTime"`
}

// ActorProfile is the read view handed to callers. A lookup for an
// unknown wallet returns the zero value with Registered == false rather
// than an error, so history rendering tolerates unknown actors.
type ActorProfile struct {
	Address    string `json:"address"`
	Role       Role   `json:"role"`
	RoleLabel  string `json:"role_label"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Location   string `json:"location"`
	Registered bool   `json:"registered"`
}

func (a *Actor) Profile() ActorProfile {
	return ActorProfile{
		Address:    a.Address,
		Role:       a.Role,
		RoleLabel:  a.Role.String(),
		Name:       a.Name,
		Phone:      a.Phone,
		Location:   a.Location,
		Registered: true,
	}
}
