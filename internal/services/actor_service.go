// internal/services/actor_service.go
package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/sruthysatheesh/blockchain-supplychain/internal/ledger"
	"github.com/sruthysatheesh/blockchain-supplychain/internal/models"
)

// ActorService is the shipping directory: it lists accounts whose
// on-chain role can receive custody, so senders pick a destination by
// name instead of pasting wallet addresses.
type ActorService struct {
	db    *gorm.DB
	chain *ledger.Ledger
}

type ActorEntry struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Wallet   string `json:"wallet"`
	Location string `json:"location,omitempty"`
}

// Roles whose wallets can appear as a shipping destination.
var receivableRoles = []string{"Collection Point", "Warehouse", "Processing Unit", "Retailer"}

func NewActorService(db *gorm.DB, chain *ledger.Ledger) *ActorService {
	return &ActorService{
		db:    db,
		chain: chain,
	}
}

// ListReceivers returns registered accounts that can take custody,
// optionally filtered by role label or a name search.
func (s *ActorService) ListReceivers(role, search string) ([]ActorEntry, error) {
	query := s.db.Model(&models.User{}).Where("wallet_address <> ''")

	if role != "" {
		query = query.Where("role = ?", role)
	} else {
		query = query.Where("role IN ?", receivableRoles)
	}
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var users []models.User
	if err := query.Order("role, name").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list receivers: %w", err)
	}

	entries := make([]ActorEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, ActorEntry{
			Name:     u.Name,
			Role:     u.Role,
			Wallet:   u.WalletAddress,
			Location: u.Location,
		})
	}
	return entries, nil
}

// Profile resolves a wallet against the ledger registry. Unknown wallets
// come back with Registered == false rather than an error.
func (s *ActorService) Profile(wallet string) (models.ActorProfile, error) {
	return s.chain.GetActorProfile(wallet)
}
