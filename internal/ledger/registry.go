// internal/ledger/registry.go
package ledger

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sruthysatheesh/blockchain-supplychain/internal/models"
)

// Role claims are distinct entry points rather than a generic
// register(role) so the assigned role is bound by construction and
// cannot be escalated by a crafted request. Claiming an
// already-registered wallet fails; profiles are immutable afterwards.

func (l *Ledger) ClaimAdminRole(caller, name, phone string) error {
	return l.registerActor(caller, models.RoleAdmin, name, phone, "")
}

func (l *Ledger) ClaimCollectionPointRole(caller, name, phone, location string) error {
	return l.registerActor(caller, models.RoleCollectionPoint, name, phone, location)
}

func (l *Ledger) ClaimWarehouseRole(caller, name, phone, location string) error {
	return l.registerActor(caller, models.RoleWarehouse, name, phone, location)
}

func (l *Ledger) ClaimProcessingUnitRole(caller, name, phone, location string) error {
	return l.registerActor(caller, models.RoleProcessingUnit, name, phone, location)
}

func (l *Ledger) ClaimRetailerRole(caller, name, phone, location string) error {
	return l.registerActor(caller, models.RoleRetailer, name, phone, location)
}

// AddFarmAndProfile registers a farm wallet on behalf of an admin. Farms
// never self-claim: the approval workflow gates them, and only a
// registered Admin can finalize the registration.
func (l *Ledger) AddFarmAndProfile(caller, farmWallet, name, phone, location string) error {
	err := l.write(func(tx *gorm.DB) error {
		admin, err := getActor(tx, caller)
		if err != nil {
			return err
		}
		if admin == nil || admin.Role != models.RoleAdmin {
			return fmt.Errorf("caller %s is not a registered admin: %w", caller, ErrUnauthorized)
		}
		return createActor(tx, farmWallet, models.RoleFarm, name, phone, location)
	})
	if err != nil {
		return err
	}

	l.log.WithFields(logrus.Fields{
		"wallet": NormalizeAddress(farmWallet),
		"role":   models.RoleFarm.String(),
		"admin":  NormalizeAddress(caller),
	}).Info("Farm registered")
	return nil
}

func (l *Ledger) registerActor(caller string, role models.Role, name, phone, location string) error {
	err := l.write(func(tx *gorm.DB) error {
		return createActor(tx, caller, role, name, phone, location)
	})
	if err != nil {
		return err
	}

	l.log.WithFields(logrus.Fields{
		"wallet": NormalizeAddress(caller),
		"role":   role.String(),
	}).Info("Actor registered")
	return nil
}

func createActor(tx *gorm.DB, address string, role models.Role, name, phone, location string) error {
	address = NormalizeAddress(address)
	if address == "" || address == models.ZeroAddress {
		return fmt.Errorf("the zero address cannot hold a role: %w", ErrUnauthorized)
	}

	existing, err := getActor(tx, address)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("wallet %s already has the %s role: %w", address, existing.Role, ErrAlreadyRegistered)
	}

	actor := &models.Actor{
		Address:  address,
		Role:     role,
		Name:     name,
		Phone:    phone,
		Location: location,
	}
	if err := tx.Create(actor).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("wallet %s: %w", address, ErrAlreadyRegistered)
		}
		return fmt.Errorf("failed to register actor: %w", err)
	}
	return nil
}

// GetActorProfile returns the profile for a wallet, or the zero-value
// sentinel (Registered == false) for unknown wallets including the zero
// address. Absence is not an error: history rendering must tolerate
// actors that never registered.
func (l *Ledger) GetActorProfile(address string) (models.ActorProfile, error) {
	actor, err := getActor(l.db, address)
	if err != nil {
		return models.ActorProfile{}, err
	}
	if actor == nil {
		return models.ActorProfile{Address: NormalizeAddress(address)}, nil
	}
	return actor.Profile(), nil
}
