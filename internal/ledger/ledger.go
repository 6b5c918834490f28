// internal/ledger/ledger.go
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sruthysatheesh/blockchain-supplychain/internal/models"
)

// Ledger is the supply-chain custody and quantity state machine. It is
// the single shared registry of actors and products: all mutating
// operations are serialized through one writer lock and committed in one
// database transaction each, so a caller observes either full inclusion
// or a synchronous rejection, never partial effects. Reads are snapshot
// queries and never take the writer lock.
type Ledger struct {
	db  *gorm.DB
	mu  sync.Mutex
	log *logrus.Entry
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{
		db:  db,
		log: logrus.WithField("component", "ledger"),
	}
}

// write runs fn under the writer lock inside a single transaction.
func (l *Ledger) write(fn func(tx *gorm.DB) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.Transaction(fn)
}

// NormalizeAddress lowercases a wallet address so that mixed-case inputs
// from different wallets compare equal.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

func getActor(tx *gorm.DB, address string) (*models.Actor, error) {
	var actor models.Actor
	err := tx.Where("address = ?", NormalizeAddress(address)).First(&actor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("actor lookup: %w", err)
	}
	return &actor, nil
}

func getProduct(tx *gorm.DB, id uint64) (*models.Product, error) {
	var product models.Product
	err := tx.Where("product_id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product #%d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("product lookup: %w", err)
	}
	return &product, nil
}

// appendEvent adds one entry to a product's append-only history with the
// acting wallet and its role snapshotted at event time.
func appendEvent(tx *gorm.DB, productID uint64, actor string, role models.Role, details string) error {
	event := &models.ProductEvent{
		ProductID: productID,
		Timestamp: time.Now().UTC(),
		Actor:     NormalizeAddress(actor),
		ActorRole: role,
		Details:   details,
	}
	if err := tx.Create(event).Error; err != nil {
		return fmt.Errorf("failed to append history event: %w", err)
	}
	return nil
}

// isUniqueViolation detects a concurrent insert racing past the
// existence check (Postgres error 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
