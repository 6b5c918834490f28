// internal/services/farm_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sruthysatheesh/blockchain-supplychain/internal/ledger"
	"github.com/sruthysatheesh/blockchain-supplychain/internal/models"
	"github.com/sruthysatheesh/blockchain-supplychain/internal/utils"
)

type FarmService struct {
	db    *gorm.DB
	chain *ledger.Ledger
}

type RegisterFarmRequest struct {
	FarmName     string   `json:"farm_name" validate:"required,min=2,max=255"`
	OwnerName    string   `json:"owner_name" validate:"required,min=2,max=255"`
	Email        string   `json:"email" validate:"required,email"`
	Phone        string   `json:"phone" validate:"required"`
	Wallet       string   `json:"wallet" validate:"required,wallet"`
	Coordinates  string   `json:"coordinates" validate:"required"`
	Certificates []string `json:"certificates,omitempty"`
}

type ReviewFarmRequest struct {
	Note string `json:"note,omitempty"`
}

func NewFarmService(db *gorm.DB, chain *ledger.Ledger) *FarmService {
	return &FarmService{
		db:    db,
		chain: chain,
	}
}

// Register files a pending farm registration. The wallet is not touched
// on the ledger until an admin approves the submission.
func (s *FarmService) Register(req *RegisterFarmRequest) (*models.FarmRegistration, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	wallet := ledger.NormalizeAddress(req.Wallet)

	var pending int64
	s.db.Model(&models.FarmRegistration{}).
		Where("wallet_address = ? AND status = ?", wallet, models.ApprovalStatusPending).
		Count(&pending)
	if pending > 0 {
		return nil, errors.New("a registration for this wallet is already pending review")
	}

	profile, err := s.chain.GetActorProfile(wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to check ledger registration: %w", err)
	}
	if profile.Registered {
		return nil, errors.New("this wallet is already registered on the ledger")
	}

	farm := &models.FarmRegistration{
		FarmName:      req.FarmName,
		OwnerName:     req.OwnerName,
		Email:         req.Email,
		Phone:         req.Phone,
		WalletAddress: wallet,
		Coordinates:   req.Coordinates,
		Certificates:  req.Certificates,
		Status:        models.ApprovalStatusPending,
	}

	if err := s.db.Create(farm).Error; err != nil {
		return nil, fmt.Errorf("failed to create farm registration: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"farm":   farm.FarmName,
		"wallet": farm.WalletAddress,
	}).Info("Farm registration submitted")

	return farm, nil
}

func (s *FarmService) List(status string, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.FarmRegistration{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if params.Search != "" {
		search := "%" + params.Search + "%"
		query = query.Where("farm_name ILIKE ? OR owner_name ILIKE ?", search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count farm registrations: %w", err)
	}

	var farms []models.FarmRegistration
	query = utils.ApplySort(query, params, []string{"created_at", "farm_name", "status"})
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&farms).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch farm registrations: %w", err)
	}

	result := utils.CreatePaginationResult(farms, total, params)
	return &result, nil
}

func (s *FarmService) Get(id string) (*models.FarmRegistration, error) {
	var farm models.FarmRegistration
	if err := s.db.Where("id = ?", id).First(&farm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("farm registration not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &farm, nil
}

// Approve finalizes a pending registration: the reviewing admin's wallet
// registers the farm on the ledger, then the row is marked approved. An
// ErrAlreadyRegistered from the ledger is tolerated so a retried
// approval converges instead of wedging the row in pending.
func (s *FarmService) Approve(id string, adminUserID string, note string) (*models.FarmRegistration, error) {
	farm, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if farm.Status != models.ApprovalStatusPending {
		return nil, fmt.Errorf("registration is already %s", farm.Status)
	}

	var admin models.User
	if err := s.db.Where("id = ?", adminUserID).First(&admin).Error; err != nil {
		return nil, fmt.Errorf("failed to load reviewing admin: %w", err)
	}
	if admin.WalletAddress == "" {
		return nil, errors.New("reviewing admin has no wallet address")
	}

	err = s.chain.AddFarmAndProfile(admin.WalletAddress, farm.WalletAddress, farm.OwnerName, farm.Phone, farm.Coordinates)
	if err != nil && !errors.Is(err, ledger.ErrAlreadyRegistered) {
		return nil, fmt.Errorf("ledger registration failed: %w", err)
	}

	if err := s.review(farm, admin.ID, models.ApprovalStatusApproved, note); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"farm":   farm.FarmName,
		"wallet": farm.WalletAddress,
		"admin":  admin.WalletAddress,
	}).Info("Farm registration approved")

	return farm, nil
}

func (s *FarmService) Decline(id string, adminUserID string, note string) (*models.FarmRegistration, error) {
	farm, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if farm.Status != models.ApprovalStatusPending {
		return nil, fmt.Errorf("registration is already %s", farm.Status)
	}

	adminID, err := uuid.Parse(adminUserID)
	if err != nil {
		return nil, fmt.Errorf("invalid admin id: %w", err)
	}

	if err := s.review(farm, adminID, models.ApprovalStatusDeclined, note); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"farm":   farm.FarmName,
		"wallet": farm.WalletAddress,
	}).Info("Farm registration declined")

	return farm, nil
}

func (s *FarmService) review(farm *models.FarmRegistration, adminID uuid.UUID, status models.ApprovalStatus, note string) error {
	now := time.Now().UTC()
	farm.Status = status
	farm.ReviewedBy = &adminID
	farm.ReviewedAt = &now
	farm.ReviewNote = note

	if err := s.db.Save(farm).Error; err != nil {
		return fmt.Errorf("failed to update farm registration: %w", err)
	}
	return nil
}
