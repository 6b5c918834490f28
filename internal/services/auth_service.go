// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sruthysatheesh/blockchain-supplychain/internal/config"
	"github.com/sruthysatheesh/blockchain-supplychain/internal/ledger"
	"github.com/sruthysatheesh/blockchain-supplychain/internal/models"
	"github.com/sruthysatheesh/blockchain-supplychain/internal/utils"
)

// Roles that self-register on the ledger at signup. Farmers go through
// the approval workflow instead, and customers stay entirely off-chain.
var selfClaimRoles = map[string]bool{
	"Admin":            true,
	"Collection Point": true,
	"Warehouse":        true,
	"Processing Unit":  true,
	"Retailer":         true,
}

var validRoles = map[string]bool{
	"Admin":            true,
	"Farmer":           true,
	"Customer":         true,
	"Collection Point": true,
	"Warehouse":        true,
	"Processing Unit":  true,
	"Retailer":         true,
}

type AuthService struct {
	db    *gorm.DB
	chain *ledger.Ledger
	cfg   *config.Config
}

type SignUpRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strong_password"`
	Role     string `json:"role" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Wallet   string `json:"wallet" validate:"omitempty,wallet"`
	Location string `json:"location,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type WalletSignInRequest struct {
	Wallet string `json:"wallet" validate:"required,wallet"`
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

func NewAuthService(db *gorm.DB, chain *ledger.Ledger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:    db,
		chain: chain,
		cfg:   cfg,
	}
}

// SignUp creates the account and, for self-registering on-chain roles,
// claims the matching ledger role for the user's wallet. The claim runs
// through the role-bound entry points, so the requested label can never
// grant a different on-chain role. A wallet collision rejects the whole
// signup before any account row is written.
func (s *AuthService) SignUp(req *SignUpRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if !validRoles[req.Role] {
		return nil, errors.New("invalid role")
	}
	if selfClaimRoles[req.Role] && req.Wallet == "" {
		return nil, errors.New("wallet address is required for this role")
	}
	if selfClaimRoles[req.Role] && req.Role != "Admin" && req.Location == "" {
		return nil, errors.New("location coordinates are required for this role")
	}

	var existingUser models.User
	if err := s.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return nil, errors.New("user with this email already exists")
	}

	if selfClaimRoles[req.Role] {
		if err := s.claimRole(req); err != nil {
			return nil, err
		}
	}

	user := &models.User{
		Name:          req.Name,
		Email:         req.Email,
		Role:          req.Role,
		Phone:         req.Phone,
		WalletAddress: ledger.NormalizeAddress(req.Wallet),
		Location:      req.Location,
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.buildAuthResponse(user)
}

// claimRole dispatches to the ledger's role-bound claim entry points.
func (s *AuthService) claimRole(req *SignUpRequest) error {
	switch req.Role {
	case "Admin":
		return s.chain.ClaimAdminRole(req.Wallet, req.Name, req.Phone)
	case "Collection Point":
		return s.chain.ClaimCollectionPointRole(req.Wallet, req.Name, req.Phone, req.Location)
	case "Warehouse":
		return s.chain.ClaimWarehouseRole(req.Wallet, req.Name, req.Phone, req.Location)
	case "Processing Unit":
		return s.chain.ClaimProcessingUnitRole(req.Wallet, req.Name, req.Phone, req.Location)
	case "Retailer":
		return s.chain.ClaimRetailerRole(req.Wallet, req.Name, req.Phone, req.Location)
	}
	return fmt.Errorf("role %q cannot self-register on the ledger", req.Role)
}

func (s *AuthService) SignIn(req *SignInRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("invalid email or password")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, errors.New("invalid email or password")
	}

	now := time.Now()
	s.db.Model(&user).Update("last_login_at", &now)

	return s.buildAuthResponse(&user)
}

// WalletSignIn resolves an account by wallet address. Signature
// verification happens in the wallet flow outside this service; the
// address is only accepted for accounts that registered it beforehand.
func (s *AuthService) WalletSignIn(req *WalletSignInRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	wallet := ledger.NormalizeAddress(req.Wallet)
	if err := s.db.Where("wallet_address = ?", wallet).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("wallet is not registered")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	now := time.Now()
	s.db.Model(&user).Update("last_login_at", &now)

	return s.buildAuthResponse(&user)
}

func (s *AuthService) GetProfile(userID string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *AuthService) RefreshTokens(refreshToken string) (*AuthResponse, error) {
	userID, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	return s.buildAuthResponse(user)
}

func (s *AuthService) buildAuthResponse(user *models.User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(user.ID, user.Name, user.Role, user.WalletAddress, s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL * 3600,
	}, nil
}
