// internal/domain/user/service.go
package user

import (
	"fmt"
	"time"

	"github.com/your-org/shop-backend/internal/config"
	"github.com/your-org/shop-backend/internal/domain/pricing"
	"github.com/your-org/shop-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// Service handles user business logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	Phone           string `json:"phone"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Register creates a new user account
func (s *Service) Register(req *RegisterRequest) (*AuthResponse, error) {
	// Validate password confirmation
	if req.Password != req.ConfirmPassword {
		return nil, fmt.Errorf("passwords do not match")
	}

	// Check if user already exists
	var existingUser User
	result := s.db.Where("email = ?", req.Email).First(&existingUser)
	if result.Error == nil {
		return nil, fmt.Errorf("user with this email already exists")
	}

	// Hash password
	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Create new user
	newUser := User{
		Email:       req.Email,
		Password:    hashedPassword,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		PricingTier: string(pricing.TierRegular),
		IsActive:    true,
		IsAdmin:     false,
	}

	if err := s.db.Create(&newUser).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokens(&newUser)
}

// Login authenticates a user
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	// Find user by email
	var existing User
	result := s.db.Where("email = ? AND is_active = ?", req.Email, true).First(&existing)
	if result.Error != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	// Verify password
	if err := s.passwordManager.VerifyPassword(req.Password, existing.Password); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	return s.issueTokens(&existing)
}

// RefreshToken generates new tokens using refresh token
func (s *Service) RefreshToken(refreshToken string) (*AuthResponse, error) {
	// Validate refresh token
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	// Find user
	var existing User
	result := s.db.Where("id = ? AND is_active = ?", claims.UserID, true).First(&existing)
	if result.Error != nil {
		return nil, fmt.Errorf("user not found or inactive")
	}

	return s.issueTokens(&existing)
}

// issueTokens generates a fresh token pair and records the login
func (s *Service) issueTokens(u *User) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(u.ID, u.Email, u.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := time.Now().UTC()
	u.LastLoginAt = &now
	s.db.Model(u).Update("last_login_at", now)

	// Clear password from response
	u.Password = ""

	return &AuthResponse{
		User:         u,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}

// GetProfile gets user profile by ID
func (s *Service) GetProfile(userID uint) (*User, error) {
	var existing User
	result := s.db.Where("id = ? AND is_active = ?", userID, true).First(&existing)
	if result.Error != nil {
		return nil, fmt.Errorf("user not found")
	}

	// Clear password
	existing.Password = ""

	return &existing, nil
}

// UpdateProfile updates user profile
func (s *Service) UpdateProfile(userID uint, updates map[string]interface{}) (*User, error) {
	var existing User
	result := s.db.Where("id = ? AND is_active = ?", userID, true).First(&existing)
	if result.Error != nil {
		return nil, fmt.Errorf("user not found")
	}

	// Remove sensitive fields from updates
	delete(updates, "password")
	delete(updates, "is_admin")
	delete(updates, "is_active")
	delete(updates, "pricing_tier")

	if err := s.db.Model(&existing).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	// Clear password
	existing.Password = ""

	return &existing, nil
}

// ChangePassword changes user password after verifying current password
func (s *Service) ChangePassword(userID uint, currentPassword, newPassword string) error {
	var existing User
	result := s.db.Where("id = ? AND is_active = ?", userID, true).First(&existing)
	if result.Error != nil {
		return fmt.Errorf("user not found")
	}

	// Verify current password
	if err := s.passwordManager.VerifyPassword(currentPassword, existing.Password); err != nil {
		return fmt.Errorf("current password is incorrect")
	}

	// Hash new password
	hashedPassword, err := s.passwordManager.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	// Update password
	if err := s.db.Model(&existing).Update("password", hashedPassword).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// SetPricingTier assigns a customer pricing tier to a user (admin operation)
func (s *Service) SetPricingTier(userID uint, tier pricing.CustomerTier) error {
	if tier != pricing.TierRegular && tier != pricing.TierWholesale {
		return fmt.Errorf("unknown pricing tier: %s", tier)
	}

	err := s.db.Model(&User{}).
		Where("id = ?", userID).
		Update("pricing_tier", string(tier)).Error
	if err != nil {
		return fmt.Errorf("failed to update pricing tier: %w", err)
	}
	return nil
}

// GetPricingTier resolves the customer tier used for price calculations
func (s *Service) GetPricingTier(userID uint) (pricing.CustomerTier, error) {
	var existing User
	result := s.db.Select("pricing_tier").Where("id = ? AND is_active = ?", userID, true).First(&existing)
	if result.Error != nil {
		return pricing.TierRegular, fmt.Errorf("user not found")
	}
	return existing.Tier(), nil
}

// DeactivateUser deactivates a user account
func (s *Service) DeactivateUser(userID uint) error {
	err := s.db.Model(&User{}).
		Where("id = ?", userID).
		Update("is_active", false).Error
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves user by email
func (s *Service) GetUserByEmail(email string) (*User, error) {
	var existing User
	result := s.db.Where("email = ?", email).First(&existing)
	if result.Error != nil {
		return nil, fmt.Errorf("user not found")
	}

	// Clear password
	existing.Password = ""
	return &existing, nil
}
