// internal/services/user_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ValenteCreativo/Side-B-sub000/internal/config"
	"github.com/ValenteCreativo/Side-B-sub000/internal/models"
	"github.com/ValenteCreativo/Side-B-sub000/internal/utils"
)

type UserService struct {
	db     *gorm.DB
	config *config.Config
}

type WalletLoginRequest struct {
	WalletAddress string `json:"wallet_address" validate:"required,eth_address"`
	DisplayName   string `json:"display_name,omitempty" validate:"max=100"`
}

type WalletLoginResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func NewUserService(db *gorm.DB, config *config.Config) *UserService {
	return &UserService{
		db:     db,
		config: config,
	}
}

// LoginWithWallet upserts the wallet's user row and mints an access
// token. Signature verification happens at the wallet edge, which is
// outside this service.
func (s *UserService) LoginWithWallet(ctx context.Context, req *WalletLoginRequest) (*WalletLoginResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	wallet := strings.ToLower(req.WalletAddress)

	var user models.User
	err := s.db.WithContext(ctx).Where("wallet_address = ?", wallet).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			WalletAddress: wallet,
			DisplayName:   req.DisplayName,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	token, err := utils.GenerateJWT(user.ID, user.WalletAddress, s.config.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &WalletLoginResponse{User: &user, Token: token}, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}
