// Package businessflow contains the core business logic and use cases for collection workflows
package businessflow

import (
	"context"
	"time"

	"github.com/vasooli-labs/vasooli/app/dto"
	"github.com/vasooli-labs/vasooli/app/services"
	"github.com/vasooli-labs/vasooli/models"
	"github.com/vasooli-labs/vasooli/repository"
	"github.com/vasooli-labs/vasooli/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthFlow handles account registration and authentication
type AuthFlow interface {
	Signup(ctx context.Context, request *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error)
	Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	Me(ctx context.Context, customerID uint) (*dto.MeResponse, error)
}

// AuthFlowImpl implements the auth business flow
type AuthFlowImpl struct {
	customerRepo repository.CustomerRepository
	tokenService services.TokenService
	bcryptCost   int
	db           *gorm.DB
}

// NewAuthFlow creates a new auth flow instance
func NewAuthFlow(
	customerRepo repository.CustomerRepository,
	tokenService services.TokenService,
	bcryptCost int,
	db *gorm.DB,
) AuthFlow {
	return &AuthFlowImpl{
		customerRepo: customerRepo,
		tokenService: tokenService,
		bcryptCost:   bcryptCost,
		db:           db,
	}
}

// Signup registers a new account and issues its first token pair
func (af *AuthFlowImpl) Signup(ctx context.Context, request *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error) {
	var customer *models.Customer

	err := repository.WithTransaction(ctx, af.db, func(ctx context.Context) error {
		existing, err := af.customerRepo.ByEmail(ctx, request.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrEmailAlreadyExists
		}

		passwordHash, err := bcrypt.GenerateFromPassword([]byte(request.Password), af.bcryptCost)
		if err != nil {
			return err
		}

		customer = &models.Customer{
			Name:         request.Name,
			Email:        request.Email,
			PasswordHash: string(passwordHash),
			OrgName:      request.OrgName,
			UPIID:        request.UPIID,
			IsActive:     utils.ToPtr(true),
		}

		return af.customerRepo.Save(ctx, customer)
	})
	if err != nil {
		return nil, NewBusinessError("SIGNUP_FAILED", "Signup failed", err)
	}

	session, err := af.issueSession(customer.ID)
	if err != nil {
		return nil, NewBusinessError("SIGNUP_FAILED", "Signup failed", err)
	}

	return &dto.SignupResponse{
		Customer: ToCustomerDTO(*customer),
		Session:  *session,
	}, nil
}

// Login authenticates an account with email and password
func (af *AuthFlowImpl) Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	customer, err := af.customerRepo.ByEmail(ctx, request.Email)
	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}
	if customer == nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", ErrCustomerNotFound)
	}

	if !utils.IsTrue(customer.IsActive) {
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", ErrAccountInactive)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(request.Password)); err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", ErrIncorrectPassword)
	}

	session, err := af.issueSession(customer.ID)
	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}

	_ = af.customerRepo.UpdateLastLogin(ctx, customer.ID, utils.UTCNow())

	return &dto.LoginResponse{
		Customer: ToCustomerDTO(*customer),
		Session:  *session,
	}, nil
}

// Me returns the authenticated account
func (af *AuthFlowImpl) Me(ctx context.Context, customerID uint) (*dto.MeResponse, error) {
	customer, err := af.customerRepo.ByID(ctx, customerID)
	if err != nil {
		return nil, NewBusinessError("ME_FAILED", "Failed to load account", err)
	}
	if customer == nil {
		return nil, NewBusinessError("ME_FAILED", "Failed to load account", ErrCustomerNotFound)
	}

	return &dto.MeResponse{
		Customer: ToCustomerDTO(*customer),
	}, nil
}

func (af *AuthFlowImpl) issueSession(customerID uint) (*dto.SessionDTO, error) {
	accessToken, refreshToken, err := af.tokenService.GenerateTokens(customerID)
	if err != nil {
		return nil, err
	}

	return &dto.SessionDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(af.tokenService.AccessTokenTTL().Seconds()),
		CreatedAt:    utils.UTCNow().Format(time.RFC3339),
	}, nil
}
