package onboarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aeroops/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInviteInvalid = errors.New("invite token is invalid")
	ErrInviteExpired = errors.New("invite has expired")
	ErrInviteUsed    = errors.New("invite was already accepted")
	ErrEmailTaken    = errors.New("a user with this email already exists")
)

const inviteTTL = 7 * 24 * time.Hour

type inviteClaims struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	ClientID *uint  `json:"clientId,omitempty"`
	jwt.RegisteredClaims
}

// Service issues and redeems onboarding invites. The token the invitee
// receives is a signed JWT whose jti points at the invite row, so a token
// is single-use: accepting it stamps the row and later attempts fail.
type Service struct {
	db     *gorm.DB
	secret []byte
	log    *zap.Logger
}

func NewService(db *gorm.DB, secret string, log *zap.Logger) *Service {
	return &Service{db: db, secret: []byte(secret), log: log}
}

// Issue creates an invite and returns the signed token to send to the
// invitee. Admin accounts are never invited; they come from deployment env.
func (s *Service) Issue(ctx context.Context, email string, role models.UserRole, clientID *uint, createdBy uint) (string, *models.OnboardingInvite, error) {
	switch role {
	case models.RoleCoordinator, models.RolePilot, models.RoleViewer:
	default:
		return "", nil, fmt.Errorf("role %q cannot be invited", role)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).Count(&count).Error; err != nil {
		return "", nil, err
	}
	if count > 0 {
		return "", nil, ErrEmailTaken
	}

	invite := models.OnboardingInvite{
		InviteID:        uuid.NewString(),
		Email:           email,
		Role:            role,
		ClientID:        clientID,
		ExpiresAt:       time.Now().UTC().Add(inviteTTL),
		CreatedByUserID: createdBy,
	}
	if err := s.db.WithContext(ctx).Create(&invite).Error; err != nil {
		return "", nil, err
	}

	claims := inviteClaims{
		Email:    email,
		Role:     string(role),
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        invite.InviteID,
			ExpiresAt: jwt.NewNumericDate(invite.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			Issuer:    "aeroops",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}

	s.log.Info("onboarding invite issued",
		zap.String("email", email), zap.String("role", string(role)))
	return token, &invite, nil
}

// Resolve verifies a token and returns its still-redeemable invite.
func (s *Service) Resolve(ctx context.Context, token string) (*models.OnboardingInvite, error) {
	claims := &inviteClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrInviteExpired
		}
		return nil, ErrInviteInvalid
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, ErrInviteInvalid
	}

	var invite models.OnboardingInvite
	if err := s.db.WithContext(ctx).
		Where("invite_id = ?", claims.ID).First(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteInvalid
		}
		return nil, err
	}
	if invite.AcceptedAt != nil {
		return nil, ErrInviteUsed
	}
	if time.Now().UTC().After(invite.ExpiresAt) {
		return nil, ErrInviteExpired
	}
	return &invite, nil
}

// Accept redeems an invite: creates the user account and stamps the invite,
// both in one transaction.
func (s *Service) Accept(ctx context.Context, token, fullName, password string) (*models.User, error) {
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	invite, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        invite.Email,
		PasswordHash: string(hash),
		Role:         invite.Role,
		FullName:     fullName,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		return tx.Model(&models.OnboardingInvite{}).
			Where("id = ? AND accepted_at IS NULL", invite.ID).
			Update("accepted_at", now).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("onboarding invite accepted", zap.String("email", user.Email))
	return &user, nil
}
