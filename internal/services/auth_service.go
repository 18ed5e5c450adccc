package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/config"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/models"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrNotApproved        = errors.New("profile is awaiting approval")
)

type AuthService struct {
	store       store.Store
	cfg         *config.Config
	adminEmails map[string]bool
}

func NewAuthService(s store.Store, cfg *config.Config) *AuthService {
	admins := make(map[string]bool)
	for _, e := range strings.Split(cfg.AdminEmails, ",") {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins[e] = true
		}
	}
	return &AuthService{store: s, cfg: cfg, adminEmails: admins}
}

// Register creates the profile for a first sign-in. New profiles start
// unapproved and get no tokens; emails listed in ADMIN_EMAILS start as
// approved admins.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	ctx, cancel := bounded(ctx, s.cfg.StoreTimeout)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || len(req.Password) < 8 {
		return nil, invalid("email required and password must be at least 8 characters")
	}
	// bcrypt only reads the first 72 bytes and rejects anything longer.
	if len(req.Password) > 72 {
		return nil, invalid("password must be at most 72 bytes")
	}

	if _, err := s.store.FindProfileByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := models.Profile{
		ID:       uuid.New(),
		Email:    email,
		Name:     strings.TrimSpace(req.Name),
		Password: string(hash),
		Role:     models.RoleSalesRep,
	}
	if s.adminEmails[email] {
		profile.Role = models.RoleAdmin
		profile.Approved = true
	}

	if err := s.store.CreateProfile(ctx, &profile); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, storeErr("create profile", err)
	}

	slog.Info("profile registered", "op", "auth.register", "profile_id", profile.ID.String(), "role", profile.Role, "approved", profile.Approved)
	if !profile.Approved {
		return &dto.AuthResponse{Profile: ToProfileResponse(&profile)}, nil
	}
	return s.generateTokenPair(ctx, &profile)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	ctx, cancel := bounded(ctx, s.cfg.StoreTimeout)
	defer cancel()

	profile, err := s.store.FindProfileByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeErr("find profile", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !profile.Approved {
		return nil, ErrNotApproved
	}

	return s.generateTokenPair(ctx, profile)
}

// Refresh rotates a refresh token. A profile blocked since the token was
// issued is signed out here.
func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	ctx, cancel := bounded(ctx, s.cfg.StoreTimeout)
	defer cancel()

	tokenHash := hashToken(req.RefreshToken)
	stored, err := s.store.FindActiveRefreshToken(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, storeErr("find refresh token", err)
	}

	if err := s.store.RevokeRefreshToken(ctx, tokenHash); err != nil {
		return nil, storeErr("revoke refresh token", err)
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	profile, err := s.store.GetProfile(ctx, stored.ProfileID)
	if err != nil {
		return nil, storeErr("get profile", err)
	}
	if !profile.Approved {
		return nil, ErrNotApproved
	}

	return s.generateTokenPair(ctx, profile)
}

func (s *AuthService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	ctx, cancel := bounded(ctx, s.cfg.StoreTimeout)
	defer cancel()

	return storeErr("revoke refresh token", s.store.RevokeRefreshToken(ctx, hashToken(req.RefreshToken)))
}

func (s *AuthService) generateTokenPair(ctx context.Context, profile *models.Profile) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(profile)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(ctx, profile)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Profile:      ToProfileResponse(profile),
	}, nil
}

// The role claim is informational only; authorization always re-reads the profile.
func (s *AuthService) generateAccessToken(profile *models.Profile) (string, error) {
	claims := jwt.MapClaims{
		"sub":   profile.ID.String(),
		"email": profile.Email,
		"role":  profile.Role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(ctx context.Context, profile *models.Profile) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)
	record := models.RefreshToken{
		ID:        uuid.New(),
		ProfileID: profile.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.store.CreateRefreshToken(ctx, &record); err != nil {
		return "", storeErr("store refresh token", err)
	}
	return rawToken, nil
}

func ToProfileResponse(p *models.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:       p.ID,
		Email:    p.Email,
		Name:     p.Name,
		Role:     p.Role,
		Approved: p.Approved,
	}
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
