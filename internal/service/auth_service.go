package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aahaara-data/internal/config"
	"aahaara-data/internal/domain"
	"aahaara-data/internal/mirror"
	"aahaara-data/internal/repository"
	"aahaara-data/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenClaims is the payload of an access token.
type TokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService handles registration, login and token lifecycle.
type AuthService struct {
	users      repository.UsersRepository
	syncer     *mirror.Syncer
	denylist   *store.TokenDenylist
	cfg        config.AuthConfig
	logger     *zap.Logger
	bcryptCost int
	now        func() time.Time
}

// NewAuthService denylist may be nil, in which case logout only succeeds client side.
func NewAuthService(users repository.UsersRepository, syncer *mirror.Syncer, denylist *store.TokenDenylist, cfg config.AuthConfig, logger *zap.Logger) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:      users,
		syncer:     syncer,
		denylist:   denylist,
		cfg:        cfg,
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// RegisterPatientRequest is used both for self-registration and for doctors adding a patient.
type RegisterPatientRequest struct {
	Username                 string            `json:"username" validate:"required,min=3,max=150"`
	Email                    string            `json:"email" validate:"required,email"`
	Password                 string            `json:"password" validate:"required,min=8,max=128"`
	FirstName                string            `json:"first_name" validate:"max=150"`
	LastName                 string            `json:"last_name" validate:"max=150"`
	DateOfBirth              *string           `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Gender                   *string           `json:"gender" validate:"omitempty,oneof=male female other"`
	BloodType                *string           `json:"blood_type" validate:"omitempty,max=5"`
	HeightCm                 *float64          `json:"height_cm" validate:"omitempty,gt=0,lt=300"`
	WeightKg                 *float64          `json:"weight_kg" validate:"omitempty,gt=0,lt=500"`
	Location                 *string           `json:"location" validate:"omitempty,max=200"`
	PhoneNumber              *string           `json:"phone_number" validate:"omitempty,max=20"`
	EmergencyContactName     *string           `json:"emergency_contact_name" validate:"omitempty,max=100"`
	EmergencyContactPhone    *string           `json:"emergency_contact_phone" validate:"omitempty,max=20"`
	EmergencyContactRelation *string           `json:"emergency_contact_relation" validate:"omitempty,max=50"`
	MedicalHistory           *string           `json:"medical_history"`
	Allergies                *string           `json:"allergies"`
	CurrentMedications       *string           `json:"current_medications"`
	Notes                    map[string]string `json:"notes"`
}

type RegisterDoctorRequest struct {
	Username        string   `json:"username" validate:"required,min=3,max=150"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required,min=8,max=128"`
	FirstName       string   `json:"first_name" validate:"max=150"`
	LastName        string   `json:"last_name" validate:"max=150"`
	Qualification   string   `json:"qualification" validate:"required,max=200"`
	ExperienceYears int      `json:"experience_years" validate:"gte=0,lte=80"`
	LicenseNumber   string   `json:"license_number" validate:"required,max=100"`
	Specialization  string   `json:"specialization" validate:"omitempty,oneof=general nutrition panchakarma lifestyle chronic-diseases"`
	Bio             *string  `json:"bio"`
	ConsultationFee *float64 `json:"consultation_fee" validate:"omitempty,gte=0"`
	Languages       []string `json:"languages" validate:"dive,max=50"`
}

type LoginRequest struct {
	// Login is a username or an email address.
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserView  `json:"user"`
	PatientID   string    `json:"patient_id,omitempty"`
	MirrorID    *string   `json:"mirror_id"`
}

// RegisterPatient creates user, profile and patient atomically, mirrors all three and
// issues a token.
func (s *AuthService) RegisterPatient(ctx context.Context, req RegisterPatientRequest) (*AuthResponse, error) {
	reg, err := registerPatient(ctx, s.users, s.syncer, s.bcryptCost, req, "")
	if err != nil {
		return nil, err
	}
	s.logger.Info("Patient registered",
		zap.String("user_id", reg.user.UserID),
		zap.String("patient_id", reg.patient.PatientID),
	)
	resp, err := s.issue(reg.user)
	if err != nil {
		return nil, err
	}
	resp.PatientID = reg.patient.PatientID
	resp.MirrorID = reg.userMirrorID
	return resp, nil
}

func (s *AuthService) RegisterDoctor(ctx context.Context, req RegisterDoctorRequest) (*AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &domain.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         domain.RoleDoctor,
		IsActive:     true,
	}
	specialization := req.Specialization
	if specialization == "" {
		specialization = "general"
	}
	profile := &domain.DoctorProfile{
		Qualification:   req.Qualification,
		ExperienceYears: req.ExperienceYears,
		LicenseNumber:   req.LicenseNumber,
		Specialization:  specialization,
		Bio:             nullString(req.Bio),
		ConsultationFee: nullFloat(req.ConsultationFee),
		Languages:       req.Languages,
	}
	if err := s.users.RegisterDoctor(ctx, user, profile); err != nil {
		return nil, err
	}

	mirrorID := syncMirror(ctx, s.syncer, mirror.UserRecord(user))
	syncMirror(ctx, s.syncer, mirror.DoctorProfileRecord(profile))

	s.logger.Info("Doctor registered", zap.String("user_id", user.UserID))
	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	resp.MirrorID = mirrorID
	return resp, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	login := strings.TrimSpace(req.Login)
	user, err := s.users.GetUserByLogin(ctx, login)
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		s.logger.Warn("User login failed", zap.String("reason", "unknown_login"))
		return nil, &domain.UnauthorizedError{Reason: "invalid credentials"}
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("User login failed", zap.String("user_id", user.UserID), zap.String("reason", "bad_password"))
		return nil, &domain.UnauthorizedError{Reason: "invalid credentials"}
	}
	if !user.IsActive {
		s.logger.Warn("User login failed", zap.String("user_id", user.UserID), zap.String("reason", "account_not_active"))
		return nil, &domain.UnauthorizedError{Reason: "account is not active"}
	}

	now := s.now()
	if err := s.users.TouchLastLogin(ctx, user.UserID, now); err != nil {
		s.logger.Warn("Failed to record last login", zap.String("user_id", user.UserID), zap.Error(err))
	} else {
		user.LastLogin.Time, user.LastLogin.Valid = now, true
		syncMirror(ctx, s.syncer, mirror.UserRecord(user))
	}

	s.logger.Info("User logged in", zap.String("user_id", user.UserID), zap.String("role", string(user.Role)))
	return s.issue(user)
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, actor Actor) error {
	if s.denylist == nil || actor.TokenID == "" {
		return nil
	}
	if err := s.denylist.Revoke(ctx, actor.TokenID, actor.ExpiresAt.Sub(s.now())); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.logger.Info("User logged out", zap.String("user_id", actor.UserID))
	return nil
}

// Authenticate validates a raw bearer token and resolves the caller.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (Actor, error) {
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Actor{}, &domain.UnauthorizedError{Reason: "invalid or expired token"}
	}

	role := domain.Role(claims.Role)
	if !role.Valid() || claims.Subject == "" {
		return Actor{}, &domain.UnauthorizedError{Reason: "invalid token claims"}
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.Error("Token denylist lookup failed", zap.Error(err))
			return Actor{}, &domain.UnauthorizedError{Reason: "token status unavailable"}
		}
		if revoked {
			return Actor{}, &domain.UnauthorizedError{Reason: "token has been revoked"}
		}
	}

	actor := Actor{UserID: claims.Subject, Role: role, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		actor.ExpiresAt = claims.ExpiresAt.Time
	}
	return actor, nil
}

func (s *AuthService) issue(u *domain.User) (*AuthResponse, error) {
	now := s.now()
	exp := now.Add(s.cfg.TokenTTL)
	claims := TokenClaims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.UserID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   exp,
		User:        newUserView(u),
	}, nil
}

type registration struct {
	user          *domain.User
	profile       *domain.PatientProfile
	patient       *domain.Patient
	userMirrorID  *string
	patientMirror *string
}

// registerPatient is shared by self-registration and doctor-created patients.
// assignedDoctorID may be empty.
func registerPatient(ctx context.Context, users repository.UsersRepository, syncer *mirror.Syncer, cost int, req RegisterPatientRequest, assignedDoctorID string) (*registration, error) {
	dob, err := nullDate("date_of_birth", req.DateOfBirth)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         domain.RolePatient,
		IsActive:     true,
	}
	profile := &domain.PatientProfile{
		DateOfBirth:              dob,
		Gender:                   nullString(req.Gender),
		BloodType:                nullString(req.BloodType),
		HeightCm:                 nullFloat(req.HeightCm),
		WeightKg:                 nullFloat(req.WeightKg),
		Location:                 nullString(req.Location),
		PhoneNumber:              nullString(req.PhoneNumber),
		EmergencyContactName:     nullString(req.EmergencyContactName),
		EmergencyContactPhone:    nullString(req.EmergencyContactPhone),
		EmergencyContactRelation: nullString(req.EmergencyContactRelation),
		MedicalHistory:           nullString(req.MedicalHistory),
		Allergies:                nullString(req.Allergies),
		CurrentMedications:       nullString(req.CurrentMedications),
		Notes:                    req.Notes,
	}
	patient := &domain.Patient{}
	if assignedDoctorID != "" {
		patient.AssignedDoctorID.String, patient.AssignedDoctorID.Valid = assignedDoctorID, true
	}

	if err := users.RegisterPatient(ctx, user, profile, patient); err != nil {
		return nil, err
	}

	reg := &registration{user: user, profile: profile, patient: patient}
	reg.userMirrorID = syncMirror(ctx, syncer, mirror.UserRecord(user))
	syncMirror(ctx, syncer, mirror.PatientProfileRecord(profile))
	reg.patientMirror = syncMirror(ctx, syncer, mirror.PatientRecord(patient))
	return reg, nil
}
