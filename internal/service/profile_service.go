package service

import (
	"context"
	"database/sql"
	"time"

	"aahaara-data/internal/domain"
	"aahaara-data/internal/mirror"
	"aahaara-data/internal/repository"

	"go.uber.org/zap"
)

// ProfileService reads and edits the caller's own user and typed profile.
type ProfileService struct {
	users    repository.UsersRepository
	profiles repository.ProfilesRepository
	syncer   *mirror.Syncer
	logger   *zap.Logger
	now      func() time.Time
}

func NewProfileService(users repository.UsersRepository, profiles repository.ProfilesRepository, syncer *mirror.Syncer, logger *zap.Logger) *ProfileService {
	return &ProfileService{users: users, profiles: profiles, syncer: syncer, logger: logger, now: time.Now}
}

// ProfileResponse has exactly one of DoctorProfile and PatientProfile set.
type ProfileResponse struct {
	User           UserView            `json:"user"`
	DoctorProfile  *DoctorProfileView  `json:"doctor_profile,omitempty"`
	PatientProfile *PatientProfileView `json:"patient_profile,omitempty"`
	MirrorID       *string             `json:"mirror_id,omitempty"`
}

// UpdateProfileRequest nil fields are left unchanged. Role-specific fields are ignored
// for the other role.
type UpdateProfileRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`

	// doctor
	Qualification   *string  `json:"qualification" validate:"omitempty,max=200"`
	ExperienceYears *int     `json:"experience_years" validate:"omitempty,gte=0,lte=80"`
	Specialization  *string  `json:"specialization" validate:"omitempty,oneof=general nutrition panchakarma lifestyle chronic-diseases"`
	Bio             *string  `json:"bio"`
	ConsultationFee *float64 `json:"consultation_fee" validate:"omitempty,gte=0"`
	Languages       []string `json:"languages" validate:"omitempty,dive,max=50"`

	// patient
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
	InsuranceProvider        *string           `json:"insurance_provider" validate:"omitempty,max=100"`
	InsuranceNumber          *string           `json:"insurance_number" validate:"omitempty,max=50"`
	Notes                    map[string]string `json:"notes"`
}

func (s *ProfileService) GetProfile(ctx context.Context, actor Actor) (*ProfileResponse, error) {
	user, err := s.users.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	resp := &ProfileResponse{User: newUserView(user)}
	switch user.Role {
	case domain.RoleDoctor:
		p, err := s.profiles.GetDoctorProfile(ctx, user.UserID)
		if err != nil {
			return nil, err
		}
		resp.DoctorProfile = newDoctorProfileView(p)
	default:
		p, err := s.profiles.GetPatientProfile(ctx, user.UserID)
		if err != nil {
			return nil, err
		}
		resp.PatientProfile = newPatientProfileView(p, s.now())
	}
	return resp, nil
}

// UpdateProfile writes the user row when its fields change and always the typed profile.
// MirrorID refers to the profile row.
func (s *ProfileService) UpdateProfile(ctx context.Context, actor Actor, req UpdateProfileRequest) (*ProfileResponse, error) {
	user, err := s.users.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil || req.FirstName != nil || req.LastName != nil {
		if req.Email != nil {
			user.Email = *req.Email
		}
		if req.FirstName != nil {
			user.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			user.LastName = *req.LastName
		}
		if err := s.users.UpdateUser(ctx, user); err != nil {
			return nil, err
		}
		syncMirror(ctx, s.syncer, mirror.UserRecord(user))
	}
	resp := &ProfileResponse{User: newUserView(user)}

	if user.Role == domain.RoleDoctor {
		p, err := s.profiles.GetDoctorProfile(ctx, user.UserID)
		if err != nil {
			return nil, err
		}
		applyDoctorProfile(p, req)
		if err := s.profiles.UpdateDoctorProfile(ctx, p); err != nil {
			return nil, err
		}
		resp.MirrorID = syncMirror(ctx, s.syncer, mirror.DoctorProfileRecord(p))
		resp.DoctorProfile = newDoctorProfileView(p)
		return resp, nil
	}

	p, err := s.profiles.GetPatientProfile(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	if err := applyPatientProfile(p, req); err != nil {
		return nil, err
	}
	if err := s.profiles.UpdatePatientProfile(ctx, p); err != nil {
		return nil, err
	}
	resp.MirrorID = syncMirror(ctx, s.syncer, mirror.PatientProfileRecord(p))
	resp.PatientProfile = newPatientProfileView(p, s.now())

	s.logger.Info("Profile updated", zap.String("user_id", user.UserID))
	return resp, nil
}

func applyDoctorProfile(p *domain.DoctorProfile, req UpdateProfileRequest) {
	if req.Qualification != nil {
		p.Qualification = *req.Qualification
	}
	if req.ExperienceYears != nil {
		p.ExperienceYears = *req.ExperienceYears
	}
	if req.Specialization != nil {
		p.Specialization = *req.Specialization
	}
	if req.Bio != nil {
		p.Bio = nullString(req.Bio)
	}
	if req.ConsultationFee != nil {
		p.ConsultationFee = nullFloat(req.ConsultationFee)
	}
	if req.Languages != nil {
		p.Languages = req.Languages
	}
}

func applyPatientProfile(p *domain.PatientProfile, req UpdateProfileRequest) error {
	if req.DateOfBirth != nil {
		dob, err := nullDate("date_of_birth", req.DateOfBirth)
		if err != nil {
			return err
		}
		p.DateOfBirth = dob
	}
	set := func(dst *sql.NullString, src *string) {
		if src != nil {
			*dst = nullString(src)
		}
	}
	set(&p.Gender, req.Gender)
	set(&p.BloodType, req.BloodType)
	set(&p.Location, req.Location)
	set(&p.PhoneNumber, req.PhoneNumber)
	set(&p.EmergencyContactName, req.EmergencyContactName)
	set(&p.EmergencyContactPhone, req.EmergencyContactPhone)
	set(&p.EmergencyContactRelation, req.EmergencyContactRelation)
	set(&p.MedicalHistory, req.MedicalHistory)
	set(&p.Allergies, req.Allergies)
	set(&p.CurrentMedications, req.CurrentMedications)
	set(&p.InsuranceProvider, req.InsuranceProvider)
	set(&p.InsuranceNumber, req.InsuranceNumber)
	if req.HeightCm != nil {
		p.HeightCm = nullFloat(req.HeightCm)
	}
	if req.WeightKg != nil {
		p.WeightKg = nullFloat(req.WeightKg)
	}
	if req.Notes != nil {
		p.Notes = req.Notes
	}
	return nil
}
