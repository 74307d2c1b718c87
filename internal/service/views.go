package service

import (
	"time"

	"aahaara-data/internal/derived"
	"aahaara-data/internal/domain"
	"aahaara-data/internal/repository"
)

// JSON shapes returned by the services. Derived values are computed here on every read
// and never stored.

type UserView struct {
	UserID    string     `json:"user_id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	FullName  string     `json:"full_name"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
}

func newUserView(u *domain.User) UserView {
	return UserView{
		UserID:    u.UserID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		LastLogin: timePtr(u.LastLogin),
		CreatedAt: u.CreatedAt,
	}
}

type DoctorProfileView struct {
	ProfileID       string    `json:"profile_id"`
	Qualification   string    `json:"qualification"`
	ExperienceYears int       `json:"experience_years"`
	LicenseNumber   string    `json:"license_number"`
	Specialization  string    `json:"specialization"`
	Bio             *string   `json:"bio"`
	ConsultationFee *float64  `json:"consultation_fee"`
	Languages       []string  `json:"languages"`
	IsVerified      bool      `json:"is_verified"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func newDoctorProfileView(p *domain.DoctorProfile) *DoctorProfileView {
	return &DoctorProfileView{
		ProfileID:       p.ProfileID,
		Qualification:   p.Qualification,
		ExperienceYears: p.ExperienceYears,
		LicenseNumber:   p.LicenseNumber,
		Specialization:  p.Specialization,
		Bio:             strPtr(p.Bio),
		ConsultationFee: floatPtr(p.ConsultationFee),
		Languages:       nonNil(p.Languages),
		IsVerified:      p.IsVerified,
		UpdatedAt:       p.UpdatedAt,
	}
}

// PatientProfileView carries the stored profile plus age, BMI and calorie target.
type PatientProfileView struct {
	ProfileID                string            `json:"profile_id"`
	DateOfBirth              *string           `json:"date_of_birth"`
	Gender                   *string           `json:"gender"`
	BloodType                *string           `json:"blood_type"`
	HeightCm                 *float64          `json:"height_cm"`
	WeightKg                 *float64          `json:"weight_kg"`
	Location                 *string           `json:"location"`
	PhoneNumber              *string           `json:"phone_number"`
	EmergencyContactName     *string           `json:"emergency_contact_name"`
	EmergencyContactPhone    *string           `json:"emergency_contact_phone"`
	EmergencyContactRelation *string           `json:"emergency_contact_relation"`
	MedicalHistory           *string           `json:"medical_history"`
	Allergies                *string           `json:"allergies"`
	CurrentMedications       *string           `json:"current_medications"`
	InsuranceProvider        *string           `json:"insurance_provider"`
	InsuranceNumber          *string           `json:"insurance_number"`
	Notes                    map[string]string `json:"notes"`
	Age                      *int              `json:"age"`
	BMI                      *float64          `json:"bmi"`
	CalorieTarget            int               `json:"calorie_target"`
	UpdatedAt                time.Time         `json:"updated_at"`
}

func newPatientProfileView(p *domain.PatientProfile, now time.Time) *PatientProfileView {
	age := derived.Age(timePtr(p.DateOfBirth), now)
	height, weight := floatPtr(p.HeightCm), floatPtr(p.WeightKg)
	notes := p.Notes
	if notes == nil {
		notes = map[string]string{}
	}
	return &PatientProfileView{
		ProfileID:                p.ProfileID,
		DateOfBirth:              datePtr(p.DateOfBirth),
		Gender:                   strPtr(p.Gender),
		BloodType:                strPtr(p.BloodType),
		HeightCm:                 height,
		WeightKg:                 weight,
		Location:                 strPtr(p.Location),
		PhoneNumber:              strPtr(p.PhoneNumber),
		EmergencyContactName:     strPtr(p.EmergencyContactName),
		EmergencyContactPhone:    strPtr(p.EmergencyContactPhone),
		EmergencyContactRelation: strPtr(p.EmergencyContactRelation),
		MedicalHistory:           strPtr(p.MedicalHistory),
		Allergies:                strPtr(p.Allergies),
		CurrentMedications:       strPtr(p.CurrentMedications),
		InsuranceProvider:        strPtr(p.InsuranceProvider),
		InsuranceNumber:          strPtr(p.InsuranceNumber),
		Notes:                    notes,
		Age:                      age,
		BMI:                      derived.BMI(height, weight),
		CalorieTarget:            derived.CalorieTarget(weight, height, age, p.Gender.String, 0),
		UpdatedAt:                p.UpdatedAt,
	}
}

type PatientView struct {
	PatientID        string              `json:"patient_id"`
	PatientCode      string              `json:"patient_code"`
	Status           string              `json:"status"`
	AssignedDoctorID *string             `json:"assigned_doctor_id"`
	RegistrationDate time.Time           `json:"registration_date"`
	LastConsultation *time.Time          `json:"last_consultation"`
	User             *UserView           `json:"user,omitempty"`
	Profile          *PatientProfileView `json:"profile,omitempty"`
	MirrorID         *string             `json:"mirror_id,omitempty"`
}

func newPatientView(p *domain.Patient) *PatientView {
	return &PatientView{
		PatientID:        p.PatientID,
		PatientCode:      p.PatientCode,
		Status:           p.Status,
		AssignedDoctorID: strPtr(p.AssignedDoctorID),
		RegistrationDate: p.RegistrationDate,
		LastConsultation: timePtr(p.LastConsultation),
	}
}

func newPatientWithUserView(pu *repository.PatientWithUser) *PatientView {
	v := newPatientView(&pu.Patient)
	uv := newUserView(&pu.User)
	v.User = &uv
	return v
}

type PrakritiView struct {
	AnalysisID      string                 `json:"analysis_id"`
	PatientID       string                 `json:"patient_id"`
	PrimaryDosha    string                 `json:"primary_dosha"`
	SecondaryDosha  *string                `json:"secondary_dosha"`
	VataScore       int                    `json:"vata_score"`
	PittaScore      int                    `json:"pitta_score"`
	KaphaScore      int                    `json:"kapha_score"`
	Percentages     derived.DoshaBreakdown `json:"dosha_percentages"`
	DominantDosha   string                 `json:"dominant_dosha"`
	AnalysisNotes   *string                `json:"analysis_notes"`
	Recommendations *string                `json:"recommendations"`
	Status          string                 `json:"status"`
	AnalyzedBy      *string                `json:"analyzed_by"`
	AnalysisDate    time.Time              `json:"analysis_date"`
	MirrorID        *string                `json:"mirror_id,omitempty"`
}

func newPrakritiView(a *domain.PrakritiAnalysis) *PrakritiView {
	return &PrakritiView{
		AnalysisID:      a.AnalysisID,
		PatientID:       a.PatientID,
		PrimaryDosha:    a.PrimaryDosha,
		SecondaryDosha:  strPtr(a.SecondaryDosha),
		VataScore:       a.VataScore,
		PittaScore:      a.PittaScore,
		KaphaScore:      a.KaphaScore,
		Percentages:     derived.DoshaPercentages(a.VataScore, a.PittaScore, a.KaphaScore),
		DominantDosha:   derived.DominantDosha(a.VataScore, a.PittaScore, a.KaphaScore),
		AnalysisNotes:   strPtr(a.AnalysisNotes),
		Recommendations: strPtr(a.Recommendations),
		Status:          a.Status,
		AnalyzedBy:      strPtr(a.AnalyzedBy),
		AnalysisDate:    a.AnalysisDate,
	}
}

type DiseaseView struct {
	AnalysisID       string    `json:"analysis_id"`
	PatientID        string    `json:"patient_id"`
	DiseaseName      string    `json:"disease_name"`
	ICDCode          *string   `json:"icd_code"`
	Severity         string    `json:"severity"`
	Status           string    `json:"status"`
	Symptoms         *string   `json:"symptoms"`
	DiagnosisNotes   *string   `json:"diagnosis_notes"`
	TreatmentPlan    *string   `json:"treatment_plan"`
	Medications      []string  `json:"medications"`
	FollowUpRequired bool      `json:"follow_up_required"`
	FollowUpDate     *string   `json:"follow_up_date"`
	DiagnosedBy      *string   `json:"diagnosed_by"`
	DiagnosisDate    time.Time `json:"diagnosis_date"`
	IsActive         bool      `json:"is_active"`
	MirrorID         *string   `json:"mirror_id,omitempty"`
}

func newDiseaseView(d *domain.DiseaseAnalysis) *DiseaseView {
	return &DiseaseView{
		AnalysisID:       d.AnalysisID,
		PatientID:        d.PatientID,
		DiseaseName:      d.DiseaseName,
		ICDCode:          strPtr(d.ICDCode),
		Severity:         d.Severity,
		Status:           d.Status,
		Symptoms:         strPtr(d.Symptoms),
		DiagnosisNotes:   strPtr(d.DiagnosisNotes),
		TreatmentPlan:    strPtr(d.TreatmentPlan),
		Medications:      nonNil(d.Medications),
		FollowUpRequired: d.FollowUpRequired,
		FollowUpDate:     datePtr(d.FollowUpDate),
		DiagnosedBy:      strPtr(d.DiagnosedBy),
		DiagnosisDate:    d.DiagnosisDate,
		IsActive:         d.IsActive,
	}
}

type ConsultationView struct {
	ConsultationID          string    `json:"consultation_id"`
	PatientID               string    `json:"patient_id"`
	DoctorID                string    `json:"doctor_id"`
	ConsultationType        string    `json:"consultation_type"`
	ChiefComplaint          string    `json:"chief_complaint"`
	HistoryOfPresentIllness *string   `json:"history_of_present_illness"`
	PhysicalExamination     *string   `json:"physical_examination"`
	Assessment              *string   `json:"assessment"`
	Plan                    *string   `json:"plan"`
	Prescription            *string   `json:"prescription"`
	FollowUpDate            *string   `json:"follow_up_date"`
	ConsultationDate        time.Time `json:"consultation_date"`
	DurationMinutes         int       `json:"duration_minutes"`
	MirrorID                *string   `json:"mirror_id,omitempty"`
}

func newConsultationView(c *domain.Consultation) *ConsultationView {
	return &ConsultationView{
		ConsultationID:          c.ConsultationID,
		PatientID:               c.PatientID,
		DoctorID:                c.DoctorID,
		ConsultationType:        c.ConsultationType,
		ChiefComplaint:          c.ChiefComplaint,
		HistoryOfPresentIllness: strPtr(c.HistoryOfPresentIllness),
		PhysicalExamination:     strPtr(c.PhysicalExamination),
		Assessment:              strPtr(c.Assessment),
		Plan:                    strPtr(c.Plan),
		Prescription:            strPtr(c.Prescription),
		FollowUpDate:            datePtr(c.FollowUpDate),
		ConsultationDate:        c.ConsultationDate,
		DurationMinutes:         c.DurationMinutes,
	}
}

// DietChartView adds days_remaining and progress_percentage, both relative to now.
type DietChartView struct {
	ChartID             string               `json:"chart_id"`
	PatientID           string               `json:"patient_id"`
	CreatedBy           string               `json:"created_by"`
	ChartName           string               `json:"chart_name"`
	ChartType           string               `json:"chart_type"`
	Status              string               `json:"status"`
	Description         *string              `json:"description"`
	TotalDays           int                  `json:"total_days"`
	StartDate           *string              `json:"start_date"`
	EndDate             *string              `json:"end_date"`
	TargetCalories      int                  `json:"target_calories"`
	MealDistribution    map[string]float64   `json:"meal_distribution"`
	Meals               domain.DailyMealPlan `json:"meals"`
	DoshaFocus          []string             `json:"dosha_focus"`
	FoodRestrictions    []string             `json:"food_restrictions"`
	SpecialInstructions *string              `json:"special_instructions"`
	IsAIGenerated       bool                 `json:"is_ai_generated"`
	Version             int                  `json:"version"`
	DaysRemaining       int                  `json:"days_remaining"`
	ProgressPercentage  float64              `json:"progress_percentage"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
	MirrorID            *string              `json:"mirror_id,omitempty"`

	// Recommendations is only filled when the chart was just generated.
	Recommendations []*RecommendationView `json:"recommendations,omitempty"`
}

func newDietChartView(c *domain.DietChart, now time.Time) *DietChartView {
	start, end := timePtr(c.StartDate), timePtr(c.EndDate)
	meals := c.Meals
	if meals == nil {
		meals = domain.DailyMealPlan{}
	}
	dist := c.MealDistribution
	if dist == nil {
		dist = map[string]float64{}
	}
	return &DietChartView{
		ChartID:             c.ChartID,
		PatientID:           c.PatientID,
		CreatedBy:           c.CreatedBy,
		ChartName:           c.ChartName,
		ChartType:           c.ChartType,
		Status:              string(c.Status),
		Description:         strPtr(c.Description),
		TotalDays:           c.TotalDays,
		StartDate:           datePtr(c.StartDate),
		EndDate:             datePtr(c.EndDate),
		TargetCalories:      c.TargetCalories,
		MealDistribution:    dist,
		Meals:               meals,
		DoshaFocus:          nonNil(c.DoshaFocus),
		FoodRestrictions:    nonNil(c.FoodRestrictions),
		SpecialInstructions: strPtr(c.SpecialInstructions),
		IsAIGenerated:       c.IsAIGenerated,
		Version:             c.Version,
		DaysRemaining:       derived.DaysRemaining(end, now),
		ProgressPercentage:  derived.ProgressPercentage(start, end, c.TotalDays, now),
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

type FoodItemView struct {
	FoodID       string            `json:"food_id"`
	Name         string            `json:"name"`
	ServingSize  string            `json:"serving_size"`
	Calories     float64           `json:"calories"`
	ProteinG     float64           `json:"protein_g"`
	CarbsG       float64           `json:"carbs_g"`
	FatG         float64           `json:"fat_g"`
	FiberG       float64           `json:"fiber_g"`
	Rasa         []string          `json:"rasa"`
	Guna         []string          `json:"guna"`
	Virya        string            `json:"virya"`
	VataEffect   string            `json:"vata_effect"`
	PittaEffect  string            `json:"pitta_effect"`
	KaphaEffect  string            `json:"kapha_effect"`
	MealTypes    []string          `json:"meal_types"`
	FoodCategory string            `json:"food_category"`
	Tags         []string          `json:"tags"`
	IsTridoshic  bool              `json:"is_tridoshic"`
	DoshaBalance map[string]string `json:"dosha_balance"`
	DoshaSummary string            `json:"dosha_summary"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func newFoodItemView(f *domain.FoodItem) *FoodItemView {
	return &FoodItemView{
		FoodID:       f.FoodID,
		Name:         f.Name,
		ServingSize:  f.ServingSize,
		Calories:     f.Calories,
		ProteinG:     f.ProteinG,
		CarbsG:       f.CarbsG,
		FatG:         f.FatG,
		FiberG:       f.FiberG,
		Rasa:         nonNil(f.Rasa),
		Guna:         nonNil(f.Guna),
		Virya:        f.Virya,
		VataEffect:   f.VataEffect,
		PittaEffect:  f.PittaEffect,
		KaphaEffect:  f.KaphaEffect,
		MealTypes:    nonNil(f.MealTypes),
		FoodCategory: f.FoodCategory,
		Tags:         nonNil(f.Tags),
		IsTridoshic:  f.IsTridoshic(),
		DoshaBalance: f.DoshaBalance(),
		DoshaSummary: f.DoshaSummary(),
		UpdatedAt:    f.UpdatedAt,
	}
}

type FoodCategoriesResponse struct {
	Categories []string `json:"categories"`
}

type FoodDoshaStats struct {
	VataPacifying  int `json:"vata_pacifying"`
	PittaPacifying int `json:"pitta_pacifying"`
	KaphaPacifying int `json:"kapha_pacifying"`
	Tridoshic      int `json:"tridoshic"`
}

type FoodStatsView struct {
	TotalFoods int            `json:"total_foods"`
	DoshaStats FoodDoshaStats `json:"dosha_stats"`
	MealStats  map[string]int `json:"meal_stats"`
}

func newFoodStatsView(st *repository.FoodStats) *FoodStatsView {
	meals := st.ByMealType
	if meals == nil {
		meals = map[string]int{}
	}
	return &FoodStatsView{
		TotalFoods: st.Total,
		DoshaStats: FoodDoshaStats{
			VataPacifying:  st.VataPacifying,
			PittaPacifying: st.PittaPacifying,
			KaphaPacifying: st.KaphaPacifying,
			Tridoshic:      st.Tridoshic,
		},
		MealStats: meals,
	}
}

type RecommendationView struct {
	RecommendationID   string    `json:"recommendation_id"`
	DoshaType          string    `json:"dosha_type"`
	RecommendationType string    `json:"recommendation_type"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	DetailedGuidelines string    `json:"detailed_guidelines"`
	FoodIDs            []string  `json:"food_ids"`
	Priority           int       `json:"priority"`
	IsActive           bool      `json:"is_active"`
	CreatedBy          *string   `json:"created_by"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func newRecommendationView(r *domain.DietRecommendation) *RecommendationView {
	v := &RecommendationView{
		RecommendationID:   r.RecommendationID,
		DoshaType:          r.DoshaType,
		RecommendationType: r.RecommendationType,
		Title:              r.Title,
		Description:        r.Description,
		DetailedGuidelines: r.DetailedGuidelines,
		FoodIDs:            nonNil(r.FoodIDs),
		Priority:           r.Priority,
		IsActive:           r.IsActive,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if r.CreatedBy != "" {
		v.CreatedBy = &r.CreatedBy
	}
	return v
}

func nonNil(a []string) []string {
	if a == nil {
		return []string{}
	}
	return a
}
