package mirror

import (
	"database/sql"
	"time"

	"aahaara-data/internal/domain"
)

// Field mapping is explicit per entity. Cross-entity references always carry canonical
// ids, suffixed _canonical_id, so no lookup against the mirror is ever needed.

func UserRecord(u *domain.User) Record {
	return Record{
		Table:       TableUsers,
		CanonicalID: u.UserID,
		Fields: Row{
			"username":   u.Username,
			"email":      u.Email,
			"first_name": u.FirstName,
			"last_name":  u.LastName,
			"role":       string(u.Role),
			"is_active":  u.IsActive,
			"created_at": timestamp(u.CreatedAt),
			"updated_at": timestamp(u.UpdatedAt),
		},
	}
}

func DoctorProfileRecord(p *domain.DoctorProfile) Record {
	return Record{
		Table:       TableProfiles,
		CanonicalID: p.ProfileID,
		Fields: Row{
			"profile_type":      string(domain.RoleDoctor),
			"user_canonical_id": p.UserID,
			"qualification":     p.Qualification,
			"experience_years":  p.ExperienceYears,
			"license_number":    p.LicenseNumber,
			"specialization":    p.Specialization,
			"bio":               nullString(p.Bio),
			"consultation_fee":  nullFloat(p.ConsultationFee),
			"languages":         []string(p.Languages),
			"is_verified":       p.IsVerified,
			"updated_at":        timestamp(p.UpdatedAt),
		},
	}
}

func PatientProfileRecord(p *domain.PatientProfile) Record {
	return Record{
		Table:       TableProfiles,
		CanonicalID: p.ProfileID,
		Fields: Row{
			"profile_type":               string(domain.RolePatient),
			"user_canonical_id":          p.UserID,
			"date_of_birth":              nullDate(p.DateOfBirth),
			"gender":                     nullString(p.Gender),
			"blood_type":                 nullString(p.BloodType),
			"height_cm":                  nullFloat(p.HeightCm),
			"weight_kg":                  nullFloat(p.WeightKg),
			"location":                   nullString(p.Location),
			"phone_number":               nullString(p.PhoneNumber),
			"emergency_contact_name":     nullString(p.EmergencyContactName),
			"emergency_contact_phone":    nullString(p.EmergencyContactPhone),
			"emergency_contact_relation": nullString(p.EmergencyContactRelation),
			"medical_history":            nullString(p.MedicalHistory),
			"allergies":                  nullString(p.Allergies),
			"current_medications":        nullString(p.CurrentMedications),
			"updated_at":                 timestamp(p.UpdatedAt),
		},
	}
}

func PatientRecord(p *domain.Patient) Record {
	return Record{
		Table:       TablePatients,
		CanonicalID: p.PatientID,
		Fields: Row{
			"user_canonical_id":            p.UserID,
			"patient_code":                 p.PatientCode,
			"assigned_doctor_canonical_id": nullString(p.AssignedDoctorID),
			"status":                       p.Status,
			"registration_date":            timestamp(p.RegistrationDate),
			"last_consultation":            nullTimestamp(p.LastConsultation),
			"updated_at":                   timestamp(p.UpdatedAt),
		},
	}
}

func PrakritiRecord(a *domain.PrakritiAnalysis) Record {
	return Record{
		Table:       TablePrakriti,
		CanonicalID: a.AnalysisID,
		Fields: Row{
			"patient_canonical_id":     a.PatientID,
			"primary_dosha":            a.PrimaryDosha,
			"secondary_dosha":          nullString(a.SecondaryDosha),
			"vata_score":               a.VataScore,
			"pitta_score":              a.PittaScore,
			"kapha_score":              a.KaphaScore,
			"analysis_notes":           nullString(a.AnalysisNotes),
			"recommendations":          nullString(a.Recommendations),
			"status":                   a.Status,
			"analyzed_by_canonical_id": nullString(a.AnalyzedBy),
			"analysis_date":            timestamp(a.AnalysisDate),
		},
	}
}

func DiseaseRecord(d *domain.DiseaseAnalysis) Record {
	return Record{
		Table:       TableDiseases,
		CanonicalID: d.AnalysisID,
		Fields: Row{
			"patient_canonical_id":      d.PatientID,
			"disease_name":              d.DiseaseName,
			"icd_code":                  nullString(d.ICDCode),
			"severity":                  d.Severity,
			"status":                    d.Status,
			"symptoms":                  nullString(d.Symptoms),
			"diagnosis_notes":           nullString(d.DiagnosisNotes),
			"treatment_plan":            nullString(d.TreatmentPlan),
			"medications":               []string(d.Medications),
			"follow_up_required":        d.FollowUpRequired,
			"follow_up_date":            nullDate(d.FollowUpDate),
			"diagnosed_by_canonical_id": nullString(d.DiagnosedBy),
			"diagnosis_date":            timestamp(d.DiagnosisDate),
			"is_active":                 d.IsActive,
		},
	}
}

func ConsultationRecord(c *domain.Consultation) Record {
	return Record{
		Table:       TableConsultations,
		CanonicalID: c.ConsultationID,
		Fields: Row{
			"patient_canonical_id": c.PatientID,
			"doctor_canonical_id":  c.DoctorID,
			"consultation_type":    c.ConsultationType,
			"chief_complaint":      c.ChiefComplaint,
			"assessment":           nullString(c.Assessment),
			"plan":                 nullString(c.Plan),
			"prescription":         nullString(c.Prescription),
			"follow_up_date":       nullDate(c.FollowUpDate),
			"consultation_date":    timestamp(c.ConsultationDate),
			"duration_minutes":     c.DurationMinutes,
		},
	}
}

func DietChartRecord(c *domain.DietChart) Record {
	return Record{
		Table:       TableDietCharts,
		CanonicalID: c.ChartID,
		Fields: Row{
			"patient_canonical_id":    c.PatientID,
			"created_by_canonical_id": c.CreatedBy,
			"chart_name":              c.ChartName,
			"chart_type":              c.ChartType,
			"status":                  string(c.Status),
			"total_days":              c.TotalDays,
			"start_date":              nullDate(c.StartDate),
			"end_date":                nullDate(c.EndDate),
			"target_calories":         c.TargetCalories,
			"meals":                   c.Meals,
			"dosha_focus":             []string(c.DoshaFocus),
			"is_ai_generated":         c.IsAIGenerated,
			"version":                 c.Version,
			"updated_at":              timestamp(c.UpdatedAt),
		},
	}
}

func timestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func nullTimestamp(t sql.NullTime) any {
	if !t.Valid {
		return nil
	}
	return timestamp(t.Time)
}

func nullDate(t sql.NullTime) any {
	if !t.Valid {
		return nil
	}
	return t.Time.Format("2006-01-02")
}

func nullString(s sql.NullString) any {
	if !s.Valid {
		return nil
	}
	return s.String
}

func nullFloat(f sql.NullFloat64) any {
	if !f.Valid {
		return nil
	}
	return f.Float64
}
