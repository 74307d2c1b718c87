package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"aahaara-data/internal/domain"
	"aahaara-data/internal/mirror"
	"aahaara-data/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memRepo is an in-memory stand-in for every repository the services use.
type memRepo struct {
	seq           int
	clock         time.Time
	users         map[string]*domain.User
	doctors       map[string]*domain.DoctorProfile  // by user id
	patientProf   map[string]*domain.PatientProfile // by user id
	patients      map[string]*domain.Patient
	prakriti      []*domain.PrakritiAnalysis
	diseases      []*domain.DiseaseAnalysis
	consultations []*domain.Consultation
	charts        map[string]*domain.DietChart
	foods         map[string]*domain.FoodItem
	recs          []*domain.DietRecommendation

	// beforeStatusCAS runs inside UpdateDietChartStatus before the precondition check.
	beforeStatusCAS func()
}

var (
	_ repository.UsersRepository           = (*memRepo)(nil)
	_ repository.ProfilesRepository        = (*memRepo)(nil)
	_ repository.PatientsRepository        = (*memRepo)(nil)
	_ repository.AnalysesRepository        = (*memRepo)(nil)
	_ repository.ConsultationsRepository   = (*memRepo)(nil)
	_ repository.DietChartsRepository      = (*memRepo)(nil)
	_ repository.FoodItemsRepository       = (*memRepo)(nil)
	_ repository.RecommendationsRepository = (*memRepo)(nil)
)

func newMemRepo() *memRepo {
	return &memRepo{
		clock:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		users:       map[string]*domain.User{},
		doctors:     map[string]*domain.DoctorProfile{},
		patientProf: map[string]*domain.PatientProfile{},
		patients:    map[string]*domain.Patient{},
		charts:      map[string]*domain.DietChart{},
		foods:       map[string]*domain.FoodItem{},
	}
}

func (m *memRepo) id(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%04d", prefix, m.seq)
}

func (m *memRepo) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memRepo) uniqueUser(u *domain.User) error {
	for _, other := range m.users {
		if other.UserID == u.UserID {
			continue
		}
		if other.Username == u.Username {
			return &domain.ConflictError{Field: "username"}
		}
		if other.Email == u.Email {
			return &domain.ConflictError{Field: "email"}
		}
	}
	return nil
}

func (m *memRepo) GetUser(_ context.Context, userID string) (*domain.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "user", ID: userID}
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) GetUserByLogin(_ context.Context, login string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Username == login || strings.EqualFold(u.Email, login) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "user", ID: login}
}

func (m *memRepo) UpdateUser(_ context.Context, u *domain.User) error {
	if _, ok := m.users[u.UserID]; !ok {
		return &domain.NotFoundError{Entity: "user", ID: u.UserID}
	}
	if err := m.uniqueUser(u); err != nil {
		return err
	}
	u.UpdatedAt = m.tick()
	cp := *u
	m.users[u.UserID] = &cp
	return nil
}

func (m *memRepo) TouchLastLogin(_ context.Context, userID string, at time.Time) error {
	u, ok := m.users[userID]
	if !ok {
		return &domain.NotFoundError{Entity: "user", ID: userID}
	}
	u.LastLogin.Time, u.LastLogin.Valid = at, true
	return nil
}

func (m *memRepo) insertUser(u *domain.User) error {
	u.UserID = m.id("user")
	if err := m.uniqueUser(u); err != nil {
		u.UserID = ""
		return err
	}
	u.CreatedAt = m.tick()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.UserID] = &cp
	return nil
}

func (m *memRepo) RegisterPatient(_ context.Context, u *domain.User, p *domain.PatientProfile, pt *domain.Patient) error {
	if err := m.insertUser(u); err != nil {
		return err
	}
	p.ProfileID = m.id("pprof")
	p.UserID = u.UserID
	cpProf := *p
	m.patientProf[u.UserID] = &cpProf

	pt.PatientID = m.id("patient")
	pt.UserID = u.UserID
	pt.PatientCode = domain.NewPatientCode()
	if pt.Status == "" {
		pt.Status = domain.PatientStatusActive
	}
	pt.RegistrationDate = m.clock
	pt.CreatedAt, pt.UpdatedAt = m.clock, m.clock
	cpPt := *pt
	m.patients[pt.PatientID] = &cpPt
	return nil
}

func (m *memRepo) RegisterDoctor(_ context.Context, u *domain.User, p *domain.DoctorProfile) error {
	for _, d := range m.doctors {
		if d.LicenseNumber == p.LicenseNumber {
			return &domain.ConflictError{Field: "license_number"}
		}
	}
	if err := m.insertUser(u); err != nil {
		return err
	}
	p.ProfileID = m.id("dprof")
	p.UserID = u.UserID
	cp := *p
	m.doctors[u.UserID] = &cp
	return nil
}

func (m *memRepo) GetDoctorProfile(_ context.Context, userID string) (*domain.DoctorProfile, error) {
	p, ok := m.doctors[userID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "doctor profile", ID: userID}
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) UpdateDoctorProfile(_ context.Context, p *domain.DoctorProfile) error {
	if _, ok := m.doctors[p.UserID]; !ok {
		return &domain.NotFoundError{Entity: "doctor profile", ID: p.UserID}
	}
	cp := *p
	m.doctors[p.UserID] = &cp
	return nil
}

func (m *memRepo) GetPatientProfile(_ context.Context, userID string) (*domain.PatientProfile, error) {
	p, ok := m.patientProf[userID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "patient profile", ID: userID}
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) UpdatePatientProfile(_ context.Context, p *domain.PatientProfile) error {
	if _, ok := m.patientProf[p.UserID]; !ok {
		return &domain.NotFoundError{Entity: "patient profile", ID: p.UserID}
	}
	cp := *p
	m.patientProf[p.UserID] = &cp
	return nil
}

func (m *memRepo) withUser(p *domain.Patient) *repository.PatientWithUser {
	return &repository.PatientWithUser{Patient: *p, User: *m.users[p.UserID]}
}

func (m *memRepo) GetPatient(_ context.Context, patientID string) (*repository.PatientWithUser, error) {
	p, ok := m.patients[patientID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "patient", ID: patientID}
	}
	return m.withUser(p), nil
}

func (m *memRepo) GetPatientByUserID(_ context.Context, userID string) (*repository.PatientWithUser, error) {
	for _, p := range m.patients {
		if p.UserID == userID {
			return m.withUser(p), nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "patient", ID: userID}
}

func (m *memRepo) ListPatients(_ context.Context, f repository.PatientsFilter, page, size int) ([]*repository.PatientWithUser, int, error) {
	var all []*repository.PatientWithUser
	for _, p := range m.patients {
		if f.AssignedDoctorID != "" && p.AssignedDoctorID.String != f.AssignedDoctorID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		all = append(all, m.withUser(p))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Patient.PatientID < all[j].Patient.PatientID })
	return paginate(all, page, size), len(all), nil
}

func (m *memRepo) UpdatePatientStatus(_ context.Context, patientID, status string) (*domain.Patient, error) {
	p, ok := m.patients[patientID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "patient", ID: patientID}
	}
	p.Status = status
	cp := *p
	return &cp, nil
}

func (m *memRepo) AssignDoctor(_ context.Context, patientID, doctorUserID string) (*domain.Patient, error) {
	p, ok := m.patients[patientID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "patient", ID: patientID}
	}
	p.AssignedDoctorID.String, p.AssignedDoctorID.Valid = doctorUserID, true
	cp := *p
	return &cp, nil
}

// DeletePatient cascades to child rows the way the foreign keys do.
func (m *memRepo) DeletePatient(_ context.Context, patientID string) (*repository.PatientDependents, error) {
	if _, ok := m.patients[patientID]; !ok {
		return nil, &domain.NotFoundError{Entity: "patient", ID: patientID}
	}
	deps := &repository.PatientDependents{}
	prakriti := m.prakriti[:0]
	for _, a := range m.prakriti {
		if a.PatientID == patientID {
			deps.PrakritiIDs = append(deps.PrakritiIDs, a.AnalysisID)
			continue
		}
		prakriti = append(prakriti, a)
	}
	m.prakriti = prakriti
	diseases := m.diseases[:0]
	for _, d := range m.diseases {
		if d.PatientID == patientID {
			deps.DiseaseIDs = append(deps.DiseaseIDs, d.AnalysisID)
			continue
		}
		diseases = append(diseases, d)
	}
	m.diseases = diseases
	consultations := m.consultations[:0]
	for _, c := range m.consultations {
		if c.PatientID == patientID {
			deps.ConsultationIDs = append(deps.ConsultationIDs, c.ConsultationID)
			continue
		}
		consultations = append(consultations, c)
	}
	m.consultations = consultations
	for id, c := range m.charts {
		if c.PatientID == patientID {
			deps.DietChartIDs = append(deps.DietChartIDs, id)
			delete(m.charts, id)
		}
	}
	delete(m.patients, patientID)
	return deps, nil
}

func (m *memRepo) CreatePrakriti(_ context.Context, a *domain.PrakritiAnalysis) error {
	a.AnalysisID = m.id("prakriti")
	a.AnalysisDate = m.tick()
	a.CreatedAt, a.UpdatedAt = a.AnalysisDate, a.AnalysisDate
	cp := *a
	m.prakriti = append(m.prakriti, &cp)
	return nil
}

// ListPrakriti newest first.
func (m *memRepo) ListPrakriti(_ context.Context, patientID string) ([]*domain.PrakritiAnalysis, error) {
	var out []*domain.PrakritiAnalysis
	for i := len(m.prakriti) - 1; i >= 0; i-- {
		if m.prakriti[i].PatientID == patientID {
			cp := *m.prakriti[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRepo) LatestPrakriti(ctx context.Context, patientID string) (*domain.PrakritiAnalysis, error) {
	list, _ := m.ListPrakriti(ctx, patientID)
	if len(list) == 0 {
		return nil, &domain.NotFoundError{Entity: "prakriti analysis", ID: patientID}
	}
	return list[0], nil
}

func (m *memRepo) CreateDisease(_ context.Context, d *domain.DiseaseAnalysis) error {
	d.AnalysisID = m.id("disease")
	d.DiagnosisDate = m.tick()
	cp := *d
	m.diseases = append(m.diseases, &cp)
	return nil
}

func (m *memRepo) ListDiseases(_ context.Context, patientID string, activeOnly bool) ([]*domain.DiseaseAnalysis, error) {
	var out []*domain.DiseaseAnalysis
	for i := len(m.diseases) - 1; i >= 0; i-- {
		d := m.diseases[i]
		if d.PatientID != patientID || (activeOnly && !d.IsOngoing()) {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memRepo) CreateConsultation(_ context.Context, c *domain.Consultation) (*domain.Patient, error) {
	p, ok := m.patients[c.PatientID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "patient", ID: c.PatientID}
	}
	c.ConsultationID = m.id("consult")
	if c.DurationMinutes == 0 {
		c.DurationMinutes = domain.DefaultConsultationMinutes
	}
	c.ConsultationDate = m.tick()
	cp := *c
	m.consultations = append(m.consultations, &cp)
	if !p.LastConsultation.Valid || p.LastConsultation.Time.Before(c.ConsultationDate) {
		p.LastConsultation.Time, p.LastConsultation.Valid = c.ConsultationDate, true
	}
	out := *p
	return &out, nil
}

func (m *memRepo) ListConsultations(_ context.Context, patientID string, limit int) ([]*domain.Consultation, error) {
	var out []*domain.Consultation
	for i := len(m.consultations) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if m.consultations[i].PatientID == patientID {
			cp := *m.consultations[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRepo) CreateDietChart(_ context.Context, c *domain.DietChart) error {
	c.ChartID = m.id("chart")
	if c.Status == "" {
		c.Status = domain.DietChartDraft
	}
	c.Version = 1
	c.CreatedAt = m.tick()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	m.charts[c.ChartID] = &cp
	return nil
}

func (m *memRepo) GetDietChart(_ context.Context, chartID string) (*domain.DietChart, error) {
	c, ok := m.charts[chartID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "diet chart", ID: chartID}
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) ListDietCharts(_ context.Context, f repository.DietChartsFilter, page, size int) ([]*domain.DietChart, int, error) {
	var all []*domain.DietChart
	for _, c := range m.charts {
		if (f.PatientID != "" && c.PatientID != f.PatientID) ||
			(f.CreatedBy != "" && c.CreatedBy != f.CreatedBy) ||
			(f.Status != "" && c.Status != f.Status) {
			continue
		}
		cp := *c
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, page, size), len(all), nil
}

func (m *memRepo) UpdateDietChart(_ context.Context, c *domain.DietChart) error {
	stored, ok := m.charts[c.ChartID]
	if !ok {
		return &domain.NotFoundError{Entity: "diet chart", ID: c.ChartID}
	}
	c.Status = stored.Status
	c.Version = stored.Version + 1
	c.UpdatedAt = m.tick()
	cp := *c
	m.charts[c.ChartID] = &cp
	return nil
}

func (m *memRepo) UpdateDietChartStatus(_ context.Context, chartID string, from, to domain.DietChartStatus) (*domain.DietChart, error) {
	if m.beforeStatusCAS != nil {
		m.beforeStatusCAS()
	}
	c, ok := m.charts[chartID]
	if !ok || c.Status != from {
		return nil, repository.ErrConcurrentUpdate
	}
	c.Status = to
	c.UpdatedAt = m.tick()
	cp := *c
	return &cp, nil
}

func (m *memRepo) DeleteDietChart(_ context.Context, chartID string) error {
	if _, ok := m.charts[chartID]; !ok {
		return &domain.NotFoundError{Entity: "diet chart", ID: chartID}
	}
	delete(m.charts, chartID)
	return nil
}

func (m *memRepo) CreateFoodItem(_ context.Context, f *domain.FoodItem) error {
	for _, other := range m.foods {
		if other.Name == f.Name {
			return &domain.ConflictError{Field: "name"}
		}
	}
	f.FoodID = m.id("food")
	f.CreatedAt = m.tick()
	cp := *f
	m.foods[f.FoodID] = &cp
	return nil
}

func (m *memRepo) GetFoodItem(_ context.Context, foodID string) (*domain.FoodItem, error) {
	f, ok := m.foods[foodID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "food item", ID: foodID}
	}
	cp := *f
	return &cp, nil
}

func (m *memRepo) ListFoodItems(_ context.Context, filter repository.FoodFilter, page, size int) ([]*domain.FoodItem, int, error) {
	var all []*domain.FoodItem
	for _, f := range m.foods {
		if filter.VataEffect != "" && f.VataEffect != filter.VataEffect {
			continue
		}
		if filter.Category != "" && f.FoodCategory != filter.Category {
			continue
		}
		if filter.TridoshicOnly && !f.IsTridoshic() {
			continue
		}
		cp := *f
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return paginate(all, page, size), len(all), nil
}

func (m *memRepo) UpdateFoodItem(_ context.Context, f *domain.FoodItem) error {
	if _, ok := m.foods[f.FoodID]; !ok {
		return &domain.NotFoundError{Entity: "food item", ID: f.FoodID}
	}
	f.UpdatedAt = m.tick()
	cp := *f
	m.foods[f.FoodID] = &cp
	return nil
}

func (m *memRepo) DeleteFoodItem(_ context.Context, foodID string) error {
	if _, ok := m.foods[foodID]; !ok {
		return &domain.NotFoundError{Entity: "food item", ID: foodID}
	}
	delete(m.foods, foodID)
	return nil
}

func (m *memRepo) ListCategories(context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, f := range m.foods {
		if f.FoodCategory != "" && !seen[f.FoodCategory] {
			seen[f.FoodCategory] = true
			out = append(out, f.FoodCategory)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memRepo) FoodStats(context.Context) (*repository.FoodStats, error) {
	st := &repository.FoodStats{Total: len(m.foods), ByMealType: map[string]int{}}
	for _, slot := range domain.MealSlots {
		st.ByMealType[slot] = 0
	}
	for _, f := range m.foods {
		if f.VataEffect == domain.EffectPacifies {
			st.VataPacifying++
		}
		if f.PittaEffect == domain.EffectPacifies {
			st.PittaPacifying++
		}
		if f.KaphaEffect == domain.EffectPacifies {
			st.KaphaPacifying++
		}
		if f.IsTridoshic() {
			st.Tridoshic++
		}
		for _, mt := range f.MealTypes {
			st.ByMealType[mt]++
		}
	}
	return st, nil
}

func (m *memRepo) CreateRecommendation(_ context.Context, r *domain.DietRecommendation) error {
	r.RecommendationID = m.id("rec")
	r.CreatedAt = m.tick()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	m.recs = append(m.recs, &cp)
	return nil
}

// ListRecommendations orders by dosha_type, priority, title.
func (m *memRepo) ListRecommendations(_ context.Context, filter repository.RecommendationsFilter) ([]*domain.DietRecommendation, error) {
	var out []*domain.DietRecommendation
	for _, r := range m.recs {
		if filter.DoshaType != "" && r.DoshaType != filter.DoshaType {
			continue
		}
		if filter.RecommendationType != "" && r.RecommendationType != filter.RecommendationType {
			continue
		}
		if filter.ActiveOnly && !r.IsActive {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DoshaType != b.DoshaType {
			return a.DoshaType < b.DoshaType
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.Title < b.Title
	})
	return out, nil
}

func paginate[T any](all []T, page, size int) []T {
	start := (page - 1) * size
	if start >= len(all) {
		return nil
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

// newTestSyncer returns a syncer over an in-memory mirror. A false reachable leaves the
// syncer unchecked, so every sync is skipped.
func newTestSyncer(t *testing.T, reachable bool) (*mirror.Syncer, *mirror.MemoryStore) {
	t.Helper()
	store := mirror.NewMemoryStore()
	s := mirror.NewSyncer(store, time.Second, zap.NewNop(), nil)
	if reachable {
		require.True(t, s.CheckReachable(context.Background()))
	}
	return s, store
}

// seedDoctor and seedPatient insert fixtures directly and return the actor for them.
func seedDoctor(t *testing.T, repo *memRepo, username string) Actor {
	t.Helper()
	u := &domain.User{Username: username, Email: username + "@clinic.test", Role: domain.RoleDoctor, IsActive: true}
	require.NoError(t, repo.RegisterDoctor(context.Background(), u, &domain.DoctorProfile{LicenseNumber: "LIC-" + username, Specialization: "general"}))
	return Actor{UserID: u.UserID, Role: domain.RoleDoctor}
}

func seedPatient(t *testing.T, repo *memRepo, username string, profile *domain.PatientProfile) (Actor, string) {
	t.Helper()
	if profile == nil {
		profile = &domain.PatientProfile{}
	}
	u := &domain.User{Username: username, Email: username + "@mail.test", Role: domain.RolePatient, IsActive: true}
	pt := &domain.Patient{}
	require.NoError(t, repo.RegisterPatient(context.Background(), u, profile, pt))
	return Actor{UserID: u.UserID, Role: domain.RolePatient}, pt.PatientID
}
