package service

import (
	"context"
	"errors"
	"time"

	"aahaara-data/internal/derived"
	"aahaara-data/internal/dietgen"
	"aahaara-data/internal/domain"
	"aahaara-data/internal/mirror"
	"aahaara-data/internal/repository"

	"go.uber.org/zap"
)

const defaultGeneratedDays = 7

// DietChartService manages diet charts and their lifecycle. Doctors write; patients
// read the charts made for them.
type DietChartService struct {
	charts    repository.DietChartsRepository
	patients  repository.PatientsRepository
	profiles  repository.ProfilesRepository
	analyses  repository.AnalysesRepository
	recs      repository.RecommendationsRepository
	generator *dietgen.Generator
	syncer    *mirror.Syncer
	logger    *zap.Logger
	now       func() time.Time
}

func NewDietChartService(
	charts repository.DietChartsRepository,
	patients repository.PatientsRepository,
	profiles repository.ProfilesRepository,
	analyses repository.AnalysesRepository,
	recs repository.RecommendationsRepository,
	syncer *mirror.Syncer,
	logger *zap.Logger,
) *DietChartService {
	return &DietChartService{
		charts:    charts,
		patients:  patients,
		profiles:  profiles,
		analyses:  analyses,
		recs:      recs,
		generator: dietgen.New(nil),
		syncer:    syncer,
		logger:    logger,
		now:       time.Now,
	}
}

type CreateDietChartRequest struct {
	PatientID           string               `json:"patient_id" validate:"required,uuid"`
	ChartName           string               `json:"chart_name" validate:"required,max=200"`
	ChartType           string               `json:"chart_type" validate:"omitempty,oneof=therapeutic maintenance detox weight_loss weight_gain pregnancy diabetic hypertension digestive immunity"`
	Description         *string              `json:"description"`
	TotalDays           int                  `json:"total_days" validate:"gte=1,lte=365"`
	StartDate           *string              `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate             *string              `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	TargetCalories      int                  `json:"target_calories" validate:"gte=0,lte=10000"`
	MealDistribution    map[string]float64   `json:"meal_distribution" validate:"omitempty,dive,gte=0,lte=1"`
	Meals               domain.DailyMealPlan `json:"meals"`
	DoshaFocus          []string             `json:"dosha_focus" validate:"omitempty,dive,oneof=vata pitta kapha vata-pitta vata-kapha pitta-kapha tridosha"`
	FoodRestrictions    []string             `json:"food_restrictions"`
	SpecialInstructions *string              `json:"special_instructions"`
}

func (s *DietChartService) CreateDietChart(ctx context.Context, actor Actor, req CreateDietChartRequest) (*DietChartView, error) {
	if err := requireDoctor(actor, "create diet charts"); err != nil {
		return nil, err
	}
	if _, err := s.patients.GetPatient(ctx, req.PatientID); err != nil {
		return nil, err
	}
	start, err := nullDate("start_date", req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := nullDate("end_date", req.EndDate)
	if err != nil {
		return nil, err
	}
	if !end.Valid && start.Valid {
		end.Time, end.Valid = start.Time.AddDate(0, 0, req.TotalDays-1), true
	}
	if start.Valid && end.Valid && end.Time.Before(start.Time) {
		return nil, domain.NewValidationError("end_date", "must not precede start_date")
	}
	target := req.TargetCalories
	if target == 0 {
		target = derived.DefaultCalorieTarget
	}
	dist := req.MealDistribution
	if dist == nil {
		dist = dietgen.DefaultMealDistribution
	}
	chartType := req.ChartType
	if chartType == "" {
		chartType = "maintenance"
	}

	c := &domain.DietChart{
		PatientID:           req.PatientID,
		CreatedBy:           actor.UserID,
		ChartName:           req.ChartName,
		ChartType:           chartType,
		Status:              domain.DietChartDraft,
		Description:         nullString(req.Description),
		TotalDays:           req.TotalDays,
		StartDate:           start,
		EndDate:             end,
		TargetCalories:      target,
		MealDistribution:    dist,
		Meals:               req.Meals,
		DoshaFocus:          req.DoshaFocus,
		FoodRestrictions:    req.FoodRestrictions,
		SpecialInstructions: nullString(req.SpecialInstructions),
	}
	return s.create(ctx, c)
}

func (s *DietChartService) create(ctx context.Context, c *domain.DietChart) (*DietChartView, error) {
	if err := s.charts.CreateDietChart(ctx, c); err != nil {
		return nil, err
	}
	v := newDietChartView(c, s.now())
	v.MirrorID = syncMirror(ctx, s.syncer, mirror.DietChartRecord(c))
	s.logger.Info("Diet chart created",
		zap.String("chart_id", c.ChartID),
		zap.String("patient_id", c.PatientID),
		zap.Bool("is_ai_generated", c.IsAIGenerated),
	)
	return v, nil
}

// GenerateDietChartRequest asks for a chart built from the patient's profile and
// latest Prakriti analysis.
type GenerateDietChartRequest struct {
	PatientID          string  `json:"patient_id" validate:"required,uuid"`
	ChartName          string  `json:"chart_name" validate:"omitempty,max=200"`
	ChartType          string  `json:"chart_type" validate:"omitempty,oneof=therapeutic maintenance detox weight_loss weight_gain pregnancy diabetic hypertension digestive immunity"`
	TotalDays          int     `json:"total_days" validate:"gte=0,lte=90"`
	StartDate          *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	ActivityMultiplier float64 `json:"activity_multiplier" validate:"gte=0,lte=3"`
}

// GenerateDietChart derives the calorie target from the patient profile, takes the
// dominant dosha of the latest completed Prakriti analysis as the focus and fills the
// meals from the rotating templates. The result is a draft, returned with the active
// recommendations for that dosha.
func (s *DietChartService) GenerateDietChart(ctx context.Context, actor Actor, req GenerateDietChartRequest) (*DietChartView, error) {
	if err := requireDoctor(actor, "generate diet charts"); err != nil {
		return nil, err
	}
	pu, err := s.patients.GetPatient(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	latest, err := s.analyses.LatestPrakriti(ctx, req.PatientID)
	var nf *domain.NotFoundError
	if errors.As(err, &nf) || (err == nil && !latest.IsComplete()) {
		return nil, domain.NewValidationError("patient_id", "a completed prakriti analysis is required")
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	target := derived.DefaultCalorieTarget
	profile, err := s.profiles.GetPatientProfile(ctx, pu.Patient.UserID)
	switch {
	case err == nil:
		height, weight := floatPtr(profile.HeightCm), floatPtr(profile.WeightKg)
		age := derived.Age(timePtr(profile.DateOfBirth), now)
		target = derived.CalorieTarget(weight, height, age, profile.Gender.String, req.ActivityMultiplier)
	case !errors.As(err, &nf):
		return nil, err
	}

	days := req.TotalDays
	if days == 0 {
		days = defaultGeneratedDays
	}
	meals, err := s.generator.Generate(days, target, dietgen.DefaultMealDistribution)
	if err != nil {
		return nil, err
	}
	dominant := derived.DominantDosha(latest.VataScore, latest.PittaScore, latest.KaphaScore)

	start, err := nullDate("start_date", req.StartDate)
	if err != nil {
		return nil, err
	}
	if !start.Valid {
		start.Time, start.Valid = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), true
	}
	name := req.ChartName
	if name == "" {
		name = "Personalized " + dominant + " plan"
	}
	chartType := req.ChartType
	if chartType == "" {
		chartType = "maintenance"
	}

	dist := make(map[string]float64, len(dietgen.DefaultMealDistribution))
	for k, v := range dietgen.DefaultMealDistribution {
		dist[k] = v
	}
	c := &domain.DietChart{
		PatientID:        req.PatientID,
		CreatedBy:        actor.UserID,
		ChartName:        name,
		ChartType:        chartType,
		Status:           domain.DietChartDraft,
		TotalDays:        days,
		StartDate:        start,
		TargetCalories:   target,
		MealDistribution: dist,
		Meals:            meals,
		DoshaFocus:       []string{dominant},
		IsAIGenerated:    true,
	}
	c.EndDate.Time, c.EndDate.Valid = start.Time.AddDate(0, 0, days-1), true
	v, err := s.create(ctx, c)
	if err != nil {
		return nil, err
	}

	// The chart is committed; missing guidance only thins the response.
	recs, err := s.recs.ListRecommendations(ctx, repository.RecommendationsFilter{DoshaType: dominant, ActiveOnly: true})
	if err != nil {
		s.logger.Warn("Failed to load recommendations for generated chart",
			zap.String("chart_id", c.ChartID), zap.String("dosha", dominant), zap.Error(err))
		return v, nil
	}
	v.Recommendations = recommendationViews(recs)
	return v, nil
}

// authorizeChart loads the chart and lets patients see only their own.
func (s *DietChartService) authorizeChart(ctx context.Context, actor Actor, chartID string) (*domain.DietChart, error) {
	c, err := s.charts.GetDietChart(ctx, chartID)
	if err != nil {
		return nil, err
	}
	if !actor.IsDoctor() {
		if _, err := authorizePatient(ctx, s.patients, actor, c.PatientID); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (s *DietChartService) GetDietChart(ctx context.Context, actor Actor, chartID string) (*DietChartView, error) {
	c, err := s.authorizeChart(ctx, actor, chartID)
	if err != nil {
		return nil, err
	}
	return newDietChartView(c, s.now()), nil
}

type ListDietChartsRequest struct {
	PatientID string
	Status    string
	// Mine restricts a doctor's listing to charts they created.
	Mine bool
	PageRequest
}

type ListDietChartsResponse struct {
	Items []*DietChartView `json:"items"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
}

func (s *DietChartService) ListDietCharts(ctx context.Context, actor Actor, req ListDietChartsRequest) (*ListDietChartsResponse, error) {
	page, size := req.normalized()
	filter := repository.DietChartsFilter{PatientID: req.PatientID}
	if req.Status != "" {
		st, err := domain.ParseDietChartStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	if actor.IsDoctor() {
		if req.Mine {
			filter.CreatedBy = actor.UserID
		}
	} else {
		pu, err := s.patients.GetPatientByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		filter.PatientID = pu.Patient.PatientID
	}

	list, total, err := s.charts.ListDietCharts(ctx, filter, page, size)
	if err != nil {
		return nil, err
	}
	now := s.now()
	items := make([]*DietChartView, 0, len(list))
	for _, c := range list {
		items = append(items, newDietChartView(c, now))
	}
	return &ListDietChartsResponse{Items: items, Total: total, Page: page, Size: size}, nil
}

// UpdateDietChartRequest nil fields are left unchanged. Status moves only through
// TransitionDietChart.
type UpdateDietChartRequest struct {
	ChartName           *string              `json:"chart_name" validate:"omitempty,max=200"`
	ChartType           *string              `json:"chart_type" validate:"omitempty,oneof=therapeutic maintenance detox weight_loss weight_gain pregnancy diabetic hypertension digestive immunity"`
	Description         *string              `json:"description"`
	TotalDays           *int                 `json:"total_days" validate:"omitempty,gte=1,lte=365"`
	StartDate           *string              `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate             *string              `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	TargetCalories      *int                 `json:"target_calories" validate:"omitempty,gt=0,lte=10000"`
	MealDistribution    map[string]float64   `json:"meal_distribution" validate:"omitempty,dive,gte=0,lte=1"`
	Meals               domain.DailyMealPlan `json:"meals"`
	DoshaFocus          []string             `json:"dosha_focus" validate:"omitempty,dive,oneof=vata pitta kapha vata-pitta vata-kapha pitta-kapha tridosha"`
	FoodRestrictions    []string             `json:"food_restrictions"`
	SpecialInstructions *string              `json:"special_instructions"`
}

func (s *DietChartService) UpdateDietChart(ctx context.Context, actor Actor, chartID string, req UpdateDietChartRequest) (*DietChartView, error) {
	if err := requireDoctor(actor, "edit diet charts"); err != nil {
		return nil, err
	}
	c, err := s.charts.GetDietChart(ctx, chartID)
	if err != nil {
		return nil, err
	}
	if req.ChartName != nil {
		c.ChartName = *req.ChartName
	}
	if req.ChartType != nil {
		c.ChartType = *req.ChartType
	}
	if req.Description != nil {
		c.Description = nullString(req.Description)
	}
	if req.TotalDays != nil {
		c.TotalDays = *req.TotalDays
	}
	if req.StartDate != nil {
		if c.StartDate, err = nullDate("start_date", req.StartDate); err != nil {
			return nil, err
		}
	}
	if req.EndDate != nil {
		if c.EndDate, err = nullDate("end_date", req.EndDate); err != nil {
			return nil, err
		}
	}
	if c.StartDate.Valid && c.EndDate.Valid && c.EndDate.Time.Before(c.StartDate.Time) {
		return nil, domain.NewValidationError("end_date", "must not precede start_date")
	}
	if req.TargetCalories != nil {
		c.TargetCalories = *req.TargetCalories
	}
	if req.MealDistribution != nil {
		c.MealDistribution = req.MealDistribution
	}
	if req.Meals != nil {
		c.Meals = req.Meals
	}
	if req.DoshaFocus != nil {
		c.DoshaFocus = req.DoshaFocus
	}
	if req.FoodRestrictions != nil {
		c.FoodRestrictions = req.FoodRestrictions
	}
	if req.SpecialInstructions != nil {
		c.SpecialInstructions = nullString(req.SpecialInstructions)
	}

	if err := s.charts.UpdateDietChart(ctx, c); err != nil {
		return nil, err
	}
	v := newDietChartView(c, s.now())
	v.MirrorID = syncMirror(ctx, s.syncer, mirror.DietChartRecord(c))
	return v, nil
}

type TransitionDietChartRequest struct {
	Status string `json:"status" validate:"required"`
}

// TransitionDietChart validates the move against the lifecycle table and applies it
// only if the stored status is still the one checked.
func (s *DietChartService) TransitionDietChart(ctx context.Context, actor Actor, chartID string, req TransitionDietChartRequest) (*DietChartView, error) {
	if err := requireDoctor(actor, "change diet chart status"); err != nil {
		return nil, err
	}
	next, err := domain.ParseDietChartStatus(req.Status)
	if err != nil {
		return nil, err
	}
	c, err := s.charts.GetDietChart(ctx, chartID)
	if err != nil {
		return nil, err
	}
	from := c.Status
	if _, err := from.TransitionTo(next); err != nil {
		return nil, err
	}

	updated, err := s.charts.UpdateDietChartStatus(ctx, chartID, from, next)
	if errors.Is(err, repository.ErrConcurrentUpdate) {
		return nil, &domain.ConflictError{Field: "status"}
	}
	if err != nil {
		return nil, err
	}
	v := newDietChartView(updated, s.now())
	v.MirrorID = syncMirror(ctx, s.syncer, mirror.DietChartRecord(updated))
	s.logger.Info("Diet chart status changed",
		zap.String("chart_id", chartID),
		zap.String("from", string(from)),
		zap.String("to", string(next)),
	)
	return v, nil
}

func (s *DietChartService) DeleteDietChart(ctx context.Context, actor Actor, chartID string) error {
	if err := requireDoctor(actor, "delete diet charts"); err != nil {
		return err
	}
	if err := s.charts.DeleteDietChart(ctx, chartID); err != nil {
		return err
	}
	s.syncer.Remove(ctx, mirror.TableDietCharts, chartID)
	return nil
}

// ExportDietChart renders the chart as an xlsx workbook.
func (s *DietChartService) ExportDietChart(ctx context.Context, actor Actor, chartID string) (*ExportFile, error) {
	c, err := s.authorizeChart(ctx, actor, chartID)
	if err != nil {
		return nil, err
	}
	return exportDietChart(c)
}
