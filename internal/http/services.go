package httpapi

import (
	"context"

	"aahaara-data/internal/domain"
	"aahaara-data/internal/repository"
	"aahaara-data/internal/service"
)

// The handlers depend on these narrow views of the service layer.

type AuthService interface {
	RegisterPatient(ctx context.Context, req service.RegisterPatientRequest) (*service.AuthResponse, error)
	RegisterDoctor(ctx context.Context, req service.RegisterDoctorRequest) (*service.AuthResponse, error)
	Login(ctx context.Context, req service.LoginRequest) (*service.AuthResponse, error)
	Logout(ctx context.Context, actor service.Actor) error
	Authenticate(ctx context.Context, raw string) (service.Actor, error)
}

type ProfileService interface {
	GetProfile(ctx context.Context, actor service.Actor) (*service.ProfileResponse, error)
	UpdateProfile(ctx context.Context, actor service.Actor, req service.UpdateProfileRequest) (*service.ProfileResponse, error)
}

type PatientService interface {
	CreatePatient(ctx context.Context, actor service.Actor, req service.RegisterPatientRequest) (*service.PatientView, error)
	GetPatient(ctx context.Context, actor service.Actor, patientID string) (*service.PatientView, error)
	ListPatients(ctx context.Context, actor service.Actor, req service.ListPatientsRequest) (*service.ListPatientsResponse, error)
	UpdatePatient(ctx context.Context, actor service.Actor, patientID string, req service.UpdatePatientRequest) (*service.PatientView, error)
	DeletePatient(ctx context.Context, actor service.Actor, patientID string) error
	AssignDoctor(ctx context.Context, actor service.Actor, patientID string, req service.AssignDoctorRequest) (*service.PatientView, error)
	Summary(ctx context.Context, actor service.Actor, patientID string) (*service.PatientSummary, error)
	AnalysisStatus(ctx context.Context, actor service.Actor, patientID string) (*service.AnalysisStatus, error)
}

type AnalysisService interface {
	CreatePrakriti(ctx context.Context, actor service.Actor, patientID string, req service.CreatePrakritiRequest) (*service.PrakritiView, error)
	ListPrakriti(ctx context.Context, actor service.Actor, patientID string) ([]*service.PrakritiView, error)
	CreateDisease(ctx context.Context, actor service.Actor, patientID string, req service.CreateDiseaseRequest) (*service.DiseaseView, error)
	ListDiseases(ctx context.Context, actor service.Actor, patientID string, activeOnly bool) ([]*service.DiseaseView, error)
	CreateConsultation(ctx context.Context, actor service.Actor, patientID string, req service.CreateConsultationRequest) (*service.ConsultationResponse, error)
	ListConsultations(ctx context.Context, actor service.Actor, patientID string, limit int) ([]*service.ConsultationView, error)
}

type AttachmentService interface {
	Upload(ctx context.Context, actor service.Actor, patientID string, req service.UploadAttachmentRequest) (*domain.Attachment, error)
	List(ctx context.Context, actor service.Actor, patientID string) ([]*domain.Attachment, error)
	Download(ctx context.Context, actor service.Actor, objectPath string) (*service.ExportFile, error)
	Delete(ctx context.Context, actor service.Actor, objectPath string) error
}

type DietChartService interface {
	CreateDietChart(ctx context.Context, actor service.Actor, req service.CreateDietChartRequest) (*service.DietChartView, error)
	GenerateDietChart(ctx context.Context, actor service.Actor, req service.GenerateDietChartRequest) (*service.DietChartView, error)
	GetDietChart(ctx context.Context, actor service.Actor, chartID string) (*service.DietChartView, error)
	ListDietCharts(ctx context.Context, actor service.Actor, req service.ListDietChartsRequest) (*service.ListDietChartsResponse, error)
	UpdateDietChart(ctx context.Context, actor service.Actor, chartID string, req service.UpdateDietChartRequest) (*service.DietChartView, error)
	TransitionDietChart(ctx context.Context, actor service.Actor, chartID string, req service.TransitionDietChartRequest) (*service.DietChartView, error)
	DeleteDietChart(ctx context.Context, actor service.Actor, chartID string) error
	ExportDietChart(ctx context.Context, actor service.Actor, chartID string) (*service.ExportFile, error)
}

type FoodService interface {
	CreateFoodItem(ctx context.Context, actor service.Actor, req service.FoodItemRequest) (*service.FoodItemView, error)
	GetFoodItem(ctx context.Context, foodID string) (*service.FoodItemView, error)
	ListFoodItems(ctx context.Context, req service.ListFoodItemsRequest) (*service.ListFoodItemsResponse, error)
	UpdateFoodItem(ctx context.Context, actor service.Actor, foodID string, req service.FoodItemRequest) (*service.FoodItemView, error)
	DeleteFoodItem(ctx context.Context, actor service.Actor, foodID string) error
	ExportFoodItems(ctx context.Context, filter repository.FoodFilter) (*service.ExportFile, error)
	ListCategories(ctx context.Context) (*service.FoodCategoriesResponse, error)
	Stats(ctx context.Context) (*service.FoodStatsView, error)
}

type RecommendationService interface {
	CreateRecommendation(ctx context.Context, actor service.Actor, req service.CreateRecommendationRequest) (*service.RecommendationView, error)
	ListRecommendations(ctx context.Context, actor service.Actor, req service.ListRecommendationsRequest) ([]*service.RecommendationView, error)
}

var (
	_ AuthService       = (*service.AuthService)(nil)
	_ ProfileService    = (*service.ProfileService)(nil)
	_ PatientService    = (*service.PatientService)(nil)
	_ AnalysisService   = (*service.AnalysisService)(nil)
	_ AttachmentService = (*service.AttachmentService)(nil)
	_ DietChartService  = (*service.DietChartService)(nil)
	_ FoodService       = (*service.FoodService)(nil)

	_ RecommendationService = (*service.RecommendationService)(nil)
)
