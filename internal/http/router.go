package httpapi

import (
	"net/http"
	"time"

	"aahaara-data/internal/metrics"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Dependencies wires the services behind the router.
type Dependencies struct {
	Auth            AuthService
	Profiles        ProfileService
	Patients        PatientService
	Analyses        AnalysisService
	Attachments     AttachmentService
	DietCharts      DietChartService
	Foods           FoodService
	Recommendations RecommendationService
	Health          *HealthHandler
	Metrics         *metrics.Metrics

	AllowedOrigins []string
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// NewRouter builds the API. Everything under /api/v1 needs a bearer token except
// registration and login.
func NewRouter(d Dependencies) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(observe(logger, d.Metrics))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	if d.Health != nil {
		router.Get("/health", d.Health.Health)
	}
	if d.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	auth := NewAuthHandler(d.Auth, logger)
	profiles := NewProfileHandler(d.Profiles, logger)
	patients := NewPatientHandler(d.Patients, d.Analyses, logger)
	attachments := NewAttachmentHandler(d.Attachments, logger)
	charts := NewDietChartHandler(d.DietCharts, logger)
	foods := NewFoodHandler(d.Foods, logger)
	recs := NewRecommendationHandler(d.Recommendations, logger)

	router.Route("/api/v1", func(r chi.Router) {
		if d.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(d.RequestTimeout))
		}

		r.Post("/auth/register/patient", auth.RegisterPatient)
		r.Post("/auth/register/doctor", auth.RegisterDoctor)
		r.Post("/auth/login", auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(authenticate(d.Auth, logger))

			r.Post("/auth/logout", auth.Logout)

			r.Get("/profile", profiles.GetProfile)
			r.Put("/profile", profiles.UpdateProfile)

			r.Route("/patients", func(r chi.Router) {
				r.Get("/", patients.ListPatients)
				r.Post("/", patients.CreatePatient)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", patients.GetPatient)
					r.Put("/", patients.UpdatePatient)
					r.Delete("/", patients.DeletePatient)
					r.Get("/summary", patients.Summary)
					r.Post("/assign-doctor", patients.AssignDoctor)
					r.Get("/analysis-status", patients.AnalysisStatus)

					r.Get("/prakriti", patients.ListPrakriti)
					r.Post("/prakriti", patients.CreatePrakriti)
					r.Get("/diseases", patients.ListDiseases)
					r.Post("/diseases", patients.CreateDisease)
					r.Get("/consultations", patients.ListConsultations)
					r.Post("/consultations", patients.CreateConsultation)

					r.Get("/attachments", attachments.List)
					r.Post("/attachments", attachments.Upload)
				})
			})
			r.Get("/attachments/*", attachments.Download)
			r.Delete("/attachments/*", attachments.Delete)

			r.Route("/diet-charts", func(r chi.Router) {
				r.Get("/", charts.ListDietCharts)
				r.Post("/", charts.CreateDietChart)
				r.Post("/generate", charts.GenerateDietChart)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", charts.GetDietChart)
					r.Put("/", charts.UpdateDietChart)
					r.Delete("/", charts.DeleteDietChart)
					r.Post("/status", charts.TransitionDietChart)
					r.Get("/export", charts.ExportDietChart)
				})
			})

			r.Route("/foods", func(r chi.Router) {
				r.Get("/", foods.ListFoodItems)
				r.Post("/", foods.CreateFoodItem)
				r.Get("/export", foods.ExportFoodItems)
				r.Get("/categories", foods.ListCategories)
				r.Get("/stats", foods.Stats)
				r.Get("/{id}", foods.GetFoodItem)
				r.Put("/{id}", foods.UpdateFoodItem)
				r.Delete("/{id}", foods.DeleteFoodItem)
			})

			r.Get("/recommendations", recs.List)
			r.Post("/recommendations", recs.Create)
		})
	})

	return router
}
