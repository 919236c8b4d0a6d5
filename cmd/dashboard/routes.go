package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	getdashboard "wip-dashboard/http-server/dashboard/get"
	"wip-dashboard/http-server/dashboard/rebuild"
	generate_excel "wip-dashboard/http-server/generate-report/generate-excel"
	getprojects "wip-dashboard/http-server/projects/get"
	"wip-dashboard/http-server/projects/remove"
	saveprojects "wip-dashboard/http-server/projects/save"
	"wip-dashboard/http-server/report/wip"
	"wip-dashboard/internal/config"
	"wip-dashboard/internal/middleware/auth"
	"wip-dashboard/internal/service/dashboard"
	generate_excel2 "wip-dashboard/internal/service/generate-excel"
	"wip-dashboard/internal/service/project"
)

var defaultOrigins = []string{"http://localhost:8081", "http://localhost:5173"}

func routes(cfg config.Config, log *slog.Logger, projects *project.Service, dash *dashboard.Service, excel *generate_excel2.GenerateExcelService) *chi.Mux {
	router := chi.NewRouter()

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = defaultOrigins
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/api/dashboard", getdashboard.GetDashboard(log, dash))
	router.Get("/api/dashboard/summary", getdashboard.GetStoredSummary(log, dash))

	router.Get("/api/projects", getprojects.GetProjects(log, projects))
	router.Get("/api/projects/{id}", getprojects.GetProject(log, projects))
	router.Post("/api/projects", saveprojects.CreateProject(log, projects))
	router.Put("/api/projects/{id}", saveprojects.UpdateProject(log, projects))
	router.Delete("/api/projects/{id}", remove.DeleteProject(log, projects))

	router.Get("/api/report/wip", wip.GetWIPReport(log, dash))
	router.Get("/api/report/wip/excel", generate_excel.GenerateReportExcel(log, excel))

	adminRouter := chi.NewRouter()
	adminRouter.Use(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass))
	adminRouter.Post("/dashboard/rebuild", rebuild.RebuildSummary(log, dash))

	router.Mount("/api/admin", adminRouter)

	return router
}
