package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/rajatch15/backend-cloud-functions/internal/handler/http/middleware"
	"github.com/rajatch15/backend-cloud-functions/internal/handler/http/response"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/jwt"
)

// RouterConfig carries the process settings the router needs.
type RouterConfig struct {
	Env            string
	Production     bool
	Version        string
	LogLevel       slog.Level
	AllowedOrigins []string
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	activityHandler ActivityHandler,
	templateHandler TemplateHandler,
	attendanceHandler AttendanceHandler,
	payrollHandler PayrollHandler,
	propagationHandler PropagationHandler,
	timerHandler TimerHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(!cfg.Production)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "backend-cloud-functions"),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.NotFound(notFound)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.Requester(JWTService))

		// Any method reaches the handlers so they can answer 405 themselves.
		r.HandleFunc("/activities/create", activityHandler.Create)
		r.HandleFunc("/single", activityHandler.Single)
		r.Post("/activities/unassign", activityHandler.Unassign)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.SupportOnly(JWTService))

			r.Route("/templates", func(r chi.Router) {
				r.Post("/", templateHandler.Create)
				r.Get("/{name}", templateHandler.Get)
				r.Put("/{name}", templateHandler.Update)
				r.Post("/{name}/propagate", propagationHandler.Propagate)
			})

			r.Post("/rollup", attendanceHandler.Rollup)

			r.Route("/reports/payroll", func(r chi.Router) {
				r.Get("/", payrollHandler.Download)
				r.Post("/send", payrollHandler.Send)
			})

			r.Post("/updates/{uid}/purge", propagationHandler.Purge)
			r.Post("/timer", timerHandler.Fire)
		})
	})
	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	response.NotFound(w, "Route not found")
}
