package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rajatch15/backend-cloud-functions/internal/config"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
	appHTTP "github.com/rajatch15/backend-cloud-functions/internal/handler/http"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/cron"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/database"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/docstore"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/email"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/jwt"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/storage"
	"github.com/rajatch15/backend-cloud-functions/internal/repository/cache"
	"github.com/rajatch15/backend-cloud-functions/internal/repository/document"
	"github.com/rajatch15/backend-cloud-functions/internal/repository/mongodb"
	"github.com/rajatch15/backend-cloud-functions/internal/repository/postgresql"
	activityService "github.com/rajatch15/backend-cloud-functions/internal/service/activity"
	attendanceService "github.com/rajatch15/backend-cloud-functions/internal/service/attendance"
	payrollService "github.com/rajatch15/backend-cloud-functions/internal/service/payroll"
	propagationService "github.com/rajatch15/backend-cloud-functions/internal/service/propagation"
	templateService "github.com/rajatch15/backend-cloud-functions/internal/service/template"
	timerService "github.com/rajatch15/backend-cloud-functions/internal/service/timer"
)

const version = "v1.0.0"

func logLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// openStore connects the configured backend. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config) (docstore.Store, func(), error) {
	switch cfg.Store.Type {
	case config.StorePostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{MaxConns: int32(cfg.Database.MaxConns)})
		if err != nil {
			return nil, nil, err
		}
		store := postgresql.NewDocumentStore(db)
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, db.Close, nil
	case config.StoreMongo:
		db, err := database.NewMongoDB(cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() { _ = db.Close(context.Background()) }
		store, err := mongodb.NewDocumentStore(ctx, db)
		if err != nil {
			closeDB()
			return nil, nil, err
		}
		return store, closeDB, nil
	default:
		slog.Warn("Using the in-memory document store; data is lost on exit")
		return docstore.NewMemoryStore(), func() {}, nil
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	level := logLevel(cfg.App.LogLevel)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open document store: ", err)
	}
	defer closeStore()

	activityRepo := document.NewActivityRepository(store)
	officeRepo := document.NewOfficeRepository(store)
	attendanceRepo := document.NewAttendanceRepository(store)
	payrollRepo := document.NewPayrollRepository(store)
	propagationRepo := document.NewPropagationRepository(store)
	timerRepo := document.NewTimerRepository(store)

	var templateRepo template.Repository = document.NewTemplateRepository(store)
	if cfg.Redis.Addr != "" {
		client, err := database.NewRedisClient(ctx, database.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to redis: ", err)
		}
		defer client.Close()
		templateRepo = cache.NewTemplateRepository(templateRepo, client, cfg.Redis.TemplateTTL)
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Reports.ArtifactDir, cfg.Reports.ArtifactURL)
	if err != nil {
		log.Fatal("Failed to initialize local storage: ", err)
	}
	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service: ", err)
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.SupportClaim, cfg.JWT.AccessExpiration)

	propagationSvc := propagationService.NewPropagationService(propagationRepo, templateRepo, propagationService.Config{
		PageSize:  cfg.Propagation.PageSize,
		PageDelay: cfg.Propagation.PageDelay,
	})
	runner := propagationService.NewRunner(propagationSvc, cfg.Propagation.QueueSize)

	templateSvc := templateService.NewTemplateService(templateRepo, runner)
	activitySvc := activityService.NewActivityService(activityRepo, officeRepo, templateRepo, payrollRepo, activityService.Config{
		DefaultTimezone:  cfg.App.DefaultTimezone,
		LeaveResetPolicy: cfg.Leave.ResetPolicy,
	})
	attendanceSvc := attendanceService.NewAttendanceService(officeRepo, attendanceRepo, payrollRepo, attendanceService.Config{
		DefaultTimezone: cfg.App.DefaultTimezone,
	})
	payrollSvc := payrollService.NewPayrollService(officeRepo, attendanceRepo, payrollRepo, fileStorage, emailService, payrollService.Config{
		DefaultTimezone: cfg.App.DefaultTimezone,
	})
	timerSvc := timerService.NewTimerService(timerRepo, officeRepo, payrollRepo, attendanceSvc, payrollSvc, timerService.Config{
		DefaultTimezone: cfg.App.DefaultTimezone,
		Recipients:      cfg.Reports.Recipients,
	})

	loc, err := time.LoadLocation(cfg.App.DefaultTimezone)
	if err != nil {
		log.Fatal("Failed to load timezone: ", err)
	}
	scheduler := cron.NewScheduler()
	cron.NewTimerJobs(timerSvc, cfg.Reports.CronHour, loc).RegisterJobs(scheduler)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Env:            cfg.App.Env,
			Production:     cfg.App.IsProduction(),
			Version:        version,
			LogLevel:       level,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
		},
		JWTService,
		appHTTP.NewActivityHandler(activitySvc),
		appHTTP.NewTemplateHandler(templateSvc),
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewPayrollHandler(payrollSvc),
		appHTTP.NewPropagationHandler(propagationSvc, runner),
		appHTTP.NewTimerHandler(timerSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runner.Start()
	scheduler.Start()

	go func() {
		slog.Info("Server running", "addr", server.Addr, "store", cfg.Store.Type)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	scheduler.Stop()
	if err := runner.Stop(shutdownCtx); err != nil {
		slog.Error("Propagation runner did not drain", "error", err)
	}
}
