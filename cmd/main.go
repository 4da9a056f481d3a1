package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	applyCouponHandler "github.com/aokiyama/SLB-ReservationService/internal/api/handlers/apply_coupon"
	createReservationHandler "github.com/aokiyama/SLB-ReservationService/internal/api/handlers/create_reservation"
	deactivateServiceHandler "github.com/aokiyama/SLB-ReservationService/internal/api/handlers/deactivate_service"
	getAvailableSlotsHandler "github.com/aokiyama/SLB-ReservationService/internal/api/handlers/get_available_slots"
	getCouponsHandler "github.com/aokiyama/SLB-ReservationService/internal/api/handlers/get_coupons"
	getReservationHandler "github.com/aokiyama/SLB-ReservationService/internal/api/handlers/get_reservation"
	getSalonHandler "github.com/aokiyama/SLB-ReservationService/internal/api/handlers/get_salon"
	getSalonReservationsHandler "github.com/aokiyama/SLB-ReservationService/internal/api/handlers/get_salon_reservations"
	getUserReservationsHandler "github.com/aokiyama/SLB-ReservationService/internal/api/handlers/get_user_reservations"
	transitionReservationHandler "github.com/aokiyama/SLB-ReservationService/internal/api/handlers/transition_reservation"
	"github.com/aokiyama/SLB-ReservationService/internal/api/middleware"
	"github.com/aokiyama/SLB-ReservationService/internal/config"
	catalogRepo "github.com/aokiyama/SLB-ReservationService/internal/infra/storage/catalog"
	changelogRepo "github.com/aokiyama/SLB-ReservationService/internal/infra/storage/changelog"
	couponRepo "github.com/aokiyama/SLB-ReservationService/internal/infra/storage/coupon"
	reservationRepo "github.com/aokiyama/SLB-ReservationService/internal/infra/storage/reservation"
	auditService "github.com/aokiyama/SLB-ReservationService/internal/service/audit"
	catalogService "github.com/aokiyama/SLB-ReservationService/internal/service/catalog"
	couponsService "github.com/aokiyama/SLB-ReservationService/internal/service/coupons"
	reservationsService "github.com/aokiyama/SLB-ReservationService/internal/service/reservations"
	applyCouponUC "github.com/aokiyama/SLB-ReservationService/internal/usecase/apply_coupon"
	createReservationUC "github.com/aokiyama/SLB-ReservationService/internal/usecase/create_reservation"
	getAvailableSlotsUC "github.com/aokiyama/SLB-ReservationService/internal/usecase/get_available_slots"
	"github.com/aokiyama/SLB-ReservationService/pkg/dbmetrics"
	"github.com/aokiyama/SLB-ReservationService/pkg/logger"
	"github.com/aokiyama/SLB-ReservationService/pkg/metrics"
	"github.com/aokiyama/SLB-ReservationService/pkg/simpletxmanager"
	"github.com/aokiyama/SLB-ReservationService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SLB-ReservationService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем репозитории (с метриками или без)
	var (
		reservationRepository *reservationRepo.Repository
		catalogRepository     *catalogRepo.Repository
		couponRepository      *couponRepo.Repository
		changelogRepository   *changelogRepo.Repository
	)

	// Интерфейс для transaction manager (используется в сервисах и usecases)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
		DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		reservationRepository = reservationRepo.NewRepository(wrappedDB)
		catalogRepository = catalogRepo.NewRepository(wrappedDB)
		couponRepository = couponRepo.NewRepository(wrappedDB)
		changelogRepository = changelogRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		reservationRepository = reservationRepo.NewRepository(db)
		catalogRepository = catalogRepo.NewRepository(db)
		couponRepository = couponRepo.NewRepository(db)
		changelogRepository = changelogRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Журнал аудита
	auditRecorder := auditService.NewRecorder(changelogRepository, log)

	// Инициализируем сервисы
	reservationsSvc := reservationsService.NewService(
		reservationRepository,
		auditRecorder,
		txMgr,
		log,
	)
	catalogSvc := catalogService.NewService(
		catalogRepository,
		reservationRepository,
		txMgr,
		log,
	)
	couponsSvc := couponsService.NewService(couponRepository, log)

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		catalogRepository,
		reservationRepository,
		cfg.Booking.SlotStepMinutes,
		log,
	)

	createReservationUseCase := createReservationUC.NewUseCase(
		catalogRepository,
		reservationRepository,
		auditRecorder,
		txMgr,
		log,
	)

	applyCouponUseCase := applyCouponUC.NewUseCase(
		reservationRepository,
		catalogRepository,
		couponRepository,
		auditRecorder,
		txMgr,
		log,
	)

	// Инициализируем handlers
	getSalon := getSalonHandler.NewHandler(catalogSvc, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getCoupons := getCouponsHandler.NewHandler(couponsSvc, log)
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationsSvc, log)
	transitionReservation := transitionReservationHandler.NewHandler(reservationsSvc, log)
	applyCoupon := applyCouponHandler.NewHandler(applyCouponUseCase, log)
	getUserReservations := getUserReservationsHandler.NewHandler(reservationsSvc, log)
	getSalonReservations := getSalonReservationsHandler.NewHandler(reservationsSvc, log)
	deactivateService := deactivateServiceHandler.NewHandler(catalogSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// CORS для LIFF-фронтенда
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-ID", "X-User-Role"},
		AllowCredentials: cfg.CORS.AllowCredentials,
	}))

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// Healthcheck
	r.HandleFunc("/healthcheck", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Карточка салона: услуги, мастера, часы работы
	api.HandleFunc("/salons/{salonId}", getSalon.Handle).Methods(http.MethodGet)

	// Доступные слоты для записи
	api.HandleFunc("/salons/{salonId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Действующие купоны
	api.HandleFunc("/coupons", getCoupons.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Брони ---
	// Создание брони
	protected.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)

	// Получение брони по ID
	protected.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)

	// Перевод брони по статусной машине
	protected.HandleFunc("/reservations/{reservationId}/status", transitionReservation.Handle).Methods(http.MethodPatch)

	// Применение купона к брони
	protected.HandleFunc("/reservations/{reservationId}/coupon", applyCoupon.Handle).Methods(http.MethodPost)

	// История броней пользователя
	protected.HandleFunc("/users/{userId}/reservations", getUserReservations.Handle).Methods(http.MethodGet)

	// --- Управление салоном (для менеджеров) ---
	// Список броней салона
	protected.HandleFunc("/salons/{salonId}/reservations", getSalonReservations.Handle).Methods(http.MethodGet)

	// Деактивация услуги
	protected.HandleFunc("/services/{serviceId}", deactivateService.Handle).Methods(http.MethodDelete)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
