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

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/HCS-BookingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/HCS-BookingService/internal/api/handlers/create_booking"
	draftsHandler "github.com/m04kA/HCS-BookingService/internal/api/handlers/drafts"
	getAvailabilityHandler "github.com/m04kA/HCS-BookingService/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/HCS-BookingService/internal/api/handlers/get_booking"
	getCustomerBookingsHandler "github.com/m04kA/HCS-BookingService/internal/api/handlers/get_customer_bookings"
	getOrganizationBookingsHandler "github.com/m04kA/HCS-BookingService/internal/api/handlers/get_organization_bookings"
	getServicesHandler "github.com/m04kA/HCS-BookingService/internal/api/handlers/get_services"
	"github.com/m04kA/HCS-BookingService/internal/api/middleware"
	"github.com/m04kA/HCS-BookingService/internal/catalogfeed"
	"github.com/m04kA/HCS-BookingService/internal/config"
	"github.com/m04kA/HCS-BookingService/internal/infra/draftstore"
	bookingRepo "github.com/m04kA/HCS-BookingService/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/HCS-BookingService/internal/infra/storage/catalog"
	customerRepo "github.com/m04kA/HCS-BookingService/internal/infra/storage/customer"
	lineServiceClient "github.com/m04kA/HCS-BookingService/internal/integrations/lineservice"
	postalServiceClient "github.com/m04kA/HCS-BookingService/internal/integrations/postalservice"
	"github.com/m04kA/HCS-BookingService/internal/notify"
	bookingsService "github.com/m04kA/HCS-BookingService/internal/service/bookings"
	catalogService "github.com/m04kA/HCS-BookingService/internal/service/catalog"
	draftsService "github.com/m04kA/HCS-BookingService/internal/service/drafts"
	createBookingUC "github.com/m04kA/HCS-BookingService/internal/usecase/create_booking"
	expirePaymentsUC "github.com/m04kA/HCS-BookingService/internal/usecase/expire_payments"
	getAvailabilityUC "github.com/m04kA/HCS-BookingService/internal/usecase/get_availability"
	"github.com/m04kA/HCS-BookingService/pkg/dbmetrics"
	"github.com/m04kA/HCS-BookingService/pkg/logger"
	"github.com/m04kA/HCS-BookingService/pkg/metrics"
	"github.com/m04kA/HCS-BookingService/pkg/simpletxmanager"
	"github.com/m04kA/HCS-BookingService/pkg/txmanager"
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

	log.Info("Starting HCS-BookingService...")
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

	// Подключаемся к Redis (хранилище черновиков)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to ping redis: %v", err)
	}
	log.Info("Successfully connected to redis (addr=%s, db=%d)", cfg.Redis.Addr, cfg.Redis.DB)

	// Инициализируем интеграционных клиентов
	lineClient := lineServiceClient.NewClient(
		cfg.LineService.URL,
		time.Duration(cfg.LineService.Timeout)*time.Second,
		log,
	)
	postalClient := postalServiceClient.NewClient(
		cfg.PostalService.URL,
		time.Duration(cfg.PostalService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (LineService=%s timeout=%ds, PostalService=%s timeout=%ds)",
		cfg.LineService.URL, cfg.LineService.Timeout, cfg.PostalService.URL, cfg.PostalService.Timeout)

	// Инициализируем Kafka: публикация уведомлений, их доставка в LINE
	// и лента изменений каталога для открытых черновиков
	publisher := notify.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.NotificationsTopic, log)
	defer publisher.Close()

	dispatcher := notify.NewDispatcher(cfg.Kafka.Brokers, cfg.Kafka.NotificationsTopic,
		cfg.Kafka.DispatcherGroupID, lineClient, log)
	defer dispatcher.Close()

	feed := catalogfeed.NewFeed(cfg.Kafka.Brokers, cfg.Kafka.CatalogTopic, log)
	defer feed.Close()

	log.Info("Kafka initialized (brokers=%v, notifications=%s, catalog=%s)",
		cfg.Kafka.Brokers, cfg.Kafka.NotificationsTopic, cfg.Kafka.CatalogTopic)

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository  *bookingRepo.Repository
		catalogRepository  *catalogRepo.Repository
		customerRepository *customerRepo.Repository
	)

	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		catalogRepository = catalogRepo.NewRepository(wrappedDB)
		customerRepository = customerRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		catalogRepository = catalogRepo.NewRepository(db)
		customerRepository = customerRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Хранилище черновиков с TTL
	store := draftstore.NewStore(rdb, time.Duration(cfg.Drafts.TTLSeconds)*time.Second)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		catalogRepository,
		customerRepository,
		publisher,
		txMgr,
		log,
	)

	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		bookingRepository,
		catalogRepository,
		log,
	)

	expirePaymentsUseCase := expirePaymentsUC.NewUseCase(
		bookingRepository,
		catalogRepository,
		customerRepository,
		publisher,
		log,
	)

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		catalogRepository,
		customerRepository,
		publisher,
		log,
	)
	catalogSvc := catalogService.NewService(catalogRepository, log)
	draftSvc := draftsService.NewService(
		catalogRepository,
		store,
		feed,
		postalClient,
		createBookingUseCase,
		log,
	)
	defer draftSvc.Close()

	// Фоновые процессы: доставка уведомлений и проверка просроченных оплат
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	go func() {
		if err := dispatcher.Run(bgCtx); err != nil {
			log.Error("Notification dispatcher stopped with error: %v", err)
		}
	}()

	if cfg.PaymentSweep.Enabled {
		go expirePaymentsUseCase.Run(bgCtx, time.Duration(cfg.PaymentSweep.IntervalSeconds)*time.Second)
		log.Info("Payment expiry sweep enabled, interval=%ds", cfg.PaymentSweep.IntervalSeconds)
	}

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	getServices := getServicesHandler.NewHandler(catalogSvc, log)
	drafts := draftsHandler.NewHandler(draftSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getCustomerBookings := getCustomerBookingsHandler.NewHandler(bookingSvc, log)
	getOrganizationBookings := getOrganizationBookingsHandler.NewHandler(bookingSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

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

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Занятость слотов организации
	api.HandleFunc("/organizations/{organizationId}/availability",
		getAvailability.Handle).Methods(http.MethodGet)

	// Каталог услуг организации
	api.HandleFunc("/organizations/{organizationId}/services",
		getServices.Handle).Methods(http.MethodGet)

	// --- Мастер бронирования (черновики) ---
	api.HandleFunc("/drafts", drafts.HandleStart).Methods(http.MethodPost)
	api.HandleFunc("/drafts/{draftId}", drafts.HandleGet).Methods(http.MethodGet)
	api.HandleFunc("/drafts/{draftId}/steps", drafts.HandleApplyStep).Methods(http.MethodPost)
	api.HandleFunc("/drafts/{draftId}/back", drafts.HandleBack).Methods(http.MethodPost)
	api.HandleFunc("/drafts/{draftId}/submit", drafts.HandleSubmit).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Прямое создание бронирования (админка)
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Отмена бронирования
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// История бронирований клиента
	protected.HandleFunc("/customers/{customerId}/bookings", getCustomerBookings.Handle).Methods(http.MethodGet)

	// --- Управление организацией (для персонала) ---
	// Список бронирований организации
	protected.HandleFunc("/organizations/{organizationId}/bookings",
		getOrganizationBookings.Handle).Methods(http.MethodGet)

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

	// Останавливаем фоновые процессы
	bgCancel()

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
