package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpdelivery "github.com/avery69gael/mi-proyecto-trading/internal/delivery/http"
	"github.com/avery69gael/mi-proyecto-trading/internal/delivery/websocket"
	"github.com/avery69gael/mi-proyecto-trading/internal/domain"
	"github.com/avery69gael/mi-proyecto-trading/internal/infrastructure/coingecko"
	"github.com/avery69gael/mi-proyecto-trading/internal/infrastructure/db"
	"github.com/avery69gael/mi-proyecto-trading/internal/infrastructure/fcm"
	"github.com/avery69gael/mi-proyecto-trading/internal/infrastructure/mailer"
	"github.com/avery69gael/mi-proyecto-trading/internal/metrics"
	"github.com/avery69gael/mi-proyecto-trading/internal/notification"
	"github.com/avery69gael/mi-proyecto-trading/internal/repository"
	"github.com/avery69gael/mi-proyecto-trading/internal/usecase"
)

func main() {
	// Local development convenience; deployed environments set real env vars.
	if err := godotenv.Load(); err == nil {
		log.Println("[main] loaded .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.NewMetrics()

	// 1. Alert storage: Postgres (Supabase) when DATABASE_URL is set,
	// in-memory otherwise.
	var alertRepo domain.AlertRepository = repository.NewInMemoryAlertRepository()
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := db.NewPool(ctx, dbURL, db.PoolConfigFromEnv())
		if err != nil {
			log.Fatalf("[main] connecting to database: %v", err)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatalf("[main] migrating database: %v", err)
		}
		alertRepo = repository.NewPostgresAlertRepository(pool)
		log.Println("[main] alerts persisted to Postgres")
	} else {
		log.Println("[main] DATABASE_URL unset, alerts kept in memory")
	}

	// 2. Snapshot cache: Redis when REDIS_ADDR is set, in-memory otherwise.
	var cache domain.SnapshotCache = repository.NewInMemorySnapshotCache()
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
		redisCache, err := repository.NewRedisSnapshotCache(repository.RedisConfig{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		})
		if err != nil {
			log.Printf("[main] redis unavailable, using in-memory cache: %v", err)
		} else {
			defer redisCache.Close()
			cache = redisCache
		}
	}

	// 3. Notification channels.
	fcmClient, err := fcm.NewClient(ctx)
	if err != nil {
		log.Printf("[main] fcm init failed, push disabled: %v", err)
		fcmClient = &fcm.Client{}
	}
	tokenRepo := repository.NewTokenRepository()
	mail := mailer.NewClient(os.Getenv("RESEND_API_KEY"), os.Getenv("MAIL_FROM"), "")

	notifiers := []notification.Notifier{
		notification.NewLogNotifier(),
		notification.NewFCMNotifier(fcmClient, tokenRepo),
		notification.NewEmailNotifier(mail),
	}

	// 4. Usecases.
	history := repository.NewInMemorySignalHistory()
	alertUC := usecase.NewAlertUsecase(alertRepo, notifiers, mail, m)
	source := coingecko.NewClient(os.Getenv("COINGECKO_BASE_URL"))
	refreshUC := usecase.NewRefreshUsecase(source, cache, history, alertUC, m, os.Getenv("COIN_ID"))

	go refreshUC.Run(ctx)

	// 5. Delivery.
	alertHandler := httpdelivery.NewAlertHandler(alertUC)
	dashboardHandler := httpdelivery.NewDashboardHandler(refreshUC)
	tokenHandler := httpdelivery.NewTokenHandler(tokenRepo)
	wsHandler := websocket.NewHandler(refreshUC)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/dashboard", dashboardHandler.HandleDashboard)
	mux.HandleFunc("/api/signals", dashboardHandler.HandleSignals)
	mux.HandleFunc("/api/coin", dashboardHandler.HandleSelectCoin)
	mux.HandleFunc("/api/refresh", dashboardHandler.HandleRefresh)
	mux.HandleFunc("/api/alerts", alertHandler.HandleAlerts)
	mux.HandleFunc("/api/alerts/", alertHandler.HandleDeleteAlert)
	mux.HandleFunc("/api/tokens/register", tokenHandler.HandleRegisterToken)
	mux.HandleFunc("/api/tokens/unregister", tokenHandler.HandleUnregisterToken)
	mux.HandleFunc("/api/tokens/count", tokenHandler.HandleGetTokenCount)
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/ws", wsHandler.Handle)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Server executing on :%s", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
