package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"envirowatch/internal/airquality"
	airproviders "envirowatch/internal/airquality/providers"
	httpapi "envirowatch/internal/api/http"
	"envirowatch/internal/config"
	"envirowatch/internal/events"
	"envirowatch/internal/metrics"
	"envirowatch/internal/model"
	"envirowatch/internal/predict"
	"envirowatch/internal/scheduler"
	"envirowatch/internal/store"
	"envirowatch/internal/weather"
	weatherproviders "envirowatch/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zlog.Sync()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	// Weather fallback chain: OpenWeather first (when a key is configured),
	// keyless Open-Meteo as the fallback for both geocoding and forecasts.
	openMeteo := weatherproviders.NewOpenMeteoProvider(httpClient)

	var geocoders []weather.Geocoder
	var wproviders []weather.Provider
	if cfg.OpenWeatherAPIKey != "" {
		openWeather := weatherproviders.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey)
		geocoders = append(geocoders, openWeather)
		wproviders = append(wproviders, openWeather)
	} else {
		zlog.Warn("OPENWEATHER_API_KEY not set; relying on Open-Meteo only")
	}
	geocoders = append(geocoders, openMeteo)
	wproviders = append(wproviders, openMeteo)

	weatherSvc := weather.NewService(geocoders, wproviders, zlog)

	// Air-quality fallback chain: OpenAQ first, OpenWeather air-pollution
	// second, reusing the weather geocoding chain for coordinates.
	geocode := func(ctx context.Context, city string) (float64, float64, error) {
		coords, err := weatherSvc.Resolve(ctx, city)
		if err != nil {
			return 0, 0, err
		}
		return coords.Lat, coords.Lon, nil
	}
	airSvc := airquality.NewService([]airquality.Provider{
		airproviders.NewOpenAQProvider(httpClient),
		airproviders.NewOpenWeatherAirProvider(httpClient, cfg.OpenWeatherAPIKey, geocode),
	}, zlog)

	leaderboard := airquality.NewLeaderboard(airSvc, cfg.LeaderboardCities, cfg.LeaderboardTTL, zlog)

	// Prediction history: Postgres when configured, bounded memory otherwise.
	var predictionStore store.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect postgres: %v", err)
		}
		defer pg.Close()
		predictionStore = pg
		zlog.Info("prediction history backed by postgres")
	} else {
		predictionStore = store.NewMemoryStore(cfg.StoreMaxHistory)
	}

	var publisher *events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, zlog)
		defer publisher.Close()
		zlog.Info("prediction events enabled", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	recorder := predict.NewStoreRecorder(predictionStore, publisher, zlog)

	// Eager model load; a missing artifact is tolerated at startup and
	// surfaced per-request (the auto pipeline degrades to the demo path).
	handle := predict.NewModelHandle(cfg.ModelDir)
	if wrapper, err := handle.Get(); err != nil {
		if errors.Is(err, model.ErrModelNotFound) {
			zlog.Warn("no model artifact; predictions will degrade", zap.String("dir", cfg.ModelDir))
		} else {
			log.Fatalf("failed to load model: %v", err)
		}
	} else {
		zlog.Info("model loaded",
			zap.String("source", wrapper.Source()),
			zap.Int("features", len(wrapper.Schema().FeatureOrder)))
	}

	predictSvc := predict.NewService(weatherSvc, airSvc, handle, recorder, zlog)

	sched := scheduler.New(leaderboard, cfg.RefreshInterval, 2*time.Minute, zlog)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.InitAndServe(cfg.MetricsAddr); err != nil {
				zlog.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	app := fiber.New(fiber.Config{
		AppName:               "envirowatch",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"ok":    false,
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Predict:     predictSvc,
		Air:         airSvc,
		Leaderboard: leaderboard,
		Weather:     weatherSvc,
		Store:       predictionStore,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Error("fiber server stopped", zap.Error(err))
		}
	}()
	zlog.Info("envirowatch listening", zap.String("port", cfg.Port))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
}
