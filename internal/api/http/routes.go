// Package httpapi wires the HTTP handlers into the Fiber app. Handlers are
// thin adapters: validation, a service call, and status mapping.
package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"envirowatch/internal/airquality"
	"envirowatch/internal/features"
	"envirowatch/internal/predict"
	"envirowatch/internal/store"
	"envirowatch/internal/weather"
)

var validate = validator.New()

// Deps bundles the services the routes depend on.
type Deps struct {
	Predict     *predict.Service
	Air         *airquality.Service
	Leaderboard *airquality.Leaderboard
	Weather     *weather.Service
	Store       store.Store
}

// RegisterRoutes mounts all API endpoints under /api.
func RegisterRoutes(app *fiber.App, deps Deps) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ping": "pong"})
	})

	api.Post("/predict", func(c *fiber.Ctx) error {
		var payload PredictPayload
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"ok": false, "error": "invalid payload: " + err.Error(),
			})
		}
		if err := validate.Struct(payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"ok": false, "error": "invalid payload", "details": err.Error(),
			})
		}

		resp := deps.Predict.PredictManual(c.Context(), payload.ToVector())
		if !resp.Ok {
			return c.Status(fiber.StatusInternalServerError).JSON(resp)
		}
		return c.JSON(resp)
	})

	api.Post("/predict-auto", func(c *fiber.Ctx) error {
		var payload PredictAutoPayload
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"ok": false, "error": "invalid payload: " + err.Error(),
			})
		}
		if err := validate.Struct(payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"ok": false, "error": "city, date, time required",
			})
		}
		if _, _, err := features.ParseDate(payload.Date); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"ok": false, "error": err.Error(),
			})
		}

		resp := deps.Predict.PredictAuto(c.Context(), payload.City, payload.Date, payload.Time)
		if !resp.Ok {
			return c.Status(fiber.StatusInternalServerError).JSON(resp)
		}
		return c.JSON(resp)
	})

	api.Get("/weather", func(c *fiber.Ctx) error {
		city := c.Query("city")
		if city == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "city required"})
		}
		date := c.Query("date")
		if date == "" {
			date = time.Now().UTC().Format("2006-01-02")
		}

		vec, res, err := deps.Predict.WeatherFeatures(c.Context(), city, date, c.Query("time"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": err.Error()})
		}
		body := fiber.Map{"ok": res.Ok, "city": city, "features": vec}
		if !res.Ok {
			// Demo features stand in; the fetch error is reported alongside.
			body["error"] = res.Error
		}
		return c.JSON(body)
	})

	api.Get("/aqi", func(c *fiber.Ctx) error {
		city := c.Query("city")
		if city == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "city required"})
		}

		agg, res := deps.Air.Fetch(c.Context(), city)
		if !res.Ok {
			return c.JSON(fiber.Map{
				"ok": false, "city": city, "error": res.Error, "fetched_at": res.FetchedAt,
			})
		}
		return c.JSON(fiber.Map{
			"ok":             true,
			"city":           city,
			"aqi":            agg.AQI,
			"concentrations": agg.Concentrations,
			"source":         agg.Source,
			"fetched_at":     res.FetchedAt,
		})
	})

	api.Get("/aqi/leaderboard", func(c *fiber.Ctx) error {
		board := deps.Leaderboard.Get(c.Context())
		return c.JSON(fiber.Map{"ok": true, "leaderboard": board})
	})

	api.Get("/visualize", func(c *fiber.Ctx) error {
		city := c.Query("city")
		if city == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "city required"})
		}

		series, err := deps.Weather.Daily(c.Context(), city, 7)
		if err != nil {
			status := fiber.StatusInternalServerError
			if errors.Is(err, weather.ErrGeocodeEmpty) {
				status = fiber.StatusNotFound
			}
			return c.Status(status).JSON(fiber.Map{"ok": false, "error": err.Error()})
		}
		return c.JSON(fiber.Map{"ok": true, "city": city, "timeseries": series})
	})

	api.Get("/predictions", func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "20"))
		if err != nil || limit <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "limit must be a positive integer"})
		}

		recs, err := deps.Store.Recent(c.Context(), limit)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return c.JSON(fiber.Map{"ok": true, "predictions": []store.Record{}})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "failed to load predictions"})
		}
		return c.JSON(fiber.Map{"ok": true, "predictions": recs})
	})
}
