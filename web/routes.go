// Package web exposes the forecast panel engine to the inquiry page over
// HTTP.
package web

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Mananajo65/Andaaz-Decorations/api"
	"github.com/Mananajo65/Andaaz-Decorations/engine"
	"github.com/Mananajo65/Andaaz-Decorations/schedule"
	"github.com/Mananajo65/Andaaz-Decorations/weather"
)

var validate = validator.New()

// Geocoder is the address-to-coordinates dependency of the panel route.
type Geocoder interface {
	Geocode(ctx context.Context, addr api.Address) (*weather.Place, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, orch *engine.Orchestrator, geocoder Geocoder) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	v1.Post("/forecast/panel", func(c *fiber.Ctx) error {
		var req panelRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		view := orch.Panel(c.Context(), req.PanelID, req.venueLookup(geocoder), req.deviceLocator(), req.Events)
		return c.JSON(view)
	})

	v1.Put("/preferences/unit", func(c *fiber.Ctx) error {
		var req unitRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		unit := orch.SetUnit(weather.ParseUnit(req.Unit))
		resp := fiber.Map{"unit": unit}
		if req.PanelID != "" {
			if view, ok := orch.RenderCached(req.PanelID); ok {
				resp["panel"] = view
			}
		}
		return c.JSON(resp)
	})

	v1.Post("/forecast/refresh", func(c *fiber.Ctx) error {
		var req refreshRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if !orch.ForceRefresh(req.PanelID) {
			return fiber.NewError(fiber.StatusNotFound, "unknown panel")
		}
		return c.JSON(fiber.Map{"refreshing": true})
	})
}

// deviceLocation is the browser geolocation result relayed in the request.
type deviceLocation struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

// panelRequest is the render-cycle input: where the panel is anchored and
// which schedule events it should align to. Venue and device are both
// optional; the engine falls back when neither resolves.
type panelRequest struct {
	PanelID string           `json:"panelId" validate:"required"`
	Venue   *api.Address     `json:"venue"`
	Device  *deviceLocation  `json:"device"`
	Events  []schedule.Event `json:"events" validate:"dive"`
}

// venueLookup binds the request's address to the geocoder, or nil when the
// request carries no address.
func (r panelRequest) venueLookup(geocoder Geocoder) weather.VenueLookup {
	if r.Venue == nil || geocoder == nil {
		return nil
	}
	addr := *r.Venue
	return func(ctx context.Context) (*weather.Place, error) {
		return geocoder.Geocode(ctx, addr)
	}
}

// deviceLocator wraps the relayed coordinates, or nil when the visitor
// declined or the browser never produced a fix.
func (r panelRequest) deviceLocator() weather.DeviceLocator {
	if r.Device == nil {
		return nil
	}
	lat, lon := r.Device.Lat, r.Device.Lon
	return weather.LocateFunc(func(context.Context) (float64, float64, error) {
		return lat, lon, nil
	})
}

type unitRequest struct {
	Unit    string `json:"unit" validate:"required,oneof=c f C F celsius fahrenheit"`
	PanelID string `json:"panelId"`
}

type refreshRequest struct {
	PanelID string `json:"panelId" validate:"required"`
}
