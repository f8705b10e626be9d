package httpapi

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/weather-widget/internal/scheduler"
	"github.com/i474232898/weather-widget/internal/weather"
	"github.com/i474232898/weather-widget/internal/widget"
)

const sessionCookie = "weather_widget_session"

var validate = validator.New()

// Prober reports the latest provider probe outcome.
type Prober interface {
	Status() scheduler.ProbeStatus
}

// Deps bundles what the routes need.
type Deps struct {
	Service      widget.Searcher
	ProviderName string
	Shell        *widget.Shell
	Sessions     *widget.SessionStore
	Prober       Prober // optional

	// Now and Location determine the hour of day used for time-of-day messages.
	Now      func() time.Time
	Location *time.Location
}

func (d Deps) hour() int {
	now := time.Now()
	if d.Now != nil {
		now = d.Now()
	}
	if d.Location != nil {
		now = now.In(d.Location)
	}
	return now.Hour()
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status":   "ok",
			"service":  "weather-widget",
			"provider": d.ProviderName,
		}
		if d.Prober != nil {
			body["probe"] = d.Prober.Status()
		}
		return c.JSON(body)
	})

	app.Get("/", func(c *fiber.Ctx) error {
		_, st := loadSession(c, d.Sessions)
		return renderWidget(c, st, d.hour())
	})

	app.Post("/search", func(c *fiber.Ctx) error {
		id, prev := loadSession(c, d.Sessions)
		if id == "" {
			id = d.Sessions.NewID()
			c.Cookie(&fiber.Cookie{
				Name:     sessionCookie,
				Value:    id,
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		st := d.Shell.Search(c.UserContext(), prev, c.FormValue("location"))
		d.Sessions.Save(id, st)
		return renderWidget(c, st, d.hour())
	})

	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		q, err := parseCurrentQuery(c)
		if err != nil {
			return err
		}

		r, err := d.Service.Current(c.UserContext(), q.Location)
		if err != nil {
			switch {
			case errors.Is(err, weather.ErrEmptyLocation):
				return fiber.NewError(fiber.StatusBadRequest, widget.MsgInvalidLocation)
			case errors.Is(err, weather.ErrProviderFailure):
				return fiber.NewError(fiber.StatusBadGateway, widget.MsgCityNotFound)
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
			}
		}

		hour := d.hour()
		if q.hourSet {
			hour = q.Hour
		}
		r = r.In(weather.Unit(q.Unit))

		return c.JSON(fiber.Map{
			"reading":  r,
			"messages": weather.Compose(r, hour),
		})
	})

	v1.Get("/widget/state", func(c *fiber.Ctx) error {
		id, _ := sessionID(c)
		if id == "" {
			return fiber.NewError(fiber.StatusNotFound, "no widget session")
		}
		st, err := d.Sessions.Get(id)
		if err != nil {
			if errors.Is(err, widget.ErrSessionNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no widget session")
			}
			return err
		}
		return c.JSON(st)
	})
}

// currentQuery holds query parameters for the current weather endpoint.
type currentQuery struct {
	Location string `validate:"required"`
	Unit     string `validate:"oneof=C F"`
	Hour     int    `validate:"min=0,max=23"`
	hourSet  bool
}

func parseCurrentQuery(c *fiber.Ctx) (currentQuery, error) {
	var q currentQuery

	q.Location = strings.TrimSpace(c.Query("location", c.Query("city")))
	q.Unit = strings.ToUpper(c.Query("unit", string(weather.UnitCelsius)))

	if h := c.Query("hour"); h != "" {
		n, err := strconv.Atoi(h)
		if err != nil {
			return q, fiber.NewError(fiber.StatusBadRequest, "hour must be an integer between 0 and 23")
		}
		q.Hour = n
		q.hourSet = true
	}

	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Field() == "Location" {
					return q, fiber.NewError(fiber.StatusBadRequest, widget.MsgInvalidLocation)
				}
			}
		}
		return q, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return q, nil
}

// sessionID returns the caller's session ID when the cookie holds a valid UUID.
func sessionID(c *fiber.Ctx) (string, bool) {
	id := c.Cookies(sessionCookie)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// loadSession returns the caller's session ID (empty if none) and its stored
// state; unknown or expired sessions start from an empty state.
func loadSession(c *fiber.Ctx, sessions *widget.SessionStore) (string, widget.ViewState) {
	id, ok := sessionID(c)
	if !ok {
		return "", widget.ViewState{}
	}
	st, err := sessions.Get(id)
	if err != nil {
		return id, widget.ViewState{}
	}
	return id, st
}

func renderWidget(c *fiber.Ctx, st widget.ViewState, hour int) error {
	var buf bytes.Buffer
	if err := widget.RenderPage(&buf, widget.Render(st, hour)); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
