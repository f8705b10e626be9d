package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-widget/internal/scheduler"
	"github.com/i474232898/weather-widget/internal/weather"
	"github.com/i474232898/weather-widget/internal/widget"
)

type stubSearcher struct {
	calls int
	err   error
}

func (s *stubSearcher) Current(ctx context.Context, query string) (weather.Reading, error) {
	s.calls++
	if s.err != nil {
		return weather.Reading{}, s.err
	}
	if strings.TrimSpace(query) == "" {
		return weather.Reading{}, weather.ErrEmptyLocation
	}
	switch query {
	case "Oslo":
		return weather.NewReading(-5, weather.UnitCelsius, "snow", "Oslo")
	case "Paris":
		return weather.NewReading(20, weather.UnitCelsius, "Sunny", "Paris")
	default:
		return weather.Reading{}, fmt.Errorf("%w: unknown city", weather.ErrProviderFailure)
	}
}

type stubProber struct{}

func (stubProber) Status() scheduler.ProbeStatus {
	return scheduler.ProbeStatus{Enabled: true, Location: "Oslo", OK: true}
}

func newTestApp(t *testing.T, svc *stubSearcher, hour int) (*fiber.App, Deps) {
	t.Helper()
	if err := widget.LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}

	d := Deps{
		Service:      svc,
		ProviderName: "stub",
		Shell:        widget.NewShell(svc, nil),
		Sessions:     widget.NewSessionStore(10, time.Hour),
		Prober:       stubProber{},
		Now:          func() time.Time { return time.Date(2026, 1, 1, hour, 0, 0, 0, time.UTC) },
		Location:     time.UTC,
	}
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, d)
	return app, d
}

func doJSON(t *testing.T, app *fiber.App, req *http.Request, wantStatus int, out any) {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status %d, got %d: %s", wantStatus, resp.StatusCode, body)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

type currentResponse struct {
	Reading  weather.Reading  `json:"reading"`
	Messages weather.Messages `json:"messages"`
}

type errorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func TestCurrentWeatherOsloAtNight(t *testing.T) {
	app, _ := newTestApp(t, &stubSearcher{}, 20)

	var got currentResponse
	doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/weather/current?location=Oslo", nil), http.StatusOK, &got)

	want := weather.Messages{
		Temperature: "It's freezing at -5°C! Bundle up!",
		Condition:   "Bundle up! It's snowing.",
		Location:    "Oslo at Night",
	}
	if got.Messages != want {
		t.Fatalf("messages = %+v; want %+v", got.Messages, want)
	}
	if got.Reading.LocationName != "Oslo" || got.Reading.Unit != weather.UnitCelsius {
		t.Fatalf("reading = %+v", got.Reading)
	}
}

func TestCurrentWeatherHourAndUnit(t *testing.T) {
	app, _ := newTestApp(t, &stubSearcher{}, 20)

	var got currentResponse
	doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/weather/current?city=Paris&hour=6&unit=f", nil), http.StatusOK, &got)

	if got.Messages.Location != "Paris During the Day" {
		t.Errorf("location message = %q; want day", got.Messages.Location)
	}
	if got.Messages.Temperature != "68°F" {
		t.Errorf("temperature message = %q; want 68°F", got.Messages.Temperature)
	}
}

func TestCurrentWeatherValidation(t *testing.T) {
	svc := &stubSearcher{}
	app, _ := newTestApp(t, svc, 12)

	cases := []struct {
		url     string
		message string
	}{
		{"/api/v1/weather/current", widget.MsgInvalidLocation},
		{"/api/v1/weather/current?location=%20%20", widget.MsgInvalidLocation},
		{"/api/v1/weather/current?location=Oslo&unit=K", ""},
		{"/api/v1/weather/current?location=Oslo&hour=24", ""},
		{"/api/v1/weather/current?location=Oslo&hour=noon", ""},
	}

	for _, tc := range cases {
		var got errorResponse
		doJSON(t, app, httptest.NewRequest(http.MethodGet, tc.url, nil), http.StatusBadRequest, &got)
		if !got.Error {
			t.Errorf("%s: error flag not set", tc.url)
		}
		if tc.message != "" && got.Message != tc.message {
			t.Errorf("%s: message = %q; want %q", tc.url, got.Message, tc.message)
		}
	}
	if svc.calls != 0 {
		t.Fatalf("provider called %d times for invalid requests", svc.calls)
	}
}

func TestCurrentWeatherProviderFailure(t *testing.T) {
	app, _ := newTestApp(t, &stubSearcher{}, 12)

	var got errorResponse
	doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/weather/current?location=Atlantis", nil), http.StatusBadGateway, &got)
	if got.Message != widget.MsgCityNotFound {
		t.Fatalf("message = %q; want %q", got.Message, widget.MsgCityNotFound)
	}
}

func TestCurrentWeatherUnexpectedError(t *testing.T) {
	app, _ := newTestApp(t, &stubSearcher{err: errors.New("no provider")}, 12)
	doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/weather/current?location=Oslo", nil), http.StatusInternalServerError, nil)
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t, &stubSearcher{}, 12)

	var got struct {
		Status   string                `json:"status"`
		Provider string                `json:"provider"`
		Probe    scheduler.ProbeStatus `json:"probe"`
	}
	doJSON(t, app, httptest.NewRequest(http.MethodGet, "/health", nil), http.StatusOK, &got)
	if got.Status != "ok" || got.Provider != "stub" || !got.Probe.OK {
		t.Fatalf("health = %+v", got)
	}
}

func postSearch(t *testing.T, app *fiber.App, location string, cookie *http.Cookie) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader("location="+location))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func sessionCookieFrom(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	return nil
}

func TestWidgetSearchFlow(t *testing.T) {
	app, _ := newTestApp(t, &stubSearcher{}, 20)

	resp, body := postSearch(t, app, "Oslo", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if !strings.Contains(body, "Oslo at Night") || !strings.Contains(body, "snowing") {
		t.Fatalf("page missing reading messages: %s", body)
	}
	cookie := sessionCookieFrom(resp)
	if cookie == nil {
		t.Fatal("no session cookie issued")
	}

	stateReq := httptest.NewRequest(http.MethodGet, "/api/v1/widget/state", nil)
	stateReq.AddCookie(cookie)
	var st widget.ViewState
	doJSON(t, app, stateReq, http.StatusOK, &st)
	if st.Reading == nil || st.Reading.LocationName != "Oslo" || st.Error != "" || st.Loading {
		t.Fatalf("state = %+v; want Oslo reading", st)
	}

	// An empty search clears the reading and sets the validation error.
	resp, body = postSearch(t, app, "%20", cookie)
	if sessionCookieFrom(resp) != nil {
		t.Error("existing session was issued a new cookie")
	}
	if strings.Contains(body, "Oslo at Night") {
		t.Fatal("previous reading still rendered after empty search")
	}
	if !strings.Contains(body, "Please enter a valid location.") {
		t.Fatalf("page missing validation error: %s", body)
	}

	stateReq = httptest.NewRequest(http.MethodGet, "/api/v1/widget/state", nil)
	stateReq.AddCookie(cookie)
	st = widget.ViewState{}
	doJSON(t, app, stateReq, http.StatusOK, &st)
	if st.Reading != nil || st.Error != widget.MsgInvalidLocation {
		t.Fatalf("state = %+v; want cleared reading with validation error", st)
	}
}

func TestWidgetIndexRendersSessionState(t *testing.T) {
	app, _ := newTestApp(t, &stubSearcher{}, 10)

	resp, _ := postSearch(t, app, "Paris", nil)
	cookie := sessionCookieFrom(resp)
	if cookie == nil {
		t.Fatal("no session cookie issued")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Paris During the Day") {
		t.Fatalf("index missing session reading: %s", body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("Content-Type = %q; want text/html", ct)
	}
}

func TestWidgetStateWithoutSession(t *testing.T) {
	app, _ := newTestApp(t, &stubSearcher{}, 10)

	doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/widget/state", nil), http.StatusNotFound, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/widget/state", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "not-a-uuid"})
	doJSON(t, app, req, http.StatusNotFound, nil)
}
