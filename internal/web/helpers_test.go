package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/airsat/internal/config"
	"github.com/JonMunkholm/airsat/internal/core"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080, RequestTimeout: 5 * time.Second},
		Filters: config.FilterConfig{
			AgeMin: 20, AgeMax: 60,
			DistanceMin: 100, DistanceMax: 5000,
			SeatComfortMin: 0, SeatComfortMax: 5,
			PageSize: 25, MaxPageSize: 100,
		},
		Export:   config.ExportConfig{MaxConcurrent: 1, MaxWaitTime: 50 * time.Millisecond},
		Session:  config.SessionConfig{CookieName: "airsat_session", TTL: time.Minute},
		Security: config.SecurityConfig{EnableCSP: true},
		Logging:  config.LoggingConfig{Level: "error", Format: "text"},
	}
}

func survey(satisfaction, gender, customer, class, travel string, age, distance, seat int, departure, arrival pgtype.Float8) core.Record {
	return core.Record{
		Satisfaction:          satisfaction,
		Gender:                gender,
		CustomerType:          customer,
		Class:                 class,
		TypeOfTravel:          travel,
		Age:                   age,
		FlightDistance:        distance,
		SeatComfort:           seat,
		FoodAndDrink:          seat,
		InflightWifi:          seat,
		InflightEntertainment: seat,
		LegRoom:               seat,
		Cleanliness:           seat,
		OnlineBoarding:        seat,
		DepartureDelay:        departure,
		ArrivalDelay:          arrival,
	}
}

// testDataset is five cleaned rows; the sixth raw row lacks an arrival delay.
// Under the default filters (age clamped to 25-60) rows aged 25, 40, 58 and 33
// are shown.
func testDataset(t *testing.T) (*core.Dataset, core.CleanReport) {
	t.Helper()
	null := pgtype.Float8{}
	raw := core.NewDataset(core.SchemaHeader(), []core.Record{
		survey("satisfied", "Female", "Loyal Customer", "Eco", "Business travel", 25, 500, 3, core.Float8(0), core.Float8(0)),
		survey("dissatisfied", "Male", "disloyal Customer", "Business", "Personal Travel", 40, 1200, 2, core.Float8(10), core.Float8(12)),
		survey("satisfied", "Male", "Loyal Customer", "Eco", "Business travel", 58, 3000, 5, core.Float8(0), core.Float8(3)),
		survey("dissatisfied", "Female", "Loyal Customer", "Eco Plus", "Personal Travel", 71, 150, 1, core.Float8(120), core.Float8(115)),
		survey("satisfied", "Female", "Loyal Customer", "Business", "Business travel", 33, 800, 4, null, core.Float8(5)),
		survey("satisfied", "Male", "Loyal Customer", "Eco", "Business travel", 45, 900, 3, core.Float8(1), null),
	})

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	data, report, err := core.NewCleaner(quiet).Clean(raw)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	return data, report
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}
	data, report := testDataset(t)
	s := NewServer(cfg, data, LoadInfo{Source: "csv:test.csv", Report: report})
	t.Cleanup(s.Close)
	return s
}

func get(t *testing.T, s *Server, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}
