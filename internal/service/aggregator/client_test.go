package aggregator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"CapitolPulse/internal/domain/models"
)

func TestLeaderboardOmitsUnrestrictedChamber(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"leaderboard":[{"id":1,"name":"A","chamber":"senate","trade_count":10,"buy_count":6,"sell_count":4,"avg_trade_size":"5000"}],"count":1}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	f := models.FilterState{Period: models.Period30D, Chamber: "", Limit: 50}

	payload, err := c.Leaderboard(context.Background(), f)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if payload.Count != 1 || len(payload.Leaderboard) != 1 {
		t.Fatalf("unexpected payload %+v", payload)
	}

	if gotPath != "/leaderboard" {
		t.Fatalf("unexpected request path %q", gotPath)
	}
	if _, ok := gotQuery["chamber"]; ok {
		t.Fatalf("unrestricted chamber must not be sent, got %v", gotQuery)
	}
	if got := gotQuery["period"]; len(got) != 1 || got[0] != "30d" {
		t.Fatalf("unexpected period %v", got)
	}
	if got := gotQuery["limit"]; len(got) != 1 || got[0] != "50" {
		t.Fatalf("unexpected limit %v", got)
	}
}

func TestSectorsSendsOnlyPeriod(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"tickers":[{"ticker":"NVDA","trade_count":4,"volume":"100000"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	f := models.FilterState{Period: models.Period90D, Chamber: models.ChamberSenate, Limit: 50}

	payload, err := c.Sectors(context.Background(), f)
	if err != nil {
		t.Fatalf("sectors: %v", err)
	}
	if len(payload.Tickers) != 1 || payload.Tickers[0].Ticker != "NVDA" {
		t.Fatalf("unexpected payload %+v", payload)
	}

	if gotPath != "/stats/sectors" {
		t.Fatalf("unexpected request path %q", gotPath)
	}
	if len(gotQuery) != 1 || gotQuery["period"][0] != "90d" {
		t.Fatalf("sectors must only send period, got %v", gotQuery)
	}
}

func TestHTTPErrorClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Leaderboard(context.Background(), models.FilterState{Period: models.Period30D})
	if err == nil {
		t.Fatalf("expected error")
	}

	var fe *models.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %T", err)
	}
	if fe.Kind != models.ErrKindHTTP || fe.Status != http.StatusBadGateway {
		t.Fatalf("unexpected classification %+v", fe)
	}
}

func TestDecodeErrorClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"leaderboard": "not-a-list"`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Leaderboard(context.Background(), models.FilterState{Period: models.Period30D})

	var fe *models.FetchError
	if !errors.As(err, &fe) || fe.Kind != models.ErrKindDecode {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestNetworkErrorClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(srv.URL)
	_, err := c.Trades(context.Background(), models.FilterState{Period: models.Period30D})

	var fe *models.FetchError
	if !errors.As(err, &fe) || fe.Kind != models.ErrKindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
	if models.KindOf(err) != "network" {
		t.Fatalf("KindOf mismatch: %s", models.KindOf(err))
	}
}
