package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/coinfolio/market"
)

func TestHistoricRatesDecodesRows(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/BTC-USD/candles", r.URL.Path)
		assert.Equal(t, "3600", r.URL.Query().Get("granularity"))
		w.Write([]byte(`[[1709251200, 61000, 62000, 61500, 61800, 12.5],
			[1709247600, 60900, 61600, 61000, 61500, 9.1]]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Credentials{})
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	series, err := c.HistoricRates(context.Background(), "BTC-USD", time.Hour, start, start.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, series, 2)

	assert.Equal(t, 61800.0, series[0].Close)
	assert.Equal(t, 12.5, series[0].Volume)
	assert.True(t, series[0].Time.Equal(time.Unix(1709251200, 0).UTC()))
}

func TestHistoricRatesErrorPayload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"granularity too small for the requested time range"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Credentials{})

	_, err := c.HistoricRates(context.Background(), "BTC-USD", time.Hour, time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)

	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Message, "granularity")
}

func TestHistoricRatesBadStatusIsTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream down`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Credentials{})

	_, err := c.HistoricRates(context.Background(), "BTC-USD", time.Hour, time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestAccountsAndTicker(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts":
			w.Write([]byte(`[{"id":"a1","currency":"USD","balance":"500.00","available":"500.00","hold":"0"},
				{"id":"a2","currency":"BTC","balance":"0.1","available":"0.1","hold":"0"}]`))
		case "/products/BTC-USD/ticker":
			w.Write([]byte(`{"price":"61800.01","time":"2024-03-01T00:00:00Z"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Credentials{})
	ctx := context.Background()

	accounts, err := c.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "USD", accounts[0].Currency)
	assert.Equal(t, "500", accounts[0].Balance.String())

	tick, err := c.ProductTicker(ctx, market.Product("BTC-USD"))
	require.NoError(t, err)
	assert.Equal(t, "61800.01", tick.Price.String())
}

func TestSignedRequestHeaders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-1", r.Header.Get("CB-ACCESS-KEY"))
		assert.Equal(t, "pass-1", r.Header.Get("CB-ACCESS-PASSPHRASE"))
		assert.NotEmpty(t, r.Header.Get("CB-ACCESS-SIGN"))
		assert.NotEmpty(t, r.Header.Get("CB-ACCESS-TIMESTAMP"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	// Secret must be valid base64.
	c := NewClient(srv.URL, Credentials{Key: "key-1", Secret: "c2VjcmV0", Passphrase: "pass-1"})

	_, err := c.Accounts(context.Background())
	require.NoError(t, err)
}
