package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rustyeddy/coinfolio/market"
)

// DefaultURL is the exchange's public REST endpoint.
const DefaultURL = "https://api.exchange.coinbase.com"

// Credentials signs private requests. Public market-data endpoints work with
// the zero value.
type Credentials struct {
	Key        string
	Secret     string // base64-encoded
	Passphrase string
}

// Client talks to the exchange REST API.
type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
}

// NewClient creates an exchange client. An empty baseURL selects DefaultURL.
func NewClient(baseURL string, creds Credentials) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL: baseURL,
		creds:   creds,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Accounts lists the currency accounts of the authenticated profile.
func (c *Client) Accounts(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if err := c.get(ctx, "/accounts", nil, &accounts); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// AccountLedger returns the transaction history for one account.
func (c *Client) AccountLedger(ctx context.Context, accountID string) ([]LedgerRecord, error) {
	var records []LedgerRecord
	path := fmt.Sprintf("/accounts/%s/ledger", accountID)
	if err := c.get(ctx, path, nil, &records); err != nil {
		return nil, fmt.Errorf("account %s ledger: %w", accountID, err)
	}
	return records, nil
}

// ProductTicker returns the spot quote for a product.
func (c *Client) ProductTicker(ctx context.Context, product market.Product) (Ticker, error) {
	var tick Ticker
	path := fmt.Sprintf("/products/%s/ticker", product)
	if err := c.get(ctx, path, nil, &tick); err != nil {
		return Ticker{}, fmt.Errorf("ticker %s: %w", product, err)
	}
	return tick, nil
}

// HistoricRates fetches candles for [start, end] at the given granularity.
// The exchange answers either a row list [[time, low, high, open, close,
// volume], ...] or an error payload; the latter is returned as *APIError so
// callers can tell a rejected window from a transport failure.
func (c *Client) HistoricRates(ctx context.Context, product market.Product, granularity time.Duration, start, end time.Time) (market.Series, error) {
	params := url.Values{}
	params.Set("granularity", strconv.Itoa(int(granularity.Seconds())))
	params.Set("start", start.UTC().Format(time.RFC3339))
	params.Set("end", end.UTC().Format(time.RFC3339))

	path := fmt.Sprintf("/products/%s/candles", product)
	body, err := c.do(ctx, http.MethodGet, path, params)
	if err != nil {
		return nil, fmt.Errorf("candles %s: %w", product, err)
	}

	var rows [][]float64
	if err := json.Unmarshal(body, &rows); err == nil {
		series := make(market.Series, 0, len(rows))
		for _, row := range rows {
			if len(row) < 6 {
				return nil, &APIError{Message: fmt.Sprintf("short candle row (%d fields)", len(row))}
			}
			series = append(series, market.Candle{
				Time:   time.Unix(int64(row[0]), 0).UTC(),
				Low:    row[1],
				High:   row[2],
				Open:   row[3],
				Close:  row[4],
				Volume: row[5],
			})
		}
		return series, nil
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return nil, &apiErr
	}
	return nil, &APIError{Message: "unrecognized candle response"}
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	requestPath := path
	if len(params) > 0 {
		requestPath += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+requestPath, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.creds.Key != "" {
		if err := c.sign(req, method, requestPath); err != nil {
			return nil, fmt.Errorf("sign request: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// The exchange reports request-level problems (bad granularity, unknown
	// product) as a JSON message with a 4xx status. Surface those as
	// APIError; anything else is a transport/auth failure.
	if resp.StatusCode != http.StatusOK {
		var apiErr APIError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" && resp.StatusCode < 500 {
			return nil, &apiErr
		}
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}

// sign adds the CB-ACCESS-* authentication headers: a base64 HMAC-SHA256 of
// timestamp+method+path keyed with the base64-decoded API secret.
func (c *Client) sign(req *http.Request, method, path string) error {
	secret, err := base64.StdEncoding.DecodeString(c.creds.Secret)
	if err != nil {
		return fmt.Errorf("decode api secret: %w", err)
	}

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(ts + method + path))

	req.Header.Set("CB-ACCESS-KEY", c.creds.Key)
	req.Header.Set("CB-ACCESS-SIGN", base64.StdEncoding.EncodeToString(mac.Sum(nil)))
	req.Header.Set("CB-ACCESS-TIMESTAMP", ts)
	req.Header.Set("CB-ACCESS-PASSPHRASE", c.creds.Passphrase)
	return nil
}
