// Package ledger implements the accounting ledger port against a
// QuickBooks-style REST API. The ledger owns duplicate detection on
// the price-pointed item name and assigns the item ids the graph
// store is keyed on.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"homegraph/application/ports"
	"homegraph/domain/inventory"
	"homegraph/pkg/utils"

	"go.uber.org/zap"
)

// Config configures the ledger client.
type Config struct {
	BaseURL      string // company API base, e.g. https://sandbox-quickbooks.api.intuit.com
	TokenURL     string // OAuth2 token endpoint
	ClientID     string
	ClientSecret string
	RefreshToken string
	RealmID      string
	Timeout      time.Duration
}

// Client implements ports.Ledger.
type Client struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a new ledger client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" || cfg.RealmID == "" {
		return nil, fmt.Errorf("ledger base URL and realm ID are required")
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

// ledgerItem mirrors the API's inventory item shape.
type ledgerItem struct {
	ID           string  `json:"Id,omitempty"`
	SyncToken    string  `json:"SyncToken,omitempty"`
	Name         string  `json:"Name"`
	SKU          string  `json:"Sku,omitempty"`
	Description  string  `json:"Description,omitempty"`
	Type         string  `json:"Type"`
	TrackQty     bool    `json:"TrackQtyOnHand"`
	QtyOnHand    float64 `json:"QtyOnHand"`
	UnitPrice    float64 `json:"UnitPrice"`
	InvStartDate string  `json:"InvStartDate,omitempty"`
	Sparse       bool    `json:"sparse,omitempty"`
}

// ApplyObservation match-or-creates the ledger line for an observed
// item. An existing line with the same price-pointed name gets its
// quantity incremented; otherwise a new inventory line is created.
func (c *Client) ApplyObservation(ctx context.Context, line inventory.LineItem) (ports.LedgerResult, error) {
	existing, err := c.findByName(ctx, line.Name)
	if err != nil {
		return ports.LedgerResult{}, err
	}

	if existing != nil {
		existing.QtyOnHand += float64(line.Quantity)
		existing.Sparse = true
		if err := c.saveItem(ctx, existing); err != nil {
			return ports.LedgerResult{}, err
		}
		c.logger.Debug("Ledger line incremented",
			zap.String("itemID", existing.ID),
			zap.String("name", line.Name),
			zap.Int("delta", line.Quantity),
		)
		return ports.LedgerResult{ItemID: existing.ID, Action: "incremented"}, nil
	}

	created := &ledgerItem{
		Name:         line.Name,
		SKU:          line.SKU,
		Description:  fmt.Sprintf("Auto-detected %s", line.Name),
		Type:         "Inventory",
		TrackQty:     true,
		QtyOnHand:    float64(line.Quantity),
		UnitPrice:    line.Price,
		InvStartDate: utils.FormatDate(time.Now()),
	}
	if err := c.saveItem(ctx, created); err != nil {
		return ports.LedgerResult{}, err
	}
	c.logger.Debug("Ledger line created",
		zap.String("itemID", created.ID),
		zap.String("name", line.Name),
	)
	return ports.LedgerResult{ItemID: created.ID, Action: "created"}, nil
}

// findByName queries the ledger for an inventory line by exact name.
func (c *Client) findByName(ctx context.Context, name string) (*ledgerItem, error) {
	query := fmt.Sprintf("select * from Item where Name = '%s'", strings.ReplaceAll(name, "'", "\\'"))
	endpoint := fmt.Sprintf("%s/v3/company/%s/query?query=%s&minorversion=65",
		c.cfg.BaseURL, c.cfg.RealmID, url.QueryEscape(query))

	var out struct {
		QueryResponse struct {
			Item []ledgerItem `json:"Item"`
		} `json:"QueryResponse"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	if len(out.QueryResponse.Item) == 0 {
		return nil, nil
	}
	return &out.QueryResponse.Item[0], nil
}

// saveItem creates or sparse-updates one line; the API echoes the
// stored item back, id included.
func (c *Client) saveItem(ctx context.Context, item *ledgerItem) error {
	endpoint := fmt.Sprintf("%s/v3/company/%s/item?minorversion=65", c.cfg.BaseURL, c.cfg.RealmID)

	var out struct {
		Item ledgerItem `json:"Item"`
	}
	if err := c.do(ctx, http.MethodPost, endpoint, item, &out); err != nil {
		return fmt.Errorf("failed to save ledger item: %w", err)
	}
	*item = out.Item
	return nil
}

var namePriceRe = regexp.MustCompile(`\(\$(\d+\.\d+)\)`)

// ValuationReport fetches the inventory valuation summary. The unit
// price is recovered from the price point embedded in the line name;
// the reported value is quantity times that price.
func (c *Client) ValuationReport(ctx context.Context) ([]ports.ValuationRow, error) {
	endpoint := fmt.Sprintf("%s/v3/company/%s/reports/InventoryValuationSummary?minorversion=65",
		c.cfg.BaseURL, c.cfg.RealmID)

	var out struct {
		Rows struct {
			Row []struct {
				Group   string `json:"group"`
				ColData []struct {
					Value string `json:"value"`
				} `json:"ColData"`
			} `json:"Row"`
		} `json:"Rows"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch valuation report: %w", err)
	}

	rows := make([]ports.ValuationRow, 0, len(out.Rows.Row))
	for _, row := range out.Rows.Row {
		// Summary rows carry a group marker; skip them.
		if row.Group != "" || len(row.ColData) < 5 {
			continue
		}
		name := row.ColData[0].Value
		unitPrice := 0.0
		if m := namePriceRe.FindStringSubmatch(name); m != nil {
			unitPrice, _ = strconv.ParseFloat(m[1], 64)
		}
		qty, _ := strconv.ParseFloat(strings.ReplaceAll(row.ColData[2].Value, ",", ""), 64)

		rows = append(rows, ports.ValuationRow{
			Item:      name,
			SKU:       row.ColData[1].Value,
			QtyOnHand: qty,
			UnitPrice: unitPrice,
			Value:     qty * unitPrice,
		})
	}

	return rows, nil
}

// do sends one authenticated JSON request.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = strings.NewReader(string(data))
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("ledger request failed: %s", resp.Status)
	}
	return json.Unmarshal(payload, out)
}

// ensureToken refreshes the OAuth2 access token when missing or near
// expiry.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {c.cfg.RefreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to refresh ledger token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("ledger token refresh failed: %s", resp.Status)
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	c.accessToken = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	c.logger.Debug("Ledger access token refreshed")
	return c.accessToken, nil
}
