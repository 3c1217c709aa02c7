package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fieldaudit/internal/auditdb"
	"fieldaudit/internal/catalog"
	"fieldaudit/internal/config"
	"fieldaudit/internal/faults"
	"fieldaudit/internal/logging"
	"fieldaudit/internal/session"
)

// HTTPDoer describes the HTTP client used by the API client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Profile bundles everything the user endpoint returns.
type Profile struct {
	User          session.User
	Settings      map[string]string
	SKUConditions []session.SKUCondition
}

// Client talks to the sync backend.
type Client struct {
	baseURL string
	client  HTTPDoer
	logger  *slog.Logger
}

// NewClient builds a client from configuration with a timeout-bounded
// default HTTP client.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	httpClient := &http.Client{Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second}
	return New(cfg.API.BaseURL, httpClient, logger)
}

// New constructs a client over an explicit HTTPDoer, mainly for tests.
func New(baseURL string, client HTTPDoer, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/") + "/",
		client:  client,
		logger:  logging.WithComponent(logger, "api"),
	}
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	endpoint := c.baseURL + "login/" + url.PathEscape(email) + "/" + url.PathEscape(password)
	data, err := c.get(ctx, endpoint, "log in")
	if err != nil {
		return "", err
	}
	var login wireLogin
	if err := json.Unmarshal(data, &login); err != nil {
		return "", faults.Serialization("decode login response", err)
	}
	if strings.TrimSpace(login.SessionID) == "" {
		return "", faults.Server("unexpected missing login token", nil)
	}
	return login.SessionID, nil
}

// User fetches the authenticated user's profile, client settings, and SKU
// condition catalog.
func (c *Client) User(ctx context.Context, token string) (*Profile, error) {
	data, err := c.get(ctx, c.baseURL+"user/"+url.PathEscape(token), "fetch user")
	if err != nil {
		return nil, err
	}
	var user wireUser
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, faults.Serialization("decode user response", err)
	}
	profile := user.toProfile()
	return &profile, nil
}

// Stores fetches the store list, skipping entries that fail validation.
func (c *Client) Stores(ctx context.Context, token string) ([]catalog.Store, error) {
	data, err := c.get(ctx, c.baseURL+"stores/"+url.PathEscape(token), "fetch stores")
	if err != nil {
		return nil, err
	}
	var wires []wireStore
	if err := json.Unmarshal(data, &wires); err != nil {
		return nil, faults.Serialization("decode stores response", err)
	}

	stores := make([]catalog.Store, 0, len(wires))
	for _, wire := range wires {
		if !wire.valid() {
			c.logger.Warn("skipping invalid store entry", logging.Int("store_id", wire.StoreID))
			continue
		}
		store, err := wire.toDomain(c.logger)
		if err != nil {
			return nil, err
		}
		stores = append(stores, store)
	}
	return stores, nil
}

// Products fetches the product list, skipping entries that fail validation.
func (c *Client) Products(ctx context.Context, token string) ([]catalog.Product, error) {
	data, err := c.get(ctx, c.baseURL+"products/"+url.PathEscape(token), "fetch products")
	if err != nil {
		return nil, err
	}
	var wires []wireProduct
	if err := json.Unmarshal(data, &wires); err != nil {
		return nil, faults.Serialization("decode products response", err)
	}

	products := make([]catalog.Product, 0, len(wires))
	for _, wire := range wires {
		if !wire.valid() {
			c.logger.Warn("skipping invalid product entry",
				logging.Int("chain_x_product_id", wire.ChainXProductID))
			continue
		}
		product, err := wire.toDomain()
		if err != nil {
			c.logger.Warn("skipping product with bad timestamp",
				logging.Int("chain_x_product_id", wire.ChainXProductID),
				logging.Error(err))
			continue
		}
		products = append(products, product)
	}
	return products, nil
}

// UploadAudit POSTs one serialized audit document.
func (c *Client) UploadAudit(ctx context.Context, payload *auditdb.UploadPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return faults.Serialization("encode audit payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"payload/v1/", bytes.NewReader(body))
	if err != nil {
		return faults.Network("build upload request", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return faults.Network("failed to contact server for audit upload", err)
	}
	defer resp.Body.Close()

	if _, err := c.decodeEnvelope(resp, "upload audit"); err != nil {
		return err
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint, descr string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, faults.Network("build request to "+descr, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, faults.Network("failed to contact server to "+descr, err)
	}
	defer resp.Body.Close()

	return c.decodeEnvelope(resp, descr)
}

func (c *Client) decodeEnvelope(resp *http.Response, descr string) (json.RawMessage, error) {
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("unexpected response status",
			logging.Int("code", resp.StatusCode), logging.String("operation", descr))
		return nil, faults.Server(fmt.Sprintf("server error (%d) trying to %s", resp.StatusCode, descr), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, faults.Network("read response to "+descr, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, faults.Serialization("failed to understand "+descr+" response from the server", err)
	}
	if env.Status != statusSuccess {
		message := strings.TrimSpace(env.Message)
		if message == "" {
			message = "server rejected request to " + descr
		}
		return nil, faults.Server(message, nil)
	}
	return env.Data, nil
}
