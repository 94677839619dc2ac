// Package woo is the typed adapter over the WooCommerce REST API (wc/v3).
// It translates HTTP outcomes into the domain error taxonomy and nothing
// else: retry policy belongs to the callers.
package woo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const apiBase = "/wp-json/wc/v3/"

type Client struct {
	base    string
	key     string
	secret  string
	httpc   *http.Client
	limiter *rate.Limiter
}

// New creates a store client. requestsPerSecond bounds outgoing calls so
// bursts of admin commands do not trip upstream rate limiting on top of the
// poll loop.
func New(storeURL, key, secret string, timeout time.Duration, requestsPerSecond float64) (*Client, error) {
	if _, err := url.Parse(storeURL); err != nil {
		return nil, fmt.Errorf("invalid store URL: %w", err)
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	return &Client{
		base:    strings.TrimRight(storeURL, "/"),
		key:     key,
		secret:  secret,
		httpc:   &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), int(requestsPerSecond)+1),
	}, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &domain.StoreError{Kind: domain.KindUnreachable, Op: op, Err: err}
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("consumer_key", c.key)
	query.Set("consumer_secret", c.secret)

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &domain.StoreError{Kind: domain.KindMalformed, Op: op, Err: err}
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+apiBase+path+"?"+query.Encode(), reader)
	if err != nil {
		return &domain.StoreError{Kind: domain.KindMalformed, Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &domain.StoreError{Kind: domain.KindUnreachable, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if kind, failed := classifyStatus(resp.StatusCode); failed {
		return &domain.StoreError{Kind: kind, Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &domain.StoreError{Kind: domain.KindMalformed, Op: op, Err: err}
		}
	}
	return nil
}

func classifyStatus(code int) (domain.StoreErrorKind, bool) {
	switch {
	case code >= 200 && code < 300:
		return "", false
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return domain.KindUnauthorized, true
	case code == http.StatusNotFound:
		return domain.KindNotFound, true
	case code == http.StatusTooManyRequests:
		return domain.KindRateLimited, true
	case code >= 500:
		return domain.KindUnreachable, true
	default:
		return domain.KindMalformed, true
	}
}

func pageQuery(page domain.ListParams) url.Values {
	limit := page.Limit
	if limit <= 0 {
		limit = 50
	}
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(limit))
	q.Set("page", strconv.Itoa(page.Offset/limit+1))
	return q
}

func (c *Client) Products(ctx context.Context, page domain.ListParams) ([]domain.Product, error) {
	var wire []wireProduct
	if err := c.do(ctx, "woo.products", http.MethodGet, "products", pageQuery(page), nil, &wire); err != nil {
		return nil, err
	}
	return convertProducts("woo.products", wire)
}

// SearchProducts looks up by SKU when the query looks like one (alphanumeric
// with at least one digit), by name otherwise.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	q := url.Values{}
	q.Set("per_page", "50")
	if looksLikeSKU(query) {
		q.Set("sku", query)
	} else {
		q.Set("search", query)
	}

	var wire []wireProduct
	if err := c.do(ctx, "woo.search_products", http.MethodGet, "products", q, nil, &wire); err != nil {
		return nil, err
	}
	return convertProducts("woo.search_products", wire)
}

func (c *Client) Product(ctx context.Context, id int64) (*domain.Product, error) {
	var wire wireProduct
	if err := c.do(ctx, "woo.product", http.MethodGet, "products/"+strconv.FormatInt(id, 10), nil, nil, &wire); err != nil {
		return nil, err
	}
	p, err := wire.convert("woo.product")
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Orders(ctx context.Context, page domain.ListParams) ([]domain.Order, error) {
	q := pageQuery(page)
	q.Set("orderby", "date")
	q.Set("order", "desc")

	var wire []wireOrder
	if err := c.do(ctx, "woo.orders", http.MethodGet, "orders", q, nil, &wire); err != nil {
		return nil, err
	}
	return convertOrders("woo.orders", wire)
}

func (c *Client) Order(ctx context.Context, id int64) (*domain.Order, error) {
	var wire wireOrder
	if err := c.do(ctx, "woo.order", http.MethodGet, "orders/"+strconv.FormatInt(id, 10), nil, nil, &wire); err != nil {
		return nil, err
	}
	o, err := wire.convert("woo.order")
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) Customers(ctx context.Context, page domain.ListParams) ([]domain.Customer, error) {
	var wire []wireCustomer
	if err := c.do(ctx, "woo.customers", http.MethodGet, "customers", pageQuery(page), nil, &wire); err != nil {
		return nil, err
	}

	out := make([]domain.Customer, 0, len(wire))
	for _, w := range wire {
		cust, err := w.convert("woo.customers")
		if err != nil {
			return nil, err
		}
		out = append(out, cust)
	}
	return out, nil
}

func (c *Client) Customer(ctx context.Context, id int64) (*domain.Customer, error) {
	var wire wireCustomer
	if err := c.do(ctx, "woo.customer", http.MethodGet, "customers/"+strconv.FormatInt(id, 10), nil, nil, &wire); err != nil {
		return nil, err
	}
	cust, err := wire.convert("woo.customer")
	if err != nil {
		return nil, err
	}
	return &cust, nil
}

func (c *Client) CustomerOrders(ctx context.Context, customerID int64) ([]domain.Order, error) {
	q := url.Values{}
	q.Set("customer", strconv.FormatInt(customerID, 10))
	q.Set("per_page", "50")
	q.Set("orderby", "date")
	q.Set("order", "desc")

	var wire []wireOrder
	if err := c.do(ctx, "woo.customer_orders", http.MethodGet, "orders", q, nil, &wire); err != nil {
		return nil, err
	}
	return convertOrders("woo.customer_orders", wire)
}

func (c *Client) UpdateStock(ctx context.Context, productID int64, qty int) error {
	body := map[string]any{"stock_quantity": qty, "manage_stock": true}
	return c.do(ctx, "woo.update_stock", http.MethodPut, "products/"+strconv.FormatInt(productID, 10), nil, body, nil)
}

func (c *Client) UpdatePrice(ctx context.Context, productID int64, price decimal.Decimal) error {
	body := map[string]any{"regular_price": price.String()}
	return c.do(ctx, "woo.update_price", http.MethodPut, "products/"+strconv.FormatInt(productID, 10), nil, body, nil)
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	body := map[string]any{"status": string(status)}
	return c.do(ctx, "woo.update_order_status", http.MethodPut, "orders/"+strconv.FormatInt(orderID, 10), nil, body, nil)
}

func looksLikeSKU(query string) bool {
	hasDigit := false
	for _, r := range query {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLetter(r):
		default:
			return false
		}
	}
	return hasDigit && query != ""
}
