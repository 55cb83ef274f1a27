package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/credentials"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/config"
)

// SearsClient implements channel.Client for the Sears marketplace. Sears has
// no listing-type restrictions, so pushes are binary accepted/failed.
type SearsClient struct {
	config     config.ChannelAPIConfig
	tokens     credentials.TokenSource
	httpClient *http.Client
	logger     *zap.Logger
}

// NewSearsClient creates the Sears client
func NewSearsClient(cfg config.ChannelAPIConfig, tokens credentials.TokenSource, logger *zap.Logger) (*SearsClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SearsClient{
		config: cfg,
		tokens: tokens,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logger.With(zap.String("channel", channel.CodeSears.String())),
	}, nil
}

// Code returns the channel code this client handles
func (c *SearsClient) Code() channel.Code {
	return channel.CodeSears
}

// FetchRecentOrders returns orders created since the given time
func (c *SearsClient) FetchRecentOrders(ctx context.Context, since time.Time) ([]channel.ExternalOrder, error) {
	token, err := c.tokens.ValidToken(ctx, channel.CodeSears)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("createdAfter", since.UTC().Format(time.RFC3339))

	body, err := c.doRequest(ctx, http.MethodGet,
		c.config.APIBaseURL+"/v1/orders?"+query.Encode(), token, nil)
	if err != nil {
		return nil, err
	}

	var resp SearsOrderListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: parsing order list response: %v", channel.ErrValidation, err)
	}

	orders := make([]channel.ExternalOrder, 0, len(resp.Orders))
	for i := range resp.Orders {
		orders = append(orders, c.convertOrder(&resp.Orders[i]))
	}
	return orders, nil
}

// PushStockUpdate pushes an absolute quantity for a SKU
func (c *SearsClient) PushStockUpdate(ctx context.Context, sku string, quantity int64) (channel.PushOutcome, error) {
	token, err := c.tokens.ValidToken(ctx, channel.CodeSears)
	if err != nil {
		return channel.PushOutcomeFailed, err
	}

	payload := SearsInventoryUpdateRequest{SKU: sku, Quantity: quantity}
	body, err := json.Marshal(payload)
	if err != nil {
		return channel.PushOutcomeFailed, fmt.Errorf("sears: encoding inventory update: %w", err)
	}

	_, err = c.doRequest(ctx, http.MethodPut,
		c.config.APIBaseURL+"/v1/inventory/"+url.PathEscape(sku), token, body)
	if err != nil {
		return channel.PushOutcomeFailed, err
	}
	return channel.PushOutcomeAccepted, nil
}

// DeleteListing removes the Sears listing for a SKU
func (c *SearsClient) DeleteListing(ctx context.Context, sku string) error {
	token, err := c.tokens.ValidToken(ctx, channel.CodeSears)
	if err != nil {
		return err
	}

	_, err = c.doRequest(ctx, http.MethodDelete,
		c.config.APIBaseURL+"/v1/listings/"+url.PathEscape(sku), token, nil)
	return err
}

// doRequest performs one authenticated request and classifies the status
func (c *SearsClient) doRequest(ctx context.Context, method, rawURL, token string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("sears: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", channel.ErrTransient, err)
	}
	defer resp.Body.Close()

	respBody, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	if err := classifyStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}
	return respBody, nil
}

// convertOrder maps a Sears order to the channel-neutral representation
func (c *SearsClient) convertOrder(o *SearsOrder) channel.ExternalOrder {
	order := channel.ExternalOrder{
		ExternalOrderID: o.OrderID,
		Channel:         channel.CodeSears,
		Status:          o.Status,
		BuyerName:       o.CustomerName,
		Currency:        "USD",
		Lines:           make([]channel.OrderLine, 0, len(o.Items)),
	}

	if t, err := time.Parse(time.RFC3339, o.CreatedAt); err == nil {
		order.CreatedAt = t
	}

	total := decimal.Zero
	for _, item := range o.Items {
		price := decimal.NewFromFloat(item.UnitPrice)
		total = total.Add(price.Mul(decimal.NewFromInt(item.Quantity)))
		order.Lines = append(order.Lines, channel.OrderLine{
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: price,
		})
	}
	order.TotalAmount = total

	if raw, err := json.Marshal(o); err == nil {
		order.RawData = string(raw)
	}
	return order
}

// SearsOrderListResponse is the response from GET /v1/orders
type SearsOrderListResponse struct {
	Orders []SearsOrder `json:"orders"`
}

// SearsOrder is one marketplace order
type SearsOrder struct {
	OrderID      string      `json:"orderId"`
	CreatedAt    string      `json:"createdAt"`
	Status       string      `json:"status"`
	CustomerName string      `json:"customerName"`
	Items        []SearsItem `json:"items"`
}

// SearsItem is one line of a Sears order
type SearsItem struct {
	SKU       string  `json:"sku"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// SearsInventoryUpdateRequest is the body for PUT /v1/inventory/{sku}
type SearsInventoryUpdateRequest struct {
	SKU      string `json:"sku"`
	Quantity int64  `json:"quantity"`
}

// Ensure SearsClient implements channel.Client
var _ channel.Client = (*SearsClient)(nil)
