package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/credentials"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/infrastructure/config"
)

// walmartLockedCode is the error code Walmart returns when the listing type
// forbids seller-initiated quantity changes. Not a failure: the engine must
// raise an operator alert and leave the listing alone.
const walmartLockedCode = "CONTENT_PROTECTED"

// WalmartClient implements channel.Client for the Walmart marketplace.
// Walmart is the policy-restricted channel: automated quantity pushes above
// zero can be rejected per listing type, and the only automatic zero-stock
// action is retiring the item.
type WalmartClient struct {
	config     config.ChannelAPIConfig
	tokens     credentials.TokenSource
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWalmartClient creates the Walmart client
func NewWalmartClient(cfg config.ChannelAPIConfig, tokens credentials.TokenSource, logger *zap.Logger) (*WalmartClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &WalmartClient{
		config: cfg,
		tokens: tokens,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logger.With(zap.String("channel", channel.CodeWalmart.String())),
	}, nil
}

// Code returns the channel code this client handles
func (c *WalmartClient) Code() channel.Code {
	return channel.CodeWalmart
}

// FetchRecentOrders returns purchase orders created since the given time
func (c *WalmartClient) FetchRecentOrders(ctx context.Context, since time.Time) ([]channel.ExternalOrder, error) {
	token, err := c.tokens.ValidToken(ctx, channel.CodeWalmart)
	if err != nil {
		return nil, err
	}

	orders := make([]channel.ExternalOrder, 0)
	cursor := ""

	for {
		query := url.Values{}
		query.Set("createdStartDate", since.UTC().Format(time.RFC3339))
		if cursor != "" {
			query.Set("nextCursor", cursor)
		}

		body, err := c.doRequest(ctx, http.MethodGet,
			c.config.APIBaseURL+"/v3/orders?"+query.Encode(), token, nil)
		if err != nil {
			return nil, err
		}

		var resp WalmartOrderListResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: parsing order list response: %v", channel.ErrValidation, err)
		}

		for i := range resp.List.Elements.Order {
			orders = append(orders, c.convertOrder(&resp.List.Elements.Order[i]))
		}

		cursor = resp.List.Meta.NextCursor
		if cursor == "" || len(resp.List.Elements.Order) == 0 {
			break
		}
	}

	return orders, nil
}

// PushStockUpdate pushes an absolute quantity for a SKU. A locked-listing
// rejection maps to PushOutcomePolicyRestricted with no error.
func (c *WalmartClient) PushStockUpdate(ctx context.Context, sku string, quantity int64) (channel.PushOutcome, error) {
	token, err := c.tokens.ValidToken(ctx, channel.CodeWalmart)
	if err != nil {
		return channel.PushOutcomeFailed, err
	}

	payload := WalmartInventoryUpdateRequest{
		SKU: sku,
		Quantity: WalmartQuantity{
			UnitOfMeasurement: "EACH",
			Amount:            strconv.FormatInt(quantity, 10),
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return channel.PushOutcomeFailed, fmt.Errorf("walmart: encoding inventory update: %w", err)
	}

	query := url.Values{}
	query.Set("sku", sku)

	respBody, err := c.doRequest(ctx, http.MethodPut,
		c.config.APIBaseURL+"/v3/inventory?"+query.Encode(), token, body)
	if err != nil {
		if errors.Is(err, channel.ErrValidation) && isLockedListing(respBody) {
			return channel.PushOutcomePolicyRestricted, nil
		}
		return channel.PushOutcomeFailed, err
	}
	return channel.PushOutcomeAccepted, nil
}

// DeleteListing retires the Walmart item for a SKU. Retirement is always
// permitted, including on listing types that reject quantity pushes.
func (c *WalmartClient) DeleteListing(ctx context.Context, sku string) error {
	token, err := c.tokens.ValidToken(ctx, channel.CodeWalmart)
	if err != nil {
		return err
	}

	_, err = c.doRequest(ctx, http.MethodDelete,
		c.config.APIBaseURL+"/v3/items/"+url.PathEscape(sku), token, nil)
	return err
}

// doRequest performs one authenticated request and classifies the status.
// The response body is returned even on error so callers can inspect the
// Walmart error envelope.
func (c *WalmartClient) doRequest(ctx context.Context, method, rawURL, token string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("walmart: failed to create request: %w", err)
	}
	req.Header.Set("WM_SEC.ACCESS_TOKEN", token)
	req.Header.Set("WM_SVC.NAME", "Walmart Marketplace")
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

	respBody, readErr := readBody(resp)
	if readErr != nil {
		return nil, readErr
	}
	if err := classifyStatus(resp.StatusCode, respBody); err != nil {
		return respBody, err
	}
	return respBody, nil
}

// isLockedListing reports whether the error envelope carries the
// protected-content code
func isLockedListing(body []byte) bool {
	var resp WalmartErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false
	}
	for _, e := range resp.Errors.Error {
		if e.Code == walmartLockedCode {
			return true
		}
	}
	return false
}

// convertOrder maps a Walmart purchase order to the channel-neutral
// representation. Line quantities arrive as numeric strings.
func (c *WalmartClient) convertOrder(o *WalmartOrder) channel.ExternalOrder {
	order := channel.ExternalOrder{
		ExternalOrderID: o.PurchaseOrderID,
		Channel:         channel.CodeWalmart,
		BuyerName:       o.CustomerName,
		CreatedAt:       time.UnixMilli(o.OrderDate),
		Currency:        "USD",
		Lines:           make([]channel.OrderLine, 0, len(o.OrderLines.OrderLine)),
	}

	total := decimal.Zero
	for _, line := range o.OrderLines.OrderLine {
		qty, err := strconv.ParseInt(line.Qty.Amount, 10, 64)
		if err != nil {
			continue
		}

		unitPrice := decimal.Zero
		for _, charge := range line.Charges.Charge {
			if charge.ChargeType == "PRODUCT" {
				unitPrice = decimal.NewFromFloat(charge.ChargeAmount.Amount)
				total = total.Add(unitPrice.Mul(decimal.NewFromInt(qty)))
			}
		}

		if len(line.Statuses.OrderLineStatus) > 0 {
			order.Status = line.Statuses.OrderLineStatus[0].Status
		}

		order.Lines = append(order.Lines, channel.OrderLine{
			SKU:       line.Item.SKU,
			Quantity:  qty,
			UnitPrice: unitPrice,
		})
	}
	order.TotalAmount = total

	if raw, err := json.Marshal(o); err == nil {
		order.RawData = string(raw)
	}
	return order
}

// Ensure WalmartClient implements channel.Client
var _ channel.Client = (*WalmartClient)(nil)
