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

// ebayPageSize is the order search page size
const ebayPageSize = 100

// EbayClient implements channel.Client for one eBay seller account. The three
// eBay channels share this implementation and differ only in code, endpoint
// configuration and stored credentials.
type EbayClient struct {
	code       channel.Code
	config     config.ChannelAPIConfig
	tokens     credentials.TokenSource
	httpClient *http.Client
	logger     *zap.Logger
}

// NewEbayClient creates an eBay client for one seller account
func NewEbayClient(code channel.Code, cfg config.ChannelAPIConfig, tokens credentials.TokenSource, logger *zap.Logger) (*EbayClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &EbayClient{
		code:   code,
		config: cfg,
		tokens: tokens,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logger.With(zap.String("channel", code.String())),
	}, nil
}

// Code returns the channel code this client handles
func (c *EbayClient) Code() channel.Code {
	return c.code
}

// FetchRecentOrders returns orders created since the given time, following
// pagination until the search is exhausted.
func (c *EbayClient) FetchRecentOrders(ctx context.Context, since time.Time) ([]channel.ExternalOrder, error) {
	token, err := c.tokens.ValidToken(ctx, c.code)
	if err != nil {
		return nil, err
	}

	orders := make([]channel.ExternalOrder, 0)
	offset := 0

	for {
		query := url.Values{}
		query.Set("filter", fmt.Sprintf("creationdate:[%s..]", since.UTC().Format(time.RFC3339)))
		query.Set("limit", strconv.Itoa(ebayPageSize))
		query.Set("offset", strconv.Itoa(offset))

		body, err := c.doRequest(ctx, http.MethodGet,
			c.config.APIBaseURL+"/sell/fulfillment/v1/order?"+query.Encode(), token, nil)
		if err != nil {
			return nil, err
		}

		var resp EbayOrderSearchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: parsing order search response: %v", channel.ErrValidation, err)
		}

		for i := range resp.Orders {
			orders = append(orders, c.convertOrder(&resp.Orders[i]))
		}

		offset += len(resp.Orders)
		if resp.Next == "" || len(resp.Orders) == 0 || offset >= resp.Total {
			break
		}
	}

	return orders, nil
}

// PushStockUpdate pushes an absolute quantity for a SKU. eBay accepts direct
// quantity updates for every listing type, so the outcome is binary here.
func (c *EbayClient) PushStockUpdate(ctx context.Context, sku string, quantity int64) (channel.PushOutcome, error) {
	token, err := c.tokens.ValidToken(ctx, c.code)
	if err != nil {
		return channel.PushOutcomeFailed, err
	}

	payload := EbayInventoryUpdateRequest{
		Availability: EbayAvailability{
			ShipToLocationAvailability: EbayShipToLocation{Quantity: quantity},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return channel.PushOutcomeFailed, fmt.Errorf("ebay: encoding inventory update: %w", err)
	}

	_, err = c.doRequest(ctx, http.MethodPut,
		c.config.APIBaseURL+"/sell/inventory/v1/inventory_item/"+url.PathEscape(sku), token, body)
	if err != nil {
		return channel.PushOutcomeFailed, err
	}
	return channel.PushOutcomeAccepted, nil
}

// DeleteListing removes the inventory record for a SKU. A 404 means the
// listing is already gone and is reported as ErrNotFound for the caller to
// treat as a no-op.
func (c *EbayClient) DeleteListing(ctx context.Context, sku string) error {
	token, err := c.tokens.ValidToken(ctx, c.code)
	if err != nil {
		return err
	}

	_, err = c.doRequest(ctx, http.MethodDelete,
		c.config.APIBaseURL+"/sell/inventory/v1/inventory_item/"+url.PathEscape(sku), token, nil)
	return err
}

// doRequest performs one authenticated request and classifies the status
func (c *EbayClient) doRequest(ctx context.Context, method, rawURL, token string, body []byte) ([]byte, error) {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("ebay: failed to create request: %w", err)
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

// convertOrder maps an eBay order to the channel-neutral representation
func (c *EbayClient) convertOrder(o *EbayOrder) channel.ExternalOrder {
	order := channel.ExternalOrder{
		ExternalOrderID: o.OrderID,
		Channel:         c.code,
		Status:          o.OrderFulfillmentStatus,
		BuyerName:       o.Buyer.Username,
		TotalAmount:     parseAmount(o.PricingSummary.Total.Value),
		Currency:        o.PricingSummary.Total.Currency,
		Lines:           make([]channel.OrderLine, 0, len(o.LineItems)),
	}

	if o.CancelStatus.CancelState == "CANCELED" {
		order.Status = "CANCELLED"
	}

	if t, err := time.Parse(time.RFC3339, o.CreationDate); err == nil {
		order.CreatedAt = t
	}

	for _, li := range o.LineItems {
		order.Lines = append(order.Lines, channel.OrderLine{
			SKU:       li.SKU,
			Quantity:  li.Quantity,
			UnitPrice: parseAmount(li.LineItemCost.Value),
		})
	}

	if raw, err := json.Marshal(o); err == nil {
		order.RawData = string(raw)
	}
	return order
}

// parseAmount converts a wire money string to decimal, zero on garbage
func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Ensure EbayClient implements channel.Client
var _ channel.Client = (*EbayClient)(nil)
