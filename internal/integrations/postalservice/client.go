package postalservice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client клиент справочника почтовых индексов (zipcloud)
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента справочника индексов
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Lookup ищет адрес по семизначному почтовому индексу
func (c *Client) Lookup(ctx context.Context, postalCode string) (*Address, error) {
	url := fmt.Sprintf("%s/api/search?zipcode=%s", c.baseURL, postalCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrInvalidResponse, resp.StatusCode)
	}

	var lookup lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&lookup); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	// zipcloud возвращает 200 даже при ошибке, статус лежит в теле
	if lookup.Status != 200 {
		return nil, fmt.Errorf("%w: api status %d: %s", ErrInvalidResponse, lookup.Status, lookup.Message)
	}
	if len(lookup.Results) == 0 {
		return nil, ErrAddressNotFound
	}

	first := lookup.Results[0]
	return &Address{
		PostalCode: first.Zipcode,
		Prefecture: first.Address1,
		City:       first.Address2,
		Town:       first.Address3,
	}, nil
}

// LookupWithGracefulDegradation ищет адрес с graceful degradation
// Автозаполнение адреса необязательно: при недоступности
// справочника возвращается ErrServiceDegraded, клиент вводит адрес вручную
func (c *Client) LookupWithGracefulDegradation(ctx context.Context, postalCode string) (*Address, error) {
	address, err := c.Lookup(ctx, postalCode)
	if err != nil {
		if err == ErrAddressNotFound {
			c.log.Info("No address found for postal_code=%s", postalCode)
			return nil, err
		}

		c.log.Error("Postal service unavailable, applying graceful degradation for postal_code=%s: %v", postalCode, err)
		return nil, fmt.Errorf("%w: postal_code=%s, error=%v", ErrServiceDegraded, postalCode, err)
	}

	c.log.Info("Successfully resolved postal_code=%s to %s", postalCode, address.Full())
	return address, nil
}
