package lineservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент LINE Messaging API
// Токен канала принадлежит организации и передается в каждый вызов,
// один клиент обслуживает всех арендаторов
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента LINE Messaging API
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// PushText отправляет текстовое сообщение пользователю LINE
func (c *Client) PushText(ctx context.Context, channelToken, lineUserID, text string) error {
	if channelToken == "" {
		return ErrNoChannelToken
	}

	payload, err := json.Marshal(PushRequest{
		To:       lineUserID,
		Messages: []Message{{Type: "text", Text: text}},
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal push request: %v", ErrInternal, err)
	}

	url := fmt.Sprintf("%s/v2/bot/message/push", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+channelToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	return nil
}

// PushTextWithGracefulDegradation отправляет сообщение с graceful degradation
// Уведомления не влияют на исход бронирования: при недоступности LINE API
// возвращается ErrServiceDegraded, вызывающая сторона только логирует его
func (c *Client) PushTextWithGracefulDegradation(ctx context.Context, channelToken, lineUserID, text string) error {
	if err := c.PushText(ctx, channelToken, lineUserID, text); err != nil {
		if err == ErrNoChannelToken {
			c.log.Info("LINE channel not configured, skipping push for line_user_id=%s", lineUserID)
			return err
		}

		c.log.Error("LINE API unavailable, applying graceful degradation for line_user_id=%s: %v", lineUserID, err)
		return fmt.Errorf("%w: line_user_id=%s, error=%v", ErrServiceDegraded, lineUserID, err)
	}

	c.log.Info("Successfully pushed LINE message to line_user_id=%s", lineUserID)
	return nil
}
