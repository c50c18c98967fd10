package fetcher

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pribylovaa/go-maps-harvester/internal/models"
)

// DefaultRelayEndpoint — extract-эндпоинт Zyte API.
const DefaultRelayEndpoint = "https://api.zyte.com/v1/extract"

// relayRequest — конверт запроса к relay.
// Режим HTTP: {url, httpResponseBody: true, httpRequestMethod: "GET"};
// режим браузера: {url, browserHtml: true}.
type relayRequest struct {
	URL               string `json:"url"`
	HTTPResponseBody  bool   `json:"httpResponseBody,omitempty"`
	HTTPRequestMethod string `json:"httpRequestMethod,omitempty"`
	BrowserHTML       bool   `json:"browserHtml,omitempty"`
}

// relayResponse — конверт ответа relay.
type relayResponse struct {
	URL              string `json:"url"`
	StatusCode       int    `json:"statusCode"`
	HTTPResponseBody string `json:"httpResponseBody"`
	BrowserHTML      string `json:"browserHtml"`
}

// Relay пересылает запрос через сторонний сервис, ответ которого
// не отличим от сетевого ответа настоящего браузера.
type Relay struct {
	client   *http.Client
	endpoint string
	apiKey   string
	browser  bool
}

// NewRelay создаёт relay-транспорт. Пустой ключ — *RelayAuthError:
// ошибка конфигурации должна остановить запуск, а не уйти в прямой транспорт.
func NewRelay(client *http.Client, endpoint, apiKey string, browser bool) (*Relay, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &RelayAuthError{Reason: "api key is not configured"}
	}

	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	if endpoint == "" {
		endpoint = DefaultRelayEndpoint
	}

	return &Relay{client: client, endpoint: endpoint, apiKey: apiKey, browser: browser}, nil
}

func (r *Relay) Name() string {
	if r.browser {
		return "relay_browser"
	}

	return "relay"
}

// Do отправляет address через relay и раскрывает конверт ответа.
func (r *Relay) Do(ctx context.Context, address string) (models.RawPage, error) {
	const op = "fetcher.Relay.Do"

	payload := relayRequest{URL: address}
	if r.browser {
		payload.BrowserHTML = true
	} else {
		payload.HTTPResponseBody = true
		payload.HTTPRequestMethod = http.MethodGet
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return models.RawPage{}, fmt.Errorf("%s: marshal: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return models.RawPage{}, fmt.Errorf("%s: new_request: %w", op, err)
	}
	req.SetBasicAuth(r.apiKey, "")
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return models.RawPage{}, fmt.Errorf("%s: do: %w", op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		_, _ = io.Copy(io.Discard, resp.Body)
		return models.RawPage{}, fmt.Errorf("%s: %w", op, &RelayAuthError{Status: resp.StatusCode, Reason: "credentials rejected"})
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, resp.Body)
		return models.RawPage{}, fmt.Errorf("%s: %w", op, &StatusError{Code: resp.StatusCode})
	}

	var out relayResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil {
		return models.RawPage{}, fmt.Errorf("%s: decode: %w", op, err)
	}

	status := out.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	if status != http.StatusOK {
		return models.RawPage{}, fmt.Errorf("%s: upstream: %w", op, &StatusError{Code: status})
	}

	text := out.BrowserHTML
	if !r.browser {
		raw, err := base64.StdEncoding.DecodeString(out.HTTPResponseBody)
		if err != nil {
			return models.RawPage{}, fmt.Errorf("%s: body: %w", op, err)
		}
		text = string(raw)
	}

	return models.RawPage{URL: address, Status: status, Text: text}, nil
}
