package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pribylovaa/go-maps-harvester/internal/models"
)

// maxBodyBytes — верхняя граница размера страницы.
const maxBodyBytes = 32 << 20

// Transport выполняет одну попытку запроса страницы.
// Ретраи, лимитер и бэкофф — забота Fetcher.
type Transport interface {
	// Name — метка транспорта для логов и метрик.
	Name() string
	// Do загружает address. Код, отличный от 200, — ошибка (*StatusError).
	Do(ctx context.Context, address string) (models.RawPage, error)
}

// DefaultHeaders — заголовки обычного браузера.
func DefaultHeaders() http.Header {
	h := make(http.Header)
	h.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36")
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	return h
}

// Direct — прямой HTTP GET.
type Direct struct {
	client  *http.Client
	headers http.Header
}

// NewDirect создаёт прямой транспорт. Таймаут попытки задаётся клиентом.
func NewDirect(client *http.Client) *Direct {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}

	return &Direct{client: client, headers: DefaultHeaders()}
}

func (d *Direct) Name() string { return "direct" }

// Do выполняет GET address.
func (d *Direct) Do(ctx context.Context, address string) (models.RawPage, error) {
	const op = "fetcher.Direct.Do"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return models.RawPage{}, fmt.Errorf("%s: new_request: %w", op, err)
	}
	req.Header = d.headers.Clone()

	resp, err := d.client.Do(req)
	if err != nil {
		return models.RawPage{}, fmt.Errorf("%s: do: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return models.RawPage{}, fmt.Errorf("%s: %w", op, &StatusError{Code: resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return models.RawPage{}, fmt.Errorf("%s: read: %w", op, err)
	}

	return models.RawPage{URL: address, Status: resp.StatusCode, Text: string(body)}, nil
}
