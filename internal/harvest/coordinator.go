// harvest управляет одним проходом по выдаче: первая страница от Capturer,
// затем параллельная загрузка заранее вычисленных страниц пагинации и
// сборка результата.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pribylovaa/go-maps-harvester/internal/cursor"
	"github.com/pribylovaa/go-maps-harvester/internal/decoder"
	"github.com/pribylovaa/go-maps-harvester/internal/fetcher"
	"github.com/pribylovaa/go-maps-harvester/internal/metrics"
	"github.com/pribylovaa/go-maps-harvester/internal/models"
	"github.com/pribylovaa/go-maps-harvester/internal/pkg/log"
)

// Capturer добывает первую страницу и адрес первого запроса пагинации.
//
// Требования к реализации:
//   - page.Text — полное состояние выдачи на момент перехвата запроса;
//   - cursor — буквальный адрес перехваченного запроса или "" если его не было;
//   - реализация обязана уважать ctx.
type Capturer interface {
	Capture(ctx context.Context, query string, minRating float64) (page models.RawPage, cursor string, err error)
}

// PageFetcher загружает одну страницу (ретраи — внутри).
type PageFetcher interface {
	Fetch(ctx context.Context, address string) (models.RawPage, error)
}

// PageDecoder превращает страницу в карточки.
type PageDecoder interface {
	Decode(page models.RawPage) ([]models.Listing, error)
}

// PageArchive сохраняет страницы, которые не удалось разобрать.
type PageArchive interface {
	Put(ctx context.Context, page models.RawPage) (string, error)
}

// Coordinator — оркестратор харвеста. Безопасен для конкурентного использования:
// общее состояние между запросами есть только внутри PageFetcher (лимитер).
type Coordinator struct {
	capturer Capturer
	fetcher  PageFetcher
	decoder  PageDecoder
	archive  PageArchive
	metrics  *metrics.Metrics
}

// Option настраивает Coordinator.
type Option func(*Coordinator)

// WithArchive подключает архив битых страниц.
func WithArchive(a PageArchive) Option {
	return func(c *Coordinator) { c.archive = a }
}

// WithMetrics подключает метрики страниц и харвестов.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// New создаёт координатор. decoder == nil — decoder.New().
func New(capturer Capturer, f PageFetcher, d PageDecoder, opts ...Option) *Coordinator {
	if d == nil {
		d = decoder.New()
	}

	c := &Coordinator{capturer: capturer, fetcher: f, decoder: d}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// scheduled — одна запланированная страница пагинации;
// offset — смещение, которое несёт address.
type scheduled struct {
	offset  int
	address string
}

// pageResult — исход загрузки одной страницы; каждая горутина пишет только свой слот.
type pageResult struct {
	offset int
	page   models.RawPage
	err    error
}

// Harvest выполняет проход по выдаче.
//
// Особенности:
//   - адреса всех страниц вычисляются до загрузки; число страниц определяется
//     только MaxResults, а не фактическим числом карточек;
//   - ошибка загрузки или разбора страницы даёт ноль карточек и Partial;
//   - битый формат адреса пагинации прекращает планирование (Partial);
//   - порядок карточек: страница 0, затем страницы в порядке смещений;
//   - первая страница без карточек — пагинация не запускается.
//
// Ошибки:
//   - ошибка Capturer — харвест не начат;
//   - fetcher.ErrRelayAuth от любой страницы — ошибка конфигурации, харвест прерван.
func (c *Coordinator) Harvest(ctx context.Context, req models.HarvestRequest) (*models.HarvestResult, error) {
	const op = "harvest.Coordinator.Harvest"

	lg := log.From(ctx)

	page0, cur0, err := c.capturer.Capture(ctx, req.Query, req.MinRating)
	if err != nil {
		return nil, fmt.Errorf("%s: capture: %w", op, err)
	}

	res := &models.HarvestResult{PagesScheduled: 1}
	res.Listings = c.collect(ctx, res, page0)

	// Пустая первая страница: продолжения выдачи нет, даже если запрос перехвачен.
	if cur0 == "" || len(res.Listings) == 0 {
		lg.Info("harvest_single_page",
			slog.String("op", op),
			slog.Int("listings", len(res.Listings)),
			slog.Bool("cursor", cur0 != ""),
		)
		c.metrics.ObserveHarvest(res.Partial)
		return res, nil
	}

	plan, err := schedule(cur0, req.MaxResults)
	if err != nil {
		lg.Warn("harvest_cursor_format",
			slog.String("op", op),
			slog.Int("scheduled", len(plan)),
			slog.String("err", err.Error()),
		)
		res.Partial = true
	}
	res.PagesScheduled += len(plan)

	results := c.fetchAll(ctx, plan)

	for _, r := range results {
		if r.err != nil {
			if errors.Is(r.err, fetcher.ErrRelayAuth) {
				return nil, fmt.Errorf("%s: %w", op, r.err)
			}

			lg.Warn("harvest_page_failed",
				slog.String("op", op),
				slog.Int("offset", r.offset),
				slog.String("err", r.err.Error()),
			)
			res.FailedPages++
			res.Partial = true
			c.metrics.ObservePage(metrics.PageFailed, 0)
			continue
		}

		res.Listings = append(res.Listings, c.collect(ctx, res, r.page)...)
	}

	lg.Info("harvest_done",
		slog.String("op", op),
		slog.Int("pages", res.PagesScheduled),
		slog.Int("failed_pages", res.FailedPages),
		slog.Int("listings", len(res.Listings)),
		slog.Bool("partial", res.Partial),
	)
	c.metrics.ObserveHarvest(res.Partial)

	return res, nil
}

// schedule вычисляет адреса страниц после первой, пока запланированный
// объём меньше maxResults. При ошибке формата возвращает уже вычисленное.
func schedule(cur0 string, maxResults int) ([]scheduled, error) {
	var plan []scheduled

	cur := cur0
	pages := 1
	for n := cursor.PageSize; n < maxResults; n += cursor.PageSize {
		next, err := cursor.DeriveNext(cur, pages)
		if err != nil {
			return plan, err
		}

		offset, _ := cursor.Offset(next)
		plan = append(plan, scheduled{offset: offset, address: next})
		pages++
		cur = next
	}

	return plan, nil
}

// fetchAll загружает все страницы параллельно и ждёт каждую.
func (c *Coordinator) fetchAll(ctx context.Context, plan []scheduled) []pageResult {
	results := make([]pageResult, len(plan))

	var wg sync.WaitGroup
	for i, s := range plan {
		wg.Add(1)
		go func(i int, s scheduled) {
			defer wg.Done()

			page, err := c.fetcher.Fetch(ctx, s.address)
			results[i] = pageResult{offset: s.offset, page: page, err: err}
		}(i, s)
	}
	wg.Wait()

	return results
}

// collect декодирует страницу. Битая страница учитывается в res и,
// если подключён архив, сохраняется для разбора.
func (c *Coordinator) collect(ctx context.Context, res *models.HarvestResult, page models.RawPage) []models.Listing {
	const op = "harvest.Coordinator.collect"

	lg := log.From(ctx)

	listings, err := c.decoder.Decode(page)
	if err == nil {
		c.metrics.ObservePage(metrics.PageDecoded, len(listings))
		return listings
	}

	res.FailedPages++
	res.Partial = true
	c.metrics.ObservePage(metrics.PageMalformed, 0)

	lg.Warn("harvest_page_malformed",
		slog.String("op", op),
		slog.String("url", page.URL),
		slog.String("err", err.Error()),
	)

	if c.archive != nil {
		key, aerr := c.archive.Put(ctx, page)
		if aerr != nil {
			lg.Warn("harvest_archive_failed",
				slog.String("op", op),
				slog.String("err", aerr.Error()),
			)
		} else {
			lg.Info("harvest_page_archived",
				slog.String("op", op),
				slog.String("key", key),
			)
		}
	}

	return nil
}
