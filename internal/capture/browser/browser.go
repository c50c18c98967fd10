// browser получает первую страницу выдачи через headless Chrome (chromedp)
// и перехватывает адрес первого XHR-запроса пагинации.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/pribylovaa/go-maps-harvester/internal/models"
	"github.com/pribylovaa/go-maps-harvester/internal/pkg/log"
)

const (
	searchURLTemplate = "https://www.google.com/maps/search/%s"
	// paginationMarker — подстрока адреса XHR-запроса следующей страницы.
	paginationMarker = "search?tbm=map"
)

// Селекторы интерфейса карт.
const (
	feedSelector         = `div[role="feed"]`
	ratingButtonSelector = `button[aria-label*="Rating"]`
	ratingOptionSelector = `div[role="menuitemradio"]:nth-of-type(%d)`
)

// scrollLastPlace прокручивает ленту к последней карточке; false если ленты нет.
const scrollLastPlace = `(() => {
	const feed = document.querySelector('div[role="feed"]');
	if (!feed) return false;
	const items = feed.querySelectorAll('a[href*="/maps/place/"]');
	const last = items.length ? items[items.length - 1] : feed.lastElementChild;
	if (!last) return false;
	last.scrollIntoView();
	return true;
})()`

// ratingIndex — номер пункта фильтра рейтинга по минимальной оценке.
var ratingIndex = map[float64]int{
	2.0: 1,
	2.5: 2,
	3.0: 3,
	3.5: 4,
	4.0: 5,
	4.5: 6,
}

// Config — параметры браузера.
type Config struct {
	Headless  bool
	UserAgent string
	// Timeout — предел на весь захват первой страницы.
	Timeout time.Duration
	// Scrolls — сколько раз прокрутить ленту в ожидании XHR.
	Scrolls int
	// Settle — пауза после действия на странице.
	Settle time.Duration
}

// Capturer реализует harvest.Capturer поверх chromedp.
// Каждый вызов запускает отдельный браузер; общих данных между вызовами нет.
type Capturer struct {
	cfg Config
}

// New создаёт Capturer, подставляя значения по умолчанию.
func New(cfg Config) *Capturer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.Scrolls <= 0 {
		cfg.Scrolls = 3
	}
	if cfg.Settle <= 0 {
		cfg.Settle = 2 * time.Second
	}

	return &Capturer{cfg: cfg}
}

// SearchURL строит адрес поиска; пробелы кодируются как '+'.
func SearchURL(query string) string {
	return fmt.Sprintf(searchURLTemplate, url.QueryEscape(query))
}

// RatingIndex возвращает пункт фильтра для minRating. Значения вне таблицы
// (включая 0 и 1.0) означают «без фильтра».
func RatingIndex(minRating float64) (int, bool) {
	idx, ok := ratingIndex[minRating]
	return idx, ok
}

func isPaginationRequest(address string) bool {
	return strings.Contains(address, paginationMarker)
}

// xhrTracker запоминает последний запрос пагинации. События сети приходят
// из горутины chromedp, чтение идёт из цикла прокрутки.
type xhrTracker struct {
	mu     sync.Mutex
	latest string
}

// observe учитывает адрес запроса; более поздний запрос вытесняет ранний.
func (t *xhrTracker) observe(address string) {
	if !isPaginationRequest(address) {
		return
	}

	t.mu.Lock()
	t.latest = address
	t.mu.Unlock()
}

// reset забывает запросы, сделанные до текущего момента.
func (t *xhrTracker) reset() {
	t.mu.Lock()
	t.latest = ""
	t.mu.Unlock()
}

func (t *xhrTracker) last() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.latest
}

func (c *Capturer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1440, 900),
	)

	if c.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(c.cfg.UserAgent))
	}

	return opts
}

// Capture открывает выдачу по query и прокручивает ленту до появления
// запроса пагинации.
//
// Возвращает отрендеренный HTML как первую страницу и адрес последнего
// перехваченного запроса. Поиск, который запускает фильтр рейтинга, в
// расчёт не идёт. Если запрос не появился за Scrolls прокруток, cursor == "":
// выдача умещается в одну страницу.
func (c *Capturer) Capture(ctx context.Context, query string, minRating float64) (models.RawPage, string, error) {
	const op = "capture.browser.Capture"

	lg := log.From(ctx)
	searchURL := SearchURL(query)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, c.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, c.cfg.Timeout)
	defer cancel()

	var xhr xhrTracker
	chromedp.ListenTarget(browserCtx, func(ev any) {
		if req, ok := ev.(*network.EventRequestWillBeSent); ok && req.Request != nil {
			xhr.observe(req.Request.URL)
		}
	})

	lg.Info("capture_start",
		slog.String("op", op),
		slog.String("url", searchURL),
	)

	if err := chromedp.Run(runCtx,
		network.Enable(),
		chromedp.Navigate(searchURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return models.RawPage{}, "", fmt.Errorf("%s: navigate: %w", op, err)
	}

	if idx, ok := RatingIndex(minRating); ok {
		if err := chromedp.Run(runCtx,
			chromedp.WaitVisible(ratingButtonSelector, chromedp.ByQuery),
			chromedp.Click(ratingButtonSelector, chromedp.ByQuery),
			chromedp.Click(fmt.Sprintf(ratingOptionSelector, idx), chromedp.ByQuery),
			chromedp.Sleep(c.cfg.Settle),
		); err != nil {
			return models.RawPage{}, "", fmt.Errorf("%s: rating_filter: %w", op, err)
		}
	}

	if err := chromedp.Run(runCtx, chromedp.WaitVisible(feedSelector, chromedp.ByQuery)); err != nil {
		return models.RawPage{}, "", fmt.Errorf("%s: results: %w", op, err)
	}

	// Запросы до первой прокрутки (в т.ч. от фильтра) смещения не несут.
	xhr.reset()

	var (
		content string
		cursor  string
	)

	for i := 0; i < c.cfg.Scrolls && cursor == ""; i++ {
		var scrolled bool
		if err := chromedp.Run(runCtx,
			chromedp.Evaluate(scrollLastPlace, &scrolled),
			chromedp.Sleep(c.cfg.Settle),
			chromedp.OuterHTML("html", &content, chromedp.ByQuery),
		); err != nil {
			if errors.Is(err, context.DeadlineExceeded) && content != "" {
				break
			}
			return models.RawPage{}, "", fmt.Errorf("%s: scroll: %w", op, err)
		}

		if cursor = xhr.last(); cursor != "" {
			lg.Info("capture_xhr_found",
				slog.String("op", op),
				slog.Int("scroll", i+1),
			)
		}
	}

	if cursor != "" {
		cursor = xhr.last()
	}

	if cursor == "" {
		lg.Info("capture_no_pagination", slog.String("op", op))
	}

	return models.RawPage{URL: searchURL, Status: 200, Text: content}, cursor, nil
}
