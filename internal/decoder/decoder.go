// decoder превращает одну страницу выдачи провайдера в список models.Listing.
//
// Поддерживаются оба входа: HTML первой загрузки (состояние приложения в <script>)
// и ответы XHR-пагинации (chunk-обёртка с префиксом )]}'). Отсутствующие поля
// дают нулевые значения; ошибка возможна только для страницы целиком.
package decoder

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pribylovaa/go-maps-harvester/internal/models"
	"github.com/pribylovaa/go-maps-harvester/internal/safeaccess"
)

// ErrMalformedPage — у страницы не найдена ни одна известная обёртка.
var ErrMalformedPage = errors.New("malformed page")

// MalformedPageError описывает страницу, которую нельзя разобрать.
// Для координатора это «ноль карточек со страницы», а не остановка харвеста.
type MalformedPageError struct {
	URL string
	Err error
}

func (e *MalformedPageError) Error() string {
	return fmt.Sprintf("malformed page %q: %v", e.URL, e.Err)
}

func (e *MalformedPageError) Is(target error) bool { return target == ErrMalformedPage }

func (e *MalformedPageError) Unwrap() error { return e.Err }

// Decoder — чистая функция страницы; состояния нет.
type Decoder struct{}

// New создаёт декодер.
func New() *Decoder {
	return &Decoder{}
}

// Decode разбирает страницу. Порядок карточек внутри страницы сохраняется.
// Страница с единственным заголовочным элементом даёт пустой срез без ошибки.
func (d *Decoder) Decode(page models.RawPage) ([]models.Listing, error) {
	body, err := unwrap(page.Text)
	if err != nil {
		return nil, &MalformedPageError{URL: page.URL, Err: err}
	}

	var data any
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return nil, &MalformedPageError{URL: page.URL, Err: fmt.Errorf("payload: %w", err)}
	}

	entries := safeaccess.Slice(data, listingsPath...)
	if len(entries) <= 1 {
		return []models.Listing{}, nil
	}

	output := make([]models.Listing, 0, len(entries)-1)
	for _, entry := range entries[1:] {
		place, _ := safeaccess.Get(entry, placeStep)
		listing := decodePlace(place)
		listing.SourceAddress = page.URL
		output = append(output, listing)
	}

	return output, nil
}

// decodePlace читает все поля карточки по таблице layout.
func decodePlace(place any) models.Listing {
	listing := models.Listing{
		ID:           safeaccess.String(place, layout.ID...),
		Name:         safeaccess.String(place, layout.Name...),
		Description:  safeaccess.String(place, layout.Description...),
		Website:      safeaccess.String(place, layout.Website...),
		OwnerName:    safeaccess.String(place, layout.Owner...),
		MainCategory: safeaccess.String(place, layout.MainCategory...),
		Categories:   safeaccess.Strings(place, layout.Categories...),
		Phone:        safeaccess.String(place, layout.Phone...),
		ShortAddress: safeaccess.String(place, layout.ShortAddress...),
		Timezone:     safeaccess.String(place, layout.Timezone...),
		DetailedAddress: models.Address{
			Ward:        safeaccess.String(place, layout.Ward...),
			Street:      safeaccess.String(place, layout.Street...),
			City:        safeaccess.String(place, layout.City...),
			PostalCode:  safeaccess.String(place, layout.PostalCode...),
			State:       safeaccess.String(place, layout.State...),
			CountryCode: safeaccess.String(place, layout.CountryCode...),
		},
		OpenHours: decodeOpenHours(place),
	}

	if n, ok := safeaccess.Int(place, layout.ReviewCount...); ok {
		listing.ReviewCount = n
	}

	if r, ok := safeaccess.Float(place, layout.Rating...); ok {
		listing.Rating = &r
	}

	lat, latOK := safeaccess.Float(place, layout.Lat...)
	lng, lngOK := safeaccess.Float(place, layout.Lng...)
	if latOK && lngOK {
		listing.Coordinates = &models.Coordinates{Lat: lat, Lng: lng}
	}

	return listing
}

// decodeOpenHours разбирает пары [day, [range...]].
// Пары без дня пропускаются, отсутствие интервалов даёт пустой TimeRange.
func decodeOpenHours(place any) []models.OpenHours {
	days := safeaccess.Slice(place, layout.OpenHours...)
	if len(days) == 0 {
		return nil
	}

	output := make([]models.OpenHours, 0, len(days))
	for _, item := range days {
		day := safeaccess.String(item, hoursDayStep)
		if day == "" {
			continue
		}

		output = append(output, models.OpenHours{
			Day:       day,
			TimeRange: strings.Join(safeaccess.Strings(item, hoursRangeStep), ", "),
		})
	}

	if len(output) == 0 {
		return nil
	}

	return output
}
