// models содержит доменные сущности harvester-а.
// Эти типы используются слоями харвеста, хранилища, очереди и транспорта.
package models

import "time"

// Listing — нормализованная карточка организации из выдачи карт.
//
// Особенности:
//   - обязательны только ID и Name, остальные поля могут отсутствовать;
//   - отсутствие значения — нулевое значение поля (nil для Rating/Coordinates),
//     а не ошибка декодирования.
type Listing struct {
	// ID — идентификатор карточки у провайдера.
	ID string `json:"id"`
	// Name — название организации.
	Name string `json:"name"`
	// Description — краткое описание.
	Description string `json:"description,omitempty"`
	// ReviewCount — число отзывов.
	ReviewCount int `json:"review_count,omitempty"`
	// Website — сайт организации.
	Website string `json:"website,omitempty"`
	// OwnerName — владелец карточки.
	OwnerName string `json:"owner_name,omitempty"`
	// MainCategory — основная категория.
	MainCategory string `json:"main_category,omitempty"`
	// Categories — все категории в порядке провайдера.
	Categories []string `json:"categories,omitempty"`
	// Rating — средняя оценка 0..5, nil если не указана.
	Rating *float64 `json:"rating,omitempty"`
	// Phone — телефон в формате провайдера.
	Phone string `json:"phone,omitempty"`
	// ShortAddress — адрес одной строкой.
	ShortAddress string `json:"short_address,omitempty"`
	// DetailedAddress — адрес по компонентам.
	DetailedAddress Address `json:"detailed_address"`
	// Timezone — часовой пояс (IANA).
	Timezone string `json:"timezone,omitempty"`
	// Coordinates — координаты, nil если не указаны.
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	// OpenHours — расписание по дням, может быть пустым.
	OpenHours []OpenHours `json:"open_hours,omitempty"`
	// SourceAddress — адрес страницы выдачи, из которой декодирована карточка.
	SourceAddress string `json:"source_address"`
}

// Address — адрес по компонентам. Любой компонент может быть пустым.
type Address struct {
	Ward        string `json:"ward,omitempty"`
	Street      string `json:"street,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	State       string `json:"state,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// Coordinates — широта/долгота.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// OpenHours — часы работы в один день недели.
// TimeRange пустой, если провайдер не прислал интервалы.
type OpenHours struct {
	Day       string `json:"day"`
	TimeRange string `json:"time_range"`
}

// RawPage — непрозрачный ответ на один запрос страницы.
// После получения не изменяется.
type RawPage struct {
	URL    string
	Status int
	Text   string
}

// ListOptions — параметры выборки списков доменных сущностей.
//
// Особенности:
//   - при Limit == 0 применяется серверный default (из config.LimitsConfig.Default);
//   - PageToken == "" -> первая страница.
type ListOptions struct {
	Limit     int32
	PageToken string
}

// Page — страница карточек со ссылкой на продолжение.
type Page struct {
	Items         []Listing `json:"items"`
	NextPageToken string    `json:"next_page_token,omitempty"`
}

// StoredListing — карточка вместе с метаданными хранения.
type StoredListing struct {
	Listing
	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}
