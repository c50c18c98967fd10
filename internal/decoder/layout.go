package decoder

import "github.com/pribylovaa/go-maps-harvester/internal/safeaccess"

// Позиционная схема ответа провайдера: все пути полей собраны здесь.

// statePayloadPath — элемент APP_INITIALIZATION_STATE с текстом выдачи.
var statePayloadPath = safeaccess.Path{3, 2}

// listingsPath — массив записей выдачи; нулевой элемент — заголовок, не карточка.
var listingsPath = safeaccess.Path{0, 1}

// placeStep — данные карточки лежат в последнем элементе записи.
const placeStep = -1

// layout — пути полей относительно данных карточки.
var layout = struct {
	ID           safeaccess.Path
	Name         safeaccess.Path
	Description  safeaccess.Path
	ReviewCount  safeaccess.Path
	Rating       safeaccess.Path
	Website      safeaccess.Path
	Owner        safeaccess.Path
	MainCategory safeaccess.Path
	Categories   safeaccess.Path
	Phone        safeaccess.Path
	ShortAddress safeaccess.Path
	Timezone     safeaccess.Path
	Lat          safeaccess.Path
	Lng          safeaccess.Path
	OpenHours    safeaccess.Path
	Ward         safeaccess.Path
	Street       safeaccess.Path
	City         safeaccess.Path
	PostalCode   safeaccess.Path
	State        safeaccess.Path
	CountryCode  safeaccess.Path
}{
	ID:           safeaccess.Path{78},
	Name:         safeaccess.Path{11},
	Description:  safeaccess.Path{32, 1, 1},
	ReviewCount:  safeaccess.Path{4, 8},
	Rating:       safeaccess.Path{4, 7},
	Website:      safeaccess.Path{7, 0},
	Owner:        safeaccess.Path{57, 1},
	MainCategory: safeaccess.Path{13, 0},
	Categories:   safeaccess.Path{13},
	Phone:        safeaccess.Path{178, 0, 0},
	ShortAddress: safeaccess.Path{18},
	Timezone:     safeaccess.Path{30},
	Lat:          safeaccess.Path{9, 2},
	Lng:          safeaccess.Path{9, 3},
	OpenHours:    safeaccess.Path{34, 1},
	Ward:         safeaccess.Path{183, 1, 0},
	Street:       safeaccess.Path{183, 1, 1},
	City:         safeaccess.Path{183, 1, 3},
	PostalCode:   safeaccess.Path{183, 1, 4},
	State:        safeaccess.Path{183, 1, 5},
	CountryCode:  safeaccess.Path{183, 1, 6},
}

// Внутри записи openHours: [day, [range, ...]].
const (
	hoursDayStep   = 0
	hoursRangeStep = 1
)
