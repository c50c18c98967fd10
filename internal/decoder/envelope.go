package decoder

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pribylovaa/go-maps-harvester/internal/safeaccess"
)

const (
	// chunkMarker — хвост ответа XHR-пагинации: {"d": ..., "u": ...}/*""*/.
	chunkMarker  = `/*""*/`
	chunkTrimSet = `/*"`
	// antiHijackPrefix — префикс против подключения JSON через <script>.
	antiHijackPrefix = ")]}'"
	stateStartMarker = ";window.APP_INITIALIZATION_STATE="
	stateEndMarker   = ";window.APP_FLAGS"
)

// envelope — вариант упаковки полезной нагрузки.
type envelope int

const (
	envelopeUnknown envelope = iota
	// envelopeDirectPrefixed — текст уже начинается с antiHijackPrefix.
	envelopeDirectPrefixed
	// envelopeBootstrapEmbedded — HTML-страница с состоянием приложения в <script>.
	envelopeBootstrapEmbedded
)

func (e envelope) String() string {
	switch e {
	case envelopeDirectPrefixed:
		return "direct_prefixed"
	case envelopeBootstrapEmbedded:
		return "bootstrap_embedded"
	default:
		return "unknown"
	}
}

// chunk — JSON внутри chunk-обёртки. Поле "u" (адрес следующей страницы)
// не используется: адреса пагинации выводит пакет cursor.
type chunk struct {
	D string `json:"d"`
}

// detect выбирает вариант упаковки по ведущим байтам.
func detect(text string) envelope {
	switch {
	case strings.HasPrefix(text, antiHijackPrefix):
		return envelopeDirectPrefixed
	case strings.Contains(text, stateStartMarker):
		return envelopeBootstrapEmbedded
	default:
		return envelopeUnknown
	}
}

// unwrap снимает все обёртки и возвращает JSON-текст выдачи без префикса.
func unwrap(text string) (string, error) {
	inner, err := unwrapChunk(text)
	if err != nil {
		return "", err
	}

	switch env := detect(inner); env {
	case envelopeDirectPrefixed:
		return strings.TrimPrefix(inner, antiHijackPrefix), nil
	case envelopeBootstrapEmbedded:
		payload, err := bootstrapPayload(inner)
		if err != nil {
			return "", fmt.Errorf("%s: %w", env, err)
		}
		return strings.TrimPrefix(payload, antiHijackPrefix), nil
	default:
		return "", errors.New("no known envelope")
	}
}

// unwrapChunk раскрывает chunk-обёртку, если она есть.
func unwrapChunk(text string) (string, error) {
	if !strings.Contains(text, chunkMarker) {
		return text, nil
	}

	var c chunk
	body := strings.Trim(strings.TrimSpace(text), chunkTrimSet)
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		return "", fmt.Errorf("chunk: %w", err)
	}

	if c.D == "" {
		return "", errors.New("chunk: empty payload")
	}

	return c.D, nil
}

// bootstrapPayload достаёт текст выдачи из встроенного состояния приложения.
func bootstrapPayload(doc string) (string, error) {
	src := stateScript(doc)

	_, after, ok := strings.Cut(src, stateStartMarker)
	if !ok {
		return "", errors.New("state marker not found")
	}

	state, _, ok := strings.Cut(after, stateEndMarker)
	if !ok {
		return "", errors.New("state end marker not found")
	}

	var tree any
	if err := json.Unmarshal([]byte(state), &tree); err != nil {
		return "", fmt.Errorf("state: %w", err)
	}

	payload, ok := safeaccess.Get(tree, statePayloadPath...)
	if !ok {
		return "", errors.New("state: payload not found")
	}

	text, ok := payload.(string)
	if !ok {
		return "", errors.New("state: payload is not a string")
	}

	return text, nil
}

// stateScript возвращает содержимое <script> с состоянием приложения.
// Если документ не HTML или такого скрипта нет — исходный текст.
func stateScript(doc string) string {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return doc
	}

	found := doc
	d.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if txt := s.Text(); strings.Contains(txt, stateStartMarker) {
			found = txt
			return false
		}
		return true
	})

	return found
}
