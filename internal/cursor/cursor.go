// cursor выводит адрес следующей страницы выдачи из предыдущего.
//
// Адрес несёт два счётчика: смещение выдачи (токен "!8i<N>" внутри параметра pb)
// и анти-replay счётчик (query-параметр ech). Остальные байты адреса не меняются.
package cursor

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// PageSize — размер страницы выдачи провайдера.
const PageSize = 20

// ErrCursorFormat — адрес не содержит ожидаемых счётчиков:
// провайдер сменил формат, продолжать пагинацию нельзя.
var ErrCursorFormat = errors.New("unexpected cursor format")

// FormatError — подробности несовпадения формата.
type FormatError struct {
	Cursor string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCursorFormat, e.Reason)
}

func (e *FormatError) Is(target error) bool { return target == ErrCursorFormat }

var (
	// reOffset привязан к разделителю "!", иначе совпадёт хвост токена вроде "!18i20".
	reOffset = regexp.MustCompile(`!8i(\d+)`)
	reEch    = regexp.MustCompile(`([?&])ech=(\d+)`)
)

// DeriveNext возвращает адрес следующей страницы.
//
// Ожидаемое смещение в cur — pagesFetched*PageSize; оно заменяется на
// pagesFetched*PageSize+PageSize, а ech увеличивается ровно на единицу.
func DeriveNext(cur string, pagesFetched int) (string, error) {
	if pagesFetched < 0 {
		return "", &FormatError{Cursor: cur, Reason: fmt.Sprintf("negative pages count %d", pagesFetched)}
	}

	want := pagesFetched * PageSize

	loc := findOffset(cur, want)
	if loc == nil {
		return "", &FormatError{Cursor: cur, Reason: fmt.Sprintf("offset token 8i%d not found", want)}
	}

	next := cur[:loc[0]] + strconv.Itoa(want+PageSize) + cur[loc[1]:]

	m := reEch.FindStringSubmatchIndex(next)
	if m == nil {
		return "", &FormatError{Cursor: cur, Reason: "ech parameter not found"}
	}

	ech, err := strconv.Atoi(next[m[4]:m[5]])
	if err != nil {
		return "", &FormatError{Cursor: cur, Reason: fmt.Sprintf("ech: %v", err)}
	}

	return next[:m[4]] + strconv.Itoa(ech+1) + next[m[5]:], nil
}

// Offset возвращает первое смещение, закодированное в адресе.
func Offset(cur string) (int, bool) {
	m := reOffset.FindStringSubmatch(cur)
	if m == nil {
		return 0, false
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}

	return n, true
}

// Ech возвращает значение анти-replay счётчика.
func Ech(cur string) (int, bool) {
	m := reEch.FindStringSubmatch(cur)
	if m == nil {
		return 0, false
	}

	n, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}

	return n, true
}

// findOffset ищет токен !8i<want> с точным совпадением числа (8i20 не совпадает с 8i200)
// и возвращает границы самого числа.
func findOffset(cur string, want int) []int {
	for _, m := range reOffset.FindAllStringSubmatchIndex(cur, -1) {
		n, err := strconv.Atoi(cur[m[2]:m[3]])
		if err == nil && n == want {
			return m[2:4]
		}
	}

	return nil
}
