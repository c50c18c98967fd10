// safeaccess реализует безопасный обход динамического дерева значений,
// полученного из encoding/json ([]any, map[string]any, float64, string, bool, nil).
//
// Любой неприменимый шаг (выход за границы, не тот тип контейнера, нет ключа)
// возвращает признак отсутствия значения. Паник нет.
package safeaccess

import (
	"math"
	"strconv"
)

// Path — последовательность шагов: int (индекс, отрицательный считается с конца)
// или string (ключ объекта).
type Path []any

// Get проходит по tree шагами path.
// Возвращает (nil, false), если путь не применим или значение равно null.
func Get(tree any, path ...any) (any, bool) {
	cur := tree

	for _, step := range path {
		switch s := step.(type) {
		case int:
			arr, ok := cur.([]any)
			if !ok {
				return nil, false
			}

			idx := s
			if idx < 0 {
				idx += len(arr)
			}

			if idx < 0 || idx >= len(arr) {
				return nil, false
			}

			cur = arr[idx]
		case string:
			obj, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}

			v, ok := obj[s]
			if !ok {
				return nil, false
			}

			cur = v
		default:
			return nil, false
		}
	}

	if cur == nil {
		return nil, false
	}

	return cur, true
}

// String возвращает строку по пути или "".
// Числа форматируются без экспоненты, чтобы id вида 1234567890 не превращались в 1.23e+09.
func String(tree any, path ...any) string {
	v, ok := Get(tree, path...)
	if !ok {
		return ""
	}

	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// Float возвращает число по пути.
func Float(tree any, path ...any) (float64, bool) {
	v, ok := Get(tree, path...)
	if !ok {
		return 0, false
	}

	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}

// Int возвращает целое число по пути (дробная часть отбрасывается).
func Int(tree any, path ...any) (int, bool) {
	f, ok := Float(tree, path...)
	if !ok {
		return 0, false
	}

	return int(f), true
}

// Slice возвращает массив по пути или nil.
func Slice(tree any, path ...any) []any {
	v, ok := Get(tree, path...)
	if !ok {
		return nil
	}

	arr, _ := v.([]any)
	return arr
}

// Strings возвращает строковые элементы массива по пути, пропуская прочие.
func Strings(tree any, path ...any) []string {
	arr := Slice(tree, path...)
	if len(arr) == 0 {
		return nil
	}

	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 {
		return nil
	}

	return out
}
