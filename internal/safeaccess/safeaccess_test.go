package safeaccess

import (
	"encoding/json"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustTree(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

// TestGet_Table — основные сценарии обхода.
func TestGet_Table(t *testing.T) {
	t.Parallel()

	tree := mustTree(t, `[1, [2, 3, {"k": [4, null]}], "s"]`)

	cases := []struct {
		name string
		path []any
		want any
		ok   bool
	}{
		{"root", nil, tree, true},
		{"first", []any{0}, float64(1), true},
		{"negative", []any{-1}, "s", true},
		{"nested", []any{1, 1}, float64(3), true},
		{"key", []any{1, 2, "k", 0}, float64(4), true},
		{"negative nested", []any{1, -1, "k", -2}, float64(4), true},
		{"null is absent", []any{1, 2, "k", 1}, nil, false},
		{"out of range", []any{5}, nil, false},
		{"negative out of range", []any{-4}, nil, false},
		{"index on scalar", []any{0, 0}, nil, false},
		{"key on array", []any{"k"}, nil, false},
		{"missing key", []any{1, 2, "x"}, nil, false},
		{"unsupported step", []any{1.5}, nil, false},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Get(tree, c.path...)
			require.Equal(t, c.ok, ok)
			if c.ok {
				require.Equal(t, c.want, got)
			} else {
				require.Nil(t, got)
			}
		})
	}
}

// TestGet_RandomPathsNeverPanic — для произвольных деревьев и путей Get не паникует,
// а отсутствие всегда означает (nil, false).
func TestGet_RandomPathsNeverPanic(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(1, 2))

	var gen func(depth int) any
	gen = func(depth int) any {
		if depth == 0 {
			switch r.IntN(4) {
			case 0:
				return nil
			case 1:
				return float64(r.IntN(100))
			case 2:
				return "v"
			default:
				return true
			}
		}

		switch r.IntN(3) {
		case 0:
			n := r.IntN(4)
			arr := make([]any, n)
			for i := range arr {
				arr[i] = gen(depth - 1)
			}
			return arr
		case 1:
			return map[string]any{"a": gen(depth - 1), "b": gen(depth - 1)}
		default:
			return gen(0)
		}
	}

	steps := []any{0, 1, 2, -1, -3, 7, "a", "b", "zz", 3.14, nil}

	for i := 0; i < 2000; i++ {
		tree := gen(4)
		path := make([]any, r.IntN(6))
		for j := range path {
			path[j] = steps[r.IntN(len(steps))]
		}

		require.NotPanics(t, func() {
			v, ok := Get(tree, path...)
			if !ok {
				require.Nil(t, v)
			}
			_ = String(tree, path...)
			_, _ = Float(tree, path...)
			_ = Strings(tree, path...)
		})
	}
}

func TestTypedHelpers(t *testing.T) {
	t.Parallel()

	tree := mustTree(t, `[["a", 2, "b"], 4.5, 1234567890, "x", []]`)

	require.Equal(t, []string{"a", "b"}, Strings(tree, 0))
	require.Nil(t, Strings(tree, 4))
	require.Nil(t, Strings(tree, 3))

	f, ok := Float(tree, 1)
	require.True(t, ok)
	require.Equal(t, 4.5, f)

	_, ok = Float(tree, 3)
	require.False(t, ok)

	n, ok := Int(tree, 1)
	require.True(t, ok)
	require.Equal(t, 4, n)

	require.Equal(t, "1234567890", String(tree, 2))
	require.Equal(t, "x", String(tree, -2))
	require.Equal(t, "", String(tree, 0))
	require.Len(t, Slice(tree, 0), 3)
}
