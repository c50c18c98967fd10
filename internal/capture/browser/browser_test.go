package browser

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSearchURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://www.google.com/maps/search/coffee+in+Lisbon", SearchURL("coffee in Lisbon"))
	require.Equal(t, "https://www.google.com/maps/search/caf%C3%A9+%26+bar", SearchURL("café & bar"))
}

func TestRatingIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rating float64
		idx    int
		ok     bool
	}{
		{rating: 0, ok: false},
		{rating: 1.0, ok: false},
		{rating: 2.0, idx: 1, ok: true},
		{rating: 2.5, idx: 2, ok: true},
		{rating: 3.0, idx: 3, ok: true},
		{rating: 3.5, idx: 4, ok: true},
		{rating: 4.0, idx: 5, ok: true},
		{rating: 4.5, idx: 6, ok: true},
		{rating: 4.2, ok: false},
		{rating: 5.0, ok: false},
	}

	for _, tt := range tests {
		idx, ok := RatingIndex(tt.rating)
		require.Equal(t, tt.ok, ok, "rating %v", tt.rating)
		require.Equal(t, tt.idx, idx, "rating %v", tt.rating)
	}
}

func TestIsPaginationRequest(t *testing.T) {
	t.Parallel()

	require.True(t, isPaginationRequest("https://www.google.com/search?tbm=map&authuser=0&pb=!7i20!8i20&ech=1"))
	require.False(t, isPaginationRequest("https://www.google.com/maps/search/coffee"))
	require.False(t, isPaginationRequest("https://www.google.com/maps/preview/place?authuser=0"))
}

func TestXHRTracker_KeepsLatest(t *testing.T) {
	t.Parallel()

	const (
		filterSearch = "https://www.google.com/search?tbm=map&authuser=0&pb=!1scoffee!7i20&ech=2"
		page2        = "https://www.google.com/search?tbm=map&authuser=0&pb=!1scoffee!7i20!8i20&ech=3"
		page3        = "https://www.google.com/search?tbm=map&authuser=0&pb=!1scoffee!7i20!8i40&ech=4"
	)

	var xhr xhrTracker
	require.Empty(t, xhr.last())

	xhr.observe(filterSearch)
	require.Equal(t, filterSearch, xhr.last())

	xhr.reset()
	require.Empty(t, xhr.last())

	xhr.observe(page2)
	xhr.observe("https://www.google.com/maps/preview/place?authuser=0")
	require.Equal(t, page2, xhr.last())

	xhr.observe(page3)
	require.Equal(t, page3, xhr.last())
}

func TestXHRTracker_ConcurrentObserve(t *testing.T) {
	t.Parallel()

	var (
		xhr xhrTracker
		wg  sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			xhr.observe(fmt.Sprintf("https://www.google.com/search?tbm=map&pb=!8i%d&ech=1", i*20))
		}(i)
	}
	wg.Wait()

	require.True(t, isPaginationRequest(xhr.last()))
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	c := New(Config{})
	require.Equal(t, 2*time.Minute, c.cfg.Timeout)
	require.Equal(t, 3, c.cfg.Scrolls)
	require.Equal(t, 2*time.Second, c.cfg.Settle)

	withUA := New(Config{UserAgent: "ua"})
	require.Len(t, withUA.allocatorOptions(), len(c.allocatorOptions())+1)
}
