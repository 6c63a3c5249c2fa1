package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCookieSessionStoreMintsChannelForFreshClient(t *testing.T) {
	store := NewCookieSessionStore("circuits", []byte("0123456789012345678901234567890123456789012345678901234567890123456789"))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	channel, err := store.Channel(r)
	require.NoError(t, err)
	require.NotEmpty(t, channel)
}

func TestCookieSessionStoreRoundTripsChannelAcrossRequests(t *testing.T) {
	store := NewCookieSessionStore("circuits", []byte("0123456789012345678901234567890123456789012345678901234567890123456789"))

	r1 := httptest.NewRequest(http.MethodGet, "/", nil)
	channel, err := store.Channel(r1)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, store.Save(w, r1, channel))

	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r2.AddCookie(c)
	}

	got, err := store.Channel(r2)
	require.NoError(t, err)
	require.Equal(t, channel, got)
}

func TestCookieSessionStoreDistinctClientsGetDistinctChannels(t *testing.T) {
	store := NewCookieSessionStore("circuits", []byte("0123456789012345678901234567890123456789012345678901234567890123456789"))

	a, err := store.Channel(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	b, err := store.Channel(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}
