// Package transport is a reference collaborator showing how a protocol
// layer plugs into the circuits core without the core knowing about it: it
// uses only the core's exported API (components with a generator function,
// Component.Fire, Register/Unregister and the tree accessors). It is not a
// production web framework.
package transport

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/rs/xid"
)

// sessionCookie is the name of the cookie carrying the connection's
// assigned channel.
const sessionCookie = "_circuits"

// SessionStore resolves the channel a connection should be scoped to,
// surviving reconnects from the same browser/client.
type SessionStore interface {
	Channel(r *http.Request) (string, error)
	Save(w http.ResponseWriter, r *http.Request, channel string) error
}

// CookieSessionStore is a gorilla/sessions cookie-backed SessionStore: two
// tabs from the same browser share a channel, a fresh client gets a new
// one minted with rs/xid.
type CookieSessionStore struct {
	store *sessions.CookieStore
	name  string
}

// NewCookieSessionStore creates a CookieSessionStore using name as the
// cookie's session name and keyPairs for signing/encryption, per
// gorilla/sessions conventions.
func NewCookieSessionStore(name string, keyPairs ...[]byte) *CookieSessionStore {
	s := sessions.NewCookieStore(keyPairs...)
	s.Options.HttpOnly = true
	s.Options.SameSite = http.SameSiteStrictMode
	return &CookieSessionStore{store: s, name: name}
}

// Channel returns the channel this request's session is bound to, minting
// one if the session is new.
func (c *CookieSessionStore) Channel(r *http.Request) (string, error) {
	session, err := c.store.Get(r, c.name)
	if err != nil {
		return xid.New().String(), nil
	}
	v, ok := session.Values[sessionCookie]
	if !ok {
		return xid.New().String(), nil
	}
	channel, ok := v.(string)
	if !ok || channel == "" {
		return xid.New().String(), nil
	}
	return channel, nil
}

// Save persists channel into the request's session cookie.
func (c *CookieSessionStore) Save(w http.ResponseWriter, r *http.Request, channel string) error {
	session, err := c.store.Get(r, c.name)
	if err != nil {
		return err
	}
	session.Values[sessionCookie] = channel
	return session.Save(r, w)
}
