package cart

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"smart-menu/internal/cart"
	"smart-menu/internal/config"
	"smart-menu/internal/logger"
)

const (
	sessionName = "smart-menu-cart"
	linesKey    = "lines"
	cookieAge   = 60 * 60 * 12
)

func init() {
	gob.Register([]cart.Line{})
}

// NewSessionStore creates the cookie store holding carts. Without a configured key a
// random one is generated, so carts do not survive a restart.
func NewSessionStore(cfg config.CartConfig, log *logger.Logger) *sessions.CookieStore {
	key := []byte(cfg.SessionKey)
	if len(key) == 0 {
		log.Warn("session_key_missing", "No cart session key configured, using an ephemeral key", "startup", nil)
		key = securecookie.GenerateRandomKey(32)
	}

	store := sessions.NewCookieStore(key)
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.CookieSecure
	store.Options.SameSite = http.SameSiteLaxMode
	store.Options.Path = "/"
	store.Options.MaxAge = cookieAge
	return store
}

// load returns the cart stored in the request's session. A missing or undecodable
// cookie yields an empty cart.
func (h *Handler) load(r *http.Request) (*sessions.Session, *cart.Cart) {
	session, err := h.store.Get(r, sessionName)
	if err != nil {
		h.logger.Warn("cart_session_invalid", "Discarding unreadable cart session", h.requestID(r), map[string]interface{}{
			"reason": err.Error(),
		})
	}

	c := cart.New(h.policy)
	if lines, ok := session.Values[linesKey].([]cart.Line); ok {
		c.Lines = lines
	}
	return session, c
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, session *sessions.Session, c *cart.Cart) error {
	if c.IsEmpty() {
		delete(session.Values, linesKey)
	} else {
		session.Values[linesKey] = c.Lines
	}
	return session.Save(r, w)
}
