package session

import (
	"github.com/freekieb7/wrangler/http"
	"github.com/freekieb7/wrangler/session/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const DefaultCookieName = "wrangler_session"

// Manager ties a session in a store to the cookie that names it.
type Manager struct {
	CookieName string
	Store      storage.SessionStore
}

func NewManager(store storage.SessionStore) *Manager {
	return &Manager{
		CookieName: DefaultCookieName,
		Store:      store,
	}
}

// Start loads the session named by the request cookie. An absent cookie or
// an id unknown to the store starts a fresh session.
func (manager *Manager) Start(req *http.Request) (Session, error) {
	cookie, err := req.Cookie(manager.CookieName)
	if err == nil {
		attributes, err := manager.Store.Get(cookie.Value)
		if err == nil {
			return NewDefaultSession(cookie.Value, false, attributes), nil
		}
		if !errors.Is(err, storage.ErrSessionNotFound) {
			return nil, errors.Wrap(err, "loading session")
		}
	}

	return NewDefaultSession(uuid.NewString(), true, nil), nil
}

// Commit saves session and, for a new one, sets its cookie on res.
func (manager *Manager) Commit(res *http.Response, session Session) error {
	if err := manager.Store.Save(session.ID(), session.All()); err != nil {
		return errors.Wrap(err, "saving session")
	}

	if !session.IsNew() {
		return nil
	}

	return res.SetCookie(&http.Cookie{
		Name:     manager.CookieName,
		Value:    session.ID(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Destroy removes session from the store and expires its cookie.
func (manager *Manager) Destroy(res *http.Response, session Session) error {
	if err := manager.Store.Delete(session.ID()); err != nil {
		return errors.Wrap(err, "deleting session")
	}

	return res.SetCookie(&http.Cookie{Name: manager.CookieName, Path: "/", MaxAge: -1})
}
