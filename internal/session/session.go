package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	userKey  = "user_id"
	flashKey = "flash"
)

// NewStore creates the cookie-keyed session store. A nil storage keeps
// sessions in process memory.
func NewStore(storage fiber.Storage, expiration time.Duration, secureCookie bool) *session.Store {
	return session.New(session.Config{
		Expiration:     expiration,
		Storage:        storage,
		KeyLookup:      "cookie:recipebox_session",
		CookieHTTPOnly: true,
		CookieSecure:   secureCookie,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Binding adapts a fiber session to services.Session and carries one-shot
// flash notices between requests. Methods only change the session; Save
// persists it and must be the last call, since fiber releases the session
// back to its pool on save.
type Binding struct {
	sess  *session.Session
	dirty bool
	saved bool
}

// Wrap returns a Binding over sess.
func Wrap(sess *session.Session) *Binding {
	return &Binding{sess: sess}
}

// Bind stores userID under a fresh session id.
func (b *Binding) Bind(userID uint) error {
	if err := b.sess.Regenerate(); err != nil {
		return err
	}
	b.sess.Set(userKey, userID)
	b.dirty = true
	return nil
}

// Unbind drops the user binding but keeps pending flashes.
func (b *Binding) Unbind() error {
	if _, ok := b.UserID(); !ok {
		return nil
	}
	b.sess.Delete(userKey)
	if err := b.sess.Regenerate(); err != nil {
		return err
	}
	b.dirty = true
	return nil
}

// UserID returns the bound user id.
func (b *Binding) UserID() (uint, bool) {
	id, ok := b.sess.Get(userKey).(uint)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

// Flash queues a notice for the next rendered page.
func (b *Binding) Flash(message string) {
	b.sess.Set(flashKey, message)
	b.dirty = true
}

// PopFlash returns and clears the pending notice.
func (b *Binding) PopFlash() string {
	message, ok := b.sess.Get(flashKey).(string)
	if !ok {
		return ""
	}
	b.sess.Delete(flashKey)
	b.dirty = true
	return message
}

// Save writes the session and its cookie if anything changed. Only the
// first call has an effect.
func (b *Binding) Save() error {
	if b.saved || !b.dirty {
		return nil
	}
	b.saved = true
	return b.sess.Save()
}
