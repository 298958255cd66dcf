package handlers

import (
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/jjenkins/pincode/internal/view"
)

// FormRegistry keeps one lookup form per browser session
type FormRegistry struct {
	sessions      *session.Store
	newController func() *view.Controller

	mu    sync.Mutex
	forms map[string]*view.Controller
}

// NewFormRegistry creates a registry whose session cookies expire after idle
func NewFormRegistry(newController func() *view.Controller, idle time.Duration) *FormRegistry {
	return &FormRegistry{
		sessions: session.New(session.Config{
			Expiration:     idle,
			CookieHTTPOnly: true,
			CookieSameSite: "Lax",
		}),
		newController: newController,
		forms:         make(map[string]*view.Controller),
	}
}

// For returns the form of the requesting session, creating both if needed
func (r *FormRegistry) For(c *fiber.Ctx) (*view.Controller, error) {
	sess, err := r.sessions.Get(c)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	id := sess.ID()
	if sess.Fresh() {
		if err := sess.Save(); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	form, ok := r.forms[id]
	if !ok {
		form = r.newController()
		r.forms[id] = form
	}
	return form, nil
}

// Len returns the number of live forms
func (r *FormRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.forms)
}

// Sweep closes and removes forms unused for longer than maxIdle
func (r *FormRegistry) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	var stale []*view.Controller
	for id, form := range r.forms {
		if form.LastActive().Before(cutoff) {
			stale = append(stale, form)
			delete(r.forms, id)
		}
	}
	r.mu.Unlock()

	for _, form := range stale {
		form.Close()
	}
	return len(stale)
}

// Wait blocks until no form has a lookup in flight
func (r *FormRegistry) Wait() {
	for _, form := range r.snapshot() {
		form.Wait()
	}
}

// Close cancels every in-flight lookup and drops all forms
func (r *FormRegistry) Close() {
	forms := r.snapshot()

	r.mu.Lock()
	r.forms = make(map[string]*view.Controller)
	r.mu.Unlock()

	for _, form := range forms {
		form.Close()
	}
}

func (r *FormRegistry) snapshot() []*view.Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	forms := make([]*view.Controller, 0, len(r.forms))
	for _, form := range r.forms {
		forms = append(forms, form)
	}
	return forms
}
