package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/sessions"
	"github.com/nikolalohinski/gonja/v2/exec"

	"minisocial/internal/media"
	"minisocial/internal/social"
)

// --- Session helpers ---

const (
	sessionName = "session"
	tokenKey    = "token"
)

func newCookieStore(secret string) *sessions.CookieStore {
	s := sessions.NewCookieStore([]byte(secret))
	s.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return s
}

func (a *app) sessionToken(r *http.Request) string {
	session, _ := a.cookies.Get(r, sessionName)
	token, _ := session.Values[tokenKey].(string)
	return token
}

func (a *app) setSessionToken(w http.ResponseWriter, r *http.Request, token string) {
	session, _ := a.cookies.Get(r, sessionName)
	if token == "" {
		delete(session.Values, tokenKey)
	} else {
		session.Values[tokenKey] = token
	}
	if err := session.Save(r, w); err != nil {
		a.log.WithError(err).Error("could not save session cookie")
	}
}

// getCurrentUser returns nil when nobody is logged in.
func (a *app) getCurrentUser(r *http.Request) *social.User {
	u, err := a.svc.CurrentUser(r.Context(), a.sessionToken(r))
	if err != nil {
		if !errors.Is(err, social.ErrUnauthenticated) {
			a.log.WithError(err).Error("could not resolve session")
		}
		return nil
	}
	return u
}

// authed wraps handlers that need a logged in user.
func (a *app) authed(h func(w http.ResponseWriter, r *http.Request, user *social.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := a.getCurrentUser(r)
		if user == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		h(w, r, user)
	}
}

func (a *app) addFlash(w http.ResponseWriter, r *http.Request, message string) {
	session, _ := a.cookies.Get(r, sessionName)
	session.AddFlash(message)
	if err := session.Save(r, w); err != nil {
		a.log.WithError(err).Error("could not save session cookie")
	}
}

func (a *app) getFlashes(w http.ResponseWriter, r *http.Request) []interface{} {
	session, _ := a.cookies.Get(r, sessionName)
	flashes := session.Flashes()
	if err := session.Save(r, w); err != nil {
		a.log.WithError(err).Error("could not save session cookie")
	}
	return flashes
}

// --- Error helpers ---

// userMessage is the flash text for errors the user can fix.
func userMessage(err error) string {
	switch {
	case errors.Is(err, social.ErrDuplicateUsername):
		return "Username already exists!"
	case errors.Is(err, social.ErrInvalidCredentials):
		return "Invalid username or password!"
	case errors.Is(err, social.ErrEmptyPost):
		return "Your post needs some text or a file."
	case errors.Is(err, social.ErrEmptyMessage):
		return "Message cannot be empty."
	case errors.Is(err, social.ErrMissingMedia):
		return "Please choose a photo or video for your story."
	case errors.Is(err, social.ErrInvalidInput):
		return "Please check the form and try again."
	case errors.Is(err, media.ErrDisallowedType), errors.Is(err, media.ErrInvalidName):
		return "File type not allowed!"
	case errors.Is(err, errUploadTooLarge):
		return "File is too large!"
	}
	return ""
}

// fail reports err: fixable errors become a flash and a redirect to back,
// the rest map to a status code.
func (a *app) fail(w http.ResponseWriter, r *http.Request, err error, back string) {
	if msg := userMessage(err); msg != "" {
		a.addFlash(w, r, msg)
		http.Redirect(w, r, back, http.StatusFound)
		return
	}
	switch {
	case errors.Is(err, social.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, social.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		a.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// --- Template helpers ---

func ago(t time.Time) string {
	return humanize.Time(t)
}

func isVideo(ref string) bool {
	switch strings.ToLower(ref[strings.LastIndex(ref, ".")+1:]) {
	case "mp4", "mov", "avi":
		return true
	}
	return false
}

// renderTemplate executes page with data plus the layout values: the
// logged in user (may be nil), their theme and pending flashes.
func (a *app) renderTemplate(w http.ResponseWriter, r *http.Request, user *social.User, page string, data map[string]interface{}) {
	tmpl, ok := a.pages[page]
	if !ok {
		a.log.WithField("page", page).Error("unknown page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data["LoggedIn"] = user != nil
	data["CurrentUser"] = userView{}
	data["Theme"] = social.ThemeLight
	if user != nil {
		data["CurrentUser"] = newUserView(user)
		data["Theme"] = user.Theme
	}
	data["Flashes"] = a.getFlashes(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, exec.NewContext(data)); err != nil {
		a.log.WithError(err).WithField("page", page).Error("could not render page")
	}
}
