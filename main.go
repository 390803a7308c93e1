package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/nikolalohinski/gonja/v2/exec"
	"github.com/sirupsen/logrus"

	"minisocial/internal/config"
	"minisocial/internal/media"
	"minisocial/internal/social"
)

// app carries everything a request handler needs.
type app struct {
	svc       *social.Service
	media     *media.DiskStore
	cookies   *sessions.CookieStore
	pages     map[string]*exec.Template
	log       *logrus.Logger
	maxUpload int64
}

func newApp(svc *social.Service, mediaStore *media.DiskStore, secret string, maxUpload int64, log *logrus.Logger) (*app, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &app{
		svc:       svc,
		media:     mediaStore,
		cookies:   newCookieStore(secret),
		pages:     pages,
		log:       log,
		maxUpload: maxUpload,
	}, nil
}

func (a *app) setupRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(a.logRequests)

	r.HandleFunc("/", a.homeHandler).Methods("GET")
	r.HandleFunc("/signup", a.signupHandler).Methods("GET", "POST")
	r.HandleFunc("/login", a.loginHandler).Methods("GET", "POST")
	r.HandleFunc("/logout", a.logoutHandler).Methods("GET")

	r.HandleFunc("/feed", a.authed(a.feedHandler)).Methods("GET")
	r.HandleFunc("/posts", a.authed(a.createPostHandler)).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}/delete", a.authed(a.deletePostHandler)).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}/like", a.authed(a.toggleLikeHandler)).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}/save", a.authed(a.toggleSaveHandler)).Methods("POST")
	r.HandleFunc("/stories", a.authed(a.createStoryHandler)).Methods("POST")
	r.HandleFunc("/saved", a.authed(a.savedHandler)).Methods("GET")
	r.HandleFunc("/users/{username}", a.authed(a.profileHandler)).Methods("GET")
	r.HandleFunc("/profile", a.authed(a.updateProfileHandler)).Methods("POST")
	r.HandleFunc("/messages", a.authed(a.messagesHandler)).Methods("GET")
	r.HandleFunc("/messages", a.authed(a.startConversationHandler)).Methods("POST")
	r.HandleFunc("/messages/{username}", a.authed(a.conversationHandler)).Methods("GET", "POST")
	r.HandleFunc("/uploads/{file}", a.uploadsHandler).Methods("GET")

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (a *app) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		a.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("could not load configuration")
	}
	log := cfg.NewLogger()

	ctx := context.Background()
	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("could not open backends")
	}
	defer b.Close()

	svc := social.NewService(b.store, b.sessions,
		social.WithLogger(log),
		social.WithMedia(b.media),
	)
	a, err := newApp(svc, b.media, cfg.SecretKey, cfg.MaxUploadMB<<20, log)
	if err != nil {
		log.WithError(err).Fatal("could not parse templates")
	}

	addr := ":" + cfg.Port
	log.WithField("addr", addr).Info("listening")
	if err := http.ListenAndServe(addr, a.setupRouter()); err != nil {
		log.WithError(err).Error("server stopped")
		b.Close()
		os.Exit(1)
	}
}
