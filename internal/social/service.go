// Package social holds the rules of the app: who may post, like, save, tell
// stories and message whom. Persistence, sessions and media files sit behind
// the interfaces declared here.
package social

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Store is the persistence gateway. Missing rows are reported as ErrNotFound,
// a username collision as ErrDuplicateUsername and any other failure as a
// *StoreError.
type Store interface {
	CreateUser(ctx context.Context, u *User) error
	UserByID(ctx context.Context, id int64) (*User, error)
	UserByUsername(ctx context.Context, username string) (*User, error)
	UpdateUser(ctx context.Context, u *User) error

	CreatePost(ctx context.Context, p *Post) error
	PostByID(ctx context.Context, id int64) (*Post, error)
	// DeletePost removes the post with its likes and saves in one transaction.
	DeletePost(ctx context.Context, id int64) error
	PostsByUser(ctx context.Context, viewerID, authorID int64) ([]FeedPost, error)
	SavedPosts(ctx context.Context, userID int64) ([]FeedPost, error)
	// ReadFeed returns stories created after storiesSince and all posts,
	// both newest first, read from a single snapshot.
	ReadFeed(ctx context.Context, viewerID int64, storiesSince time.Time) ([]StoryView, []FeedPost, error)

	// ToggleLike and ToggleSave atomically insert or delete the marker row and
	// report whether it exists afterwards.
	ToggleLike(ctx context.Context, postID, userID int64) (bool, error)
	ToggleSave(ctx context.Context, postID, userID int64) (bool, error)

	CreateStory(ctx context.Context, s *Story) error
	// StoriesSince returns stories created strictly after since, newest first.
	StoriesSince(ctx context.Context, since time.Time) ([]StoryView, error)
	// DeleteStoriesAtOrBefore is the complement of StoriesSince and returns
	// the deleted rows.
	DeleteStoriesAtOrBefore(ctx context.Context, cutoff time.Time) ([]Story, error)

	CreateMessage(ctx context.Context, m *Message) error
	Conversation(ctx context.Context, a, b int64) ([]Message, error)
	ConversationPartners(ctx context.Context, userID int64) ([]User, error)
}

// SessionStore binds opaque tokens to user ids.
type SessionStore interface {
	Create(ctx context.Context, userID int64) (string, error)
	Lookup(ctx context.Context, token string) (int64, bool, error)
	Delete(ctx context.Context, token string) error
}

// MediaRemover deletes stored media by reference.
type MediaRemover interface {
	Remove(ctx context.Context, ref string) error
}

type Service struct {
	store    Store
	sessions SessionStore
	media    MediaRemover
	now      func() time.Time
	log      logrus.FieldLogger
	hashCost int
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests of the story window.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) { s.log = log }
}

// WithMedia lets the service remove media files of deleted posts and purged stories.
func WithMedia(m MediaRemover) Option {
	return func(s *Service) { s.media = m }
}

func WithPasswordCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

func NewService(store Store, sessions SessionStore, opts ...Option) *Service {
	s := &Service{
		store:    store,
		sessions: sessions,
		now:      time.Now,
		log:      logrus.StandardLogger(),
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) removeMedia(ctx context.Context, ref string) {
	if s.media == nil || ref == "" {
		return
	}
	if err := s.media.Remove(ctx, ref); err != nil {
		s.log.WithError(err).WithField("media", ref).Warn("could not remove media file")
	}
}
