package social

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CreateStory posts a story; stories always carry media.
func (s *Service) CreateStory(ctx context.Context, ownerID int64, media string) (*Story, error) {
	media = strings.TrimSpace(media)
	if media == "" {
		return nil, ErrMissingMedia
	}
	st := &Story{
		UserID:        ownerID,
		MediaFilename: media,
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateStory(ctx, st); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": ownerID, "story_id": st.ID}).Info("story created")
	return st, nil
}

// ActiveStories lists stories younger than StoryWindow, newest first.
func (s *Service) ActiveStories(ctx context.Context) ([]StoryView, error) {
	return s.store.StoriesSince(ctx, s.storyCutoff())
}

// PurgeExpiredStories deletes stories that fell out of the window together
// with their media files. Expired stories are invisible either way; this only
// reclaims space.
func (s *Service) PurgeExpiredStories(ctx context.Context) ([]Story, error) {
	purged, err := s.store.DeleteStoriesAtOrBefore(ctx, s.storyCutoff())
	if err != nil {
		return nil, err
	}
	for _, st := range purged {
		s.removeMedia(ctx, st.MediaFilename)
	}
	s.log.WithField("count", len(purged)).Info("expired stories purged")
	return purged, nil
}

// storyCutoff is the creation time a story must be strictly after to be active.
func (s *Service) storyCutoff() time.Time {
	return s.now().Add(-StoryWindow)
}
