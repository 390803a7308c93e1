package social

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// UserByUsername looks a user up by name.
func (s *Service) UserByUsername(ctx context.Context, username string) (*User, error) {
	return s.store.UserByUsername(ctx, strings.TrimSpace(username))
}

// Profile assembles a user's page as seen by viewerID. Saved posts are only
// included on the viewer's own profile.
func (s *Service) Profile(ctx context.Context, viewerID int64, username string) (*Profile, error) {
	u, err := s.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	posts, err := s.store.PostsByUser(ctx, viewerID, u.ID)
	if err != nil {
		return nil, err
	}

	p := &Profile{User: u, Posts: posts, IsOwner: u.ID == viewerID}
	if p.IsOwner {
		if p.SavedPosts, err = s.store.SavedPosts(ctx, u.ID); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// UpdateProfile applies the non-nil fields of upd to the user.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) (*User, error) {
	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Theme != nil {
		theme := strings.ToLower(strings.TrimSpace(*upd.Theme))
		if theme != ThemeLight && theme != ThemeDark {
			return nil, ErrInvalidInput
		}
		u.Theme = theme
	}
	if upd.Bio != nil {
		u.Bio = strings.TrimSpace(*upd.Bio)
	}
	var oldPicture string
	if upd.ProfilePicture != nil && *upd.ProfilePicture != u.ProfilePicture {
		oldPicture = u.ProfilePicture
		u.ProfilePicture = *upd.ProfilePicture
	}

	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	s.removeMedia(ctx, oldPicture)
	s.log.WithFields(logrus.Fields{"user_id": u.ID, "theme": u.Theme}).Info("profile updated")
	return u, nil
}
