package social

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// CreatePost stores a post owned by ownerID. Content is trimmed; a post with
// neither content nor media is rejected.
func (s *Service) CreatePost(ctx context.Context, ownerID int64, content, media string) (*Post, error) {
	content = strings.TrimSpace(content)
	media = strings.TrimSpace(media)
	if content == "" && media == "" {
		return nil, ErrEmptyPost
	}

	p := &Post{
		UserID:        ownerID,
		Content:       content,
		MediaFilename: media,
		CreatedAt:     s.now(),
	}
	if err := s.store.CreatePost(ctx, p); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": ownerID, "post_id": p.ID}).Info("post created")
	return p, nil
}

// DeletePost removes a post and its likes and saves. Only the owner may do so.
func (s *Service) DeletePost(ctx context.Context, requesterID, postID int64) error {
	p, err := s.store.PostByID(ctx, postID)
	if err != nil {
		return err
	}
	if p.UserID != requesterID {
		return ErrForbidden
	}
	if err := s.store.DeletePost(ctx, postID); err != nil {
		return err
	}
	s.removeMedia(ctx, p.MediaFilename)
	s.log.WithFields(logrus.Fields{"user_id": requesterID, "post_id": postID}).Info("post deleted")
	return nil
}

// ToggleLike flips the viewer's like on a post.
func (s *Service) ToggleLike(ctx context.Context, viewerID, postID int64) (ToggleState, error) {
	return s.toggle(ctx, "like", viewerID, postID, s.store.ToggleLike)
}

// ToggleSave flips the viewer's bookmark on a post. Independent of likes.
func (s *Service) ToggleSave(ctx context.Context, viewerID, postID int64) (ToggleState, error) {
	return s.toggle(ctx, "save", viewerID, postID, s.store.ToggleSave)
}

func (s *Service) toggle(ctx context.Context, kind string, viewerID, postID int64,
	flip func(ctx context.Context, postID, userID int64) (bool, error)) (ToggleState, error) {
	if _, err := s.store.PostByID(ctx, postID); err != nil {
		return Absent, err
	}
	present, err := flip(ctx, postID, viewerID)
	if err != nil {
		return Absent, err
	}
	state := Absent
	if present {
		state = Present
	}
	s.log.WithFields(logrus.Fields{
		"user_id": viewerID,
		"post_id": postID,
		"state":   state.String(),
	}).Debug(kind + " toggled")
	return state, nil
}

// Feed returns the active stories and every post as seen by viewerID.
func (s *Service) Feed(ctx context.Context, viewerID int64) (*Feed, error) {
	stories, posts, err := s.store.ReadFeed(ctx, viewerID, s.storyCutoff())
	if err != nil {
		return nil, err
	}
	return &Feed{Stories: stories, Posts: posts}, nil
}

// SavedPosts lists the posts userID has saved, newest first.
func (s *Service) SavedPosts(ctx context.Context, userID int64) ([]FeedPost, error) {
	return s.store.SavedPosts(ctx, userID)
}
