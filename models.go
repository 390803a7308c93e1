package main

import "minisocial/internal/social"

// userView is a user as shown in pages.
type userView struct {
	ID             int64
	Username       string
	ProfilePicture string
	Bio            string
	Theme          string
}

func newUserView(u *social.User) userView {
	return userView{
		ID:             u.ID,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
		Bio:            u.Bio,
		Theme:          u.Theme,
	}
}

func newUserViews(users []social.User) []userView {
	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, newUserView(&users[i]))
	}
	return views
}

// postView is a feed entry joined with author and viewer state.
type postView struct {
	ID             int64
	Username       string
	ProfilePicture string
	Content        string
	Media          string
	IsVideo        bool
	LikeCount      int
	Liked          bool
	Saved          bool
	Mine           bool
	Ago            string
}

func newPostViews(posts []social.FeedPost, viewerID int64) []postView {
	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		views = append(views, postView{
			ID:             p.ID,
			Username:       p.Username,
			ProfilePicture: p.ProfilePicture,
			Content:        p.Content,
			Media:          p.MediaFilename,
			IsVideo:        p.MediaFilename != "" && isVideo(p.MediaFilename),
			LikeCount:      p.LikeCount,
			Liked:          p.ViewerHasLiked,
			Saved:          p.ViewerHasSaved,
			Mine:           p.UserID == viewerID,
			Ago:            ago(p.CreatedAt),
		})
	}
	return views
}

type storyView struct {
	Username string
	Media    string
	IsVideo  bool
	Ago      string
}

func newStoryViews(stories []social.StoryView) []storyView {
	views := make([]storyView, 0, len(stories))
	for _, s := range stories {
		views = append(views, storyView{
			Username: s.Username,
			Media:    s.MediaFilename,
			IsVideo:  isVideo(s.MediaFilename),
			Ago:      ago(s.CreatedAt),
		})
	}
	return views
}

type messageView struct {
	Content string
	Mine    bool
	Ago     string
}

func newMessageViews(msgs []social.Message, viewerID int64) []messageView {
	views := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, messageView{
			Content: m.Content,
			Mine:    m.SenderID == viewerID,
			Ago:     ago(m.CreatedAt),
		})
	}
	return views
}
