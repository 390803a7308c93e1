package social

import "time"

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// StoryWindow is how long a story stays visible after it was posted.
const StoryWindow = 24 * time.Hour

// User represents a registered user.
type User struct {
	ID             int64
	Username       string
	PasswordHash   string
	ProfilePicture string
	Bio            string
	Theme          string
	CreatedAt      time.Time
}

// Post is a text and/or media entry owned by one user.
type Post struct {
	ID            int64
	UserID        int64
	Content       string
	MediaFilename string
	CreatedAt     time.Time
}

// FeedPost is a post joined with its author and the viewer's like/save state.
type FeedPost struct {
	Post
	Username       string
	ProfilePicture string
	LikeCount      int
	ViewerHasLiked bool
	ViewerHasSaved bool
}

// Story is a media entry visible for StoryWindow after creation.
type Story struct {
	ID            int64
	UserID        int64
	MediaFilename string
	CreatedAt     time.Time
}

// Active reports whether the story is still visible at now.
func (s Story) Active(now time.Time) bool {
	return now.Sub(s.CreatedAt) < StoryWindow
}

// StoryView is a story joined with its author.
type StoryView struct {
	Story
	Username       string
	ProfilePicture string
}

// Message is an immutable direct message.
type Message struct {
	ID          int64
	SenderID    int64
	RecipientID int64
	Content     string
	CreatedAt   time.Time
}

type Feed struct {
	Stories []StoryView
	Posts   []FeedPost
}

type Profile struct {
	User       *User
	Posts      []FeedPost
	SavedPosts []FeedPost
	IsOwner    bool
}

// ProfileUpdate holds the mutable user fields; nil fields are left unchanged.
type ProfileUpdate struct {
	Bio            *string
	ProfilePicture *string
	Theme          *string
}

// ToggleState is the presence of a like or save marker after a toggle.
type ToggleState int

const (
	Absent ToggleState = iota
	Present
)

func (s ToggleState) String() string {
	if s == Present {
		return "present"
	}
	return "absent"
}
