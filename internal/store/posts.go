package store

import (
	"context"
	"database/sql"
	"time"

	"minisocial/internal/social"
)

// feedPostQuery joins posts with their author and computes the like count and
// the viewer's like/save flags in one statement, so all three come from the
// same snapshot. The two placeholders are the viewer id.
const feedPostQuery = `
	SELECT p.id, p.user_id, p.content, p.media_filename, p.created_at,
		u.username, u.profile_picture,
		(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id),
		EXISTS (SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.user_id = ?),
		EXISTS (SELECT 1 FROM saved_posts sp WHERE sp.post_id = p.id AND sp.user_id = ?)
	FROM posts p
	JOIN users u ON u.id = p.user_id`

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryFeedPosts(ctx context.Context, q querier, op, query string, args ...any) ([]social.FeedPost, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var posts []social.FeedPost
	for rows.Next() {
		var (
			fp social.FeedPost
			ts int64
		)
		if err := rows.Scan(&fp.ID, &fp.UserID, &fp.Content, &fp.MediaFilename, &ts,
			&fp.Username, &fp.ProfilePicture,
			&fp.LikeCount, &fp.ViewerHasLiked, &fp.ViewerHasSaved); err != nil {
			return nil, wrap(op, err)
		}
		fp.CreatedAt = fromStamp(ts)
		posts = append(posts, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return posts, nil
}

func (s *Store) CreatePost(ctx context.Context, p *social.Post) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (user_id, content, media_filename, created_at) VALUES (?, ?, ?, ?)`,
		p.UserID, p.Content, p.MediaFilename, stamp(p.CreatedAt))
	if err != nil {
		return wrap("create post", err)
	}
	p.ID, err = res.LastInsertId()
	return wrap("create post", err)
}

func (s *Store) PostByID(ctx context.Context, id int64) (*social.Post, error) {
	var (
		p  social.Post
		ts int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, content, media_filename, created_at FROM posts WHERE id = ?`, id).
		Scan(&p.ID, &p.UserID, &p.Content, &p.MediaFilename, &ts)
	if err != nil {
		return nil, wrap("post by id", err)
	}
	p.CreatedAt = fromStamp(ts)
	return &p, nil
}

// DeletePost removes the post and the likes and saves pointing at it.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	return s.withTx(ctx, "delete post", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE post_id = ?`, id); err != nil {
			return wrap("delete post likes", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM saved_posts WHERE post_id = ?`, id); err != nil {
			return wrap("delete post saves", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
		if err != nil {
			return wrap("delete post", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return wrap("delete post", err)
		}
		if n == 0 {
			return social.ErrNotFound
		}
		return nil
	})
}

func (s *Store) PostsByUser(ctx context.Context, viewerID, authorID int64) ([]social.FeedPost, error) {
	return queryFeedPosts(ctx, s.db, "posts by user",
		feedPostQuery+` WHERE p.user_id = ? ORDER BY p.created_at DESC, p.id DESC`,
		viewerID, viewerID, authorID)
}

// SavedPosts lists what userID saved, most recently saved first.
func (s *Store) SavedPosts(ctx context.Context, userID int64) ([]social.FeedPost, error) {
	return queryFeedPosts(ctx, s.db, "saved posts",
		feedPostQuery+` JOIN saved_posts mine ON mine.post_id = p.id
		WHERE mine.user_id = ? ORDER BY mine.created_at DESC, p.id DESC`,
		userID, userID, userID)
}

func (s *Store) ReadFeed(ctx context.Context, viewerID int64, storiesSince time.Time) ([]social.StoryView, []social.FeedPost, error) {
	var (
		stories []social.StoryView
		posts   []social.FeedPost
	)
	err := s.withTx(ctx, "read feed", func(tx *sql.Tx) error {
		var err error
		if stories, err = queryStories(ctx, tx, storiesSince); err != nil {
			return err
		}
		posts, err = queryFeedPosts(ctx, tx, "read feed",
			feedPostQuery+` ORDER BY p.created_at DESC, p.id DESC`,
			viewerID, viewerID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return stories, posts, nil
}

func (s *Store) ToggleLike(ctx context.Context, postID, userID int64) (bool, error) {
	return s.toggle(ctx, "likes", postID, userID)
}

func (s *Store) ToggleSave(ctx context.Context, postID, userID int64) (bool, error) {
	return s.toggle(ctx, "saved_posts", postID, userID)
}

// toggle deletes the (post, user) marker if present and inserts it otherwise.
// The primary key on (post_id, user_id) turns a racing second insert into a
// no-op; in that case the row's existence is read back rather than assumed.
func (s *Store) toggle(ctx context.Context, table string, postID, userID int64) (bool, error) {
	op := "toggle " + table
	var present bool
	err := s.withTx(ctx, op, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE post_id = ? AND user_id = ?`, postID, userID)
		if err != nil {
			return wrap(op, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return wrap(op, err)
		}
		if n > 0 {
			present = false
			return nil
		}

		res, err = tx.ExecContext(ctx,
			`INSERT INTO `+table+` (post_id, user_id, created_at) VALUES (?, ?, ?)
			ON CONFLICT (post_id, user_id) DO NOTHING`,
			postID, userID, stamp(time.Now()))
		if isForeignKeyViolation(err) {
			return social.ErrNotFound
		}
		if err != nil {
			return wrap(op, err)
		}
		if n, err = res.RowsAffected(); err != nil {
			return wrap(op, err)
		}
		if n > 0 {
			present = true
			return nil
		}

		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE post_id = ? AND user_id = ?)`,
			postID, userID).Scan(&present)
		return wrap(op, err)
	})
	return present, err
}
