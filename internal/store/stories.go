package store

import (
	"context"
	"database/sql"
	"time"

	"minisocial/internal/social"
)

func (s *Store) CreateStory(ctx context.Context, st *social.Story) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO stories (user_id, media_filename, created_at) VALUES (?, ?, ?)`,
		st.UserID, st.MediaFilename, stamp(st.CreatedAt))
	if err != nil {
		return wrap("create story", err)
	}
	st.ID, err = res.LastInsertId()
	return wrap("create story", err)
}

func (s *Store) StoriesSince(ctx context.Context, since time.Time) ([]social.StoryView, error) {
	return queryStories(ctx, s.db, since)
}

func queryStories(ctx context.Context, q querier, since time.Time) ([]social.StoryView, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT s.id, s.user_id, s.media_filename, s.created_at, u.username, u.profile_picture
		FROM stories s
		JOIN users u ON u.id = s.user_id
		WHERE s.created_at > ?
		ORDER BY s.created_at DESC, s.id DESC`, stamp(since))
	if err != nil {
		return nil, wrap("list stories", err)
	}
	defer rows.Close()

	var stories []social.StoryView
	for rows.Next() {
		var (
			sv social.StoryView
			ts int64
		)
		if err := rows.Scan(&sv.ID, &sv.UserID, &sv.MediaFilename, &ts, &sv.Username, &sv.ProfilePicture); err != nil {
			return nil, wrap("list stories", err)
		}
		sv.CreatedAt = fromStamp(ts)
		stories = append(stories, sv)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list stories", err)
	}
	return stories, nil
}

func (s *Store) DeleteStoriesAtOrBefore(ctx context.Context, cutoff time.Time) ([]social.Story, error) {
	var purged []social.Story
	err := s.withTx(ctx, "delete stories", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT id, user_id, media_filename, created_at FROM stories WHERE created_at <= ? ORDER BY id`,
			stamp(cutoff))
		if err != nil {
			return wrap("delete stories", err)
		}
		for rows.Next() {
			var (
				st social.Story
				ts int64
			)
			if err := rows.Scan(&st.ID, &st.UserID, &st.MediaFilename, &ts); err != nil {
				rows.Close()
				return wrap("delete stories", err)
			}
			st.CreatedAt = fromStamp(ts)
			purged = append(purged, st)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return wrap("delete stories", err)
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM stories WHERE created_at <= ?`, stamp(cutoff))
		return wrap("delete stories", err)
	})
	if err != nil {
		return nil, err
	}
	return purged, nil
}
