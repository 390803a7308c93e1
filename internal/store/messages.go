package store

import (
	"context"

	"minisocial/internal/social"
)

func (s *Store) CreateMessage(ctx context.Context, m *social.Message) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (sender_id, recipient_id, content, created_at) VALUES (?, ?, ?, ?)`,
		m.SenderID, m.RecipientID, m.Content, stamp(m.CreatedAt))
	if err != nil {
		return wrap("create message", err)
	}
	m.ID, err = res.LastInsertId()
	return wrap("create message", err)
}

// Conversation returns the messages between a and b in either direction,
// ordered by time with insertion order breaking ties.
func (s *Store) Conversation(ctx context.Context, a, b int64) ([]social.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_id, recipient_id, content, created_at
		FROM messages
		WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
		ORDER BY created_at ASC, id ASC`, a, b, b, a)
	if err != nil {
		return nil, wrap("conversation", err)
	}
	defer rows.Close()

	var msgs []social.Message
	for rows.Next() {
		var (
			m  social.Message
			ts int64
		)
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &ts); err != nil {
			return nil, wrap("conversation", err)
		}
		m.CreatedAt = fromStamp(ts)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("conversation", err)
	}
	return msgs, nil
}

func (s *Store) ConversationPartners(ctx context.Context, userID int64) ([]social.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id IN (
			SELECT recipient_id FROM messages WHERE sender_id = ?
			UNION
			SELECT sender_id FROM messages WHERE recipient_id = ?
		)
		ORDER BY username`, userID, userID)
	if err != nil {
		return nil, wrap("conversation partners", err)
	}
	defer rows.Close()

	var users []social.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrap("conversation partners", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("conversation partners", err)
	}
	return users, nil
}
