package social

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// SendMessage appends a direct message from senderID to recipientID.
func (s *Service) SendMessage(ctx context.Context, senderID, recipientID int64, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if _, err := s.store.UserByID(ctx, recipientID); err != nil {
		return nil, err
	}

	m := &Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateMessage(ctx, m); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"sender_id":    senderID,
		"recipient_id": recipientID,
		"message_id":   m.ID,
	}).Debug("message sent")
	return m, nil
}

// Conversation returns every message exchanged between a and b, oldest first.
// The result does not depend on argument order.
func (s *Service) Conversation(ctx context.Context, a, b int64) ([]Message, error) {
	return s.store.Conversation(ctx, a, b)
}

// ConversationPartners lists users that exchanged at least one message with userID.
func (s *Service) ConversationPartners(ctx context.Context, userID int64) ([]User, error) {
	return s.store.ConversationPartners(ctx, userID)
}
