package memory

import (
	"context"
	"sort"
	"time"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/google/uuid"
)

// MessageRepository keeps messages in memory, in insertion order
type MessageRepository struct {
	s *store
}

func ascending(msgs []*models.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		}
		return msgs[i].ID.String() < msgs[j].ID.String()
	})
}

func unread(m *models.Message) bool {
	return m.Status == models.MessageSent || m.Status == models.MessageDelivered
}

// Create stores a message
func (r *MessageRepository) Create(_ context.Context, msg *models.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[msg.SenderID]; !ok {
		return apperrors.ErrUserNotFound
	}
	if _, ok := r.s.users[msg.ReceiverID]; !ok {
		return apperrors.ErrUserNotFound
	}
	r.s.messages = append(r.s.messages, cloneOf(msg))
	return nil
}

// ListConversation pages through the pair's messages in ascending order
func (r *MessageRepository) ListConversation(_ context.Context, a, b uuid.UUID, offset, limit int) ([]*models.Message, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matches := []*models.Message{}
	for _, m := range r.s.messages {
		if m.Between(a, b) {
			matches = append(matches, cloneOf(m))
		}
	}
	ascending(matches)
	return page(matches, offset, limit), int64(len(matches)), nil
}

// ListSince returns the user's messages created after since
func (r *MessageRepository) ListSince(_ context.Context, userID uuid.UUID, with *uuid.UUID, since time.Time, limit int) ([]*models.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matches := []*models.Message{}
	for _, m := range r.s.messages {
		if !m.CreatedAt.After(since) {
			continue
		}
		if with != nil {
			if !m.Between(userID, *with) {
				continue
			}
		} else if m.SenderID != userID && m.ReceiverID != userID {
			continue
		}
		matches = append(matches, cloneOf(m))
	}
	ascending(matches)
	return page(matches, 0, limit), nil
}

// ListConversations returns one summary per counterpart, most recent first
func (r *MessageRepository) ListConversations(_ context.Context, userID uuid.UUID, offset, limit int) ([]models.ConversationSummary, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byCounterpart := make(map[uuid.UUID]*models.ConversationSummary)
	for _, m := range r.s.messages {
		var counterpart uuid.UUID
		switch userID {
		case m.SenderID:
			counterpart = m.ReceiverID
		case m.ReceiverID:
			counterpart = m.SenderID
		default:
			continue
		}

		s, ok := byCounterpart[counterpart]
		if !ok {
			s = &models.ConversationSummary{CounterpartID: counterpart}
			byCounterpart[counterpart] = s
		}
		last := s.LastMessage
		if !ok || m.CreatedAt.After(last.CreatedAt) ||
			(m.CreatedAt.Equal(last.CreatedAt) && m.ID.String() > last.ID.String()) {
			s.LastMessage = *m
			s.LastActivityAt = m.CreatedAt
		}
		if m.ReceiverID == userID && unread(m) {
			s.UnreadCount++
		}
	}

	summaries := make([]models.ConversationSummary, 0, len(byCounterpart))
	for _, s := range byCounterpart {
		summaries = append(summaries, *s)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].LastMessage, summaries[j].LastMessage
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() > b.ID.String()
	})
	return page(summaries, offset, limit), int64(len(summaries)), nil
}

// AdvanceStatus moves messages from sender to receiver forward to `to`
func (r *MessageRepository) AdvanceStatus(_ context.Context, receiverID, senderID uuid.UUID, to models.MessageStatus) (int64, error) {
	if to.Rank() <= models.MessageSent.Rank() {
		return 0, apperrors.ErrMessageStatusInvalid
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	var n int64
	for _, m := range r.s.messages {
		if m.ReceiverID == receiverID && m.SenderID == senderID && m.Status.Rank() < to.Rank() {
			m.Status = to
			m.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

// CountUnread counts the user's incoming sent or delivered messages
func (r *MessageRepository) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, m := range r.s.messages {
		if m.ReceiverID == userID && unread(m) {
			n++
		}
	}
	return n, nil
}

// CountBetween counts messages created within [from, to]
func (r *MessageRepository) CountBetween(_ context.Context, from, to time.Time) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, m := range r.s.messages {
		if inRange(m.CreatedAt, from, to) {
			n++
		}
	}
	return n, nil
}

// DailyVolume groups messages within [from, to] by UTC day
func (r *MessageRepository) DailyVolume(_ context.Context, from, to time.Time) ([]models.DailyCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[time.Time]int64)
	for _, m := range r.s.messages {
		if inRange(m.CreatedAt, from, to) {
			counts[m.CreatedAt.UTC().Truncate(24*time.Hour)]++
		}
	}

	out := make([]models.DailyCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, models.DailyCount{Day: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}
