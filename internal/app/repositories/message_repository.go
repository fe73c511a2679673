package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/alnet/mentorbridge/internal/pkg/dberrors"
	"github.com/alnet/mentorbridge/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var messageColumns = []string{"id", "sender_id", "receiver_id", "content", "status", "created_at", "updated_at"}

var unreadStatuses = []models.MessageStatus{models.MessageSent, models.MessageDelivered}

// conversationsQuery picks the latest message per counterpart and counts the
// counterpart's unread messages to $1.
const conversationsQuery = `
WITH latest AS (
	SELECT DISTINCT ON (counterpart)
		counterpart, id, sender_id, receiver_id, content, status, created_at, updated_at
	FROM (
		SELECT m.*, CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END AS counterpart
		FROM messages m
		WHERE m.sender_id = $1 OR m.receiver_id = $1
	) scoped
	ORDER BY counterpart, created_at DESC, id DESC
)
SELECT l.counterpart, l.id, l.sender_id, l.receiver_id, l.content, l.status, l.created_at, l.updated_at,
	(SELECT count(*) FROM messages u
	 WHERE u.sender_id = l.counterpart AND u.receiver_id = $1 AND u.status IN ('sent', 'delivered')) AS unread
FROM latest l
ORDER BY l.created_at DESC, l.id DESC
LIMIT $2 OFFSET $3`

const conversationsCountQuery = `
SELECT count(DISTINCT CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END)
FROM messages
WHERE sender_id = $1 OR receiver_id = $1`

const dailyVolumeQuery = `
SELECT date_trunc('day', created_at AT TIME ZONE 'UTC') AS day, count(*)
FROM messages
WHERE created_at >= $1 AND created_at <= $2
GROUP BY day
ORDER BY day`

// PgMessageRepository handles message database operations
type PgMessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new PgMessageRepository
func NewMessageRepository(db *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{db: db}
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var m models.Message
	if err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create stores a message
func (r *PgMessageRepository) Create(ctx context.Context, m *models.Message) error {
	sql, args, err := psql.Insert("messages").
		Columns(messageColumns...).
		Values(m.ID, m.SenderID, m.ReceiverID, m.Content, m.Status, m.CreatedAt, m.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create message query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrUserNotFound
		}
		if verr := checkViolation(err); verr != nil {
			return verr
		}
		logger.Error().Err(err).Msg("Error creating message")
		return fmt.Errorf("error creating message: %w", err)
	}
	return nil
}

func (r *PgMessageRepository) list(ctx context.Context, b squirrel.SelectBuilder) ([]*models.Message, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list messages query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing messages")
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	msgs, err := collectRows(rows, scanMessage)
	if err != nil {
		return nil, fmt.Errorf("error scanning messages: %w", err)
	}
	return msgs, nil
}

func conversationPredicate(a, b uuid.UUID) squirrel.Or {
	return squirrel.Or{
		squirrel.Eq{"sender_id": a, "receiver_id": b},
		squirrel.Eq{"sender_id": b, "receiver_id": a},
	}
}

// ListConversation pages through the pair's messages in ascending order
func (r *PgMessageRepository) ListConversation(ctx context.Context, a, b uuid.UUID, offset, limit int) ([]*models.Message, int64, error) {
	where := conversationPredicate(a, b)

	countSQL, countArgs, err := psql.Select("count(*)").From("messages").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count messages query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting messages: %w", err)
	}

	msgs, err := r.list(ctx, psql.Select(messageColumns...).From("messages").
		Where(where).
		OrderBy("created_at ASC", "id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)))
	if err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

// ListSince returns the user's messages newer than since
func (r *PgMessageRepository) ListSince(ctx context.Context, userID uuid.UUID, with *uuid.UUID, since time.Time, limit int) ([]*models.Message, error) {
	b := psql.Select(messageColumns...).From("messages").Where(squirrel.Gt{"created_at": since})
	if with != nil {
		b = b.Where(conversationPredicate(userID, *with))
	} else {
		b = b.Where(squirrel.Or{squirrel.Eq{"sender_id": userID}, squirrel.Eq{"receiver_id": userID}})
	}
	return r.list(ctx, b.OrderBy("created_at ASC", "id ASC").Limit(uint64(limit)))
}

// ListConversations returns the user's inbox
func (r *PgMessageRepository) ListConversations(ctx context.Context, userID uuid.UUID, offset, limit int) ([]models.ConversationSummary, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, conversationsCountQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting conversations: %w", err)
	}
	if total == 0 {
		return []models.ConversationSummary{}, 0, nil
	}

	rows, err := r.db.Query(ctx, conversationsQuery, userID, limit, offset)
	if err != nil {
		logger.Error().Err(err).Str("userID", userID.String()).Msg("Error listing conversations")
		return nil, 0, fmt.Errorf("error listing conversations: %w", err)
	}
	defer rows.Close()

	summaries := []models.ConversationSummary{}
	for rows.Next() {
		var s models.ConversationSummary
		var unread int64
		m := &s.LastMessage
		if err := rows.Scan(&s.CounterpartID, &m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Status, &m.CreatedAt, &m.UpdatedAt, &unread); err != nil {
			return nil, 0, fmt.Errorf("error scanning conversation: %w", err)
		}
		s.LastActivityAt = m.CreatedAt
		s.UnreadCount = int(unread)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

// statusesBefore lists the statuses that precede `to`
func statusesBefore(to models.MessageStatus) []models.MessageStatus {
	var out []models.MessageStatus
	for _, s := range []models.MessageStatus{models.MessageSent, models.MessageDelivered, models.MessageRead} {
		if s.Rank() < to.Rank() {
			out = append(out, s)
		}
	}
	return out
}

// AdvanceStatus moves incoming messages forward, never backward
func (r *PgMessageRepository) AdvanceStatus(ctx context.Context, receiverID, senderID uuid.UUID, to models.MessageStatus) (int64, error) {
	before := statusesBefore(to)
	if len(before) == 0 {
		return 0, apperrors.ErrMessageStatusInvalid
	}

	sql, args, err := psql.Update("messages").
		Set("status", to).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"receiver_id": receiverID, "sender_id": senderID, "status": before}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build advance status query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error advancing message status")
		return 0, fmt.Errorf("error updating message status: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountUnread counts the user's incoming sent or delivered messages
func (r *PgMessageRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	sql, args, err := psql.Select("count(*)").From("messages").
		Where(squirrel.Eq{"receiver_id": userID, "status": unreadStatuses}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build unread count query: %w", err)
	}

	var n int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting unread messages: %w", err)
	}
	return n, nil
}

// CountBetween counts messages created within [from, to]
func (r *PgMessageRepository) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	sql, args, err := psql.Select("count(*)").From("messages").
		Where(squirrel.GtOrEq{"created_at": from}).
		Where(squirrel.LtOrEq{"created_at": to}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count messages query: %w", err)
	}

	var n int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting messages: %w", err)
	}
	return n, nil
}

// DailyVolume groups messages within [from, to] by UTC day
func (r *PgMessageRepository) DailyVolume(ctx context.Context, from, to time.Time) ([]models.DailyCount, error) {
	rows, err := r.db.Query(ctx, dailyVolumeQuery, from, to)
	if err != nil {
		return nil, fmt.Errorf("error loading daily message volume: %w", err)
	}
	defer rows.Close()

	var out []models.DailyCount
	for rows.Next() {
		var d models.DailyCount
		if err := rows.Scan(&d.Day, &d.Count); err != nil {
			return nil, fmt.Errorf("error scanning daily volume: %w", err)
		}
		d.Day = d.Day.UTC()
		out = append(out, d)
	}
	return out, rows.Err()
}
