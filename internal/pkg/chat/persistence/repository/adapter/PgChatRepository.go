package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "mentorchat/internal/pkg/chat/application/domain"
	repository "mentorchat/internal/pkg/chat/persistence/repository/port"
)

// PgChatRepository implements the chat repository port on Postgres.
//
// Schema (schema "chat"):
//
//	app_user(id uuid pk, display_name text, role text)
//	conversation(id uuid pk, mentee_id uuid, mentor_id uuid,
//	             last_message_content text, last_message_sender_id uuid,
//	             last_message_at timestamptz, updated_at timestamptz,
//	             created_at timestamptz, unique(mentee_id, mentor_id))
//	message(id uuid pk, conversation_id uuid, sender_id uuid,
//	        content text, created_at timestamptz)
type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

var _ repository.ChatRepository = (*PgChatRepository)(nil)

var ErrNotFound = errors.New("chat repository: not found")

const conversationColumns = `
	c.id::text, c.last_message_content, c.last_message_sender_id::text, c.last_message_at, c.updated_at,
	me.id::text, me.display_name, me.role,
	mo.id::text, mo.display_name, mo.role`

const conversationJoins = `
	JOIN chat.app_user me ON me.id = c.mentee_id
	JOIN chat.app_user mo ON mo.id = c.mentor_id`

func (r *PgChatRepository) CreateConversation(ctx context.Context, menteeID string, mentorID string) (*chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}

	// The no-op DO UPDATE makes RETURNING yield the existing row on conflict,
	// so a second create for the same pair hands back the same conversation.
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat.conversation (mentee_id, mentor_id, created_at, updated_at)
		VALUES ($1::uuid, $2::uuid, now(), now())
		ON CONFLICT (mentee_id, mentor_id) DO UPDATE SET mentee_id = EXCLUDED.mentee_id
		RETURNING id::text
	`, menteeID, mentorID).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	conv, err := r.getConversationRow(ctx, id)
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (r *PgChatRepository) GetConversationsByUser(ctx context.Context, userID string) ([]chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+conversationColumns+`
		FROM chat.conversation c`+conversationJoins+`
		WHERE c.mentee_id = $1::uuid OR c.mentor_id = $1::uuid
		ORDER BY c.updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []chat.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, *conv)
	}
	return convs, rows.Err()
}

func (r *PgChatRepository) GetConversation(ctx context.Context, conversationID string) (*chat.Conversation, []chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, nil, errors.New("PgChatRepository: nil pool")
	}

	conv, err := r.getConversationRow(ctx, conversationID)
	if err != nil {
		return nil, nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT m.id::text, m.conversation_id::text, m.content, m.created_at,
		       u.id::text, u.display_name, u.role
		FROM chat.message m
		JOIN chat.app_user u ON u.id = m.sender_id
		WHERE m.conversation_id = $1::uuid
		ORDER BY m.created_at ASC
	`, conversationID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Content, &m.CreatedAt,
			&m.Sender.ID, &m.Sender.DisplayName, &m.Sender.Role); err != nil {
			return nil, nil, err
		}
		msgs = append(msgs, m)
	}
	if rows.Err() != nil {
		return nil, nil, rows.Err()
	}
	return conv, msgs, nil
}

func (r *PgChatRepository) IsParticipant(ctx context.Context, conversationID string, userID string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgChatRepository: nil pool")
	}
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM chat.conversation
			WHERE id = $1::uuid AND (mentee_id = $2::uuid OR mentor_id = $2::uuid)
		)
	`, conversationID, userID).Scan(&ok)
	return ok, err
}

func (r *PgChatRepository) SaveMessage(ctx context.Context, m chat.Message) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgChatRepository: nil pool")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO chat.message (conversation_id, sender_id, content, created_at)
		VALUES ($1::uuid, $2::uuid, $3, $4)
		RETURNING id::text
	`, m.ConversationID, m.Sender.ID, m.Content, m.CreatedAt).Scan(&id)
	if err != nil {
		return "", err
	}

	_, err = tx.Exec(ctx, `
		UPDATE chat.conversation
		SET last_message_content = $2,
		    last_message_sender_id = $3::uuid,
		    last_message_at = $4,
		    updated_at = $4
		WHERE id = $1::uuid
	`, m.ConversationID, m.Content, m.Sender.ID, m.CreatedAt)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (r *PgChatRepository) RefreshSummary(ctx context.Context, conversationID string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	// No-op when the conversation has no messages yet.
	_, err := r.pool.Exec(ctx, `
		UPDATE chat.conversation c
		SET last_message_content = m.content,
		    last_message_sender_id = m.sender_id,
		    last_message_at = m.created_at,
		    updated_at = GREATEST(c.updated_at, m.created_at)
		FROM (
			SELECT content, sender_id, created_at
			FROM chat.message
			WHERE conversation_id = $1::uuid
			ORDER BY created_at DESC
			LIMIT 1
		) m
		WHERE c.id = $1::uuid
	`, conversationID)
	return err
}

func (r *PgChatRepository) GetUser(ctx context.Context, userID string) (*chat.User, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	var u chat.User
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, display_name, role FROM chat.app_user WHERE id = $1::uuid
	`, userID).Scan(&u.ID, &u.DisplayName, &u.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PgChatRepository) ListUsersByRole(ctx context.Context, role chat.Role) ([]chat.User, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, display_name, role FROM chat.app_user
		WHERE role = $1
		ORDER BY display_name ASC
	`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []chat.User
	for rows.Next() {
		var u chat.User
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PgChatRepository) getConversationRow(ctx context.Context, id string) (*chat.Conversation, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+`
		FROM chat.conversation c`+conversationJoins+`
		WHERE c.id = $1::uuid
	`, id)
	conv, err := scanConversation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return conv, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*chat.Conversation, error) {
	var (
		conv     chat.Conversation
		content  *string
		senderID *string
		sentAt   *time.Time
	)
	if err := row.Scan(
		&conv.ID, &content, &senderID, &sentAt, &conv.UpdatedAt,
		&conv.Participants[0].ID, &conv.Participants[0].DisplayName, &conv.Participants[0].Role,
		&conv.Participants[1].ID, &conv.Participants[1].DisplayName, &conv.Participants[1].Role,
	); err != nil {
		return nil, err
	}
	if content != nil && senderID != nil && sentAt != nil {
		conv.LastMessage = &chat.MessageSummary{
			Content:   *content,
			SenderID:  *senderID,
			CreatedAt: *sentAt,
		}
	}
	return &conv, nil
}
