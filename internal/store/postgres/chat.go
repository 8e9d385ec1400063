package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saurabhraj25aug2004/alumni-association-website/internal/models"
	"github.com/saurabhraj25aug2004/alumni-association-website/internal/store"
)

func (s *Store) CreateRoom(ctx context.Context, input store.CreateRoomInput) (models.ChatRoom, error) {
	room := models.ChatRoom{
		RoomID:    uuid.NewString(),
		Name:      input.Name,
		MemberIDs: input.MemberIDs,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.ChatRoom{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO chat_rooms (room_id, name, created_at)
		VALUES ($1, $2, $3)
	`, room.RoomID, room.Name, room.CreatedAt)
	if err != nil {
		return models.ChatRoom{}, err
	}
	for _, memberID := range input.MemberIDs {
		_, err = tx.Exec(ctx, `
			INSERT INTO chat_members (room_id, user_id)
			VALUES ($1, $2)
		`, room.RoomID, memberID)
		if err != nil {
			return models.ChatRoom{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return models.ChatRoom{}, err
	}
	return room, nil
}

func (s *Store) ListRooms(ctx context.Context, userID string) ([]models.ChatRoom, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.room_id, r.name, r.created_at
		FROM chat_rooms r
		JOIN chat_members m ON m.room_id = r.room_id
		WHERE m.user_id = $1
		ORDER BY r.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []models.ChatRoom
	for rows.Next() {
		var room models.ChatRoom
		if err := rows.Scan(&room.RoomID, &room.Name, &room.CreatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range rooms {
		members, err := s.roomMembers(ctx, rooms[i].RoomID)
		if err != nil {
			return nil, err
		}
		rooms[i].MemberIDs = members
	}
	return rooms, nil
}

func (s *Store) roomMembers(ctx context.Context, roomID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id FROM chat_members WHERE room_id = $1
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		members = append(members, userID)
	}
	return members, rows.Err()
}

func (s *Store) IsRoomMember(ctx context.Context, roomID, userID string) (bool, error) {
	var exists bool
	row := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM chat_members WHERE room_id = $1 AND user_id = $2)
	`, roomID, userID)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Store) ListMessages(ctx context.Context, roomID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT message_id, room_id, sender_id, body, created_at, read_at
		FROM chat_messages
		WHERE room_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var message models.ChatMessage
		if err := rows.Scan(&message.MessageID, &message.RoomID, &message.SenderID, &message.Body, &message.CreatedAt, &message.ReadAt); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

func (s *Store) CreateMessage(ctx context.Context, input store.CreateMessageInput) (models.ChatMessage, error) {
	message := models.ChatMessage{
		MessageID: uuid.NewString(),
		RoomID:    input.RoomID,
		SenderID:  input.SenderID,
		Body:      input.Body,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO chat_messages (message_id, room_id, sender_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, message.MessageID, message.RoomID, message.SenderID, message.Body, message.CreatedAt)
	if err != nil {
		return models.ChatMessage{}, err
	}
	return message, nil
}

func (s *Store) MarkRead(ctx context.Context, roomID, readerID string, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE chat_messages
		SET read_at = $3
		WHERE room_id = $1 AND sender_id <> $2 AND read_at IS NULL
	`, roomID, readerID, at)
	return err
}
