package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/saurabhraj25aug2004/alumni-association-website/internal/event"
	"github.com/saurabhraj25aug2004/alumni-association-website/internal/models"
	"github.com/saurabhraj25aug2004/alumni-association-website/internal/store"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (s *Store) Register(ctx context.Context, input store.RegisterInput) (store.AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return store.AuthResult{}, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return store.AuthResult{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	user := models.User{
		UserID:         uuid.NewString(),
		Name:           input.Name,
		Email:          strings.ToLower(input.Email),
		Role:           input.Role,
		Approved:       false,
		GraduationYear: input.GraduationYear,
		CreatedAt:      time.Now().UTC(),
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO users (user_id, name, email, password_hash, role, approved, graduation_year, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, user.UserID, user.Name, user.Email, string(hash), user.Role, user.Approved, user.GraduationYear, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.AuthResult{}, store.ErrEmailTaken
		}
		return store.AuthResult{}, err
	}

	session, err := insertSession(ctx, tx, user.UserID, sessionExpiry(input.SessionTTL))
	if err != nil {
		return store.AuthResult{}, err
	}
	if err := insertOutboxEvent(ctx, tx, event.EntityChannel(event.EntityUsers, event.LifecycleCreated), user.UserID); err != nil {
		return store.AuthResult{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return store.AuthResult{}, err
	}
	return store.AuthResult{User: user, Session: session}, nil
}

func (s *Store) Login(ctx context.Context, input store.LoginInput) (store.AuthResult, error) {
	var user models.User
	var passwordHash string
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, name, email, password_hash, role, approved, graduation_year, company, bio, avatar_url, created_at
		FROM users
		WHERE lower(email) = lower($1)
	`, input.Email)
	if err := scanUserWithHash(row, &user, &passwordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.AuthResult{}, store.ErrInvalidCredentials
		}
		return store.AuthResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(input.Password)); err != nil {
		return store.AuthResult{}, store.ErrInvalidCredentials
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return store.AuthResult{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	session, err := insertSession(ctx, tx, user.UserID, sessionExpiry(input.SessionTTL))
	if err != nil {
		return store.AuthResult{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return store.AuthResult{}, err
	}
	return store.AuthResult{User: user, Session: session}, nil
}

func (s *Store) GetSession(ctx context.Context, token string) (models.Session, models.User, error) {
	var session models.Session
	var user models.User
	row := s.pool.QueryRow(ctx, `
		SELECT s.token, s.user_id, s.expires_at,
		       u.user_id, u.name, u.email, u.role, u.approved, u.graduation_year, u.company, u.bio, u.avatar_url, u.created_at
		FROM sessions s
		JOIN users u ON u.user_id = s.user_id
		WHERE s.token = $1 AND s.expires_at > NOW()
	`, token)
	err := row.Scan(
		&session.Token, &session.UserID, &session.ExpiresAt,
		&user.UserID, &user.Name, &user.Email, &user.Role, &user.Approved,
		&user.GraduationYear, &user.Company, &user.Bio, &user.AvatarURL, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, models.User{}, store.ErrSessionNotFound
		}
		return models.Session{}, models.User{}, err
	}
	return session, user, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

func (s *Store) UpdateProfile(ctx context.Context, input store.UpdateProfileInput) (models.User, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.User{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var user models.User
	row := tx.QueryRow(ctx, `
		UPDATE users
		SET name = $2, graduation_year = $3, company = $4, bio = $5, avatar_url = $6
		WHERE user_id = $1
		RETURNING user_id, name, email, role, approved, graduation_year, company, bio, avatar_url, created_at
	`, input.UserID, input.Name, input.GraduationYear, input.Company, input.Bio, input.AvatarURL)
	if err := scanUser(row, &user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrNotFound
		}
		return models.User{}, err
	}
	if err := insertOutboxEvent(ctx, tx, event.EntityChannel(event.EntityUsers, event.LifecycleUpdated), user.UserID); err != nil {
		return models.User{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, name, email, role, approved, graduation_year, company, bio, avatar_url, created_at
		FROM users
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := scanUser(rows, &user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) ApproveUser(ctx context.Context, userID string) (models.User, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.User{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var user models.User
	row := tx.QueryRow(ctx, `
		UPDATE users
		SET approved = TRUE
		WHERE user_id = $1
		RETURNING user_id, name, email, role, approved, graduation_year, company, bio, avatar_url, created_at
	`, userID)
	if err := scanUser(row, &user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrNotFound
		}
		return models.User{}, err
	}
	if err := insertOutboxEvent(ctx, tx, event.EntityChannel(event.EntityUsers, event.LifecycleUpdated), user.UserID); err != nil {
		return models.User{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	if err := insertOutboxEvent(ctx, tx, event.EntityChannel(event.EntityUsers, event.LifecycleDeleted), userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, user *models.User) error {
	return row.Scan(
		&user.UserID, &user.Name, &user.Email, &user.Role, &user.Approved,
		&user.GraduationYear, &user.Company, &user.Bio, &user.AvatarURL, &user.CreatedAt,
	)
}

func scanUserWithHash(row rowScanner, user *models.User, hash *string) error {
	return row.Scan(
		&user.UserID, &user.Name, &user.Email, hash, &user.Role, &user.Approved,
		&user.GraduationYear, &user.Company, &user.Bio, &user.AvatarURL, &user.CreatedAt,
	)
}

func sessionExpiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return time.Now().UTC().Add(ttl)
}

func insertSession(ctx context.Context, tx pgx.Tx, userID string, expiresAt time.Time) (models.Session, error) {
	token := uuid.NewString()
	_, err := tx.Exec(ctx, `
		INSERT INTO sessions (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, token, userID, expiresAt)
	if err != nil {
		return models.Session{}, err
	}
	return models.Session{Token: token, UserID: userID, ExpiresAt: expiresAt}, nil
}

func insertOutboxEvent(ctx context.Context, tx pgx.Tx, channel event.Channel, recordID string) error {
	payload, err := json.Marshal(event.EntityPayload{ID: recordID})
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO outbox_events (event_id, channel, payload_json, created_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.NewString(), string(channel), payload, time.Now().UTC())
	return err
}
