package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/saurabhraj25aug2004/alumni-association-website/internal/event"
	"github.com/saurabhraj25aug2004/alumni-association-website/internal/models"
)

type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	Role           string
	GraduationYear int
	SessionTTL     time.Duration
}

type LoginInput struct {
	Email      string
	Password   string
	SessionTTL time.Duration
}

type AuthResult struct {
	User    models.User
	Session models.Session
}

type UpdateProfileInput struct {
	UserID         string
	Name           string
	GraduationYear int
	Company        string
	Bio            string
	AvatarURL      string
}

// AuthStore backs login, registration, and bearer-token sessions.
type AuthStore interface {
	Register(ctx context.Context, input RegisterInput) (AuthResult, error)
	Login(ctx context.Context, input LoginInput) (AuthResult, error)
	GetSession(ctx context.Context, token string) (models.Session, models.User, error)
	DeleteSession(ctx context.Context, token string) error
	UpdateProfile(ctx context.Context, input UpdateProfileInput) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ApproveUser(ctx context.Context, userID string) (models.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

type JobInput struct {
	JobID       string
	AuthorID    string
	Title       string
	Company     string
	Location    string
	Description string
	ApplyURL    string
}

type BlogInput struct {
	BlogID   string
	AuthorID string
	Title    string
	Content  string
}

type WorkshopInput struct {
	WorkshopID  string
	HostID      string
	Title       string
	Description string
	ScheduledAt time.Time
	MeetingURL  string
}

type AnnouncementInput struct {
	AnnouncementID string
	AuthorID       string
	Title          string
	Body           string
}

type FeedbackInput struct {
	AuthorID string
	Subject  string
	Message  string
}

type ProgramInput struct {
	ProgramID   string
	MentorID    string
	Title       string
	Description string
	Capacity    int
}

type MentorshipInput struct {
	ProgramID string
	StudentID string
	Message   string
}

// CommunityStore backs the entity CRUD surface. Every mutation writes the
// row and its lifecycle outbox event in one transaction.
type CommunityStore interface {
	CreateJob(ctx context.Context, input JobInput) (models.Job, error)
	GetJob(ctx context.Context, jobID string) (models.Job, error)
	ListJobs(ctx context.Context) ([]models.Job, error)
	UpdateJob(ctx context.Context, input JobInput) (models.Job, error)
	DeleteJob(ctx context.Context, jobID string) error

	CreateBlog(ctx context.Context, input BlogInput) (models.Blog, error)
	GetBlog(ctx context.Context, blogID string) (models.Blog, error)
	ListBlogs(ctx context.Context) ([]models.Blog, error)
	UpdateBlog(ctx context.Context, input BlogInput) (models.Blog, error)
	DeleteBlog(ctx context.Context, blogID string) error

	CreateWorkshop(ctx context.Context, input WorkshopInput) (models.Workshop, error)
	GetWorkshop(ctx context.Context, workshopID string) (models.Workshop, error)
	ListWorkshops(ctx context.Context) ([]models.Workshop, error)
	UpdateWorkshop(ctx context.Context, input WorkshopInput) (models.Workshop, error)
	DeleteWorkshop(ctx context.Context, workshopID string) error

	CreateAnnouncement(ctx context.Context, input AnnouncementInput) (models.Announcement, error)
	GetAnnouncement(ctx context.Context, announcementID string) (models.Announcement, error)
	ListAnnouncements(ctx context.Context) ([]models.Announcement, error)
	UpdateAnnouncement(ctx context.Context, input AnnouncementInput) (models.Announcement, error)
	DeleteAnnouncement(ctx context.Context, announcementID string) error

	CreateFeedback(ctx context.Context, input FeedbackInput) (models.Feedback, error)
	ListFeedback(ctx context.Context) ([]models.Feedback, error)

	CreateProgram(ctx context.Context, input ProgramInput) (models.MentorshipProgram, error)
	GetProgram(ctx context.Context, programID string) (models.MentorshipProgram, error)
	ListPrograms(ctx context.Context) ([]models.MentorshipProgram, error)
	UpdateProgram(ctx context.Context, input ProgramInput) (models.MentorshipProgram, error)
	DeleteProgram(ctx context.Context, programID string) error

	CreateMentorship(ctx context.Context, input MentorshipInput) (models.Mentorship, error)
	GetMentorship(ctx context.Context, mentorshipID string) (models.Mentorship, error)
	ListMentorships(ctx context.Context, userID string) ([]models.Mentorship, error)
	SetMentorshipStatus(ctx context.Context, mentorshipID, status string) (models.Mentorship, error)
}

type CreateRoomInput struct {
	Name      string
	MemberIDs []string
}

type CreateMessageInput struct {
	RoomID   string
	SenderID string
	Body     string
}

// ChatStore backs rooms and direct messages.
type ChatStore interface {
	CreateRoom(ctx context.Context, input CreateRoomInput) (models.ChatRoom, error)
	ListRooms(ctx context.Context, userID string) ([]models.ChatRoom, error)
	IsRoomMember(ctx context.Context, roomID, userID string) (bool, error)
	ListMessages(ctx context.Context, roomID string, limit int) ([]models.ChatMessage, error)
	CreateMessage(ctx context.Context, input CreateMessageInput) (models.ChatMessage, error)
	MarkRead(ctx context.Context, roomID, readerID string, at time.Time) error
}

type OutboxEvent struct {
	EventID   string          `json:"event_id"`
	Channel   event.Channel   `json:"channel"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

type Offset struct {
	LastEventTime time.Time
	LastEventID   string
}

// OutboxStore backs the relay poller checkpoint loop.
type OutboxStore interface {
	ListOutboxEvents(ctx context.Context, after Offset, limit int) ([]OutboxEvent, error)
	GetOffset(ctx context.Context) (Offset, error)
	UpdateOffset(ctx context.Context, offset Offset) error
	CleanupOutbox(ctx context.Context, before time.Time) error
}

type Store interface {
	AuthStore
	CommunityStore
	ChatStore
	OutboxStore
}
