package models

import "time"

const (
	RoleStudent = "student"
	RoleAlumni  = "alumni"
	RoleAdmin   = "admin"
)

func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleAlumni || role == RoleAdmin
}

type User struct {
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	Approved       bool      `json:"approved"`
	GraduationYear int       `json:"graduation_year,omitempty"`
	Company        string    `json:"company,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Job struct {
	JobID       string    `json:"job_id"`
	AuthorID    string    `json:"author_id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	ApplyURL    string    `json:"apply_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Blog struct {
	BlogID    string    `json:"blog_id"`
	AuthorID  string    `json:"author_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Workshop struct {
	WorkshopID  string    `json:"workshop_id"`
	HostID      string    `json:"host_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
	MeetingURL  string    `json:"meeting_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Announcement struct {
	AnnouncementID string    `json:"announcement_id"`
	AuthorID       string    `json:"author_id"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Feedback struct {
	FeedbackID string    `json:"feedback_id"`
	AuthorID   string    `json:"author_id"`
	Subject    string    `json:"subject"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

type MentorshipProgram struct {
	ProgramID   string    `json:"program_id"`
	MentorID    string    `json:"mentor_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Capacity    int       `json:"capacity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const (
	MentorshipPending  = "pending"
	MentorshipAccepted = "accepted"
	MentorshipDeclined = "declined"
)

// Mentorship is a student's request to join a mentorship program.
type Mentorship struct {
	MentorshipID string    `json:"mentorship_id"`
	ProgramID    string    `json:"program_id"`
	StudentID    string    `json:"student_id"`
	Message      string    `json:"message,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ChatRoom struct {
	RoomID    string    `json:"room_id"`
	Name      string    `json:"name,omitempty"`
	MemberIDs []string  `json:"member_ids"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatMessage struct {
	MessageID string     `json:"message_id"`
	RoomID    string     `json:"room_id"`
	SenderID  string     `json:"sender_id"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}
