package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/saurabhraj25aug2004/alumni-association-website/internal/models"
	"github.com/saurabhraj25aug2004/alumni-association-website/internal/store"
)

type fakeStore struct {
	registerFn   func(ctx context.Context, input store.RegisterInput) (store.AuthResult, error)
	loginFn      func(ctx context.Context, input store.LoginInput) (store.AuthResult, error)
	sessionFn    func(ctx context.Context, token string) (models.Session, models.User, error)
	createJobFn  func(ctx context.Context, input store.JobInput) (models.Job, error)
	getJobFn     func(ctx context.Context, jobID string) (models.Job, error)
	deleteJobFn  func(ctx context.Context, jobID string) error
	announceFn   func(ctx context.Context, input store.AnnouncementInput) (models.Announcement, error)
	mentorshipFn func(ctx context.Context, input store.MentorshipInput) (models.Mentorship, error)
	getProgramFn func(ctx context.Context, programID string) (models.MentorshipProgram, error)
	listUsersFn  func(ctx context.Context) ([]models.User, error)
}

func (f fakeStore) Register(ctx context.Context, input store.RegisterInput) (store.AuthResult, error) {
	if f.registerFn == nil {
		return store.AuthResult{}, nil
	}
	return f.registerFn(ctx, input)
}

func (f fakeStore) Login(ctx context.Context, input store.LoginInput) (store.AuthResult, error) {
	if f.loginFn == nil {
		return store.AuthResult{}, nil
	}
	return f.loginFn(ctx, input)
}

func (f fakeStore) GetSession(ctx context.Context, token string) (models.Session, models.User, error) {
	if f.sessionFn == nil {
		return models.Session{}, models.User{}, store.ErrSessionNotFound
	}
	return f.sessionFn(ctx, token)
}

func (f fakeStore) DeleteSession(ctx context.Context, token string) error { return nil }

func (f fakeStore) UpdateProfile(ctx context.Context, input store.UpdateProfileInput) (models.User, error) {
	return models.User{UserID: input.UserID, Name: input.Name}, nil
}

func (f fakeStore) ListUsers(ctx context.Context) ([]models.User, error) {
	if f.listUsersFn == nil {
		return nil, nil
	}
	return f.listUsersFn(ctx)
}

func (f fakeStore) ApproveUser(ctx context.Context, userID string) (models.User, error) {
	return models.User{UserID: userID, Approved: true}, nil
}

func (f fakeStore) DeleteUser(ctx context.Context, userID string) error { return nil }

func (f fakeStore) CreateJob(ctx context.Context, input store.JobInput) (models.Job, error) {
	if f.createJobFn == nil {
		return models.Job{}, nil
	}
	return f.createJobFn(ctx, input)
}

func (f fakeStore) GetJob(ctx context.Context, jobID string) (models.Job, error) {
	if f.getJobFn == nil {
		return models.Job{}, store.ErrNotFound
	}
	return f.getJobFn(ctx, jobID)
}

func (f fakeStore) ListJobs(ctx context.Context) ([]models.Job, error) { return nil, nil }

func (f fakeStore) UpdateJob(ctx context.Context, input store.JobInput) (models.Job, error) {
	return models.Job{JobID: input.JobID, Title: input.Title}, nil
}

func (f fakeStore) DeleteJob(ctx context.Context, jobID string) error {
	if f.deleteJobFn == nil {
		return nil
	}
	return f.deleteJobFn(ctx, jobID)
}

func (f fakeStore) CreateBlog(ctx context.Context, input store.BlogInput) (models.Blog, error) {
	return models.Blog{AuthorID: input.AuthorID, Title: input.Title}, nil
}

func (f fakeStore) GetBlog(ctx context.Context, blogID string) (models.Blog, error) {
	return models.Blog{}, store.ErrNotFound
}

func (f fakeStore) ListBlogs(ctx context.Context) ([]models.Blog, error) { return nil, nil }

func (f fakeStore) UpdateBlog(ctx context.Context, input store.BlogInput) (models.Blog, error) {
	return models.Blog{}, nil
}

func (f fakeStore) DeleteBlog(ctx context.Context, blogID string) error { return nil }

func (f fakeStore) CreateWorkshop(ctx context.Context, input store.WorkshopInput) (models.Workshop, error) {
	return models.Workshop{HostID: input.HostID, Title: input.Title}, nil
}

func (f fakeStore) GetWorkshop(ctx context.Context, workshopID string) (models.Workshop, error) {
	return models.Workshop{}, store.ErrNotFound
}

func (f fakeStore) ListWorkshops(ctx context.Context) ([]models.Workshop, error) { return nil, nil }

func (f fakeStore) UpdateWorkshop(ctx context.Context, input store.WorkshopInput) (models.Workshop, error) {
	return models.Workshop{}, nil
}

func (f fakeStore) DeleteWorkshop(ctx context.Context, workshopID string) error { return nil }

func (f fakeStore) CreateAnnouncement(ctx context.Context, input store.AnnouncementInput) (models.Announcement, error) {
	if f.announceFn == nil {
		return models.Announcement{}, nil
	}
	return f.announceFn(ctx, input)
}

func (f fakeStore) GetAnnouncement(ctx context.Context, announcementID string) (models.Announcement, error) {
	return models.Announcement{}, store.ErrNotFound
}

func (f fakeStore) ListAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	return nil, nil
}

func (f fakeStore) UpdateAnnouncement(ctx context.Context, input store.AnnouncementInput) (models.Announcement, error) {
	return models.Announcement{}, nil
}

func (f fakeStore) DeleteAnnouncement(ctx context.Context, announcementID string) error { return nil }

func (f fakeStore) CreateFeedback(ctx context.Context, input store.FeedbackInput) (models.Feedback, error) {
	return models.Feedback{AuthorID: input.AuthorID, Subject: input.Subject}, nil
}

func (f fakeStore) ListFeedback(ctx context.Context) ([]models.Feedback, error) { return nil, nil }

func (f fakeStore) CreateProgram(ctx context.Context, input store.ProgramInput) (models.MentorshipProgram, error) {
	return models.MentorshipProgram{MentorID: input.MentorID, Title: input.Title}, nil
}

func (f fakeStore) GetProgram(ctx context.Context, programID string) (models.MentorshipProgram, error) {
	if f.getProgramFn == nil {
		return models.MentorshipProgram{}, store.ErrNotFound
	}
	return f.getProgramFn(ctx, programID)
}

func (f fakeStore) ListPrograms(ctx context.Context) ([]models.MentorshipProgram, error) {
	return nil, nil
}

func (f fakeStore) UpdateProgram(ctx context.Context, input store.ProgramInput) (models.MentorshipProgram, error) {
	return models.MentorshipProgram{}, nil
}

func (f fakeStore) DeleteProgram(ctx context.Context, programID string) error { return nil }

func (f fakeStore) CreateMentorship(ctx context.Context, input store.MentorshipInput) (models.Mentorship, error) {
	if f.mentorshipFn == nil {
		return models.Mentorship{}, nil
	}
	return f.mentorshipFn(ctx, input)
}

func (f fakeStore) GetMentorship(ctx context.Context, mentorshipID string) (models.Mentorship, error) {
	return models.Mentorship{}, store.ErrNotFound
}

func (f fakeStore) ListMentorships(ctx context.Context, userID string) ([]models.Mentorship, error) {
	return nil, nil
}

func (f fakeStore) SetMentorshipStatus(ctx context.Context, mentorshipID, status string) (models.Mentorship, error) {
	return models.Mentorship{MentorshipID: mentorshipID, Status: status}, nil
}

func (f fakeStore) CreateRoom(ctx context.Context, input store.CreateRoomInput) (models.ChatRoom, error) {
	return models.ChatRoom{Name: input.Name, MemberIDs: input.MemberIDs}, nil
}

func (f fakeStore) ListRooms(ctx context.Context, userID string) ([]models.ChatRoom, error) {
	return nil, nil
}

func (f fakeStore) IsRoomMember(ctx context.Context, roomID, userID string) (bool, error) {
	return false, nil
}

func (f fakeStore) ListMessages(ctx context.Context, roomID string, limit int) ([]models.ChatMessage, error) {
	return nil, nil
}

func (f fakeStore) CreateMessage(ctx context.Context, input store.CreateMessageInput) (models.ChatMessage, error) {
	return models.ChatMessage{RoomID: input.RoomID, SenderID: input.SenderID, Body: input.Body}, nil
}

func (f fakeStore) MarkRead(ctx context.Context, roomID, readerID string, at time.Time) error {
	return nil
}

func (f fakeStore) ListOutboxEvents(ctx context.Context, after store.Offset, limit int) ([]store.OutboxEvent, error) {
	return nil, nil
}

func (f fakeStore) GetOffset(ctx context.Context) (store.Offset, error) { return store.Offset{}, nil }

func (f fakeStore) UpdateOffset(ctx context.Context, offset store.Offset) error { return nil }

func (f fakeStore) CleanupOutbox(ctx context.Context, before time.Time) error { return nil }

func sessionFor(user models.User) func(ctx context.Context, token string) (models.Session, models.User, error) {
	return func(ctx context.Context, token string) (models.Session, models.User, error) {
		if token != "token-1" {
			return models.Session{}, models.User{}, store.ErrSessionNotFound
		}
		return models.Session{Token: token, UserID: user.UserID, ExpiresAt: time.Now().UTC().Add(time.Hour)}, user, nil
	}
}

func doRequest(t *testing.T, st store.Store, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	NewHandler(st, Options{SessionTTL: time.Hour}).Routes().ServeHTTP(resp, req)
	return resp
}

func TestRegisterSuccess(t *testing.T) {
	st := fakeStore{
		registerFn: func(ctx context.Context, input store.RegisterInput) (store.AuthResult, error) {
			if input.Role != models.RoleStudent {
				t.Fatalf("expected student role, got %q", input.Role)
			}
			return store.AuthResult{
				User:    models.User{UserID: "user-1", Email: input.Email, Role: input.Role},
				Session: models.Session{Token: "token-1", ExpiresAt: time.Now().UTC().Add(time.Hour)},
			}, nil
		},
	}
	payload := map[string]any{
		"name":     "Asha Verma",
		"email":    "asha@example.com",
		"password": "correct-horse",
		"role":     "student",
	}
	resp := doRequest(t, st, http.MethodPost, "/api/auth/register", "", payload)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Token != "token-1" {
		t.Fatalf("expected token in response, got %q", out.Token)
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	payload := map[string]any{
		"name":     "Mallory",
		"email":    "mallory@example.com",
		"password": "correct-horse",
		"role":     "admin",
	}
	resp := doRequest(t, fakeStore{}, http.MethodPost, "/api/auth/register", "", payload)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestRegisterEmailTaken(t *testing.T) {
	st := fakeStore{
		registerFn: func(ctx context.Context, input store.RegisterInput) (store.AuthResult, error) {
			return store.AuthResult{}, store.ErrEmailTaken
		},
	}
	payload := map[string]any{
		"name":     "Asha Verma",
		"email":    "asha@example.com",
		"password": "correct-horse",
		"role":     "alumni",
	}
	resp := doRequest(t, st, http.MethodPost, "/api/auth/register", "", payload)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	st := fakeStore{
		loginFn: func(ctx context.Context, input store.LoginInput) (store.AuthResult, error) {
			return store.AuthResult{}, store.ErrInvalidCredentials
		},
	}
	payload := map[string]string{"email": "asha@example.com", "password": "wrong"}
	resp := doRequest(t, st, http.MethodPost, "/api/auth/login", "", payload)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestMeWithoutToken(t *testing.T) {
	resp := doRequest(t, fakeStore{}, http.MethodGet, "/api/auth/me", "", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestUnapprovedUserBlockedFromCommunity(t *testing.T) {
	st := fakeStore{
		sessionFn: sessionFor(models.User{UserID: "user-1", Role: models.RoleAlumni, Approved: false}),
	}
	resp := doRequest(t, st, http.MethodGet, "/api/jobs", "token-1", nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}
	var out struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Error.Code != "approval_pending" {
		t.Fatalf("expected approval_pending, got %q", out.Error.Code)
	}
}

func TestUnapprovedUserCanStillReadOwnProfile(t *testing.T) {
	st := fakeStore{
		sessionFn: sessionFor(models.User{UserID: "user-1", Role: models.RoleStudent, Approved: false}),
	}
	resp := doRequest(t, st, http.MethodGet, "/api/auth/me", "token-1", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestRolePolicy(t *testing.T) {
	jobPayload := map[string]any{"title": "Backend Engineer", "company": "Acme"}
	announcementPayload := map[string]any{"title": "Reunion", "body": "Save the date."}
	mentorshipPayload := map[string]any{"program_id": "33333333-3333-3333-3333-333333333333"}

	cases := []struct {
		name    string
		role    string
		method  string
		path    string
		payload any
		want    int
	}{
		{"student cannot post job", models.RoleStudent, http.MethodPost, "/api/jobs", jobPayload, http.StatusForbidden},
		{"alumni posts job", models.RoleAlumni, http.MethodPost, "/api/jobs", jobPayload, http.StatusCreated},
		{"admin posts job", models.RoleAdmin, http.MethodPost, "/api/jobs", jobPayload, http.StatusCreated},
		{"alumni cannot post announcement", models.RoleAlumni, http.MethodPost, "/api/announcements", announcementPayload, http.StatusForbidden},
		{"admin posts announcement", models.RoleAdmin, http.MethodPost, "/api/announcements", announcementPayload, http.StatusCreated},
		{"alumni cannot request mentorship", models.RoleAlumni, http.MethodPost, "/api/mentorships", mentorshipPayload, http.StatusForbidden},
		{"student lists users denied", models.RoleStudent, http.MethodGet, "/api/users", nil, http.StatusForbidden},
		{"admin lists users", models.RoleAdmin, http.MethodGet, "/api/users", nil, http.StatusOK},
		{"student lists feedback denied", models.RoleStudent, http.MethodGet, "/api/feedback", nil, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := fakeStore{
				sessionFn: sessionFor(models.User{UserID: "user-1", Role: tc.role, Approved: true}),
				getProgramFn: func(ctx context.Context, programID string) (models.MentorshipProgram, error) {
					return models.MentorshipProgram{ProgramID: programID, MentorID: "mentor-1"}, nil
				},
			}
			resp := doRequest(t, st, tc.method, tc.path, "token-1", tc.payload)
			if resp.Code != tc.want {
				t.Fatalf("expected status %d, got %d: %s", tc.want, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestStudentRequestsMentorship(t *testing.T) {
	st := fakeStore{
		sessionFn: sessionFor(models.User{UserID: "student-1", Role: models.RoleStudent, Approved: true}),
		getProgramFn: func(ctx context.Context, programID string) (models.MentorshipProgram, error) {
			return models.MentorshipProgram{ProgramID: programID, MentorID: "mentor-1"}, nil
		},
		mentorshipFn: func(ctx context.Context, input store.MentorshipInput) (models.Mentorship, error) {
			if input.StudentID != "student-1" {
				t.Fatalf("expected student id from session, got %q", input.StudentID)
			}
			return models.Mentorship{MentorshipID: "m-1", ProgramID: input.ProgramID, StudentID: input.StudentID, Status: models.MentorshipPending}, nil
		},
	}
	payload := map[string]any{"program_id": "33333333-3333-3333-3333-333333333333", "message": "keen to join"}
	resp := doRequest(t, st, http.MethodPost, "/api/mentorships", "token-1", payload)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestUpdateJobRequiresOwnerOrAdmin(t *testing.T) {
	getJob := func(ctx context.Context, jobID string) (models.Job, error) {
		return models.Job{JobID: jobID, AuthorID: "owner-1", Title: "Old"}, nil
	}
	payload := map[string]any{"title": "New Title", "company": "Acme"}

	st := fakeStore{
		sessionFn: sessionFor(models.User{UserID: "other-1", Role: models.RoleAlumni, Approved: true}),
		getJobFn:  getJob,
	}
	resp := doRequest(t, st, http.MethodPut, "/api/jobs/job-1", "token-1", payload)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 for non-owner, got %d", resp.Code)
	}

	st.sessionFn = sessionFor(models.User{UserID: "owner-1", Role: models.RoleAlumni, Approved: true})
	resp = doRequest(t, st, http.MethodPut, "/api/jobs/job-1", "token-1", payload)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for owner, got %d", resp.Code)
	}

	st.sessionFn = sessionFor(models.User{UserID: "admin-1", Role: models.RoleAdmin, Approved: true})
	resp = doRequest(t, st, http.MethodPut, "/api/jobs/job-1", "token-1", payload)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for admin, got %d", resp.Code)
	}
}

func TestUnknownJSONFieldRejected(t *testing.T) {
	payload := map[string]any{"email": "asha@example.com", "password": "secret123", "extra": true}
	resp := doRequest(t, fakeStore{}, http.MethodPost, "/api/auth/login", "", payload)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}
