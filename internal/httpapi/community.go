package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/saurabhraj25aug2004/alumni-association-website/internal/models"
	"github.com/saurabhraj25aug2004/alumni-association-website/internal/store"
)

// Role policy: announcements are admin-only; jobs, workshops, and mentorship
// programs are posted by alumni (or admin); blogs by anyone approved;
// mentorship requests by students. Updates and deletes are owner-or-admin.
func (h *Handler) communityRoutes(r chi.Router) {
	r.Route("/api/jobs", func(r chi.Router) {
		r.Get("/", h.handleListJobs)
		r.Post("/", h.handleCreateJob)
		r.Get("/{jobID}", h.handleGetJob)
		r.Put("/{jobID}", h.handleUpdateJob)
		r.Delete("/{jobID}", h.handleDeleteJob)
	})
	r.Route("/api/blogs", func(r chi.Router) {
		r.Get("/", h.handleListBlogs)
		r.Post("/", h.handleCreateBlog)
		r.Get("/{blogID}", h.handleGetBlog)
		r.Put("/{blogID}", h.handleUpdateBlog)
		r.Delete("/{blogID}", h.handleDeleteBlog)
	})
	r.Route("/api/workshops", func(r chi.Router) {
		r.Get("/", h.handleListWorkshops)
		r.Post("/", h.handleCreateWorkshop)
		r.Get("/{workshopID}", h.handleGetWorkshop)
		r.Put("/{workshopID}", h.handleUpdateWorkshop)
		r.Delete("/{workshopID}", h.handleDeleteWorkshop)
	})
	r.Route("/api/announcements", func(r chi.Router) {
		r.Get("/", h.handleListAnnouncements)
		r.Post("/", h.handleCreateAnnouncement)
		r.Get("/{announcementID}", h.handleGetAnnouncement)
		r.Put("/{announcementID}", h.handleUpdateAnnouncement)
		r.Delete("/{announcementID}", h.handleDeleteAnnouncement)
	})
	r.Route("/api/feedback", func(r chi.Router) {
		r.Get("/", h.handleListFeedback)
		r.Post("/", h.handleCreateFeedback)
	})
	r.Route("/api/mentorship-programs", func(r chi.Router) {
		r.Get("/", h.handleListPrograms)
		r.Post("/", h.handleCreateProgram)
		r.Get("/{programID}", h.handleGetProgram)
		r.Put("/{programID}", h.handleUpdateProgram)
		r.Delete("/{programID}", h.handleDeleteProgram)
	})
	r.Route("/api/mentorships", func(r chi.Router) {
		r.Get("/", h.handleListMentorships)
		r.Post("/", h.handleCreateMentorship)
		r.Patch("/{mentorshipID}", h.handleSetMentorshipStatus)
	})
	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", h.handleListUsers)
		r.Post("/{userID}/approve", h.handleApproveUser)
		r.Delete("/{userID}", h.handleDeleteUser)
	})
}

type jobRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Company     string `json:"company" validate:"required,max=200"`
	Location    string `json:"location" validate:"max=200"`
	Description string `json:"description" validate:"max=10000"`
	ApplyURL    string `json:"apply_url" validate:"omitempty,url"`
}

func (h *Handler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.community.ListJobs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *Handler) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r, models.RoleAlumni, models.RoleAdmin)
	if !ok {
		return
	}
	var req jobRequest
	if !h.decode(w, r, &req) {
		return
	}
	job, err := h.community.CreateJob(r.Context(), store.JobInput{
		AuthorID:    identity.UserID,
		Title:       strings.TrimSpace(req.Title),
		Company:     strings.TrimSpace(req.Company),
		Location:    strings.TrimSpace(req.Location),
		Description: req.Description,
		ApplyURL:    strings.TrimSpace(req.ApplyURL),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

func (h *Handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.community.GetJob(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *Handler) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	existing, err := h.community.GetJob(r.Context(), jobID)
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	if _, ok := requireOwnerOrAdmin(w, r, existing.AuthorID); !ok {
		return
	}
	var req jobRequest
	if !h.decode(w, r, &req) {
		return
	}
	job, err := h.community.UpdateJob(r.Context(), store.JobInput{
		JobID:       jobID,
		Title:       strings.TrimSpace(req.Title),
		Company:     strings.TrimSpace(req.Company),
		Location:    strings.TrimSpace(req.Location),
		Description: req.Description,
		ApplyURL:    strings.TrimSpace(req.ApplyURL),
	})
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *Handler) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	existing, err := h.community.GetJob(r.Context(), jobID)
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	if _, ok := requireOwnerOrAdmin(w, r, existing.AuthorID); !ok {
		return
	}
	if err := h.community.DeleteJob(r.Context(), jobID); err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type blogRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required,max=50000"`
}

func (h *Handler) handleListBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.community.ListBlogs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, blogs)
}

func (h *Handler) handleCreateBlog(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r)
	if !ok {
		return
	}
	var req blogRequest
	if !h.decode(w, r, &req) {
		return
	}
	blog, err := h.community.CreateBlog(r.Context(), store.BlogInput{
		AuthorID: identity.UserID,
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, blog)
}

func (h *Handler) handleGetBlog(w http.ResponseWriter, r *http.Request) {
	blog, err := h.community.GetBlog(r.Context(), chi.URLParam(r, "blogID"))
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blog)
}

func (h *Handler) handleUpdateBlog(w http.ResponseWriter, r *http.Request) {
	blogID := chi.URLParam(r, "blogID")
	existing, err := h.community.GetBlog(r.Context(), blogID)
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	if _, ok := requireOwnerOrAdmin(w, r, existing.AuthorID); !ok {
		return
	}
	var req blogRequest
	if !h.decode(w, r, &req) {
		return
	}
	blog, err := h.community.UpdateBlog(r.Context(), store.BlogInput{
		BlogID:  blogID,
		Title:   strings.TrimSpace(req.Title),
		Content: req.Content,
	})
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blog)
}

func (h *Handler) handleDeleteBlog(w http.ResponseWriter, r *http.Request) {
	blogID := chi.URLParam(r, "blogID")
	existing, err := h.community.GetBlog(r.Context(), blogID)
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	if _, ok := requireOwnerOrAdmin(w, r, existing.AuthorID); !ok {
		return
	}
	if err := h.community.DeleteBlog(r.Context(), blogID); err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type workshopRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=10000"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	MeetingURL  string    `json:"meeting_url" validate:"omitempty,url"`
}

func (h *Handler) handleListWorkshops(w http.ResponseWriter, r *http.Request) {
	workshops, err := h.community.ListWorkshops(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, workshops)
}

func (h *Handler) handleCreateWorkshop(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r, models.RoleAlumni, models.RoleAdmin)
	if !ok {
		return
	}
	var req workshopRequest
	if !h.decode(w, r, &req) {
		return
	}
	workshop, err := h.community.CreateWorkshop(r.Context(), store.WorkshopInput{
		HostID:      identity.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		ScheduledAt: req.ScheduledAt,
		MeetingURL:  strings.TrimSpace(req.MeetingURL),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, workshop)
}

func (h *Handler) handleGetWorkshop(w http.ResponseWriter, r *http.Request) {
	workshop, err := h.community.GetWorkshop(r.Context(), chi.URLParam(r, "workshopID"))
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workshop)
}

func (h *Handler) handleUpdateWorkshop(w http.ResponseWriter, r *http.Request) {
	workshopID := chi.URLParam(r, "workshopID")
	existing, err := h.community.GetWorkshop(r.Context(), workshopID)
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	if _, ok := requireOwnerOrAdmin(w, r, existing.HostID); !ok {
		return
	}
	var req workshopRequest
	if !h.decode(w, r, &req) {
		return
	}
	workshop, err := h.community.UpdateWorkshop(r.Context(), store.WorkshopInput{
		WorkshopID:  workshopID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		ScheduledAt: req.ScheduledAt,
		MeetingURL:  strings.TrimSpace(req.MeetingURL),
	})
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workshop)
}

func (h *Handler) handleDeleteWorkshop(w http.ResponseWriter, r *http.Request) {
	workshopID := chi.URLParam(r, "workshopID")
	existing, err := h.community.GetWorkshop(r.Context(), workshopID)
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	if _, ok := requireOwnerOrAdmin(w, r, existing.HostID); !ok {
		return
	}
	if err := h.community.DeleteWorkshop(r.Context(), workshopID); err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type announcementRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body" validate:"required,max=10000"`
}

func (h *Handler) handleListAnnouncements(w http.ResponseWriter, r *http.Request) {
	announcements, err := h.community.ListAnnouncements(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, announcements)
}

func (h *Handler) handleCreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r, models.RoleAdmin)
	if !ok {
		return
	}
	var req announcementRequest
	if !h.decode(w, r, &req) {
		return
	}
	announcement, err := h.community.CreateAnnouncement(r.Context(), store.AnnouncementInput{
		AuthorID: identity.UserID,
		Title:    strings.TrimSpace(req.Title),
		Body:     req.Body,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, announcement)
}

func (h *Handler) handleGetAnnouncement(w http.ResponseWriter, r *http.Request) {
	announcement, err := h.community.GetAnnouncement(r.Context(), chi.URLParam(r, "announcementID"))
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, announcement)
}

func (h *Handler) handleUpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	var req announcementRequest
	if !h.decode(w, r, &req) {
		return
	}
	announcement, err := h.community.UpdateAnnouncement(r.Context(), store.AnnouncementInput{
		AnnouncementID: chi.URLParam(r, "announcementID"),
		Title:          strings.TrimSpace(req.Title),
		Body:           req.Body,
	})
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, announcement)
}

func (h *Handler) handleDeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	if err := h.community.DeleteAnnouncement(r.Context(), chi.URLParam(r, "announcementID")); err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type feedbackRequest struct {
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=10000"`
}

func (h *Handler) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	feedback, err := h.community.ListFeedback(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, feedback)
}

func (h *Handler) handleCreateFeedback(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r)
	if !ok {
		return
	}
	var req feedbackRequest
	if !h.decode(w, r, &req) {
		return
	}
	feedback, err := h.community.CreateFeedback(r.Context(), store.FeedbackInput{
		AuthorID: identity.UserID,
		Subject:  strings.TrimSpace(req.Subject),
		Message:  req.Message,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, feedback)
}

type programRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=10000"`
	Capacity    int    `json:"capacity" validate:"gte=1,lte=500"`
}

func (h *Handler) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := h.community.ListPrograms(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, programs)
}

func (h *Handler) handleCreateProgram(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r, models.RoleAlumni, models.RoleAdmin)
	if !ok {
		return
	}
	var req programRequest
	if !h.decode(w, r, &req) {
		return
	}
	program, err := h.community.CreateProgram(r.Context(), store.ProgramInput{
		MentorID:    identity.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Capacity:    req.Capacity,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, program)
}

func (h *Handler) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	program, err := h.community.GetProgram(r.Context(), chi.URLParam(r, "programID"))
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, program)
}

func (h *Handler) handleUpdateProgram(w http.ResponseWriter, r *http.Request) {
	programID := chi.URLParam(r, "programID")
	existing, err := h.community.GetProgram(r.Context(), programID)
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	if _, ok := requireOwnerOrAdmin(w, r, existing.MentorID); !ok {
		return
	}
	var req programRequest
	if !h.decode(w, r, &req) {
		return
	}
	program, err := h.community.UpdateProgram(r.Context(), store.ProgramInput{
		ProgramID:   programID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Capacity:    req.Capacity,
	})
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, program)
}

func (h *Handler) handleDeleteProgram(w http.ResponseWriter, r *http.Request) {
	programID := chi.URLParam(r, "programID")
	existing, err := h.community.GetProgram(r.Context(), programID)
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	if _, ok := requireOwnerOrAdmin(w, r, existing.MentorID); !ok {
		return
	}
	if err := h.community.DeleteProgram(r.Context(), programID); err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type mentorshipRequest struct {
	ProgramID string `json:"program_id" validate:"required,uuid"`
	Message   string `json:"message" validate:"max=2000"`
}

func (h *Handler) handleListMentorships(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r)
	if !ok {
		return
	}
	mentorships, err := h.community.ListMentorships(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, mentorships)
}

func (h *Handler) handleCreateMentorship(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireRole(w, r, models.RoleStudent)
	if !ok {
		return
	}
	var req mentorshipRequest
	if !h.decode(w, r, &req) {
		return
	}
	if _, err := h.community.GetProgram(r.Context(), req.ProgramID); err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	mentorship, err := h.community.CreateMentorship(r.Context(), store.MentorshipInput{
		ProgramID: req.ProgramID,
		StudentID: identity.UserID,
		Message:   req.Message,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, mentorship)
}

type mentorshipStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted declined"`
}

func (h *Handler) handleSetMentorshipStatus(w http.ResponseWriter, r *http.Request) {
	mentorshipID := chi.URLParam(r, "mentorshipID")
	mentorship, err := h.community.GetMentorship(r.Context(), mentorshipID)
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	program, err := h.community.GetProgram(r.Context(), mentorship.ProgramID)
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	if _, ok := requireOwnerOrAdmin(w, r, program.MentorID); !ok {
		return
	}
	var req mentorshipStatusRequest
	if !h.decode(w, r, &req) {
		return
	}
	updated, err := h.community.SetMentorshipStatus(r.Context(), mentorshipID, req.Status)
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	users, err := h.auth.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) handleApproveUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	user, err := h.auth.ApproveUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	if err := h.auth.DeleteUser(r.Context(), chi.URLParam(r, "userID")); err != nil {
		writeNotFoundOrError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func writeNotFoundOrError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
