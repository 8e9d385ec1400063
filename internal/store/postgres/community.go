package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saurabhraj25aug2004/alumni-association-website/internal/event"
	"github.com/saurabhraj25aug2004/alumni-association-website/internal/models"
	"github.com/saurabhraj25aug2004/alumni-association-website/internal/store"
)

func (s *Store) CreateJob(ctx context.Context, input store.JobInput) (models.Job, error) {
	job := models.Job{
		JobID:       uuid.NewString(),
		AuthorID:    input.AuthorID,
		Title:       input.Title,
		Company:     input.Company,
		Location:    input.Location,
		Description: input.Description,
		ApplyURL:    input.ApplyURL,
		CreatedAt:   time.Now().UTC(),
	}
	job.UpdatedAt = job.CreatedAt

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Job{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO jobs (job_id, author_id, title, company, location, description, apply_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, job.JobID, job.AuthorID, job.Title, job.Company, job.Location, job.Description, job.ApplyURL, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return models.Job{}, err
	}
	if err := insertOutboxEvent(ctx, tx, event.EntityChannel(event.EntityJobs, event.LifecycleCreated), job.JobID); err != nil {
		return models.Job{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Job{}, err
	}
	return job, nil
}

func (s *Store) GetJob(ctx context.Context, jobID string) (models.Job, error) {
	var job models.Job
	row := s.pool.QueryRow(ctx, `
		SELECT job_id, author_id, title, company, location, description, apply_url, created_at, updated_at
		FROM jobs
		WHERE job_id = $1
	`, jobID)
	err := row.Scan(&job.JobID, &job.AuthorID, &job.Title, &job.Company, &job.Location, &job.Description, &job.ApplyURL, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Job{}, store.ErrNotFound
		}
		return models.Job{}, err
	}
	return job, nil
}

func (s *Store) ListJobs(ctx context.Context) ([]models.Job, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT job_id, author_id, title, company, location, description, apply_url, created_at, updated_at
		FROM jobs
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		var job models.Job
		if err := rows.Scan(&job.JobID, &job.AuthorID, &job.Title, &job.Company, &job.Location, &job.Description, &job.ApplyURL, &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (s *Store) UpdateJob(ctx context.Context, input store.JobInput) (models.Job, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Job{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var job models.Job
	row := tx.QueryRow(ctx, `
		UPDATE jobs
		SET title = $2, company = $3, location = $4, description = $5, apply_url = $6, updated_at = NOW()
		WHERE job_id = $1
		RETURNING job_id, author_id, title, company, location, description, apply_url, created_at, updated_at
	`, input.JobID, input.Title, input.Company, input.Location, input.Description, input.ApplyURL)
	err = row.Scan(&job.JobID, &job.AuthorID, &job.Title, &job.Company, &job.Location, &job.Description, &job.ApplyURL, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Job{}, store.ErrNotFound
		}
		return models.Job{}, err
	}
	if err := insertOutboxEvent(ctx, tx, event.EntityChannel(event.EntityJobs, event.LifecycleUpdated), job.JobID); err != nil {
		return models.Job{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Job{}, err
	}
	return job, nil
}

func (s *Store) DeleteJob(ctx context.Context, jobID string) error {
	return s.deleteRow(ctx, `DELETE FROM jobs WHERE job_id = $1`, jobID, event.EntityChannel(event.EntityJobs, event.LifecycleDeleted))
}

func (s *Store) CreateBlog(ctx context.Context, input store.BlogInput) (models.Blog, error) {
	blog := models.Blog{
		BlogID:    uuid.NewString(),
		AuthorID:  input.AuthorID,
		Title:     input.Title,
		Content:   input.Content,
		CreatedAt: time.Now().UTC(),
	}
	blog.UpdatedAt = blog.CreatedAt

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Blog{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO blogs (blog_id, author_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, blog.BlogID, blog.AuthorID, blog.Title, blog.Content, blog.CreatedAt, blog.UpdatedAt)
	if err != nil {
		return models.Blog{}, err
	}
	if err := insertOutboxEvent(ctx, tx, event.EntityChannel(event.EntityBlogs, event.LifecycleCreated), blog.BlogID); err != nil {
		return models.Blog{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Blog{}, err
	}
	return blog, nil
}

func (s *Store) GetBlog(ctx context.Context, blogID string) (models.Blog, error) {
	var blog models.Blog
	row := s.pool.QueryRow(ctx, `
		SELECT blog_id, author_id, title, content, created_at, updated_at
		FROM blogs
		WHERE blog_id = $1
	`, blogID)
	err := row.Scan(&blog.BlogID, &blog.AuthorID, &blog.Title, &blog.Content, &blog.CreatedAt, &blog.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Blog{}, store.ErrNotFound
		}
		return models.Blog{}, err
	}
	return blog, nil
}

func (s *Store) ListBlogs(ctx context.Context) ([]models.Blog, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT blog_id, author_id, title, content, created_at, updated_at
		FROM blogs
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blogs []models.Blog
	for rows.Next() {
		var blog models.Blog
		if err := rows.Scan(&blog.BlogID, &blog.AuthorID, &blog.Title, &blog.Content, &blog.CreatedAt, &blog.UpdatedAt); err != nil {
			return nil, err
		}
		blogs = append(blogs, blog)
	}
	return blogs, rows.Err()
}

func (s *Store) UpdateBlog(ctx context.Context, input store.BlogInput) (models.Blog, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Blog{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var blog models.Blog
	row := tx.QueryRow(ctx, `
		UPDATE blogs
		SET title = $2, content = $3, updated_at = NOW()
		WHERE blog_id = $1
		RETURNING blog_id, author_id, title, content, created_at, updated_at
	`, input.BlogID, input.Title, input.Content)
	err = row.Scan(&blog.BlogID, &blog.AuthorID, &blog.Title, &blog.Content, &blog.CreatedAt, &blog.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Blog{}, store.ErrNotFound
		}
		return models.Blog{}, err
	}
	if err := insertOutboxEvent(ctx, tx, event.EntityChannel(event.EntityBlogs, event.LifecycleUpdated), blog.BlogID); err != nil {
		return models.Blog{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Blog{}, err
	}
	return blog, nil
}

func (s *Store) DeleteBlog(ctx context.Context, blogID string) error {
	return s.deleteRow(ctx, `DELETE FROM blogs WHERE blog_id = $1`, blogID, event.EntityChannel(event.EntityBlogs, event.LifecycleDeleted))
}

func (s *Store) CreateWorkshop(ctx context.Context, input store.WorkshopInput) (models.Workshop, error) {
	workshop := models.Workshop{
		WorkshopID:  uuid.NewString(),
		HostID:      input.HostID,
		Title:       input.Title,
		Description: input.Description,
		ScheduledAt: input.ScheduledAt,
		MeetingURL:  input.MeetingURL,
		CreatedAt:   time.Now().UTC(),
	}
	workshop.UpdatedAt = workshop.CreatedAt

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Workshop{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO workshops (workshop_id, host_id, title, description, scheduled_at, meeting_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, workshop.WorkshopID, workshop.HostID, workshop.Title, workshop.Description, workshop.ScheduledAt, workshop.MeetingURL, workshop.CreatedAt, workshop.UpdatedAt)
	if err != nil {
		return models.Workshop{}, err
	}
	if err := insertOutboxEvent(ctx, tx, event.EntityChannel(event.EntityWorkshops, event.LifecycleCreated), workshop.WorkshopID); err != nil {
		return models.Workshop{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Workshop{}, err
	}
	return workshop, nil
}

func (s *Store) GetWorkshop(ctx context.Context, workshopID string) (models.Workshop, error) {
	var workshop models.Workshop
	row := s.pool.QueryRow(ctx, `
		SELECT workshop_id, host_id, title, description, scheduled_at, meeting_url, created_at, updated_at
		FROM workshops
		WHERE workshop_id = $1
	`, workshopID)
	err := row.Scan(&workshop.WorkshopID, &workshop.HostID, &workshop.Title, &workshop.Description, &workshop.ScheduledAt, &workshop.MeetingURL, &workshop.CreatedAt, &workshop.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Workshop{}, store.ErrNotFound
		}
		return models.Workshop{}, err
	}
	return workshop, nil
}

func (s *Store) ListWorkshops(ctx context.Context) ([]models.Workshop, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT workshop_id, host_id, title, description, scheduled_at, meeting_url, created_at, updated_at
		FROM workshops
		ORDER BY scheduled_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workshops []models.Workshop
	for rows.Next() {
		var workshop models.Workshop
		if err := rows.Scan(&workshop.WorkshopID, &workshop.HostID, &workshop.Title, &workshop.Description, &workshop.ScheduledAt, &workshop.MeetingURL, &workshop.CreatedAt, &workshop.UpdatedAt); err != nil {
			return nil, err
		}
		workshops = append(workshops, workshop)
	}
	return workshops, rows.Err()
}

func (s *Store) UpdateWorkshop(ctx context.Context, input store.WorkshopInput) (models.Workshop, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Workshop{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var workshop models.Workshop
	row := tx.QueryRow(ctx, `
		UPDATE workshops
		SET title = $2, description = $3, scheduled_at = $4, meeting_url = $5, updated_at = NOW()
		WHERE workshop_id = $1
		RETURNING workshop_id, host_id, title, description, scheduled_at, meeting_url, created_at, updated_at
	`, input.WorkshopID, input.Title, input.Description, input.ScheduledAt, input.MeetingURL)
	err = row.Scan(&workshop.WorkshopID, &workshop.HostID, &workshop.Title, &workshop.Description, &workshop.ScheduledAt, &workshop.MeetingURL, &workshop.CreatedAt, &workshop.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Workshop{}, store.ErrNotFound
		}
		return models.Workshop{}, err
	}
	if err := insertOutboxEvent(ctx, tx, event.EntityChannel(event.EntityWorkshops, event.LifecycleUpdated), workshop.WorkshopID); err != nil {
		return models.Workshop{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Workshop{}, err
	}
	return workshop, nil
}

func (s *Store) DeleteWorkshop(ctx context.Context, workshopID string) error {
	return s.deleteRow(ctx, `DELETE FROM workshops WHERE workshop_id = $1`, workshopID, event.EntityChannel(event.EntityWorkshops, event.LifecycleDeleted))
}

func (s *Store) CreateAnnouncement(ctx context.Context, input store.AnnouncementInput) (models.Announcement, error) {
	announcement := models.Announcement{
		AnnouncementID: uuid.NewString(),
		AuthorID:       input.AuthorID,
		Title:          input.Title,
		Body:           input.Body,
		CreatedAt:      time.Now().UTC(),
	}
	announcement.UpdatedAt = announcement.CreatedAt

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Announcement{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO announcements (announcement_id, author_id, title, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, announcement.AnnouncementID, announcement.AuthorID, announcement.Title, announcement.Body, announcement.CreatedAt, announcement.UpdatedAt)
	if err != nil {
		return models.Announcement{}, err
	}
	if err := insertOutboxEvent(ctx, tx, event.EntityChannel(event.EntityAnnouncements, event.LifecycleCreated), announcement.AnnouncementID); err != nil {
		return models.Announcement{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Announcement{}, err
	}
	return announcement, nil
}

func (s *Store) GetAnnouncement(ctx context.Context, announcementID string) (models.Announcement, error) {
	var announcement models.Announcement
	row := s.pool.QueryRow(ctx, `
		SELECT announcement_id, author_id, title, body, created_at, updated_at
		FROM announcements
		WHERE announcement_id = $1
	`, announcementID)
	err := row.Scan(&announcement.AnnouncementID, &announcement.AuthorID, &announcement.Title, &announcement.Body, &announcement.CreatedAt, &announcement.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Announcement{}, store.ErrNotFound
		}
		return models.Announcement{}, err
	}
	return announcement, nil
}

func (s *Store) ListAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT announcement_id, author_id, title, body, created_at, updated_at
		FROM announcements
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var announcements []models.Announcement
	for rows.Next() {
		var announcement models.Announcement
		if err := rows.Scan(&announcement.AnnouncementID, &announcement.AuthorID, &announcement.Title, &announcement.Body, &announcement.CreatedAt, &announcement.UpdatedAt); err != nil {
			return nil, err
		}
		announcements = append(announcements, announcement)
	}
	return announcements, rows.Err()
}

func (s *Store) UpdateAnnouncement(ctx context.Context, input store.AnnouncementInput) (models.Announcement, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Announcement{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var announcement models.Announcement
	row := tx.QueryRow(ctx, `
		UPDATE announcements
		SET title = $2, body = $3, updated_at = NOW()
		WHERE announcement_id = $1
		RETURNING announcement_id, author_id, title, body, created_at, updated_at
	`, input.AnnouncementID, input.Title, input.Body)
	err = row.Scan(&announcement.AnnouncementID, &announcement.AuthorID, &announcement.Title, &announcement.Body, &announcement.CreatedAt, &announcement.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Announcement{}, store.ErrNotFound
		}
		return models.Announcement{}, err
	}
	if err := insertOutboxEvent(ctx, tx, event.EntityChannel(event.EntityAnnouncements, event.LifecycleUpdated), announcement.AnnouncementID); err != nil {
		return models.Announcement{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Announcement{}, err
	}
	return announcement, nil
}

func (s *Store) DeleteAnnouncement(ctx context.Context, announcementID string) error {
	return s.deleteRow(ctx, `DELETE FROM announcements WHERE announcement_id = $1`, announcementID, event.EntityChannel(event.EntityAnnouncements, event.LifecycleDeleted))
}

func (s *Store) CreateFeedback(ctx context.Context, input store.FeedbackInput) (models.Feedback, error) {
	feedback := models.Feedback{
		FeedbackID: uuid.NewString(),
		AuthorID:   input.AuthorID,
		Subject:    input.Subject,
		Message:    input.Message,
		CreatedAt:  time.Now().UTC(),
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Feedback{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO feedback (feedback_id, author_id, subject, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, feedback.FeedbackID, feedback.AuthorID, feedback.Subject, feedback.Message, feedback.CreatedAt)
	if err != nil {
		return models.Feedback{}, err
	}
	if err := insertOutboxEvent(ctx, tx, event.EntityChannel(event.EntityFeedback, event.LifecycleCreated), feedback.FeedbackID); err != nil {
		return models.Feedback{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Feedback{}, err
	}
	return feedback, nil
}

func (s *Store) ListFeedback(ctx context.Context) ([]models.Feedback, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT feedback_id, author_id, subject, message, created_at
		FROM feedback
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feedback []models.Feedback
	for rows.Next() {
		var item models.Feedback
		if err := rows.Scan(&item.FeedbackID, &item.AuthorID, &item.Subject, &item.Message, &item.CreatedAt); err != nil {
			return nil, err
		}
		feedback = append(feedback, item)
	}
	return feedback, rows.Err()
}

func (s *Store) CreateProgram(ctx context.Context, input store.ProgramInput) (models.MentorshipProgram, error) {
	program := models.MentorshipProgram{
		ProgramID:   uuid.NewString(),
		MentorID:    input.MentorID,
		Title:       input.Title,
		Description: input.Description,
		Capacity:    input.Capacity,
		CreatedAt:   time.Now().UTC(),
	}
	program.UpdatedAt = program.CreatedAt

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.MentorshipProgram{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO mentorship_programs (program_id, mentor_id, title, description, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, program.ProgramID, program.MentorID, program.Title, program.Description, program.Capacity, program.CreatedAt, program.UpdatedAt)
	if err != nil {
		return models.MentorshipProgram{}, err
	}
	if err := insertOutboxEvent(ctx, tx, event.EntityChannel(event.EntityMentorshipPrograms, event.LifecycleCreated), program.ProgramID); err != nil {
		return models.MentorshipProgram{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.MentorshipProgram{}, err
	}
	return program, nil
}

func (s *Store) GetProgram(ctx context.Context, programID string) (models.MentorshipProgram, error) {
	var program models.MentorshipProgram
	row := s.pool.QueryRow(ctx, `
		SELECT program_id, mentor_id, title, description, capacity, created_at, updated_at
		FROM mentorship_programs
		WHERE program_id = $1
	`, programID)
	err := row.Scan(&program.ProgramID, &program.MentorID, &program.Title, &program.Description, &program.Capacity, &program.CreatedAt, &program.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.MentorshipProgram{}, store.ErrNotFound
		}
		return models.MentorshipProgram{}, err
	}
	return program, nil
}

func (s *Store) ListPrograms(ctx context.Context) ([]models.MentorshipProgram, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT program_id, mentor_id, title, description, capacity, created_at, updated_at
		FROM mentorship_programs
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var programs []models.MentorshipProgram
	for rows.Next() {
		var program models.MentorshipProgram
		if err := rows.Scan(&program.ProgramID, &program.MentorID, &program.Title, &program.Description, &program.Capacity, &program.CreatedAt, &program.UpdatedAt); err != nil {
			return nil, err
		}
		programs = append(programs, program)
	}
	return programs, rows.Err()
}

func (s *Store) UpdateProgram(ctx context.Context, input store.ProgramInput) (models.MentorshipProgram, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.MentorshipProgram{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var program models.MentorshipProgram
	row := tx.QueryRow(ctx, `
		UPDATE mentorship_programs
		SET title = $2, description = $3, capacity = $4, updated_at = NOW()
		WHERE program_id = $1
		RETURNING program_id, mentor_id, title, description, capacity, created_at, updated_at
	`, input.ProgramID, input.Title, input.Description, input.Capacity)
	err = row.Scan(&program.ProgramID, &program.MentorID, &program.Title, &program.Description, &program.Capacity, &program.CreatedAt, &program.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.MentorshipProgram{}, store.ErrNotFound
		}
		return models.MentorshipProgram{}, err
	}
	if err := insertOutboxEvent(ctx, tx, event.EntityChannel(event.EntityMentorshipPrograms, event.LifecycleUpdated), program.ProgramID); err != nil {
		return models.MentorshipProgram{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.MentorshipProgram{}, err
	}
	return program, nil
}

func (s *Store) DeleteProgram(ctx context.Context, programID string) error {
	return s.deleteRow(ctx, `DELETE FROM mentorship_programs WHERE program_id = $1`, programID, event.EntityChannel(event.EntityMentorshipPrograms, event.LifecycleDeleted))
}

func (s *Store) CreateMentorship(ctx context.Context, input store.MentorshipInput) (models.Mentorship, error) {
	mentorship := models.Mentorship{
		MentorshipID: uuid.NewString(),
		ProgramID:    input.ProgramID,
		StudentID:    input.StudentID,
		Message:      input.Message,
		Status:       models.MentorshipPending,
		CreatedAt:    time.Now().UTC(),
	}
	mentorship.UpdatedAt = mentorship.CreatedAt

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Mentorship{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO mentorships (mentorship_id, program_id, student_id, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, mentorship.MentorshipID, mentorship.ProgramID, mentorship.StudentID, mentorship.Message, mentorship.Status, mentorship.CreatedAt, mentorship.UpdatedAt)
	if err != nil {
		return models.Mentorship{}, err
	}
	if err := insertOutboxEvent(ctx, tx, event.EntityChannel(event.EntityMentorships, event.LifecycleCreated), mentorship.MentorshipID); err != nil {
		return models.Mentorship{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Mentorship{}, err
	}
	return mentorship, nil
}

func (s *Store) GetMentorship(ctx context.Context, mentorshipID string) (models.Mentorship, error) {
	var mentorship models.Mentorship
	row := s.pool.QueryRow(ctx, `
		SELECT mentorship_id, program_id, student_id, message, status, created_at, updated_at
		FROM mentorships
		WHERE mentorship_id = $1
	`, mentorshipID)
	err := row.Scan(&mentorship.MentorshipID, &mentorship.ProgramID, &mentorship.StudentID, &mentorship.Message, &mentorship.Status, &mentorship.CreatedAt, &mentorship.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Mentorship{}, store.ErrNotFound
		}
		return models.Mentorship{}, err
	}
	return mentorship, nil
}

// ListMentorships returns requests the user is party to, as student or as the
// mentor of the target program.
func (s *Store) ListMentorships(ctx context.Context, userID string) ([]models.Mentorship, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.mentorship_id, m.program_id, m.student_id, m.message, m.status, m.created_at, m.updated_at
		FROM mentorships m
		JOIN mentorship_programs p ON p.program_id = m.program_id
		WHERE m.student_id = $1 OR p.mentor_id = $1
		ORDER BY m.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mentorships []models.Mentorship
	for rows.Next() {
		var mentorship models.Mentorship
		if err := rows.Scan(&mentorship.MentorshipID, &mentorship.ProgramID, &mentorship.StudentID, &mentorship.Message, &mentorship.Status, &mentorship.CreatedAt, &mentorship.UpdatedAt); err != nil {
			return nil, err
		}
		mentorships = append(mentorships, mentorship)
	}
	return mentorships, rows.Err()
}

func (s *Store) SetMentorshipStatus(ctx context.Context, mentorshipID, status string) (models.Mentorship, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Mentorship{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var mentorship models.Mentorship
	row := tx.QueryRow(ctx, `
		UPDATE mentorships
		SET status = $2, updated_at = NOW()
		WHERE mentorship_id = $1
		RETURNING mentorship_id, program_id, student_id, message, status, created_at, updated_at
	`, mentorshipID, status)
	err = row.Scan(&mentorship.MentorshipID, &mentorship.ProgramID, &mentorship.StudentID, &mentorship.Message, &mentorship.Status, &mentorship.CreatedAt, &mentorship.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Mentorship{}, store.ErrNotFound
		}
		return models.Mentorship{}, err
	}
	if err := insertOutboxEvent(ctx, tx, event.EntityChannel(event.EntityMentorships, event.LifecycleUpdated), mentorship.MentorshipID); err != nil {
		return models.Mentorship{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Mentorship{}, err
	}
	return mentorship, nil
}

func (s *Store) deleteRow(ctx context.Context, query, id string, channel event.Channel) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	if err := insertOutboxEvent(ctx, tx, channel, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
