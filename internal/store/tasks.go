package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"service-crm/internal/models"
)

// TaskInput is the validated form of a task create or update.
type TaskInput struct {
	Title       string
	Description *string
	Status      string
	DueDate     *time.Time
	ContactID   *int64
	LeadID      *int64
}

func (in TaskInput) normalize() (TaskInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return in, invalid("task title is required")
	}
	in.Description = optionalText(in.Description)
	in.Status = strings.TrimSpace(in.Status)
	if in.Status == "" {
		in.Status = models.TaskPending
	}
	if !models.IsValidTaskStatus(in.Status) {
		return in, invalid("unknown task status %q", in.Status)
	}
	in.DueDate = utcPtr(in.DueDate)
	return in, nil
}

func (s *Store) ensureTaskRefs(ctx context.Context, ownerID int64, in TaskInput) error {
	if err := s.ensureContact(ctx, ownerID, in.ContactID); err != nil {
		return err
	}
	return s.ensureLead(ctx, ownerID, in.LeadID)
}

// completedAt is now for finished statuses and NULL otherwise.
func (s *Store) completedAt(status string) *time.Time {
	if !models.IsFinishedStatus(status) {
		return nil
	}
	now := s.Now()
	return &now
}

const taskSelect = `SELECT t.id, t.user_id, t.title, t.description, t.status, t.due_date,
	t.contact_id, t.lead_id,
	TRIM(COALESCE(c.first_name, '') || ' ' || COALESCE(c.last_name, '')) AS contact_name,
	t.created_at, t.completed_at
	FROM tasks t
	LEFT JOIN contacts c ON c.id = t.contact_id`

// ListTasks returns the owner's tasks ordered by due date, falling back to
// the creation time for undated tasks. A non-empty status filters exactly.
func (s *Store) ListTasks(ctx context.Context, ownerID int64, status string) ([]models.Task, error) {
	query := taskSelect + ` WHERE t.user_id = ?`
	args := []any{ownerID}
	if status = strings.TrimSpace(status); status != "" {
		query += ` AND t.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY COALESCE(t.due_date, t.created_at) ASC, t.id ASC`

	tasks := []models.Task{}
	if err := s.DB.SelectContext(ctx, &tasks, s.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) GetTask(ctx context.Context, ownerID, id int64) (models.Task, error) {
	var t models.Task
	err := s.DB.GetContext(ctx, &t, s.rebind(taskSelect+` WHERE t.id = ? AND t.user_id = ?`), id, ownerID)
	if err != nil {
		return models.Task{}, notFound(err)
	}
	return t, nil
}

func (s *Store) CreateTask(ctx context.Context, ownerID int64, in TaskInput) (models.Task, error) {
	in, err := in.normalize()
	if err != nil {
		return models.Task{}, err
	}
	if err := s.ensureTaskRefs(ctx, ownerID, in); err != nil {
		return models.Task{}, err
	}
	id, err := s.insertReturningID(ctx, `INSERT INTO tasks
		(user_id, title, description, status, due_date, contact_id, lead_id, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		ownerID, in.Title, in.Description, in.Status, in.DueDate, in.ContactID, in.LeadID,
		s.Now(), s.completedAt(in.Status))
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return s.GetTask(ctx, ownerID, id)
}

// UpdateTask replaces every editable field of the task. completed_at is
// recomputed from the new status on every update.
func (s *Store) UpdateTask(ctx context.Context, ownerID, id int64, in TaskInput) (models.Task, error) {
	in, err := in.normalize()
	if err != nil {
		return models.Task{}, err
	}
	if err := s.ensureTaskRefs(ctx, ownerID, in); err != nil {
		return models.Task{}, err
	}
	err = s.execOwned(ctx, `UPDATE tasks
		SET title = ?, description = ?, status = ?, due_date = ?, contact_id = ?, lead_id = ?, completed_at = ?
		WHERE id = ? AND user_id = ?`,
		in.Title, in.Description, in.Status, in.DueDate, in.ContactID, in.LeadID,
		s.completedAt(in.Status), id, ownerID)
	if err != nil {
		return models.Task{}, err
	}
	return s.GetTask(ctx, ownerID, id)
}

func (s *Store) DeleteTask(ctx context.Context, ownerID, id int64) error {
	return s.execOwned(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, ownerID)
}
