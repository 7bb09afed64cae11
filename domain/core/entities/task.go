package entities

import (
	"time"

	apperrors "pm-backend/pkg/errors"

	"github.com/google/uuid"
)

// TaskStatus is a task's workflow state. The approved state is terminal and is
// reachable only through the dedicated approve operation.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusInReview   TaskStatus = "in_review"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusApproved   TaskStatus = "approved"
)

// IsValid reports whether the status is a known value
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusInReview, TaskStatusCompleted, TaskStatusApproved:
		return true
	}
	return false
}

// TaskPriority is a task's urgency level
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// IsValid reports whether the priority is a known value
func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// TaskCategory groups tasks on the board
type TaskCategory string

const (
	CategoryImportant TaskCategory = "important"
	CategoryNotes     TaskCategory = "notes"
	CategoryLink      TaskCategory = "link"
)

// IsValid reports whether the category is a known value
func (c TaskCategory) IsValid() bool {
	switch c {
	case CategoryImportant, CategoryNotes, CategoryLink:
		return true
	}
	return false
}

// Task belongs to exactly one project and lives in the same partition as its
// parent so both can be range-queried together. AssigneeName is a snapshot of
// the assignee's display name at assignment time.
type Task struct {
	TaskID         string       `dynamodbav:"TaskID" json:"taskId"`
	ProjectID      string       `dynamodbav:"ProjectID" json:"projectId"`
	Title          string       `dynamodbav:"Title" json:"title"`
	Description    string       `dynamodbav:"Description" json:"description"`
	Status         TaskStatus   `dynamodbav:"Status" json:"status"`
	Priority       TaskPriority `dynamodbav:"Priority" json:"priority"`
	Category       TaskCategory `dynamodbav:"Category" json:"category"`
	AssigneeID     string       `dynamodbav:"AssigneeID" json:"assigneeId"`
	AssigneeName   string       `dynamodbav:"AssigneeName" json:"assigneeName"`
	EstimatedHours float64      `dynamodbav:"EstimatedHours" json:"estimatedHours"`
	DueDate        string       `dynamodbav:"DueDate" json:"dueDate"`
	CreatedAt      string       `dynamodbav:"CreatedAt" json:"createdAt"`
	UpdatedAt      string       `dynamodbav:"UpdatedAt" json:"updatedAt"`
	Version        int          `dynamodbav:"Version" json:"version"`
}

// NewTask creates a task in the todo state
func NewTask(projectID, title, description string, priority TaskPriority, category TaskCategory, assignee Member, estimatedHours float64, dueDate string) (*Task, error) {
	if !priority.IsValid() {
		return nil, apperrors.NewValidationError("priority must be one of: low, medium, high, urgent")
	}
	if !category.IsValid() {
		return nil, apperrors.NewValidationError("category must be one of: important, notes, link")
	}
	if estimatedHours < 0.5 {
		return nil, apperrors.NewValidationError("estimated hours must be at least 0.5")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	return &Task{
		TaskID:         uuid.NewString(),
		ProjectID:      projectID,
		Title:          title,
		Description:    description,
		Status:         TaskStatusTodo,
		Priority:       priority,
		Category:       category,
		AssigneeID:     assignee.Email,
		AssigneeName:   assignee.Name,
		EstimatedHours: estimatedHours,
		DueDate:        dueDate,
		CreatedAt:      now,
		UpdatedAt:      now,
		Version:        1,
	}, nil
}

func (t *Task) GetID() string { return t.TaskID }
func (t *Task) GetVersion() int { return t.Version }
func (t *Task) SetVersion(v int) { t.Version = v }
func (t *Task) SetUpdatedAt(ts time.Time) {
	t.UpdatedAt = ts.UTC().Format(time.RFC3339)
}

// IsActiveAssignment reports whether the task still counts as active work for
// its assignee. Completed and approved tasks do not block member removal.
func (t *Task) IsActiveAssignment() bool {
	return t.Status != TaskStatusCompleted && t.Status != TaskStatusApproved
}
