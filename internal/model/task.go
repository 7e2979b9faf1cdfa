package model

import "time"

// TaskStatus is the lifecycle state of a Task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

// Task is a flexible work item. Its study blocks are the soft events carrying its ID.
type Task struct {
	ID                       string     `json:"id" yaml:"id"`
	Title                    string     `json:"title" yaml:"title"`
	Day                      Weekday    `json:"day" yaml:"day"`
	DueTime                  Clock      `json:"due_time" yaml:"due_time"`
	EstimatedDurationMinutes int        `json:"estimated_duration_minutes" yaml:"estimated_duration_minutes"`
	Priority                 int        `json:"priority" yaml:"priority"`
	Status                   TaskStatus `json:"status" yaml:"status"`
	CreatedAt                time.Time  `json:"created_at" yaml:"created_at"`
}

// Open reports whether the task still wants time allocated.
func (t Task) Open() bool {
	return t.Status == TaskPending || t.Status == TaskInProgress
}
