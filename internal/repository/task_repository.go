package repository

import (
	"context"

	"gorm.io/gorm"

	"travelbook_app/internal/models"
)

// TaskScheduler enqueues scheduled tasks for the background worker
type TaskScheduler interface {
	Enqueue(ctx context.Context, task *models.ScheduledTask) error
}

type gormTaskScheduler struct {
	db *gorm.DB
}

// NewTaskScheduler returns a GORM-backed TaskScheduler
func NewTaskScheduler(db *gorm.DB) TaskScheduler {
	return &gormTaskScheduler{db: db}
}

func (r *gormTaskScheduler) Enqueue(ctx context.Context, task *models.ScheduledTask) error {
	return r.db.WithContext(ctx).Create(task).Error
}
