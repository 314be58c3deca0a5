package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/synchub/synchub/internal/hub/model"
	"github.com/synchub/synchub/internal/pkg/mailer"
	"github.com/synchub/synchub/pkg/log"
)

const (
	expiryLockName = "task-expiry"

	// A task lives four weeks from upload, extended to two weeks past its
	// last change. The warning email goes out one week before deletion.
	taskLifetime  = 4 * 7 * 24 * time.Hour
	idleLifetime  = 2 * 7 * 24 * time.Hour
	expiryWarning = 7 * 24 * time.Hour
)

// ProcessTasks deletes expired tasks and assigns expiry dates, warning the
// creator of every task that enters its final week.
func (s *Scheduler) ProcessTasks(ctx context.Context) error {
	acquired, err := s.locker.TryAcquire(ctx, expiryLockName)
	if err != nil {
		return err
	}
	if !acquired {
		log.Infof("pass %s is already running, skipping", expiryLockName)
		return nil
	}
	defer s.locker.Release(ctx, expiryLockName)

	now := time.Now().UTC()
	if err := s.repos.Task.DeleteExpired(now); err != nil {
		return err
	}
	tasks, err := s.repos.Task.ListWithoutExpiry(s.maxRows)
	if err != nil {
		return err
	}
	for idx := range tasks {
		task := &tasks[idx]
		expiry := TaskExpiry(task)
		if expiry.Sub(now) > expiryWarning {
			continue
		}
		task.ExpiresAt = &expiry
		if err := s.repos.Task.Save(task); err != nil {
			log.Errorf("saving expiry of task %d: %v", task.ID, err)
			continue
		}
		s.sendExpiryEmail(task)
	}
	return nil
}

// TaskExpiry is the deletion date of a task: four weeks after upload, or
// two weeks after the last change, whichever is later.
func TaskExpiry(task *model.Task) time.Time {
	expiry := task.CreatedAt.Add(taskLifetime)
	if byIdle := task.UpdatedAt.Add(idleLifetime); byIdle.After(expiry) {
		expiry = byIdle
	}
	return expiry
}

func (s *Scheduler) sendExpiryEmail(task *model.Task) {
	creator, err := s.repos.User.Get(task.CreatedBy)
	if err != nil {
		log.Errorf("loading creator of task %d: %v", task.ID, err)
		return
	}
	errorCount, _ := s.taskCounts(task)
	vars := map[string]interface{}{
		"Name":       creator.Name,
		"Filename":   task.Filename,
		"Kind":       task.TaskType.String(),
		"ErrorCount": errorCount,
		"ExpiresAt":  task.ExpiresAt.Format("2006-01-02"),
		"ExportURL":  s.exportURL(task),
	}
	subject := fmt.Sprintf("Task %s is about to expire", task.Filename)
	if err := s.sender.Send(mailer.TemplateTaskExpiration, creator.Email, "", subject, vars); err != nil {
		log.Errorf("sending expiry email for task %d: %v", task.ID, err)
	}
}
