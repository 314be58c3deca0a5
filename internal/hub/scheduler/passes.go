package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/synchub/synchub/internal/hub/invite"
	"github.com/synchub/synchub/internal/hub/model"
	"github.com/synchub/synchub/internal/hub/repo"
	"github.com/synchub/synchub/internal/pkg/mailer"
	"github.com/synchub/synchub/pkg/log"
	"github.com/synchub/synchub/pkg/metrics"
)

// ProcessAffiliationRecords runs one affiliation batch pass.
func (s *Scheduler) ProcessAffiliationRecords(ctx context.Context) error {
	return s.runPass(ctx, model.TaskTypeAffiliation, s.repos.Affiliation.Unprocessed)
}

// ProcessFundingRecords runs one funding batch pass.
func (s *Scheduler) ProcessFundingRecords(ctx context.Context) error {
	return s.runPass(ctx, model.TaskTypeFunding, s.repos.Funding.Unprocessed)
}

// ProcessWorkRecords runs one work batch pass.
func (s *Scheduler) ProcessWorkRecords(ctx context.Context) error {
	return s.runPass(ctx, model.TaskTypeWork, s.repos.Work.Unprocessed)
}

// ProcessPeerReviewRecords runs one peer-review batch pass.
func (s *Scheduler) ProcessPeerReviewRecords(ctx context.Context) error {
	return s.runPass(ctx, model.TaskTypePeerReview, s.repos.PeerReview.Unprocessed)
}

type syncKey struct {
	orgID  uint64
	userID uint64
}

type inviteKey struct {
	taskID    uint64
	orgID     uint64
	email     string
	firstName string
	lastName  string
}

func (s *Scheduler) runPass(ctx context.Context, kind model.TaskType, fetch func(int) ([]repo.PendingRow, error)) error {
	name := kind.String() + "-records"
	acquired, err := s.locker.TryAcquire(ctx, name)
	if err != nil {
		return err
	}
	if !acquired {
		log.Infof("pass %s is already running, skipping", name)
		return nil
	}
	defer s.locker.Release(ctx, name)

	rows, err := fetch(s.maxRows)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	log.Infow("batch pass starting", "kind", kind.String(), "rows", len(rows))

	orgs := make(map[uint64]*model.Organisation)
	getOrg := func(id uint64) (*model.Organisation, error) {
		if org, ok := orgs[id]; ok {
			return org, nil
		}
		org, err := s.repos.Org.Get(id)
		if err != nil {
			return nil, err
		}
		orgs[id] = org
		return org, nil
	}

	// A row without a matched user, researcher id or usable token goes to
	// the invitation branch; everything else goes to its researcher's sync
	// group.
	syncGroups := make(map[syncKey][]repo.PendingRow)
	inviteGroups := make(map[inviteKey][]repo.PendingRow)
	for _, row := range rows {
		if row.UserID == 0 || row.ResearcherID == "" || !row.HasToken {
			key := inviteKey{
				taskID:    row.TaskID,
				orgID:     row.OrgID,
				email:     strings.ToLower(row.Email),
				firstName: row.FirstName,
				lastName:  row.LastName,
			}
			inviteGroups[key] = append(inviteGroups[key], row)
		} else {
			key := syncKey{orgID: row.OrgID, userID: row.UserID}
			syncGroups[key] = append(syncGroups[key], row)
		}
	}

	for key, group := range inviteGroups {
		s.inviteGroup(ctx, kind, key, group, getOrg)
	}
	for key, group := range syncGroups {
		s.syncGroup(ctx, kind, key, group, getOrg)
	}

	s.rollUp(kind, rows)
	return nil
}

func (s *Scheduler) inviteGroup(ctx context.Context, kind model.TaskType, key inviteKey,
	rows []repo.PendingRow, getOrg func(uint64) (*model.Organisation, error)) {
	org, err := getOrg(key.orgID)
	if err != nil {
		log.Errorf("loading organisation %d: %v", key.orgID, err)
		return
	}
	inviter, err := s.repos.User.Get(rows[0].TaskCreatedBy)
	if err != nil {
		log.Errorf("loading task creator %d: %v", rows[0].TaskCreatedBy, err)
		inviter = &model.User{}
	}
	inv := invite.Invitation{
		TaskID:    key.taskID,
		Kind:      kind,
		Email:     key.email,
		FirstName: key.firstName,
		LastName:  key.lastName,
	}
	if kind == model.TaskTypeAffiliation {
		for _, row := range rows {
			inv.AffiliationTypes = append(inv.AffiliationTypes, row.AffiliationType)
		}
	}
	if err := s.inviter.Invite(ctx, inviter, org, inv); err != nil {
		if kind == model.TaskTypeAffiliation {
			status := fmt.Sprintf("Failed to send an invitation: %s.", err)
			if markErr := s.repos.Affiliation.MarkInviteFailed(key.taskID, key.email, status); markErr != nil {
				log.Errorf("marking failed invitation of %s: %v", key.email, markErr)
			}
		} else {
			log.Errorf("inviting %s for %s records: %v", key.email, kind.String(), err)
		}
	}
}

func (s *Scheduler) syncGroup(ctx context.Context, kind model.TaskType, key syncKey,
	rows []repo.PendingRow, getOrg func(uint64) (*model.Organisation, error)) {
	org, err := getOrg(key.orgID)
	if err != nil {
		log.Errorf("loading organisation %d: %v", key.orgID, err)
		return
	}
	user, err := s.repos.User.Get(key.userID)
	if err != nil {
		log.Errorf("loading user %d: %v", key.userID, err)
		return
	}
	switch kind {
	case model.TaskTypeAffiliation:
		err = s.syncer.SyncAffiliations(ctx, org, user, rows)
	case model.TaskTypeFunding:
		err = s.syncer.SyncFundings(ctx, org, user, rows)
	case model.TaskTypeWork:
		err = s.syncer.SyncWorks(ctx, org, user, rows)
	case model.TaskTypePeerReview:
		err = s.syncer.SyncPeerReviews(ctx, org, user, rows)
	}
	if err != nil {
		log.Errorf("syncing %s records of %s: %v", kind.String(), user.Email, err)
	}
}

// rollUp stamps records whose invitees are all processed, then tasks whose
// records are all processed, notifying the task creator on completion.
func (s *Scheduler) rollUp(kind model.TaskType, rows []repo.PendingRow) {
	if kind != model.TaskTypeAffiliation {
		seen := make(map[uint64]bool)
		for _, row := range rows {
			if seen[row.RecordID] {
				continue
			}
			seen[row.RecordID] = true
			s.rollUpRecord(kind, row.RecordID)
		}
	}
	seenTasks := make(map[uint64]bool)
	for _, row := range rows {
		if seenTasks[row.TaskID] {
			continue
		}
		seenTasks[row.TaskID] = true
		s.rollUpTask(kind, row.TaskID)
	}
}

func (s *Scheduler) rollUpRecord(kind model.TaskType, recordID uint64) {
	switch kind {
	case model.TaskTypeFunding:
		pending, err := s.repos.Funding.HasUnprocessedInvitees(recordID)
		if err != nil || pending {
			return
		}
		rec, err := s.repos.Funding.GetRecord(recordID)
		if err != nil || rec.ProcessedAt != nil {
			return
		}
		stampRecord(&rec.ProcessedAt, rec.Status, rec.AddStatusLine, "Funding")
		if err := s.repos.Funding.SaveRecord(rec); err != nil {
			log.Errorf("saving funding record %d: %v", recordID, err)
		}
	case model.TaskTypeWork:
		pending, err := s.repos.Work.HasUnprocessedInvitees(recordID)
		if err != nil || pending {
			return
		}
		rec, err := s.repos.Work.GetRecord(recordID)
		if err != nil || rec.ProcessedAt != nil {
			return
		}
		stampRecord(&rec.ProcessedAt, rec.Status, rec.AddStatusLine, "Work")
		if err := s.repos.Work.SaveRecord(rec); err != nil {
			log.Errorf("saving work record %d: %v", recordID, err)
		}
	case model.TaskTypePeerReview:
		pending, err := s.repos.PeerReview.HasUnprocessedInvitees(recordID)
		if err != nil || pending {
			return
		}
		rec, err := s.repos.PeerReview.GetRecord(recordID)
		if err != nil || rec.ProcessedAt != nil {
			return
		}
		stampRecord(&rec.ProcessedAt, rec.Status, rec.AddStatusLine, "Peer review")
		if err := s.repos.PeerReview.SaveRecord(rec); err != nil {
			log.Errorf("saving peer-review record %d: %v", recordID, err)
		}
	}
}

func stampRecord(processedAt **time.Time, status string, addLine func(string), label string) {
	now := time.Now().UTC()
	*processedAt = &now
	if !strings.Contains(strings.ToLower(status), "error") {
		addLine(label + " record is processed.")
	}
}

func (s *Scheduler) rollUpTask(kind model.TaskType, taskID uint64) {
	var pending bool
	var err error
	switch kind {
	case model.TaskTypeAffiliation:
		pending, err = s.repos.Affiliation.HasUnprocessed(taskID)
	case model.TaskTypeFunding:
		pending, err = s.repos.Funding.HasUnprocessed(taskID)
	case model.TaskTypeWork:
		pending, err = s.repos.Work.HasUnprocessed(taskID)
	case model.TaskTypePeerReview:
		pending, err = s.repos.PeerReview.HasUnprocessed(taskID)
	}
	if err != nil {
		log.Errorf("checking task %d completion: %v", taskID, err)
		return
	}
	if pending {
		return
	}
	task, err := s.repos.Task.Get(taskID)
	if err != nil || task.CompletedAt != nil {
		return
	}
	now := time.Now().UTC()
	task.CompletedAt = &now
	if err := s.repos.Task.Save(task); err != nil {
		log.Errorf("saving completed task %d: %v", taskID, err)
		return
	}
	metrics.TasksCompleted.Inc()
	log.Infow("task completed", "task", task.TaskID, "filename", task.Filename, "kind", task.TaskType.String())
	s.sendCompletionEmail(task)
}

func (s *Scheduler) sendCompletionEmail(task *model.Task) {
	creator, err := s.repos.User.Get(task.CreatedBy)
	if err != nil {
		log.Errorf("loading creator of task %d: %v", task.ID, err)
		return
	}
	errorCount, rowCount := s.taskCounts(task)
	vars := map[string]interface{}{
		"Name":       creator.Name,
		"Filename":   task.Filename,
		"Kind":       task.TaskType.String(),
		"ErrorCount": errorCount,
		"RowCount":   rowCount,
		"ExportURL":  s.exportURL(task),
	}
	if task.TaskType == model.TaskTypeAffiliation {
		researchers, err := s.repos.Affiliation.DistinctResearcherCount(task.ID)
		if err != nil {
			log.Errorf("counting researchers of task %d: %v", task.ID, err)
		}
		vars["ResearcherCount"] = researchers
	}
	subject := fmt.Sprintf("Task %s is processed", task.Filename)
	if err := s.sender.Send(mailer.TemplateTaskCompleted, creator.Email, "", subject, vars); err != nil {
		log.Errorf("sending completion email for task %d: %v", task.ID, err)
	}
}

func (s *Scheduler) taskCounts(task *model.Task) (errorCount, rowCount int64) {
	var err error
	switch task.TaskType {
	case model.TaskTypeAffiliation:
		errorCount, _ = s.repos.Affiliation.ErrorCount(task.ID)
		rowCount, err = s.repos.Affiliation.RowCount(task.ID)
	case model.TaskTypeFunding:
		errorCount, _ = s.repos.Funding.ErrorCount(task.ID)
		rowCount, err = s.repos.Funding.RowCount(task.ID)
	case model.TaskTypeWork:
		errorCount, _ = s.repos.Work.ErrorCount(task.ID)
		rowCount, err = s.repos.Work.RowCount(task.ID)
	case model.TaskTypePeerReview:
		errorCount, _ = s.repos.PeerReview.ErrorCount(task.ID)
		rowCount, err = s.repos.PeerReview.RowCount(task.ID)
	}
	if err != nil {
		log.Errorf("counting rows of task %d: %v", task.ID, err)
	}
	return errorCount, rowCount
}

func (s *Scheduler) exportURL(task *model.Task) string {
	return fmt.Sprintf("%s/tasks/%d/export", strings.TrimRight(s.baseURL, "/"), task.ID)
}
