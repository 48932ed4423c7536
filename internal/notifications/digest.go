package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"uia-atlas/atlas-portal/internal/projects"
	"uia-atlas/atlas-portal/pkg/catalog"
)

// PendingLister returns the review queue. A zero pageSize means all of it.
type PendingLister interface {
	ListPending(ctx context.Context, page, pageSize int) (*projects.Page, error)
}

type digestItem struct {
	ProjectName string
	City        string
	Status      catalog.WorkflowStatus
	SubmittedAt time.Time
	Link        string
}

type digestMail struct {
	Pending []digestItem
	Link    string
}

// DigestJob mails the admin a summary of the review queue.
type DigestJob struct {
	pending    PendingLister
	service    *Service
	adminEmail string
	logger     *zap.Logger
}

func NewDigestJob(pending PendingLister, service *Service, adminEmail string, logger *zap.Logger) *DigestJob {
	return &DigestJob{pending: pending, service: service, adminEmail: adminEmail, logger: logger}
}

// Run sends one digest. An empty queue sends nothing and returns 0.
func (j *DigestJob) Run(ctx context.Context) (int, error) {
	if j.adminEmail == "" {
		return 0, errors.New("digest: no admin e-mail configured")
	}
	page, err := j.pending.ListPending(ctx, 1, 0)
	if err != nil {
		return 0, fmt.Errorf("digest: list pending: %w", err)
	}
	if len(page.Projects) == 0 {
		j.logger.Info("Digest skipped, review queue empty")
		return 0, nil
	}

	data := digestMail{Link: j.service.links.AdminDashboard()}
	for _, p := range page.Projects {
		data.Pending = append(data.Pending, digestItem{
			ProjectName: p.ProjectName,
			City:        p.City,
			Status:      p.WorkflowStatus,
			SubmittedAt: p.CreatedAt,
			Link:        j.service.links.Review(p.ID.String()),
		})
	}
	subject, body, err := j.service.templates.Render(KindDigest, data)
	if err != nil {
		return 0, err
	}
	if err := j.service.sender.Send(ctx, Message{To: j.adminEmail, Subject: subject, HTML: body}); err != nil {
		return 0, fmt.Errorf("digest: send: %w", err)
	}

	j.logger.Info("Digest sent", zap.Int("pending", len(data.Pending)))
	return len(data.Pending), nil
}

// Scheduler runs the digest on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	job    *DigestJob
	logger *zap.Logger
}

// NewScheduler validates the standard five-field expression and registers
// the job.
func NewScheduler(schedule string, job *DigestJob, logger *zap.Logger) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid digest schedule %q: %w", schedule, err)
	}

	s := &Scheduler{cron: cron.New(cron.WithParser(parser)), job: job, logger: logger}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("schedule digest: %w", err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, err := s.job.Run(ctx); err != nil {
		s.logger.Error("Digest run failed", zap.Error(err))
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Digest scheduler started")
}

// Stop waits for a running digest to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Digest scheduler stopped")
}
