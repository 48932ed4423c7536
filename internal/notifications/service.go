package notifications

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"uia-atlas/atlas-portal/internal/projects"
)

const sendTimeout = 30 * time.Second

// Service turns workflow events into e-mail. Sends run in the background and
// failures are only logged.
type Service struct {
	sender     Sender
	templates  *TemplateManager
	links      Links
	adminEmail string
	logger     *zap.Logger
	wg         sync.WaitGroup
}

func NewService(sender Sender, templates *TemplateManager, links Links, adminEmail string, logger *zap.Logger) *Service {
	return &Service{
		sender:     sender,
		templates:  templates,
		links:      links,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

type projectMail struct {
	ProjectName string
	City        string
	Country     string
	Link        string
	Note        string
}

func (s *Service) ProjectSubmitted(ctx context.Context, p *projects.Project) {
	if s.adminEmail == "" {
		return
	}
	s.dispatch(KindSubmitted, s.adminEmail, projectMail{
		ProjectName: p.ProjectName,
		City:        p.City,
		Country:     p.Country,
		Link:        s.links.Review(p.ID.String()),
	})
}

func (s *Service) ProjectApproved(ctx context.Context, p *projects.Project) {
	s.dispatch(KindApproved, p.ContactEmail, projectMail{
		ProjectName: p.ProjectName,
		Link:        s.links.Public(p.ID.String()),
	})
}

func (s *Service) ProjectRejected(ctx context.Context, p *projects.Project, reason string) {
	s.dispatch(KindRejected, p.ContactEmail, projectMail{
		ProjectName: p.ProjectName,
		Note:        reason,
	})
}

func (s *Service) ChangesRequested(ctx context.Context, p *projects.Project, message string) {
	s.dispatch(KindChangesRequested, p.ContactEmail, projectMail{
		ProjectName: p.ProjectName,
		Link:        s.links.Edit(p.EditToken),
		Note:        message,
	})
}

// dispatch renders synchronously and sends in the background, detached from
// the request context.
func (s *Service) dispatch(kind Kind, to string, data any) {
	if to == "" {
		return
	}
	subject, body, err := s.templates.Render(kind, data)
	if err != nil {
		s.logger.Error("Failed to render email", zap.Error(err), zap.String("kind", string(kind)))
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		s.deliver(ctx, kind, Message{To: to, Subject: subject, HTML: body})
	}()
}

func (s *Service) deliver(ctx context.Context, kind Kind, msg Message) {
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error("Failed to send email",
			zap.Error(err),
			zap.String("kind", string(kind)),
			zap.String("to", msg.To))
		return
	}
	s.logger.Info("Email sent", zap.String("kind", string(kind)), zap.String("to", msg.To))
}

// Wait blocks until background sends finish.
func (s *Service) Wait() {
	s.wg.Wait()
}
