package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
// It is append-only: there are no Update or Delete methods.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records privileged mutations.
// Callers treat it as best-effort and log a failure instead of failing the request.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" || e.ActorEmail == "" || e.Collection == "" || e.TargetID == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogRoleGranted records a role promotion.
func (s *Service) LogRoleGranted(ctx context.Context, actorEmail, ip, collection, targetID, role string) error {
	return s.Append(ctx, Event{
		Type:       EventTypeRoleGranted,
		ActorEmail: actorEmail,
		IPAddress:  ip,
		Collection: collection,
		TargetID:   targetID,
		Role:       role,
		Message:    "role granted",
	})
}

// LogClassDeleted records a class removal. Any authenticated caller may delete, so the trail matters.
func (s *Service) LogClassDeleted(ctx context.Context, actorEmail, ip, targetID string) error {
	return s.Append(ctx, Event{
		Type:       EventTypeClassDeleted,
		ActorEmail: actorEmail,
		IPAddress:  ip,
		Collection: "classes",
		TargetID:   targetID,
		Message:    "class deleted",
	})
}
