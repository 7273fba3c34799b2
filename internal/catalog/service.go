// Package catalog serves courses, classes and enrollments straight from the document store.
package catalog

import (
	"context"
	"errors"

	"classroom-api/internal/docstore"
	"classroom-api/pkg/logger"
)

var ErrInvalidID = errors.New("catalog: invalid id")

// Auditor receives class deletions.
type Auditor interface {
	LogClassDeleted(ctx context.Context, actorEmail, ip, targetID string) error
}

type Actor struct {
	Email string
	IP    string
}

type Service struct {
	courses     docstore.Collection
	classes     docstore.Collection
	enrollments docstore.Collection
	audit       Auditor
}

func NewService(store docstore.Store, audit Auditor) *Service {
	return &Service{
		courses:     store.Collection(docstore.Courses),
		classes:     store.Collection(docstore.Classes),
		enrollments: store.Collection(docstore.Enrollments),
		audit:       audit,
	}
}

func (s *Service) ListCourses(ctx context.Context) ([]docstore.Document, error) {
	return s.courses.Find(ctx, docstore.Filter{})
}

func (s *Service) CreateCourse(ctx context.Context, doc docstore.Document) (docstore.InsertResult, error) {
	return s.courses.InsertOne(ctx, withoutID(doc))
}

func (s *Service) ListClasses(ctx context.Context) ([]docstore.Document, error) {
	return s.classes.Find(ctx, docstore.Filter{})
}

func (s *Service) CreateClass(ctx context.Context, doc docstore.Document) (docstore.InsertResult, error) {
	return s.classes.InsertOne(ctx, withoutID(doc))
}

// DeleteClass removes a class by id. Ownership is not checked: any authenticated caller may delete.
func (s *Service) DeleteClass(ctx context.Context, id string, actor Actor) (docstore.DeleteResult, error) {
	filter, err := docstore.ByID(id)
	if err != nil {
		return docstore.DeleteResult{}, ErrInvalidID
	}
	res, err := s.classes.DeleteOne(ctx, filter)
	if err != nil {
		return docstore.DeleteResult{}, err
	}
	if res.DeletedCount > 0 && s.audit != nil {
		if err := s.audit.LogClassDeleted(ctx, actor.Email, actor.IP, id); err != nil {
			logger.From(ctx).Warn("audit class deletion failed", "err", err, "target_id", id)
		}
	}
	return res, nil
}

// Enrollments returns the enrollments recorded for email.
func (s *Service) Enrollments(ctx context.Context, email string) ([]docstore.Document, error) {
	return s.enrollments.Find(ctx, docstore.ByEmail(email))
}

func (s *Service) Enroll(ctx context.Context, doc docstore.Document) (docstore.InsertResult, error) {
	return s.enrollments.InsertOne(ctx, withoutID(doc))
}

// withoutID lets the store assign identifiers.
func withoutID(doc docstore.Document) docstore.Document {
	out := make(docstore.Document, len(doc))
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		out[k] = v
	}
	return out
}
