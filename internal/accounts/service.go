// Package accounts owns user and teacher records and is the only writer of their role.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"classroom-api/internal/docstore"
	"classroom-api/internal/rbac"
	"classroom-api/pkg/logger"
)

var (
	ErrMissingEmail     = errors.New("accounts: email is required")
	ErrInvalidID        = errors.New("accounts: invalid id")
	ErrUnknownDirectory = errors.New("accounts: unknown directory")
)

// Auditor receives role grants. Failures are logged, never surfaced.
type Auditor interface {
	LogRoleGranted(ctx context.Context, actorEmail, ip, collection, targetID, role string) error
}

// Actor is who asked for a mutation.
type Actor struct {
	Email string
	IP    string
}

type RegisterResult struct {
	Created    bool
	InsertedID any
}

type Service struct {
	store docstore.Store
	audit Auditor
}

func NewService(store docstore.Store, audit Auditor) *Service {
	return &Service{store: store, audit: audit}
}

// grantedRole is the role a promotion in dir assigns.
func grantedRole(dir rbac.Directory) (rbac.Role, error) {
	switch dir {
	case rbac.Users:
		return rbac.RoleAdmin, nil
	case rbac.Teachers:
		return rbac.RoleTeacher, nil
	default:
		return rbac.RoleNone, fmt.Errorf("%w: %q", ErrUnknownDirectory, dir)
	}
}

func (s *Service) collection(dir rbac.Directory) (docstore.Collection, error) {
	if _, err := grantedRole(dir); err != nil {
		return nil, err
	}
	return s.store.Collection(string(dir)), nil
}

// EnsureIndexes installs the unique email index on both directories.
func (s *Service) EnsureIndexes(ctx context.Context) error {
	for _, dir := range []rbac.Directory{rbac.Users, rbac.Teachers} {
		if err := s.store.EnsureUniqueEmail(ctx, string(dir)); err != nil {
			return err
		}
	}
	return nil
}

// Register inserts doc unless a record with the same email exists.
// A client-sent role or _id is dropped: new records start without a role.
func (s *Service) Register(ctx context.Context, dir rbac.Directory, doc docstore.Document) (RegisterResult, error) {
	col, err := s.collection(dir)
	if err != nil {
		return RegisterResult{}, err
	}
	email, _ := doc["email"].(string)
	if email == "" {
		return RegisterResult{}, ErrMissingEmail
	}

	_, err = col.FindOne(ctx, docstore.ByEmail(email))
	switch {
	case err == nil:
		return RegisterResult{Created: false}, nil
	case !errors.Is(err, docstore.ErrNotFound):
		return RegisterResult{}, err
	}

	clean := make(docstore.Document, len(doc))
	for k, v := range doc {
		if k == "role" || k == "_id" {
			continue
		}
		clean[k] = v
	}

	res, err := col.InsertOne(ctx, clean)
	if errors.Is(err, docstore.ErrDuplicateKey) {
		// Lost a race with a concurrent registration; the unique index decided.
		return RegisterResult{Created: false}, nil
	}
	if err != nil {
		return RegisterResult{}, err
	}
	return RegisterResult{Created: true, InsertedID: res.InsertedID}, nil
}

// Promote sets the directory's privileged role on the record with the given id.
// It always writes, even if the role is already set.
func (s *Service) Promote(ctx context.Context, dir rbac.Directory, id string, actor Actor) (docstore.UpdateResult, error) {
	role, err := grantedRole(dir)
	if err != nil {
		return docstore.UpdateResult{}, err
	}
	filter, err := docstore.ByID(id)
	if err != nil {
		return docstore.UpdateResult{}, ErrInvalidID
	}

	res, err := s.store.Collection(string(dir)).UpdateOne(ctx, filter, docstore.Document{"role": string(role)})
	if err != nil {
		return docstore.UpdateResult{}, err
	}

	if res.MatchedCount > 0 && s.audit != nil {
		if err := s.audit.LogRoleGranted(ctx, actor.Email, actor.IP, string(dir), id, string(role)); err != nil {
			logger.From(ctx).Warn("audit role grant failed", "err", err, "collection", dir, "target_id", id)
		}
	}
	return res, nil
}

// HasRole reads the stored role for email. A missing record has no role.
func (s *Service) HasRole(ctx context.Context, dir rbac.Directory, email string, role rbac.Role) (bool, error) {
	col, err := s.collection(dir)
	if err != nil {
		return false, err
	}
	doc, err := col.FindOne(ctx, docstore.ByEmail(email))
	if errors.Is(err, docstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	stored, err := rbac.ParseRole(doc["role"])
	if err != nil {
		logger.From(ctx).Warn("ignoring unrecognised stored role", "err", err, "collection", dir)
		return false, nil
	}
	return stored == role, nil
}

func (s *Service) List(ctx context.Context, dir rbac.Directory) ([]docstore.Document, error) {
	col, err := s.collection(dir)
	if err != nil {
		return nil, err
	}
	return col.Find(ctx, docstore.Filter{})
}
