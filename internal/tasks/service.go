package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Saatvik786/TaskSphere/internal/domain"
	"github.com/Saatvik786/TaskSphere/internal/repo"
	validation "github.com/go-ozzo/ozzo-validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store interface {
	CreateTask(ctx context.Context, t *domain.Task) error
	FindTaskByID(ctx context.Context, id string) (*domain.Task, error)
	ListTasksByOwner(ctx context.Context, owner primitive.ObjectID) ([]domain.Task, error)
	UpdateTask(ctx context.Context, t *domain.Task) error
	DeleteTask(ctx context.Context, id primitive.ObjectID) error
}

type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// UpdateInput is a partial update. A nil or blank title/status keeps the stored value;
// a non-nil description replaces it, even when empty.
type UpdateInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func validate(t *domain.Task) error {
	err := validation.ValidateStruct(t,
		validation.Field(&t.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&t.Description, validation.Length(0, 2000)),
		validation.Field(&t.Status, validation.Required, validation.In(domain.TaskStatuses...)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

type Service struct {
	store Store
}

func NewService(store Store) *Service { return &Service{store: store} }

func owner(uid string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		return primitive.NilObjectID, domain.ErrUnauthorized
	}
	return oid, nil
}

func upstream(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrUpstreamUnavailable, op, err)
}

// List returns the caller's tasks, newest first.
func (s *Service) List(ctx context.Context, uid string) ([]domain.Task, error) {
	oid, err := owner(uid)
	if err != nil {
		return nil, err
	}
	ts, err := s.store.ListTasksByOwner(ctx, oid)
	if err != nil {
		return nil, upstream("list tasks", err)
	}
	return ts, nil
}

func (s *Service) Create(ctx context.Context, uid string, in CreateInput) (*domain.Task, error) {
	oid, err := owner(uid)
	if err != nil {
		return nil, err
	}
	t := &domain.Task{
		UserID:      oid,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      strings.TrimSpace(in.Status),
	}
	if t.Title == "" {
		return nil, domain.ErrMissingFields
	}
	if t.Status == "" {
		t.Status = domain.StatusPending
	}
	if err := validate(t); err != nil {
		return nil, err
	}
	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, upstream("create task", err)
	}
	return t, nil
}

// Get loads a task the caller owns. Unknown and malformed ids are ErrNotFound; someone
// else's task is ErrForbidden.
func (s *Service) Get(ctx context.Context, uid, id string) (*domain.Task, error) {
	t, err := s.store.FindTaskByID(ctx, id)
	if err != nil {
		return nil, upstream("find task", err)
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if !t.OwnedBy(uid) {
		return nil, domain.ErrForbidden
	}
	return t, nil
}

func (s *Service) Update(ctx context.Context, uid, id string, in UpdateInput) (*domain.Task, error) {
	t, err := s.Get(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		t.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil && strings.TrimSpace(*in.Status) != "" {
		t.Status = strings.TrimSpace(*in.Status)
	}
	if err := validate(t); err != nil {
		return nil, err
	}
	if err := s.store.UpdateTask(ctx, t); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, upstream("update task", err)
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, uid, id string) error {
	t, err := s.Get(ctx, uid, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, t.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.ErrNotFound
		}
		return upstream("delete task", err)
	}
	return nil
}
