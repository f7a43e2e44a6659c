// Package manage holds the authoring operations behind the admin screens:
// user accounts, courses, quizzes, and the application settings singleton.
package manage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cafsi-mindset/portal/model"
	"github.com/cafsi-mindset/portal/rbac"
	"github.com/cafsi-mindset/portal/store"
)

var (
	ErrDuplicateID      = errors.New("identifier already exists")
	ErrPermissionDenied = errors.New("permission denied")
)

type Service struct {
	store    *store.Store
	perms    *rbac.Checker
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

func NewService(st *store.Store) *Service {
	return &Service{
		store:    st,
		perms:    rbac.NewChecker(nil),
		validate: validator.New(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

type NewUser struct {
	ID     string `json:"id" validate:"required"`
	Name   string `json:"name" validate:"required"`
	Secret string `json:"secret" validate:"required"`
}

// CreateUser adds a trainee account. The identifier must be unique across
// the user collection; the secret is stored as a bcrypt hash.
func (s *Service) CreateUser(ctx context.Context, actor model.User, in NewUser) (model.User, error) {
	if !s.perms.Has(actor.Role, "user:create") {
		return model.User{}, ErrPermissionDenied
	}
	if err := s.validate.Struct(in); err != nil {
		return model.User{}, fmt.Errorf("invalid user: %w", err)
	}
	if _, err := s.store.UserByID(ctx, in.ID); err == nil {
		return model.User{}, ErrDuplicateID
	} else if !errors.Is(err, store.ErrNotFound) {
		return model.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Secret), 12)
	if err != nil {
		return model.User{}, fmt.Errorf("hash secret: %w", err)
	}
	u := model.User{ID: in.ID, Secret: string(hash), Name: in.Name, Role: model.RoleTrainee}
	if err := s.store.AddUser(ctx, u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// DeleteUser removes the account. The user's results are kept; see the
// Record Store's no-cascade policy.
func (s *Service) DeleteUser(ctx context.Context, actor model.User, id string) error {
	if !s.perms.Has(actor.Role, "user:delete") {
		return ErrPermissionDenied
	}
	return s.store.DeleteUser(ctx, id)
}

type NewCourse struct {
	Title       string            `json:"title" validate:"required"`
	Description string            `json:"description" validate:"required"`
	Content     string            `json:"content" validate:"required"`
	Kind        model.ContentKind `json:"type" validate:"required,oneof=text pdf"`
}

// CreateCourse publishes a course. Courses are immutable once created;
// correcting one means deleting and re-creating it.
func (s *Service) CreateCourse(ctx context.Context, actor model.User, in NewCourse) (model.Course, error) {
	if !s.perms.Has(actor.Role, "course:create") {
		return model.Course{}, ErrPermissionDenied
	}
	if err := s.validate.Struct(in); err != nil {
		return model.Course{}, fmt.Errorf("invalid course: %w", err)
	}
	c := model.Course{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		Kind:        in.Kind,
		CreatedAt:   s.now(),
	}
	if err := s.store.AddCourse(ctx, c); err != nil {
		return model.Course{}, err
	}
	return c, nil
}

func (s *Service) DeleteCourse(ctx context.Context, actor model.User, id string) error {
	if !s.perms.Has(actor.Role, "course:delete") {
		return ErrPermissionDenied
	}
	return s.store.DeleteCourse(ctx, id)
}

type NewQuestion struct {
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"len=4,dive,required"`
	CorrectAnswer int      `json:"correctAnswer" validate:"gte=0,lte=3"`
}

type NewQuiz struct {
	Title       string        `json:"title" validate:"required"`
	Description string        `json:"description" validate:"required"`
	Duration    int           `json:"duration" validate:"gte=1"` // minutes
	Questions   []NewQuestion `json:"questions" validate:"min=1,dive"`
}

// CreateQuiz publishes a timed quiz. Every question carries exactly four
// non-empty options and a correct-option index within range.
func (s *Service) CreateQuiz(ctx context.Context, actor model.User, in NewQuiz) (model.Quiz, error) {
	if !s.perms.Has(actor.Role, "quiz:create") {
		return model.Quiz{}, ErrPermissionDenied
	}
	if err := s.validate.Struct(in); err != nil {
		return model.Quiz{}, fmt.Errorf("invalid quiz: %w", err)
	}
	q := model.Quiz{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		Duration:    in.Duration,
		CreatedAt:   s.now(),
	}
	for _, nq := range in.Questions {
		opts := make([]string, len(nq.Options))
		copy(opts, nq.Options)
		q.Questions = append(q.Questions, model.QuizQuestion{
			ID:            s.newID(),
			Question:      nq.Question,
			Options:       opts,
			CorrectAnswer: nq.CorrectAnswer,
		})
	}
	if err := s.store.AddQuiz(ctx, q); err != nil {
		return model.Quiz{}, err
	}
	return q, nil
}

// DeleteQuiz removes the quiz definition. Past results keep their
// snapshotted titles and are never cleaned up.
func (s *Service) DeleteQuiz(ctx context.Context, actor model.User, id string) error {
	if !s.perms.Has(actor.Role, "quiz:delete") {
		return ErrPermissionDenied
	}
	return s.store.DeleteQuiz(ctx, id)
}

type SettingsUpdate struct {
	AppName string `json:"appName" validate:"required"`
	LogoURL string `json:"logoUrl" validate:"omitempty,url"`
}

// SaveSettings replaces the settings singleton.
func (s *Service) SaveSettings(ctx context.Context, actor model.User, in SettingsUpdate) (model.AppSettings, error) {
	if !s.perms.Has(actor.Role, "settings:save") {
		return model.AppSettings{}, ErrPermissionDenied
	}
	if err := s.validate.Struct(in); err != nil {
		return model.AppSettings{}, fmt.Errorf("invalid settings: %w", err)
	}
	cfg := model.AppSettings{AppName: in.AppName, LogoURL: in.LogoURL}
	if err := s.store.SaveSettings(ctx, cfg); err != nil {
		return model.AppSettings{}, err
	}
	return cfg, nil
}
