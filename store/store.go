package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cafsi-mindset/portal/model"
)

// Storage keys. Each collection is one whole-collection JSON blob; the
// current-session principal lives under its own key.
const (
	keyUsers    = "cafsi_users"
	keyCourses  = "cafsi_courses"
	keyQuizzes  = "cafsi_quizzes"
	keyResults  = "cafsi_results"
	keySettings = "cafsi_settings"
	keySession  = "cafsi_current_user"
)

var ErrNotFound = errors.New("record not found")

// Store is the Record Store backing all collections. Operations are
// synchronous and fail only when the underlying medium does; there are no
// transactions across collections.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM collections WHERE key=$1`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return data, true, nil
}

func (s *Store) set(ctx context.Context, key, data string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO collections (key,data,updated_at) VALUES ($1,$2,$3)
		ON CONFLICT (key) DO UPDATE SET data=EXCLUDED.data, updated_at=EXCLUDED.updated_at`,
		key, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func getAll[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	data, ok, err := s.get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return items, nil
}

func saveAll[T any](ctx context.Context, s *Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	buf, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.set(ctx, key, string(buf))
}

// append is saveAll(getAll()+[item]): no dedup, no identifier-uniqueness
// enforcement.
func appendOne[T any](ctx context.Context, s *Store, key string, item T) error {
	items, err := getAll[T](ctx, s, key)
	if err != nil {
		return err
	}
	return saveAll(ctx, s, key, append(items, item))
}

// Users

func (s *Store) Users(ctx context.Context) ([]model.User, error) {
	return getAll[model.User](ctx, s, keyUsers)
}

func (s *Store) SaveUsers(ctx context.Context, users []model.User) error {
	return saveAll(ctx, s, keyUsers, users)
}

func (s *Store) AddUser(ctx context.Context, u model.User) error {
	return appendOne(ctx, s, keyUsers, u)
}

func (s *Store) UserByID(ctx context.Context, id string) (model.User, error) {
	users, err := s.Users(ctx)
	if err != nil {
		return model.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

// UpdateUser replaces the user with the same ID; the collection is left
// untouched when no user matches.
func (s *Store) UpdateUser(ctx context.Context, u model.User) error {
	users, err := s.Users(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].ID == u.ID {
			users[i] = u
			return s.SaveUsers(ctx, users)
		}
	}
	return ErrNotFound
}

// DeleteUser removes the user. Dependent results are kept on purpose: the
// historical record survives the account.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	users, err := s.Users(ctx)
	if err != nil {
		return err
	}
	kept := users[:0]
	for _, u := range users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	return s.SaveUsers(ctx, kept)
}

// Courses

func (s *Store) Courses(ctx context.Context) ([]model.Course, error) {
	return getAll[model.Course](ctx, s, keyCourses)
}

func (s *Store) SaveCourses(ctx context.Context, courses []model.Course) error {
	return saveAll(ctx, s, keyCourses, courses)
}

func (s *Store) AddCourse(ctx context.Context, c model.Course) error {
	return appendOne(ctx, s, keyCourses, c)
}

func (s *Store) DeleteCourse(ctx context.Context, id string) error {
	courses, err := s.Courses(ctx)
	if err != nil {
		return err
	}
	kept := courses[:0]
	for _, c := range courses {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	return s.SaveCourses(ctx, kept)
}

// Quizzes

func (s *Store) Quizzes(ctx context.Context) ([]model.Quiz, error) {
	return getAll[model.Quiz](ctx, s, keyQuizzes)
}

func (s *Store) SaveQuizzes(ctx context.Context, quizzes []model.Quiz) error {
	return saveAll(ctx, s, keyQuizzes, quizzes)
}

func (s *Store) AddQuiz(ctx context.Context, q model.Quiz) error {
	return appendOne(ctx, s, keyQuizzes, q)
}

func (s *Store) QuizByID(ctx context.Context, id string) (model.Quiz, error) {
	quizzes, err := s.Quizzes(ctx)
	if err != nil {
		return model.Quiz{}, err
	}
	for _, q := range quizzes {
		if q.ID == id {
			return q, nil
		}
	}
	return model.Quiz{}, ErrNotFound
}

// DeleteQuiz removes the quiz; past results keep their snapshotted title.
func (s *Store) DeleteQuiz(ctx context.Context, id string) error {
	quizzes, err := s.Quizzes(ctx)
	if err != nil {
		return err
	}
	kept := quizzes[:0]
	for _, q := range quizzes {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	return s.SaveQuizzes(ctx, kept)
}

// Results

func (s *Store) Results(ctx context.Context) ([]model.QuizResult, error) {
	return getAll[model.QuizResult](ctx, s, keyResults)
}

func (s *Store) AddResult(ctx context.Context, r model.QuizResult) error {
	return appendOne(ctx, s, keyResults, r)
}

func (s *Store) ResultsByUser(ctx context.Context, userID string) ([]model.QuizResult, error) {
	results, err := s.Results(ctx)
	if err != nil {
		return nil, err
	}
	out := []model.QuizResult{}
	for _, r := range results {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Settings

func (s *Store) Settings(ctx context.Context) (model.AppSettings, error) {
	data, ok, err := s.get(ctx, keySettings)
	if err != nil {
		return model.AppSettings{}, err
	}
	if !ok {
		return defaultSettings, nil
	}
	var cfg model.AppSettings
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return model.AppSettings{}, fmt.Errorf("decode %s: %w", keySettings, err)
	}
	return cfg, nil
}

func (s *Store) SaveSettings(ctx context.Context, cfg model.AppSettings) error {
	buf, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", keySettings, err)
	}
	return s.set(ctx, keySettings, string(buf))
}

// Current session

// SessionToken returns the stored session token, or "" when nobody is
// logged in.
func (s *Store) SessionToken(ctx context.Context) (string, error) {
	data, ok, err := s.get(ctx, keySession)
	if err != nil || !ok {
		return "", err
	}
	return data, nil
}

func (s *Store) SetSessionToken(ctx context.Context, token string) error {
	return s.set(ctx, keySession, token)
}

func (s *Store) ClearSession(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE key=$1`, keySession)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
