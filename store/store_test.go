package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cafsi-mindset/portal/db"
	"github.com/cafsi-mindset/portal/model"
	"github.com/cafsi-mindset/portal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "store.db")
	conn, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return store.New(conn)
}

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	s := newTestStore(t)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s
}

func TestInitSeedsOnlyWhenAbsent(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)

	users, err := s.Users(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 3 {
		t.Fatalf("seeded %d users, want 3", len(users))
	}
	if users[1].ID != "asi001" || users[1].Role != model.RoleTrainee {
		t.Fatalf("unexpected seed user: %+v", users[1])
	}
	if users[1].Secret == "1234" {
		t.Fatal("seed secret stored in plain text")
	}

	// a second Init against an initialized medium must be a no-op
	if err := s.AddUser(ctx, model.User{ID: "asi003", Name: "Extra", Role: model.RoleTrainee}); err != nil {
		t.Fatal(err)
	}
	if err := s.Init(ctx); err != nil {
		t.Fatal(err)
	}
	users, err = s.Users(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 4 {
		t.Fatalf("re-running Init reset the collection: %d users", len(users))
	}
}

func TestAppendRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)

	first := model.QuizResult{ID: "r1", UserID: "asi001", QuizID: "1", QuizTitle: "Q1",
		Score: 3, TotalQuestions: 5, CompletedAt: time.Now(), Answers: []int{0, 1, 2, 3, 0}}
	second := first
	second.ID = "r2"
	second.Score = 4

	if err := s.AddResult(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := s.AddResult(ctx, second); err != nil {
		t.Fatal(err)
	}

	results, err := s.Results(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ID != "r1" || results[1].ID != "r2" {
		t.Fatalf("append broke relative order: %s, %s", results[0].ID, results[1].ID)
	}
	if results[0].Score != 3 || len(results[0].Answers) != 5 {
		t.Fatalf("first item mutated by append: %+v", results[0])
	}
}

func TestDeleteByIDKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)

	for _, id := range []string{"a", "b", "c"} {
		if err := s.AddQuiz(ctx, model.Quiz{ID: id, Title: id}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.DeleteQuiz(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	quizzes, err := s.Quizzes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// seed quiz "1" plus a and c
	ids := []string{}
	for _, q := range quizzes {
		ids = append(ids, q.ID)
	}
	want := []string{"1", "a", "c"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

func TestDeleteDoesNotCascade(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)

	res := model.QuizResult{ID: "r1", UserID: "asi001", QuizID: "1", QuizTitle: "QCM",
		Score: 1, TotalQuestions: 2, CompletedAt: time.Now(), Answers: []int{0, model.Unanswered}}
	if err := s.AddResult(ctx, res); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteQuiz(ctx, "1"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteUser(ctx, "asi001"); err != nil {
		t.Fatal(err)
	}

	results, err := s.Results(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].QuizTitle != "QCM" {
		t.Fatalf("results changed after quiz/user deletion: %+v", results)
	}
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)

	u, err := s.UserByID(ctx, "asi002")
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	u.LastLogin = &now
	if err := s.UpdateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	got, err := s.UserByID(ctx, "asi002")
	if err != nil {
		t.Fatal(err)
	}
	if got.LastLogin == nil {
		t.Fatal("last-login update not persisted")
	}

	err = s.UpdateUser(ctx, model.User{ID: "ghost"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("UpdateUser(ghost) = %v, want ErrNotFound", err)
	}
}

func TestSessionSlot(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tok, err := s.SessionToken(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if tok != "" {
		t.Fatalf("fresh store has session token %q", tok)
	}
	if err := s.SetSessionToken(ctx, "abc"); err != nil {
		t.Fatal(err)
	}
	if tok, _ = s.SessionToken(ctx); tok != "abc" {
		t.Fatalf("token = %q, want abc", tok)
	}
	if err := s.ClearSession(ctx); err != nil {
		t.Fatal(err)
	}
	if tok, _ = s.SessionToken(ctx); tok != "" {
		t.Fatalf("token survives logout: %q", tok)
	}
}

func TestSettingsSingleton(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	cfg, err := s.Settings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AppName != "CAFSI MINDSET" {
		t.Fatalf("default app name = %q", cfg.AppName)
	}

	cfg.AppName = "CAFSI PRO"
	cfg.LogoURL = "https://example.test/logo.png"
	if err := s.SaveSettings(ctx, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := s.Settings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != cfg {
		t.Fatalf("settings = %+v, want %+v", got, cfg)
	}
}
