package report_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cafsi-mindset/portal/db"
	"github.com/cafsi-mindset/portal/model"
	"github.com/cafsi-mindset/portal/report"
	"github.com/cafsi-mindset/portal/store"
)

func newService(t *testing.T) (*report.Service, *store.Store) {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "report.db")
	conn, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	st := store.New(conn)
	if err := st.Init(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return report.NewService(st), st
}

func result(id, userID string, score, total int, at time.Time) model.QuizResult {
	return model.QuizResult{
		ID: id, UserID: userID, QuizID: "1", QuizTitle: "QCM",
		Score: score, TotalQuestions: total, CompletedAt: at,
	}
}

func TestUserHistoryMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	base := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	for _, r := range []model.QuizResult{
		result("old", "asi001", 1, 5, base),
		result("tie-a", "asi001", 2, 5, base.Add(time.Hour)),
		result("tie-b", "asi001", 3, 5, base.Add(time.Hour)),
		result("new", "asi001", 4, 5, base.Add(2*time.Hour)),
		result("other", "asi002", 5, 5, base.Add(3*time.Hour)),
	} {
		if err := st.AddResult(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	history, err := svc.UserHistory(ctx, "asi001")
	if err != nil {
		t.Fatal(err)
	}
	got := []string{}
	for _, r := range history {
		got = append(got, r.ID)
	}
	want := []string{"new", "tie-a", "tie-b", "old"} // ties keep stored order
	if len(got) != len(want) {
		t.Fatalf("history = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("history = %v, want %v", got, want)
		}
	}
}

func TestUserSummary(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	now := time.Now()
	for _, r := range []model.QuizResult{
		result("r1", "asi001", 5, 5, now),  // 100%
		result("r2", "asi001", 3, 5, now),  // 60%
		result("r3", "asi001", 4, 5, now),  // 80%
		result("r4", "asi002", 0, 5, now),  // someone else
	} {
		if err := st.AddResult(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	sum, err := svc.UserSummary(ctx, "asi001")
	if err != nil {
		t.Fatal(err)
	}
	if sum.Completed != 3 {
		t.Fatalf("completed = %d, want 3", sum.Completed)
	}
	if sum.AveragePercent != 80 {
		t.Fatalf("average = %d, want 80", sum.AveragePercent)
	}
	if sum.BestPercent != 100 {
		t.Fatalf("best = %d, want 100", sum.BestPercent)
	}
	if sum.Passed != 2 { // 100% and 80%
		t.Fatalf("passed = %d, want 2", sum.Passed)
	}
}

func TestUserSummaryEmpty(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	sum, err := svc.UserSummary(ctx, "asi001")
	if err != nil {
		t.Fatal(err)
	}
	if sum != (report.UserSummary{}) {
		t.Fatalf("summary of no results = %+v, want zero", sum)
	}
}

func TestOverview(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	now := time.Now()
	if err := st.AddResult(ctx, result("r1", "asi001", 1, 2, now)); err != nil { // 50%
		t.Fatal(err)
	}
	if err := st.AddResult(ctx, result("r2", "asi002", 2, 2, now)); err != nil { // 100%
		t.Fatal(err)
	}
	u, err := st.UserByID(ctx, "asi001")
	if err != nil {
		t.Fatal(err)
	}
	u.LastLogin = &now
	if err := st.UpdateUser(ctx, u); err != nil {
		t.Fatal(err)
	}

	ov, err := svc.Overview(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ov.Trainees != 2 || ov.Courses != 2 || ov.Quizzes != 1 {
		t.Fatalf("counts = %d/%d/%d, want 2/2/1", ov.Trainees, ov.Courses, ov.Quizzes)
	}
	if ov.AveragePercent != 75 {
		t.Fatalf("global average = %d, want 75", ov.AveragePercent)
	}
	if len(ov.RecentLogins) != 1 || ov.RecentLogins[0].ID != "asi001" {
		t.Fatalf("recent logins = %+v", ov.RecentLogins)
	}
}

func TestExportCSV(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	res := model.QuizResult{QuizTitle: "Q1", Score: 3, TotalQuestions: 5, CompletedAt: at}

	out, err := report.ExportCSV([]model.QuizResult{res})
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header plus one row", len(lines))
	}
	if lines[0] != "Quiz,Score,Total,Pourcentage,Date" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "Q1,3,5,60%,14/03/2025" {
		t.Fatalf("row = %q", lines[1])
	}
}

func TestExportCSVEmpty(t *testing.T) {
	out, err := report.ExportCSV(nil)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(out)) != "Quiz,Score,Total,Pourcentage,Date" {
		t.Fatalf("empty export = %q, want header only", out)
	}
}

func TestExportXLSX(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	res := []model.QuizResult{
		{QuizTitle: "Q1", Score: 3, TotalQuestions: 5, CompletedAt: at},
		{QuizTitle: "Q2", Score: 5, TotalQuestions: 5, CompletedAt: at.Add(24 * time.Hour)},
	}
	out, err := report.ExportXLSX(res)
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()
	sheet := f.GetSheetName(0)

	check := func(cell, want string) {
		t.Helper()
		got, err := f.GetCellValue(sheet, cell)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("%s = %q, want %q", cell, got, want)
		}
	}
	check("A1", "Quiz")
	check("E1", "Date")
	check("A2", "Q1")
	check("D2", "60%")
	check("E2", "14/03/2025")
	check("D3", "100%")
	check("E3", "15/03/2025")
}

func TestPercentageRounding(t *testing.T) {
	cases := []struct {
		score, total, want int
	}{
		{3, 5, 60},
		{1, 3, 33},
		{2, 3, 67},
		{0, 4, 0},
		{4, 4, 100},
		{0, 0, 0},
	}
	for _, c := range cases {
		r := model.QuizResult{Score: c.score, TotalQuestions: c.total}
		if got := r.Percentage(); got != c.want {
			t.Fatalf("Percentage(%d/%d) = %d, want %d", c.score, c.total, got, c.want)
		}
	}
}
