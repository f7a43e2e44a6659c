package model

import (
	"math"
	"time"
)

type Role string

const (
	RoleTrainee Role = "user"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool { return r == RoleTrainee || r == RoleAdmin }

// User is a local principal. Secret holds a bcrypt hash.
type User struct {
	ID        string     `json:"id"`
	Secret    string     `json:"secret"`
	Name      string     `json:"name"`
	Role      Role       `json:"role"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

type ContentKind string

const (
	ContentText ContentKind = "text"
	ContentPDF  ContentKind = "pdf"
)

// Course is immutable once created; there is no edit operation, only delete.
type Course struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Content     string      `json:"content"` // markdown text or a PDF URL
	Kind        ContentKind `json:"type"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

type Quiz struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Duration    int            `json:"duration"` // minutes
	Questions   []QuizQuestion `json:"questions"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Unanswered marks an answer slot that was never selected.
const Unanswered = -1

// QuizResult is the immutable outcome of one completed attempt. QuizTitle is
// snapshotted at completion time so later quiz deletions or re-creations do
// not rewrite history.
type QuizResult struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	QuizID         string    `json:"quizId"`
	QuizTitle      string    `json:"quizTitle"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CompletedAt    time.Time `json:"completedAt"`
	Answers        []int     `json:"answers"`
}

// Percentage returns the rounded score percentage for the result.
func (r QuizResult) Percentage() int {
	if r.TotalQuestions == 0 {
		return 0
	}
	return int(math.Round(float64(r.Score) / float64(r.TotalQuestions) * 100))
}

// AppSettings is a singleton record; one instance exists at all times.
type AppSettings struct {
	AppName string `json:"appName"`
	LogoURL string `json:"logoUrl"`
}
