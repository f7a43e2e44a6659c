// Package session owns the lifecycle of one quiz attempt: selection,
// in-progress answer and countdown bookkeeping, scoring, and persistence of
// the final result. One Engine serves one attempt at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cafsi-mindset/portal/model"
)

type State string

const (
	StateIdle       State = "idle"
	StateInProgress State = "in_progress"
	StateFinished   State = "finished"
)

var (
	ErrNoQuestions   = errors.New("quiz has no questions")
	ErrNotInProgress = errors.New("no quiz in progress")
	ErrUnanswered    = errors.New("all questions must be answered before submitting")
	ErrBadOption     = errors.New("option index out of range")
)

// ResultStore is the slice of the Record Store the engine needs: appending
// the completed attempt's result.
type ResultStore interface {
	AddResult(ctx context.Context, r model.QuizResult) error
}

// Engine is the quiz session state machine. All methods are safe for use
// from the UI event path concurrently with the countdown tick.
type Engine struct {
	mu    sync.Mutex
	store ResultStore
	user  model.User

	state     State
	quiz      model.Quiz
	current   int
	answers   []int
	remaining int // seconds
	result    *model.QuizResult

	stop chan struct{}

	tickEvery time.Duration
	now       func() time.Time
	newID     func() string
}

func New(st ResultStore, user model.User) *Engine {
	return &Engine{
		store:     st,
		user:      user,
		state:     StateIdle,
		tickEvery: time.Second,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Start loads the quiz and transitions Idle -> InProgress: question pointer
// at 0, every answer slot unanswered, remaining time = duration in minutes.
// Starting over an active session abandons it first.
func (e *Engine) Start(quiz model.Quiz) error {
	if len(quiz.Questions) == 0 {
		return ErrNoQuestions
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopClockLocked()
	e.quiz = quiz
	e.current = 0
	e.answers = make([]int, len(quiz.Questions))
	for i := range e.answers {
		e.answers[i] = model.Unanswered
	}
	e.remaining = quiz.Duration * 60
	e.result = nil
	e.state = StateInProgress

	e.stop = make(chan struct{})
	go e.runClock(e.stop)
	return nil
}

// runClock decrements remaining once per second while the session is in
// progress and forces the submit transition when it reaches zero. The loop
// exits as soon as the session leaves InProgress, so a stray tick can never
// mutate a discarded session.
func (e *Engine) runClock(stop chan struct{}) {
	ticker := time.NewTicker(e.tickEvery)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.tick()
		}
	}
}

func (e *Engine) tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateInProgress {
		return
	}
	e.remaining--
	if e.remaining > 0 {
		return
	}
	e.remaining = 0
	if _, err := e.finishLocked(context.Background()); err != nil {
		log.Printf("session: submit on timeout: %v", err)
	}
}

// Answer records the option for the current question. Repeated calls
// overwrite: last write wins. The question pointer does not move.
func (e *Engine) Answer(option int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateInProgress {
		return ErrNotInProgress
	}
	if option < 0 || option >= len(e.quiz.Questions[e.current].Options) {
		return ErrBadOption
	}
	e.answers[e.current] = option
	return nil
}

// Next advances the question pointer unless already at the last question.
func (e *Engine) Next() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateInProgress {
		return ErrNotInProgress
	}
	if e.current < len(e.quiz.Questions)-1 {
		e.current++
	}
	return nil
}

// Previous moves the question pointer back unless already at the first.
func (e *Engine) Previous() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateInProgress {
		return ErrNotInProgress
	}
	if e.current > 0 {
		e.current--
	}
	return nil
}

// Submit is the manual completion path. It requires every slot to be
// answered; the countdown reaching zero submits regardless. Calling Submit
// after the attempt finished returns the already-persisted result.
func (e *Engine) Submit(ctx context.Context) (model.QuizResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateFinished && e.result != nil {
		return *e.result, nil
	}
	if e.state != StateInProgress {
		return model.QuizResult{}, ErrNotInProgress
	}
	for _, a := range e.answers {
		if a == model.Unanswered {
			return model.QuizResult{}, ErrUnanswered
		}
	}
	return e.finishLocked(ctx)
}

// finishLocked scores the attempt, persists the result exactly once, and
// transitions to Finished. Unanswered slots never match and count as
// incorrect. Callers hold e.mu.
func (e *Engine) finishLocked(ctx context.Context) (model.QuizResult, error) {
	score := 0
	for i, q := range e.quiz.Questions {
		if e.answers[i] == q.CorrectAnswer {
			score++
		}
	}

	answers := make([]int, len(e.answers))
	copy(answers, e.answers)
	res := model.QuizResult{
		ID:             e.newID(),
		UserID:         e.user.ID,
		QuizID:         e.quiz.ID,
		QuizTitle:      e.quiz.Title,
		Score:          score,
		TotalQuestions: len(e.quiz.Questions),
		CompletedAt:    e.now(),
		Answers:        answers,
	}

	if err := e.store.AddResult(ctx, res); err != nil {
		return model.QuizResult{}, fmt.Errorf("persist result: %w", err)
	}

	e.result = &res
	e.state = StateFinished
	e.stopClockLocked()
	return res, nil
}

// Abandon discards the attempt without persisting anything and returns the
// engine to Idle. Valid from InProgress and Finished alike.
func (e *Engine) Abandon() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopClockLocked()
	e.state = StateIdle
	e.quiz = model.Quiz{}
	e.current = 0
	e.answers = nil
	e.remaining = 0
	e.result = nil
}

func (e *Engine) stopClockLocked() {
	if e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
}

// State reports the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Current returns the question under the pointer and its index.
func (e *Engine) Current() (model.QuizQuestion, int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateInProgress {
		return model.QuizQuestion{}, 0, ErrNotInProgress
	}
	return e.quiz.Questions[e.current], e.current, nil
}

// Answers returns a copy of the answer vector.
func (e *Engine) Answers() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]int, len(e.answers))
	copy(out, e.answers)
	return out
}

// Remaining reports the countdown in seconds.
func (e *Engine) Remaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.remaining
}

// Result returns the persisted result once the attempt finished.
func (e *Engine) Result() (model.QuizResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.result == nil {
		return model.QuizResult{}, false
	}
	return *e.result, true
}

// FormatClock renders a second count as m:ss for countdown display.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
