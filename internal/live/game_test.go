// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package live

import (
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/logging"
	"github.com/quizdeck/quizdeck/internal/models"
)

func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

func testQuiz() *models.Quiz {
	return &models.Quiz{
		ID:    uuid.New(),
		Title: "Capitals",
		Questions: []models.Question{
			{
				Question: "Capital of France?",
				Time:     20,
				Answers: []models.Answer{
					{Text: "Paris", Correct: true},
					{Text: "Lyon"},
				},
			},
			{
				Question: "Capital of Japan?",
				Time:     20,
				Answers: []models.Answer{
					{Text: "Osaka"},
					{Text: "Tokyo", Correct: true},
				},
			},
		},
	}
}

func TestGame_JoinRules(t *testing.T) {
	g := newGame("123456", testQuiz(), uuid.New())

	if err := g.addPlayer("alice"); err != nil {
		t.Fatalf("addPlayer: %v", err)
	}
	if err := g.addPlayer("alice"); err != ErrNameTaken {
		t.Errorf("expected ErrNameTaken for duplicate name, got %v", err)
	}
	if g.PlayerCount() != 1 {
		t.Errorf("expected 1 player, got %d", g.PlayerCount())
	}

	if _, err := g.start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := g.addPlayer("bob"); err != ErrGameStarted {
		t.Errorf("expected ErrGameStarted after start, got %v", err)
	}
}

func TestGame_StartAndAdvance(t *testing.T) {
	g := newGame("123456", testQuiz(), uuid.New())
	if err := g.addPlayer("alice"); err != nil {
		t.Fatalf("addPlayer: %v", err)
	}

	question, err := g.start()
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if question.Index != 0 || question.Total != 2 {
		t.Errorf("unexpected first question: index=%d total=%d", question.Index, question.Total)
	}
	if len(question.Answers) != 2 {
		t.Errorf("expected 2 answer texts, got %d", len(question.Answers))
	}
	if g.State() != StatePlaying {
		t.Errorf("expected playing state, got %s", g.State())
	}

	if _, err := g.start(); err != ErrGameStarted {
		t.Errorf("expected ErrGameStarted on second start, got %v", err)
	}

	results, next, done, err := g.advance()
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if done {
		t.Fatal("game finished after the first question")
	}
	if results.Index != 0 || len(results.Correct) != 1 || results.Correct[0] != 0 {
		t.Errorf("unexpected results for question 0: %+v", results)
	}
	if next.Index != 1 {
		t.Errorf("expected next question index 1, got %d", next.Index)
	}

	results, next, done, err = g.advance()
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !done || next != nil {
		t.Error("expected the game to finish after the last question")
	}
	if results.Correct[0] != 1 {
		t.Errorf("unexpected correct index for question 1: %v", results.Correct)
	}
	if g.State() != StateFinished {
		t.Errorf("expected finished state, got %s", g.State())
	}
}

func TestGame_Scoring(t *testing.T) {
	g := newGame("123456", testQuiz(), uuid.New())
	for _, name := range []string{"fast", "wrong", "silent"} {
		if err := g.addPlayer(name); err != nil {
			t.Fatalf("addPlayer(%s): %v", name, err)
		}
	}
	if _, err := g.start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	g.recordAnswer("fast", 0)  // correct
	g.recordAnswer("wrong", 1) // incorrect
	// silent never answers

	// Repeated answers are ignored.
	g.recordAnswer("wrong", 0)

	board := g.Scoreboard()
	scores := make(map[string]int, len(board))
	for _, e := range board {
		scores[e.Name] = e.Score
	}

	if scores["fast"] < 500 || scores["fast"] > 1000 {
		t.Errorf("expected fast answer to score in [500,1000], got %d", scores["fast"])
	}
	if scores["wrong"] != 0 {
		t.Errorf("expected wrong answer to score 0, got %d", scores["wrong"])
	}
	if scores["silent"] != 0 {
		t.Errorf("expected no answer to score 0, got %d", scores["silent"])
	}
}

func TestGame_RejectsLateAnswer(t *testing.T) {
	quiz := testQuiz()
	quiz.Questions[0].Time = 1
	g := newGame("123456", quiz, uuid.New())
	if err := g.addPlayer("alice"); err != nil {
		t.Fatalf("addPlayer: %v", err)
	}
	if _, err := g.start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Force the question window into the past.
	g.mu.Lock()
	g.questionStarted = time.Now().Add(-2 * time.Second)
	g.mu.Unlock()

	g.recordAnswer("alice", 0)

	board := g.Scoreboard()
	if board[0].Score != 0 {
		t.Errorf("expected late answer to score 0, got %d", board[0].Score)
	}
}

func TestGame_RejectsOutOfRangeAnswer(t *testing.T) {
	g := newGame("123456", testQuiz(), uuid.New())
	if err := g.addPlayer("alice"); err != nil {
		t.Fatalf("addPlayer: %v", err)
	}
	if _, err := g.start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	g.recordAnswer("alice", -1)
	g.recordAnswer("alice", 5)

	// The player has not consumed their answer, a valid one still counts.
	g.recordAnswer("alice", 0)
	if board := g.Scoreboard(); board[0].Score == 0 {
		t.Error("expected a valid answer after rejected ones to score")
	}
}

func TestSortScoreboard(t *testing.T) {
	board := Scoreboard{
		{Name: "bob", Score: 500},
		{Name: "alice", Score: 500},
		{Name: "carol", Score: 1500},
	}
	sortScoreboard(board)

	want := []string{"carol", "alice", "bob"}
	for i, name := range want {
		if board[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, board[i].Name)
		}
	}
}

func TestGame_StartWithNoQuestions(t *testing.T) {
	g := newGame("123456", &models.Quiz{ID: uuid.New(), Title: "Empty"}, uuid.New())
	if _, err := g.start(); err == nil {
		t.Error("expected an error starting a quiz with no questions")
	}
}

func TestGame_RecordsHost(t *testing.T) {
	hostID := uuid.New()
	g := newGame("123456", testQuiz(), hostID)
	if g.HostID() != hostID {
		t.Errorf("HostID() = %s, want %s", g.HostID(), hostID)
	}
}

func TestGeneratePIN(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		pin, err := generatePIN()
		if err != nil {
			t.Fatalf("generatePIN: %v", err)
		}
		if len(pin) != 6 {
			t.Fatalf("expected 6-digit pin, got %q", pin)
		}
		for _, r := range pin {
			if r < '0' || r > '9' {
				t.Fatalf("pin contains a non-digit: %q", pin)
			}
		}
		seen[pin] = true
	}
	if len(seen) < 2 {
		t.Error("expected pins to vary across generations")
	}
}
