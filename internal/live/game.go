// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

// Package live runs in-memory game sessions. A session is created over
// REST by the quiz host and identified by a short numeric PIN; hosts
// and players then attach over the websocket transport. Session state
// never touches the database until the game finishes, when a result
// row is persisted.
package live

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/models"
)

// Game lifecycle states.
type GameState string

const (
	StateLobby    GameState = "lobby"
	StatePlaying  GameState = "playing"
	StateFinished GameState = "finished"
)

var (
	// ErrGameNotFound is returned when no game exists for a PIN.
	ErrGameNotFound = errors.New("live: game not found")

	// ErrNameTaken is returned when a player name is already in use.
	ErrNameTaken = errors.New("live: player name already taken")

	// ErrGameStarted is returned when joining a game past its lobby.
	ErrGameStarted = errors.New("live: game already started")
)

// player holds per-player session state.
type player struct {
	name     string
	score    int
	answered bool
	correct  bool
}

// Game is one live session of a quiz.
type Game struct {
	mu sync.Mutex

	pin     string
	quiz    *models.Quiz
	hostID  uuid.UUID
	state   GameState
	players map[string]*player

	currentQuestion int
	questionStarted time.Time

	createdAt time.Time
}

// newGame builds a lobby-state game for a quiz. hostID is the user who
// opened the lobby; only they may drive the game as host.
func newGame(pin string, quiz *models.Quiz, hostID uuid.UUID) *Game {
	return &Game{
		pin:             pin,
		quiz:            quiz,
		hostID:          hostID,
		state:           StateLobby,
		players:         make(map[string]*player),
		currentQuestion: -1,
		createdAt:       time.Now().UTC(),
	}
}

// PIN returns the game's join code.
func (g *Game) PIN() string { return g.pin }

// QuizID returns the quiz being played.
func (g *Game) QuizID() uuid.UUID { return g.quiz.ID }

// HostID returns the user who opened the lobby.
func (g *Game) HostID() uuid.UUID { return g.hostID }

// State returns the current lifecycle state.
func (g *Game) State() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// PlayerCount returns how many players have joined.
func (g *Game) PlayerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.players)
}

// addPlayer registers a player in the lobby.
func (g *Game) addPlayer(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateLobby {
		return ErrGameStarted
	}
	if _, exists := g.players[name]; exists {
		return ErrNameTaken
	}
	g.players[name] = &player{name: name}
	return nil
}

// removePlayer drops a player, keeping their score if they rejoin is
// not supported.
func (g *Game) removePlayer(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.players, name)
}

// start moves the game out of the lobby and arms the first question.
// Returns the question payload to broadcast.
func (g *Game) start() (*QuestionPayload, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateLobby {
		return nil, ErrGameStarted
	}
	if len(g.quiz.Questions) == 0 {
		return nil, errors.New("live: quiz has no questions")
	}

	g.state = StatePlaying
	g.currentQuestion = 0
	g.questionStarted = time.Now()
	g.resetAnswersLocked()
	return g.questionPayloadLocked(), nil
}

// advance moves to the next question, or reports done when the quiz is
// exhausted. Returns the results of the question just closed.
func (g *Game) advance() (results *ResultsPayload, next *QuestionPayload, done bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StatePlaying {
		return nil, nil, false, errors.New("live: game is not playing")
	}

	results = g.resultsPayloadLocked()

	g.currentQuestion++
	if g.currentQuestion >= len(g.quiz.Questions) {
		g.state = StateFinished
		return results, nil, true, nil
	}

	g.questionStarted = time.Now()
	g.resetAnswersLocked()
	return results, g.questionPayloadLocked(), false, nil
}

// recordAnswer scores a player's answer to the current question.
// Faster correct answers earn more, scaling from 1000 down to 500 over
// the question's time window. Late or repeated answers are ignored.
func (g *Game) recordAnswer(name string, answerIndex int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StatePlaying {
		return
	}
	p, ok := g.players[name]
	if !ok || p.answered {
		return
	}

	q := g.quiz.Questions[g.currentQuestion]
	if answerIndex < 0 || answerIndex >= len(q.Answers) {
		return
	}

	window := time.Duration(q.Time) * time.Second
	elapsed := time.Since(g.questionStarted)
	if window > 0 && elapsed > window {
		return
	}

	p.answered = true
	p.correct = q.Answers[answerIndex].Correct
	if p.correct {
		points := 1000
		if window > 0 {
			points -= int(500 * elapsed / window)
		}
		p.score += points
	}
}

// Scoreboard is the final per-player standing.
type Scoreboard []ScoreEntry

// ScoreEntry is one player's score.
type ScoreEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// QuestionPayload is the broadcast body for a new question. Correct
// flags are stripped so players cannot cheat by reading the frame.
type QuestionPayload struct {
	Index   int      `json:"index"`
	Total   int      `json:"total"`
	Text    string   `json:"text"`
	Time    int      `json:"time"`
	Image   string   `json:"image,omitempty"`
	Answers []string `json:"answers"`
}

// ResultsPayload is the broadcast body after a question closes.
type ResultsPayload struct {
	Index      int        `json:"index"`
	Correct    []int      `json:"correct"`
	Scoreboard Scoreboard `json:"scoreboard"`
}

func (g *Game) questionPayloadLocked() *QuestionPayload {
	q := g.quiz.Questions[g.currentQuestion]
	answers := make([]string, len(q.Answers))
	for i, a := range q.Answers {
		answers[i] = a.Text
	}
	return &QuestionPayload{
		Index:   g.currentQuestion,
		Total:   len(g.quiz.Questions),
		Text:    q.Question,
		Time:    q.Time,
		Image:   q.Image,
		Answers: answers,
	}
}

func (g *Game) resultsPayloadLocked() *ResultsPayload {
	q := g.quiz.Questions[g.currentQuestion]
	var correct []int
	for i, a := range q.Answers {
		if a.Correct {
			correct = append(correct, i)
		}
	}
	return &ResultsPayload{
		Index:      g.currentQuestion,
		Correct:    correct,
		Scoreboard: g.scoreboardLocked(),
	}
}

func (g *Game) scoreboardLocked() Scoreboard {
	board := make(Scoreboard, 0, len(g.players))
	for _, p := range g.players {
		board = append(board, ScoreEntry{Name: p.name, Score: p.score})
	}
	sortScoreboard(board)
	return board
}

// Scoreboard returns the current standings, best first.
func (g *Game) Scoreboard() Scoreboard {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scoreboardLocked()
}

func (g *Game) resetAnswersLocked() {
	for _, p := range g.players {
		p.answered = false
		p.correct = false
	}
}

func sortScoreboard(board Scoreboard) {
	sort.Slice(board, func(i, j int) bool {
		if board[i].Score != board[j].Score {
			return board[i].Score > board[j].Score
		}
		return board[i].Name < board[j].Name
	})
}

// generatePIN returns a random 6-digit game PIN.
func generatePIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
