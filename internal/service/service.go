// FILE: internal/service/service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"chesscore/internal/core"
	"chesscore/internal/engine"
	"chesscore/internal/game"
	"chesscore/internal/storage"

	"github.com/google/uuid"
)

var ErrGameNotFound = errors.New("game not found")

// session serializes every access to one game
type session struct {
	mu   sync.Mutex
	game *game.Game
}

// Service is the state manager for chess games with optional persistence
type Service struct {
	games  map[string]*session
	mu     sync.RWMutex
	store  *storage.Store // nil if persistence disabled
	waiter *WaitRegistry
	opts   game.Options
}

// New creates a new service instance with optional storage
func New(store *storage.Store, opts game.Options) *Service {
	return &Service{
		games:  make(map[string]*session),
		store:  store,
		waiter: NewWaitRegistry(),
		opts:   opts,
	}
}

func (s *Service) lookup(gameID string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return sess, nil
}

// GenerateGameID creates a new unique game ID
func (s *Service) GenerateGameID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for {
		id := uuid.New().String()
		if _, exists := s.games[id]; !exists {
			return id
		}
	}
}

// CreateGame registers a new game, from fen when it is not empty
func (s *Service) CreateGame(id, fen string) error {
	whitePlayer := core.NewPlayer(core.ColorWhite)
	blackPlayer := core.NewPlayer(core.ColorBlack)

	var g *game.Game
	if fen == "" {
		g = game.New(whitePlayer, blackPlayer, s.opts)
	} else {
		var err error
		if g, err = game.FromFEN(fen, whitePlayer, blackPlayer, s.opts); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[id]; exists {
		return fmt.Errorf("game %s already exists", id)
	}
	s.games[id] = &session{game: g}

	if s.store != nil {
		s.store.RecordNewGame(storage.GameRecord{
			GameID:        id,
			InitialFEN:    g.InitialFEN(),
			WhitePlayerID: whitePlayer.ID,
			BlackPlayerID: blackPlayer.ID,
			Result:        g.State().String(),
			StartTimeUTC:  time.Now().UTC(),
		})
	}

	return nil
}

// Inspect runs fn with exclusive access to a game. fn must not keep g.
func (s *Service) Inspect(gameID string, fn func(g *game.Game)) error {
	sess, err := s.lookup(gameID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	fn(sess.game)
	return nil
}

// SubmitMove plays a move in a game and records it
func (s *Service) SubmitMove(gameID string, from, to core.Position) (engine.Outcome, error) {
	return s.SubmitMoveThen(gameID, from, to, nil)
}

// SubmitMoveThen is SubmitMove with fn run on the updated game before the
// lock is released, so fn sees exactly the position the outcome describes.
// fn is skipped when the move is rejected and must not keep g.
func (s *Service) SubmitMoveThen(gameID string, from, to core.Position, fn func(g *game.Game)) (engine.Outcome, error) {
	sess, err := s.lookup(gameID)
	if err != nil {
		return engine.Outcome{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	g := sess.game
	mover := g.Turn()
	outcome, err := g.Submit(from, to)
	if err != nil {
		return engine.Outcome{}, err
	}

	moveCount := g.MoveCount()
	if outcome.Kind == engine.OutcomeCheckmate {
		log.Printf("Game %s: checkmate, %s wins after %d moves", gameID, outcome.Winner.Name(), moveCount)
	}

	if s.store != nil {
		moves := g.MoveLog()
		last := moves[len(moves)-1]
		s.store.RecordMove(storage.MoveRecord{
			GameID:       gameID,
			MoveNumber:   moveCount,
			FromSquare:   last.From.String(),
			ToSquare:     last.To.String(),
			Piece:        last.Piece,
			FENAfterMove: g.FEN(),
			PlayerColor:  mover.String(),
			MoveTimeUTC:  time.Now().UTC(),
		})
		if outcome.Kind == engine.OutcomeCheckmate {
			s.store.RecordResult(gameID, g.State().String())
		}
	}

	if fn != nil {
		fn(g)
	}
	s.waiter.NotifyGame(gameID, moveCount)
	return outcome, nil
}

// LegalMoves lists the legal destinations of the piece on from
func (s *Service) LegalMoves(gameID string, from core.Position) ([]core.Position, error) {
	var moves []core.Position
	err := s.Inspect(gameID, func(g *game.Game) {
		moves = g.LegalMoves(from)
	})
	return moves, err
}

// UndoMoves removes the specified number of moves from game history
func (s *Service) UndoMoves(gameID string, count int) error {
	return s.UndoMovesThen(gameID, count, nil)
}

// UndoMovesThen is UndoMoves with fn run on the rewound game under the same lock
func (s *Service) UndoMovesThen(gameID string, count int, fn func(g *game.Game)) error {
	sess, err := s.lookup(gameID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	g := sess.game
	wasOver := g.State() != core.StateOngoing
	if err := g.UndoMoves(count); err != nil {
		return err
	}

	remainingMoves := g.MoveCount()
	if s.store != nil {
		s.store.DeleteUndoneMoves(gameID, remainingMoves)
		if wasOver {
			s.store.RecordResult(gameID, g.State().String())
		}
	}

	if fn != nil {
		fn(g)
	}
	s.waiter.NotifyGame(gameID, remainingMoves)
	return nil
}

// DeleteGame removes a game from memory; recorded history is kept
func (s *Service) DeleteGame(gameID string) error {
	s.mu.Lock()
	if _, ok := s.games[gameID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	delete(s.games, gameID)
	s.mu.Unlock()

	s.waiter.RemoveGame(gameID)
	return nil
}

// GameCount returns the number of games held in memory
func (s *Service) GameCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// RegisterWait registers a client to wait for game state changes
func (s *Service) RegisterWait(ctx context.Context, gameID string, moveCount int) <-chan struct{} {
	return s.waiter.RegisterWait(ctx, gameID, moveCount)
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// Shutdown gracefully shuts down the service
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error

	if err := s.waiter.Shutdown(timeout); err != nil {
		errs = append(errs, fmt.Errorf("wait registry: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.games = make(map[string]*session)

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	return errors.Join(errs...)
}
