package game

import (
	"errors"
	"sync"
	"time"

	"github.com/quizairium/trivia-bot/internal/domain/entities"
)

var (
	// ErrAlreadyActive means a live game already exists for the chat.
	ErrAlreadyActive = errors.New("a game is already active in this chat")
	// ErrNoActiveGame means no live game exists for the chat.
	ErrNoActiveGame = errors.New("no active game in this chat")
)

// Registry holds at most one live Game per chat. Create and Remove are
// atomic with respect to each other and to lookups, which is what keeps
// duplicate games (and therefore duplicate timers and duplicate scoring)
// out of a chat.
type Registry struct {
	mu    sync.RWMutex
	games map[int64]*Game
}

func NewRegistry() *Registry {
	return &Registry{games: make(map[int64]*Game)}
}

// Create registers a new game for the chat. It fails with ErrAlreadyActive
// if the chat already has one.
func (r *Registry) Create(chatID, initiator int64) (*Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.games[chatID]; ok {
		return nil, ErrAlreadyActive
	}

	g := newGame(chatID, initiator)
	r.games[chatID] = g

	return g, nil
}

// Get looks up the live game for a chat.
func (r *Registry) Get(chatID int64) (*Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.games[chatID]
	return g, ok
}

// Remove drops the game for a chat. Only the game's own terminal
// transition (or the stale-session reaper) calls this.
func (r *Registry) Remove(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.games, chatID)
}

// Len reports the number of live games.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.games)
}

// Stale returns the chat IDs of games that are still in configuration
// after maxAge. Players who abandon the setup keyboards leave such games
// behind, blocking the chat until someone clears them.
func (r *Registry) Stale(maxAge time.Duration) []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cutoff := time.Now().Add(-maxAge)

	var stale []int64
	for chatID, g := range r.games {
		g.mu.Lock()
		if g.Status == entities.StatusConfiguring && g.CreatedAt.Before(cutoff) {
			stale = append(stale, chatID)
		}
		g.mu.Unlock()
	}

	return stale
}
