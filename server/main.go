package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/tiggercwh/go-dealornodeal/config"
	"github.com/tiggercwh/go-dealornodeal/engine"
	"github.com/tiggercwh/go-dealornodeal/gameModel"
)

// session is one game. mu serializes every move on it.
type session struct {
	mu           sync.Mutex
	id           string
	game         *engine.Game
	seed         int64
	createdAt    time.Time
	lastActivity time.Time
}

// state must be called with s.mu held. The seed replays the shuffle, so it is
// only handed out once the game is over.
func (s *session) state() gameModel.GameState {
	state := gameModel.NewGameState(s.id, s.game)
	if state.GameOver {
		state.Seed = s.seed
	}
	state.CreatedAt = s.createdAt.Format(time.RFC3339)
	state.LastActivity = s.lastActivity.Format(time.RFC3339)
	return state
}

type GameServer struct {
	cfg    config.Config
	prizes []decimal.Decimal
	rounds []int
	games  map[string]*session
	mutex  sync.RWMutex
	hub    *Hub
}

// NewGameServer loads the board once and checks it makes a playable game
// before accepting any.
func NewGameServer(cfg config.Config) (*GameServer, error) {
	prizes, rounds, err := cfg.Board()
	if err != nil {
		return nil, err
	}
	gs := &GameServer{
		cfg:    cfg,
		prizes: prizes,
		rounds: rounds,
		games:  make(map[string]*session),
		hub:    NewHub(),
	}
	if _, err := gs.newEngine(1); err != nil {
		return nil, err
	}
	return gs, nil
}

func (gs *GameServer) newEngine(seed int64) (*engine.Game, error) {
	return engine.NewGame(gs.prizes, gs.rounds, engine.NewSource(seed),
		engine.WithOfferRange(gs.cfg.OfferMinPercent, gs.cfg.OfferMaxPercent))
}

// createGame seeds from the request, then the configuration, then crypto/rand.
func (gs *GameServer) createGame(seed *int64) (*session, error) {
	used := gs.cfg.Seed
	if seed != nil {
		used = *seed
	}
	if used == 0 {
		var err error
		if used, err = engine.NewSeed(); err != nil {
			return nil, err
		}
	}
	game, err := gs.newEngine(used)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	s := &session{
		id:           uuid.NewString(),
		game:         game,
		seed:         used,
		createdAt:    now,
		lastActivity: now,
	}
	gs.mutex.Lock()
	gs.games[s.id] = s
	gs.mutex.Unlock()
	log.Printf("Created game %s (seed %d)", s.id, used)
	return s, nil
}

func (gs *GameServer) getGame(gameID string) (*session, bool) {
	gs.mutex.RLock()
	defer gs.mutex.RUnlock()
	s, exists := gs.games[gameID]
	return s, exists
}

func (gs *GameServer) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.HandleFunc("/api/game/new", gs.handleNewGame).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/game/{gameID}", gs.handleGetGame).Methods("GET")
	r.HandleFunc("/api/game/{gameID}/case", gs.handleChooseCase).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/game/{gameID}/reveal", gs.handleReveal).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/game/{gameID}/open", gs.handleOpen).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/game/{gameID}/decision", gs.handleDecision).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/game/{gameID}/final", gs.handleFinal).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/game/{gameID}/ws", gs.handleWatch).Methods("GET")
	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, code string) {
	writeJSON(w, status, gameModel.ErrorResponse{Success: false, Message: message, Code: code})
}

// writeEngineError maps engine errors onto HTTP statuses: configuration errors
// are bad requests, moves out of phase conflict with the game's state.
func writeEngineError(w http.ResponseWriter, err error) {
	var engErr *engine.Error
	if !errors.As(err, &engErr) {
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	status := http.StatusInternalServerError
	switch engErr.Code {
	case engine.CodeConfiguration:
		status = http.StatusBadRequest
	case engine.CodeInvalidPhase:
		status = http.StatusConflict
	}
	writeError(w, status, engErr.Message, engErr.Code.String())
}

func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (gs *GameServer) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req gameModel.NewGameRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}
	s, err := gs.createGame(req.Seed)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	s.mu.Lock()
	state := s.state()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, gameModel.NewGameResponse{
		Success:   true,
		Message:   "New game created successfully",
		GameState: state,
	})
}

func (gs *GameServer) handleGetGame(w http.ResponseWriter, r *http.Request) {
	s, exists := gs.getGame(mux.Vars(r)["gameID"])
	if !exists {
		writeError(w, http.StatusNotFound, "Game not found", "")
		return
	}
	s.mu.Lock()
	state := s.state()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

// move decodes req, runs apply on the game under its lock and answers with the
// resulting state. Watchers get the new state as well.
func (gs *GameServer) move(w http.ResponseWriter, r *http.Request, req any, apply func(s *session, resp *gameModel.MoveResponse) error) {
	if err := decodeBody(r, req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}
	s, exists := gs.getGame(mux.Vars(r)["gameID"])
	if !exists {
		writeError(w, http.StatusNotFound, "Game not found", "")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	resp := gameModel.MoveResponse{Success: true}
	if err := apply(s, &resp); err != nil {
		writeEngineError(w, err)
		return
	}
	s.lastActivity = time.Now()
	state := s.state()
	resp.GameState = &state
	resp.GameOver = state.GameOver
	gs.hub.Publish(s.id, state)
	writeJSON(w, http.StatusOK, resp)
}

func (gs *GameServer) handleChooseCase(w http.ResponseWriter, r *http.Request) {
	var req gameModel.ChooseCaseRequest
	gs.move(w, r, &req, func(s *session, resp *gameModel.MoveResponse) error {
		sub, err := s.game.ChooseCase(req.CaseID)
		if err != nil {
			return err
		}
		if sub != nil {
			resp.Substitutions = gameModel.Substitutions(*sub)
		}
		resp.Message = "Case chosen"
		return nil
	})
}

func (gs *GameServer) handleReveal(w http.ResponseWriter, r *http.Request) {
	var req gameModel.RevealRequest
	gs.move(w, r, &req, func(s *session, resp *gameModel.MoveResponse) error {
		opened, subs, err := s.game.Reveal(req.CaseIDs)
		if err != nil {
			return err
		}
		for _, c := range opened {
			resp.Revealed = append(resp.Revealed, gameModel.OpenedCase(c))
		}
		resp.Substitutions = gameModel.Substitutions(subs...)
		resp.Message = "Cases opened"
		return offerIfDue(s, resp)
	})
}

func (gs *GameServer) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req gameModel.ChooseCaseRequest
	gs.move(w, r, &req, func(s *session, resp *gameModel.MoveResponse) error {
		c, sub, err := s.game.RevealOne(req.CaseID)
		if err != nil {
			return err
		}
		resp.Revealed = []gameModel.Case{gameModel.OpenedCase(c)}
		if sub != nil {
			resp.Substitutions = gameModel.Substitutions(*sub)
		}
		resp.Message = "Case opened"
		return offerIfDue(s, resp)
	})
}

// offerIfDue makes the banker's offer once the round's cases are all open.
func offerIfDue(s *session, resp *gameModel.MoveResponse) error {
	if s.game.Phase() != engine.PhaseOffer {
		return nil
	}
	offer, err := s.game.MakeOffer()
	if err != nil {
		return err
	}
	resp.Offer = &offer
	resp.Message = "The banker has an offer"
	return nil
}

func (gs *GameServer) handleDecision(w http.ResponseWriter, r *http.Request) {
	var req gameModel.DecisionRequest
	gs.move(w, r, &req, func(s *session, resp *gameModel.MoveResponse) error {
		if err := s.game.Decide(req.Deal); err != nil {
			return err
		}
		if req.Deal {
			payout, _ := s.game.Payout()
			log.Printf("Game %s: deal accepted at %s", s.id, payout.StringFixed(2))
			resp.Message = "Deal!"
			return nil
		}
		resp.Message = "No deal"
		return nil
	})
}

func (gs *GameServer) handleFinal(w http.ResponseWriter, r *http.Request) {
	var req gameModel.FinalRequest
	gs.move(w, r, &req, func(s *session, resp *gameModel.MoveResponse) error {
		final, err := s.game.ResolveFinal(req.KeepOwn)
		if err != nil {
			return err
		}
		view := gameModel.FinalCaseView(s.game, final)
		resp.Final = &view
		resp.Message = "Game over"
		log.Printf("Game %s: final case %d worth %s", s.id, final.ID, final.Value.String())
		return nil
	})
}

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[DEALNODEAL] ")

	gameServer, err := NewGameServer(cfg)
	if err != nil {
		log.Fatalf("Failed to set up board: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: gameServer.router(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("Server starting on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("listen: %v", err)
	}
	log.Println("Server exiting")
}
