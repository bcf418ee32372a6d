package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/tiggercwh/go-dealornodeal/config"
	"github.com/tiggercwh/go-dealornodeal/engine"
	"github.com/tiggercwh/go-dealornodeal/gameModel"
)

func newTestServer(t *testing.T) (*GameServer, *httptest.Server) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prizes.csv")
	if err := os.WriteFile(path, []byte("1,2,3,4,5\n"), 0o644); err != nil {
		t.Fatalf("write prizes: %v", err)
	}
	gs, err := NewGameServer(config.Config{
		PrizesPath:      path,
		Rounds:          []int{2, 1},
		Seed:            99,
		OfferMinPercent: 80,
		OfferMaxPercent: 80,
	})
	if err != nil {
		t.Fatalf("new game server: %v", err)
	}
	srv := httptest.NewServer(gs.router())
	t.Cleanup(srv.Close)
	return gs, srv
}

func post(t *testing.T, url string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	resp, err := http.Post(url, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func newGame(t *testing.T, srv *httptest.Server, req *gameModel.NewGameRequest) gameModel.GameState {
	t.Helper()
	var created gameModel.NewGameResponse
	if status := post(t, srv.URL+"/api/game/new", req, &created); status != http.StatusOK {
		t.Fatalf("new game: status %d", status)
	}
	if !created.Success {
		t.Fatalf("new game failed: %s", created.Message)
	}
	return created.GameState
}

// closedCases lists unopened cases other than the held one.
func closedCases(state *gameModel.GameState) []int {
	var ids []int
	for _, c := range state.Cases {
		if !c.Opened && !c.Held {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func TestPlayGameOverHTTP(t *testing.T) {
	_, srv := newTestServer(t)
	state := newGame(t, srv, nil)
	base := srv.URL + "/api/game/" + state.ID

	if state.Phase != "choose_case" || len(state.Cases) != 5 || state.Seed != 0 {
		t.Fatalf("unexpected new game: %+v", state)
	}
	for _, c := range state.Cases {
		if c.Value != nil {
			t.Fatalf("case %d value leaked", c.ID)
		}
	}

	var chosen gameModel.MoveResponse
	if status := post(t, base+"/case", gameModel.ChooseCaseRequest{CaseID: 99}, &chosen); status != http.StatusOK {
		t.Fatalf("choose case: status %d", status)
	}
	if len(chosen.Substitutions) != 1 || chosen.Substitutions[0].Reason != "unknown_case" {
		t.Fatalf("expected substitution, got %+v", chosen.Substitutions)
	}
	held := chosen.Substitutions[0].CaseID
	if chosen.GameState.Seed != 0 {
		t.Fatalf("seed sent while the game is running: %d", chosen.GameState.Seed)
	}
	if chosen.GameState.PlayerCase != held || chosen.GameState.PendingReveals != 2 {
		t.Fatalf("unexpected state after choosing: %+v", chosen.GameState)
	}

	var rejected gameModel.ErrorResponse
	closed := closedCases(chosen.GameState)
	if status := post(t, base+"/reveal", gameModel.RevealRequest{CaseIDs: closed[:1]}, &rejected); status != http.StatusConflict {
		t.Fatalf("expected conflict for short reveal, got %d", status)
	}
	if rejected.Code != "INVALID_PHASE" {
		t.Fatalf("unexpected error code %q", rejected.Code)
	}

	var revealed gameModel.MoveResponse
	if status := post(t, base+"/reveal", gameModel.RevealRequest{CaseIDs: closed[:2]}, &revealed); status != http.StatusOK {
		t.Fatalf("reveal: status %d", status)
	}
	if len(revealed.Revealed) != 2 || revealed.Offer == nil {
		t.Fatalf("expected two cases and an offer, got %+v", revealed)
	}
	left := decimal.NewFromInt(15)
	for _, c := range revealed.Revealed {
		left = left.Sub(*c.Value)
	}
	want := left.Div(decimal.NewFromInt(3)).Mul(decimal.RequireFromString("0.8")).RoundBank(2)
	if !revealed.Offer.Equal(want) {
		t.Fatalf("expected offer %s, got %s", want, revealed.Offer)
	}
	if revealed.GameState.Seed != 0 {
		t.Fatalf("seed sent while the game is running: %d", revealed.GameState.Seed)
	}
	if revealed.GameState.Phase != "decision" || !revealed.GameState.CurrentOffer.Equal(want) {
		t.Fatalf("unexpected state after reveal: %+v", revealed.GameState)
	}

	var declined gameModel.MoveResponse
	post(t, base+"/decision", gameModel.DecisionRequest{Deal: false}, &declined)
	if declined.GameState.Phase != "reveal" {
		t.Fatalf("expected next round, got %s", declined.GameState.Phase)
	}

	var opened gameModel.MoveResponse
	post(t, base+"/open", gameModel.ChooseCaseRequest{CaseID: held}, &opened)
	if len(opened.Substitutions) != 1 || opened.Substitutions[0].Reason != "held" {
		t.Fatalf("expected held substitution, got %+v", opened.Substitutions)
	}
	if opened.Offer == nil || len(opened.GameState.Offers) != 2 {
		t.Fatalf("expected second offer, got %+v", opened)
	}

	post(t, base+"/decision", gameModel.DecisionRequest{Deal: false}, &declined)
	if declined.GameState.Phase != "final_choice" {
		t.Fatalf("expected final choice, got %s", declined.GameState.Phase)
	}

	var final gameModel.MoveResponse
	post(t, base+"/final", gameModel.FinalRequest{KeepOwn: true}, &final)
	if !final.GameOver || final.Final == nil || final.Final.ID != held {
		t.Fatalf("expected to keep case %d, got %+v", held, final)
	}
	if final.GameState.Seed != 99 {
		t.Fatalf("expected seed 99 once the game is over, got %d", final.GameState.Seed)
	}
	if !final.GameState.Payout.Equal(*final.Final.Value) {
		t.Fatalf("payout %s does not match case value %s", final.GameState.Payout, final.Final.Value)
	}
	for _, c := range final.GameState.Cases {
		if c.Value == nil {
			t.Fatalf("case %d hidden after game over", c.ID)
		}
	}

	if status := post(t, base+"/reveal", gameModel.RevealRequest{CaseIDs: []int{1}}, nil); status != http.StatusConflict {
		t.Fatalf("expected conflict after game over, got %d", status)
	}

	resp, err := http.Get(base)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	defer resp.Body.Close()
	var got gameModel.GameState
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode game: %v", err)
	}
	if got.Phase != "final" || got.FinalCase != held {
		t.Fatalf("unexpected final state: %+v", got)
	}
}

func TestAcceptDealOverHTTP(t *testing.T) {
	_, srv := newTestServer(t)
	seed := int64(7)
	state := newGame(t, srv, &gameModel.NewGameRequest{Seed: &seed})
	base := srv.URL + "/api/game/" + state.ID
	if state.Seed != 0 {
		t.Fatalf("seed sent before the game is over: %d", state.Seed)
	}

	var chosen gameModel.MoveResponse
	post(t, base+"/case", gameModel.ChooseCaseRequest{CaseID: 1}, &chosen)
	var revealed gameModel.MoveResponse
	post(t, base+"/reveal", gameModel.RevealRequest{CaseIDs: []int{2, 3}}, &revealed)

	var deal gameModel.MoveResponse
	if status := post(t, base+"/decision", gameModel.DecisionRequest{Deal: true}, &deal); status != http.StatusOK {
		t.Fatalf("decision: status %d", status)
	}
	if !deal.GameOver || deal.GameState.Phase != "deal" {
		t.Fatalf("expected deal, got %+v", deal.GameState)
	}
	if deal.GameState.Seed != 7 {
		t.Fatalf("expected seed 7 after the deal, got %d", deal.GameState.Seed)
	}
	if !deal.GameState.Payout.Equal(*revealed.Offer) {
		t.Fatalf("expected payout %s, got %s", revealed.Offer, deal.GameState.Payout)
	}
	if status := post(t, base+"/decision", gameModel.DecisionRequest{Deal: false}, nil); status != http.StatusConflict {
		t.Fatalf("expected conflict, got %d", status)
	}
}

func TestRequestErrors(t *testing.T) {
	_, srv := newTestServer(t)
	state := newGame(t, srv, nil)

	resp, err := http.Get(srv.URL + "/api/game/missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	if status := post(t, srv.URL+"/api/game/missing/case", gameModel.ChooseCaseRequest{CaseID: 1}, nil); status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}

	resp, err = http.Post(srv.URL+"/api/game/"+state.ID+"/case", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/game/new", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("unexpected preflight response: %d %v", resp.StatusCode, resp.Header)
	}
}

func TestNewGameServerRejectsBadBoard(t *testing.T) {
	_, err := NewGameServer(config.Config{Rounds: []int{1}, OfferMinPercent: 75, OfferMaxPercent: 85})
	if !errors.Is(err, engine.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestWatchStreamsSnapshots(t *testing.T) {
	gs, srv := newTestServer(t)
	state := newGame(t, srv, nil)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/game/" + state.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first gameModel.GameState
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read first snapshot: %v", err)
	}
	if first.ID != state.ID || first.Phase != "choose_case" {
		t.Fatalf("unexpected first snapshot: %+v", first)
	}
	if gs.hub.count(state.ID) != 1 {
		t.Fatalf("expected one watcher, got %d", gs.hub.count(state.ID))
	}

	post(t, srv.URL+"/api/game/"+state.ID+"/case", gameModel.ChooseCaseRequest{CaseID: 4}, nil)

	var next gameModel.GameState
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if first.Seed != 0 || next.Seed != 0 {
		t.Fatalf("watchers must not see the seed of a running game")
	}
	if next.Phase != "reveal" || next.PlayerCase != 4 {
		t.Fatalf("unexpected update: %+v", next)
	}
}

func TestWriteEngineErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "configuration", err: &engine.Error{Code: engine.CodeConfiguration, Message: "bad board"}, wantStatus: http.StatusBadRequest, wantCode: "CONFIGURATION"},
		{name: "invalid phase", err: &engine.Error{Code: engine.CodeInvalidPhase, Message: "too early"}, wantStatus: http.StatusConflict, wantCode: "INVALID_PHASE"},
		{name: "other", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeEngineError(rec, tt.err)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			var body gameModel.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Success || body.Code != tt.wantCode {
				t.Fatalf("unexpected body: %+v", body)
			}
		})
	}
}
