package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/tiggercwh/go-dealornodeal/config"
	"github.com/tiggercwh/go-dealornodeal/console"
	"github.com/tiggercwh/go-dealornodeal/gameModel"
)

type apiClient struct {
	baseURL string
	http    *http.Client
}

func (c *apiClient) do(method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr gameModel.ErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("server: %s", apiErr.Message)
		}
		return fmt.Errorf("server: %s", resp.Status)
	}
	return json.Unmarshal(respBody, out)
}

func (c *apiClient) createGame(seed int64) (*gameModel.GameState, error) {
	var req gameModel.NewGameRequest
	if seed != 0 {
		req.Seed = &seed
	}
	var response gameModel.NewGameResponse
	if err := c.do("POST", "/game/new", req, &response); err != nil {
		return nil, err
	}
	if !response.Success {
		return nil, fmt.Errorf("failed to create game: %s", response.Message)
	}
	return &response.GameState, nil
}

func (c *apiClient) move(gameID, action string, body any) (*gameModel.MoveResponse, error) {
	var response gameModel.MoveResponse
	if err := c.do("POST", fmt.Sprintf("/game/%s/%s", gameID, action), body, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func announce(parsed bool, subs []gameModel.Substitution) {
	for _, sub := range subs {
		console.Announce(os.Stdout, parsed, sub)
	}
}

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	client := &apiClient{baseURL: cfg.ServerURL, http: &http.Client{}}
	prompt := console.NewPrompter(os.Stdin, os.Stdout)

	fmt.Println("Welcome to Deal or No Deal!")
	state, err := client.createGame(cfg.Seed)
	if err != nil {
		fmt.Printf("Error creating game: %v\n", err)
		fmt.Printf("Make sure the server is running at %s\n", cfg.ServerURL)
		return
	}
	console.PrintBoard(os.Stdout, *state)

	fmt.Println("Choose a case to begin.")
	id, parsed := prompt.CaseID("Choose a case number: ")
	resp, err := client.move(state.ID, "case", gameModel.ChooseCaseRequest{CaseID: id})
	if err != nil {
		log.Fatalf("choose case: %v", err)
	}
	announce(parsed, resp.Substitutions)
	state = resp.GameState
	fmt.Println("Let's get started!")
	console.PrintBoard(os.Stdout, *state)

	for state.Phase == "reveal" {
		fmt.Printf("Round %d/%d: open %d cases\n", state.Round, state.MaxRounds, state.PendingReveals)
		for state.Phase == "reveal" {
			id, parsed := prompt.CaseID("Choose a case number: ")
			resp, err := client.move(state.ID, "open", gameModel.ChooseCaseRequest{CaseID: id})
			if err != nil {
				log.Fatalf("open case: %v", err)
			}
			announce(parsed, resp.Substitutions)
			for _, c := range resp.Revealed {
				console.PrintOpened(os.Stdout, c)
			}
			state = resp.GameState
		}
		console.PrintBoard(os.Stdout, *state)

		if state.CurrentOffer == nil {
			log.Fatalf("server sent no offer in phase %s", state.Phase)
		}
		offer := *state.CurrentOffer
		console.PrintOffer(os.Stdout, offer)
		deal := prompt.YesNo("Deal (Y) or No Deal (N)? ")
		resp, err := client.move(state.ID, "decision", gameModel.DecisionRequest{Deal: deal})
		if err != nil {
			log.Fatalf("decision: %v", err)
		}
		state = resp.GameState
		if deal {
			fmt.Println("You accepted the deal!")
			break
		}
		fmt.Printf("Just turned down %s\n", console.Offer(offer))
	}

	if state.Phase == "final_choice" {
		console.PrintBoard(os.Stdout, *state)
		keep := prompt.YesNo("Do you want your original case (Y) or the last case left (N)? ")
		resp, err := client.move(state.ID, "final", gameModel.FinalRequest{KeepOwn: keep})
		if err != nil {
			log.Fatalf("final choice: %v", err)
		}
		state = resp.GameState
	}

	console.PrintOutcome(os.Stdout, *state)
	fmt.Println("Game over!")
}
