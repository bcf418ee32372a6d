// Package config reads game settings from the environment and command-line
// flags, and loads prize boards from CSV files.
package config

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
	"github.com/tiggercwh/go-dealornodeal/engine"
)

// Config holds settings shared by the console game, the server and the client.
type Config struct {
	Port      int    `env:"DEALNODEAL_PORT" envDefault:"8080"`
	Addr      string `env:"DEALNODEAL_ADDR"`
	ServerURL string `env:"DEALNODEAL_SERVER_URL" envDefault:"http://localhost:8080/api"`
	// Seed fixes every game's randomness. Zero draws a fresh seed per game.
	Seed            int64  `env:"DEALNODEAL_SEED"`
	PrizesPath      string `env:"DEALNODEAL_PRIZES"`
	Rounds          []int  `env:"DEALNODEAL_ROUNDS" envSeparator:","`
	OfferMinPercent int    `env:"DEALNODEAL_OFFER_MIN" envDefault:"75"`
	OfferMaxPercent int    `env:"DEALNODEAL_OFFER_MAX" envDefault:"85"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Parse reads the environment, then lets flags in args override it.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The game server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The game server listen address (overrides -port)")
	fs.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Base URL of the game server API")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed (0 picks one per game)")
	fs.StringVar(&cfg.PrizesPath, "prizes", cfg.PrizesPath, "Path to a CSV file of prize amounts")
	fs.Func("rounds", "Comma-separated number of cases opened each round", func(s string) error {
		rounds, err := parseRounds(s)
		if err != nil {
			return err
		}
		cfg.Rounds = rounds
		return nil
	})
	fs.IntVar(&cfg.OfferMinPercent, "offer-min", cfg.OfferMinPercent, "Lowest banker offer, percent of the mean")
	fs.IntVar(&cfg.OfferMaxPercent, "offer-max", cfg.OfferMaxPercent, "Highest banker offer, percent of the mean")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ListenAddr is Addr when set, otherwise every interface on Port.
func (c Config) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	return fmt.Sprintf(":%d", c.Port)
}

// Board returns the prize amounts and round schedule to play. Without a
// prizes file the default board is used; without rounds the default schedule
// is used only when it fits the board.
func (c Config) Board() ([]decimal.Decimal, []int, error) {
	prizes := engine.DefaultPrizes()
	if c.PrizesPath != "" {
		loaded, err := LoadPrizes(c.PrizesPath)
		if err != nil {
			return nil, nil, err
		}
		prizes = loaded
	}
	rounds := c.Rounds
	if len(rounds) == 0 {
		if c.PrizesPath != "" && len(prizes) != len(engine.DefaultPrizes()) {
			return nil, nil, fmt.Errorf("prize file has %d amounts: rounds must be set", len(prizes))
		}
		rounds = engine.DefaultRounds()
	}
	return prizes, rounds, nil
}

// NewGame starts a game on the configured board. A zero Seed draws a new one;
// the seed used is returned so the game can be replayed.
func (c Config) NewGame() (*engine.Game, int64, error) {
	prizes, rounds, err := c.Board()
	if err != nil {
		return nil, 0, err
	}
	seed := c.Seed
	if seed == 0 {
		if seed, err = engine.NewSeed(); err != nil {
			return nil, 0, err
		}
	}
	g, err := engine.NewGame(prizes, rounds, engine.NewSource(seed),
		engine.WithOfferRange(c.OfferMinPercent, c.OfferMaxPercent))
	if err != nil {
		return nil, 0, err
	}
	return g, seed, nil
}

// LoadPrizes reads prize amounts from a CSV file. Every field is one amount;
// blank fields are skipped and a leading "$" or thousands commas are allowed
// inside quoted fields.
func LoadPrizes(path string) ([]decimal.Decimal, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open prize file: %w", err)
	}
	defer file.Close()

	prizes, err := ReadPrizes(file)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded %d prize amounts from %s", len(prizes), path)
	return prizes, nil
}

// ReadPrizes parses prize amounts from CSV.
func ReadPrizes(r io.Reader) ([]decimal.Decimal, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	var prizes []decimal.Decimal
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		for _, field := range record {
			field = strings.TrimSpace(field)
			field = strings.TrimPrefix(field, "$")
			field = strings.ReplaceAll(field, ",", "")
			if field == "" {
				continue
			}
			amount, err := decimal.NewFromString(field)
			if err != nil {
				return nil, fmt.Errorf("invalid prize amount %q: %w", field, err)
			}
			prizes = append(prizes, amount)
		}
	}
	if len(prizes) == 0 {
		return nil, fmt.Errorf("no prize amounts found")
	}
	return prizes, nil
}

func parseRounds(s string) ([]int, error) {
	var rounds []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid round size %q: %w", part, err)
		}
		rounds = append(rounds, n)
	}
	return rounds, nil
}
