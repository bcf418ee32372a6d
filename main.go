package main

import (
	"flag"
	"log"
	"os"

	"github.com/tiggercwh/go-dealornodeal/config"
	"github.com/tiggercwh/go-dealornodeal/console"
)

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	g, seed, err := cfg.NewGame()
	if err != nil {
		log.Fatalf("Failed to set up game: %v", err)
	}

	if _, err := console.Play(g, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("game stopped (seed %d): %v", seed, err)
	}
}
