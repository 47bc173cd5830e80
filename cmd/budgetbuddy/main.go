package main

import (
	"os"

	"github.com/aksumit1/budgetbuddy-backend/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
