package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"factstream/internal/cli"
)

func main() {
	// .env is optional; deployments set real environment variables
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
