package main

import (
	"fmt"
	"os"
)

const defaultBaseURL = "http://localhost:9090"

func main() {
	baseURL := os.Getenv("SKED_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client := NewAPIClient(baseURL)
	if err := SetupCommands(client).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
