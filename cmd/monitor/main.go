package main

import (
	"log"

	"camwatch/internal/app"
)

func main() {
	application, err := app.NewApp()
	if err != nil {
		log.Fatalf("Failed to start monitor: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Monitor stopped with error: %v", err)
	}
}
