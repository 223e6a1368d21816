package main

import (
	"log"

	"yashubustudio/pyroclassifier/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatalf("pyroclassifier: %v", err)
	}
}
