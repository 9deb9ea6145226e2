// Command server runs the meeting capture API together with the scheduling,
// reconciliation, and watchdog workers.
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/meetscribe/backend/internal/app"
)

func main() {
	// A missing .env is fine; production supplies real environment variables.
	_ = godotenv.Load()

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
