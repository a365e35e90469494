package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/turanweb/turan/database"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	if err := database.RunMigrations(ctx, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}
