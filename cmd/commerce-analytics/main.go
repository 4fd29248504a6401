// Command commerce-analytics forecasts store metrics and plans ad budgets
// from a configured dataset, or serves the same analyses over HTTP.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// version is set at build time.
var version = "dev"

func main() {
	// A .env file may carry COMMERCE_ANALYTICS_* overrides.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"warn\", \"msg\": \"failed to read .env\", \"error\": \"%v\"}\n", err)
	}

	app := newApp()
	if err := app.root.Execute(); err != nil {
		if app.logger != nil {
			app.logger.Fatal("command failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"command failed\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
}
