package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	loadEnv(os.Stderr)

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadEnv reads .env files into the environment. A missing file is normal
// outside local development; anything else is reported on w.
func loadEnv(w io.Writer, filenames ...string) {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(w, "Warning: failed to load .env file: %v\n", err)
	}
}
