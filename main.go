package main

import (
	"github.com/joho/godotenv"

	"github.com/mnishina/avif-converter/logger"
)

func main() {
	// A .env next to the invocation can hold upload credentials and the
	// data dir override; absence is the normal case.
	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded environment from .env")
	}

	if err := newRootCommand().Execute(); err != nil {
		logger.Fatalf("%v", err)
	}
}
