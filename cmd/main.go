package main

import (
	"os"

	"github.com/viethoang1520/quiz-competition/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
