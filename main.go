package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/sahilchouksey/mentor-hub-api/app"
)

func main() {
	if err := app.SetupAndRunServer(); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
