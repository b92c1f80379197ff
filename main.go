package main

import (
	"os"

	"github.com/freelog/freelog/cmd"
	"github.com/freelog/freelog/internal/log"
)

var version = "dev"

func main() {
	cmd.SetVersion(version)
	err := cmd.Execute()
	log.Sync()
	if err != nil {
		os.Exit(1)
	}
}
