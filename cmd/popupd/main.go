package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tolicodes/playbuddy-sub001/internal/di"
	"github.com/tolicodes/playbuddy-sub001/internal/structures"
)

func main() {
	configPath := flag.String("config", "./config.yaml", "path to the yaml config file")
	debugMode := flag.Bool("debug", false, "enable debug mode (console logging, /debug routes)")
	flag.Parse()

	flags := &structures.CliFlags{
		ConfigPath: *configPath,
		DebugMode:  *debugMode,
	}

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "popupd: %s\n", err)
		os.Exit(1)
	}
}
