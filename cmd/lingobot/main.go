package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"lingobot/core/buildinfo"
	"lingobot/core/cmd"
	"lingobot/internal/app"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("lingobot %s (%s) %s\n", buildinfo.Version, buildinfo.Commit, buildinfo.Date)
		return
	}

	err := cmd.Run(cmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig:        app.LoadConfig,
		Bootstrap:         app.Bootstrap,
	})
	if err != nil {
		log.Printf("fatal: %v", err)
		os.Exit(1)
	}
}
