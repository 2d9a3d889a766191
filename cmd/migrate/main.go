package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cmlabs-hris/hris-ledger/internal/config"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
)

func main() {
	steps := flag.Int("steps", 1, "number of migrations to roll back with down")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: migrate [-steps N] up|down|version")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}
	dsn := cfg.DatabaseURL()

	switch flag.Arg(0) {
	case "up":
		if err := database.MigrateUp(dsn); err != nil {
			log.Fatal(err)
		}
		log.Println("migrations applied")
	case "down":
		if err := database.MigrateDown(dsn, *steps); err != nil {
			log.Fatal(err)
		}
		log.Printf("rolled back %d migration(s)", *steps)
	case "version":
		version, dirty, err := database.MigrationVersion(dsn)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
	default:
		flag.Usage()
		os.Exit(2)
	}
}
