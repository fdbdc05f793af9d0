package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/samirrijal/railmap/internal/adapters/postgres"
	"github.com/samirrijal/railmap/internal/pkg/config"
	"github.com/samirrijal/railmap/internal/pkg/logging"
	"github.com/samirrijal/railmap/migrations"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down [steps]>")
	}

	cfg, err := config.Load("railmap-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, "text")

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	var versions []string
	switch os.Args[1] {
	case "up":
		versions, err = db.MigrateUp(ctx, migrations.Files)
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			if steps, err = strconv.Atoi(os.Args[2]); err != nil || steps < 1 {
				log.Fatalf("invalid steps %q", os.Args[2])
			}
		}
		versions, err = db.MigrateDown(ctx, migrations.Files, steps)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
	for _, v := range versions {
		fmt.Printf("OK  %s %s\n", os.Args[1], v)
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", os.Args[1], err)
	}
	if len(versions) == 0 {
		fmt.Println("nothing to do")
	}
}
