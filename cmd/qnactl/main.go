// qnactl is the operational companion to the server: it runs the migration
// engine out-of-band (apply pending, roll back one version, show state)
// against the configured database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	dbfs "qna/db"
	"qna/internal/config"
	"qna/internal/db"
	"qna/internal/pool"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 || args[0] != "migrate" {
		usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fail("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	p, err := pool.Connect(ctx, pool.Config{MinConns: 1, MaxConns: 1, AcquireTimeout: cfg.Pool.AcquireTimeout}, cfg.Database.DSN())
	if err != nil {
		fail("connect: %v", err)
	}
	defer p.Close()

	conn, err := p.Acquire(ctx)
	if err != nil {
		fail("acquire connection: %v", err)
	}
	defer p.Release(conn)

	migrations, err := db.Load(dbfs.Migrations, "migrations")
	if err != nil {
		fail("load migrations: %v", err)
	}
	store := db.NewStore(conn)

	switch args[1] {
	case "up":
		applied, err := db.Up(ctx, store, migrations)
		if err != nil {
			fail("migrate up: %v", err)
		}
		if len(applied) == 0 {
			fmt.Println("Nothing to apply.")
			return
		}
		for _, v := range applied {
			fmt.Printf("Applied %s\n", v)
		}
	case "down":
		version, err := db.Down(ctx, store, migrations)
		if err != nil {
			fail("migrate down: %v", err)
		}
		if version == "" {
			fmt.Println("Nothing to roll back.")
			return
		}
		fmt.Printf("Rolled back %s\n", version)
	case "status":
		statuses, err := db.List(ctx, store, migrations)
		if err != nil {
			fail("migrate status: %v", err)
		}
		for _, s := range statuses {
			state := "pending"
			if s.Applied {
				state = "applied"
			}
			fmt.Printf("%-40s %s\n", s.Version, state)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: qnactl [-config file] migrate up|down|status")
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
