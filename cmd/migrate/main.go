package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"

	"itnfit/pkg/config"
	"itnfit/pkg/database"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

func main() {
	var (
		dir     = flag.String("dir", "migrations", "directory with migration files")
		command = flag.String("command", "up", "migration command (up, down, redo, status, version, create)")
		name    = flag.String("name", "", "name for new migration (used with create command)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", database.DSN(cfg))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("Failed to set dialect: %v", err)
	}

	if err := run(db, *command, *dir, *name); err != nil {
		log.Fatalf("Migration %s failed: %v", *command, err)
	}
}

func run(db *sql.DB, command, dir, name string) error {
	switch command {
	case "create":
		if name == "" {
			return fmt.Errorf("name is required for create command")
		}
		return goose.Create(db, dir, name, "sql")
	case "up":
		if err := goose.Up(db, dir); err != nil {
			return err
		}
		fmt.Println("Migrations applied successfully")
	case "down":
		if err := goose.Down(db, dir); err != nil {
			return err
		}
		fmt.Println("Migrations rolled back successfully")
	case "redo":
		return goose.Redo(db, dir)
	case "status":
		return goose.Status(db, dir)
	case "version":
		return goose.Version(db, dir)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
	return nil
}
