package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-marketplace/internal/config"
	"ms-marketplace/internal/database/migrations"

	"github.com/joho/godotenv"
)

// Schema management CLI: migrate -dir ./migrations [-down] [-repair]
func main() {
	dir := flag.String("dir", "./migrations", "directory holding migration files")
	down := flag.Bool("down", false, "roll back all migrations")
	repair := flag.Bool("repair", false, "clear a dirty migration flag")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}
	cfg := config.Load()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer sqldb.Close()
	if err := sqldb.Ping(); err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, pgdialect.New())
	runner := migrations.NewRunner(bunDB, migrations.Options{MigrationsDir: *dir})
	defer runner.Close()

	switch {
	case *repair:
		if err := runner.Repair(); err != nil {
			log.Fatalf("repair failed: %v", err)
		}
		fmt.Println("dirty flag cleared")
	case *down:
		if err := runner.Down(); err != nil {
			log.Fatalf("migrate down failed: %v", err)
		}
		fmt.Println("rolled back")
	default:
		if err := runner.Up(); err != nil {
			log.Fatalf("migrate up failed: %v", err)
		}
		version, dirty, err := runner.Version()
		if err != nil {
			log.Fatalf("failed to read version: %v", err)
		}
		fmt.Printf("schema at version %d (dirty=%v)\n", version, dirty)
	}
}
