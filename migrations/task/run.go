package main

import (
	"embed"

	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/config"
	"github.com/BaselHussain/q4-hackathon-project-phase5/pkg/migrator"
)

//go:embed *.sql
var MigrationsFS embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := migrator.RunMigrations(cfg.DatabaseURL, MigrationsFS); err != nil {
		panic(err)
	}
}
