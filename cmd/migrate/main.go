package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"gorecords/config"
	"gorecords/internal/pkg/database"
	"gorecords/migrations"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ Aviso: .env não encontrado. Carregando configs apenas do ambiente do sistema: %v", err)
	}

	timeout := flag.Duration("timeout", 5*time.Minute, "tempo máximo para executar o comando")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("configuração: %v", err)
	}
	if cfg.StorageDriver != config.StoragePostgres {
		log.Fatalf("goose: STORAGE_DRIVER=%s não usa migrations", cfg.StorageDriver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("goose: falha ao conectar ao DB: %v", err)
	}
	defer db.Close()

	arguments := flag.Args()
	if len(arguments) == 0 {
		arguments = []string{"up"}
	}
	command, args := arguments[0], arguments[1:]

	if err := database.Migrate(ctx, db, migrations.FS, command, args...); err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Printf("goose %s concluído\n", command)
}
