package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"access-control/pkg/config"
	"access-control/pkg/database/postgresql"
	"access-control/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runAdmin := flag.Bool("admin", false, "Создать первого администратора (SEED_ADMIN_USERNAME, SEED_ADMIN_PASSWORD)")
	runDemo := flag.Bool("demo", false, "Наполнить демонстрационными данными для отчётов")
	runAll := flag.Bool("all", false, "Запустить все сидеры (эквивалентно -admin -demo)")

	flag.Parse()

	if !*runAdmin && !*runDemo && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -admin")
		log.Println("  go run ./seeders/cmd/seed -all")
		log.Println("======================================================")
		return
	}

	cfg := config.New()
	ctx := context.Background()
	dbPool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, zap.NewNop())
	if err != nil {
		log.Fatalf("❌ Не удалось подключиться к БД: %v", err)
	}
	defer dbPool.Close()

	if err := postgresql.Migrate(ctx, dbPool, cfg.Postgres.MigrationsTable, zap.NewNop()); err != nil {
		log.Fatalf("❌ Не удалось применить миграции: %v", err)
	}

	log.Println("======================================================")

	if *runAll || *runAdmin {
		seeders.SeedAdmin(dbPool, cfg)
		log.Println("======================================================")
	}

	if *runAll || *runDemo {
		seeders.SeedDemo(dbPool)
		log.Println("======================================================")
	}

	log.Println("✅ Все указанные операции сидирования успешно завершены.")
	log.Println("======================================================")
}
