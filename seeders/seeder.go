package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"access-control/pkg/config"
)

// SeedAdmin создаёт первого администратора из SEED_ADMIN_USERNAME / SEED_ADMIN_PASSWORD.
func SeedAdmin(db *pgxpool.Pool, cfg *config.Config) {
	ctx := context.Background()
	log.Println("▶️  Запуск создания администратора...")

	if err := seedAdmin(ctx, db, cfg); err != nil {
		log.Fatalf("❌ Ошибка создания администратора: %v", err)
	}
	log.Println("✅ Создание администратора завершено!")
}

// SeedDemo наполняет базу демонстрационной организацией с устройствами,
// сотрудниками и неделей событий прохода.
func SeedDemo(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения демонстрационными данными...")

	if err := seedDemo(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения демо-данных: %v", err)
	}
	log.Println("✅ Наполнение демонстрационными данными завершено!")
}
