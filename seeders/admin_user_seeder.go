// Файл: seeders/admin_user_seeder.go
package seeders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"access-control/internal/entities"
	"access-control/pkg/config"
	"access-control/pkg/utils"
)

func seedAdmin(ctx context.Context, db *pgxpool.Pool, _ *config.Config) error {
	username := os.Getenv("SEED_ADMIN_USERNAME")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if username == "" || password == "" {
		log.Println("    ℹ️  SEED_ADMIN_USERNAME или SEED_ADMIN_PASSWORD не заданы. Пропускаем создание.")
		return nil
	}
	log.Printf("  - Создание администратора %q...", username)

	var existing int64
	err := db.QueryRow(ctx, "SELECT id FROM users WHERE username = $1", username).Scan(&existing)
	if err == nil {
		log.Println("    - Пользователь уже существует. Пропускаем.")
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("ошибка при проверке существования пользователя: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		var userID int64
		err := tx.QueryRow(ctx,
			`INSERT INTO users (username, password_hash, last_name, first_name) VALUES ($1, $2, $3, $4) RETURNING id`,
			username, hash, os.Getenv("SEED_ADMIN_LAST_NAME"), os.Getenv("SEED_ADMIN_FIRST_NAME"),
		).Scan(&userID)
		if err != nil {
			return fmt.Errorf("не удалось создать пользователя: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO logins (guid, user_id, role) VALUES ($1, $2, $3)`,
			uuid.New(), userID, string(entities.RoleAdmin),
		); err != nil {
			return fmt.Errorf("не удалось создать логин администратора: %w", err)
		}
		log.Printf("    - Администратор создан, user id %d", userID)
		return nil
	})
}
