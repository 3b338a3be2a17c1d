package seeders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"access-control/internal/entities"
)

func seedDemo(ctx context.Context, db *pgxpool.Pool) error {
	var existing int64
	err := db.QueryRow(ctx, "SELECT id FROM organizations WHERE name = $1", demoOrganization).Scan(&existing)
	if err == nil {
		log.Println("    - Демо организация уже существует. Пропускаем.")
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("ошибка при проверке демо организации: %w", err)
	}

	return pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		var orgID, departmentID, checkpointID int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO organizations (guid, name, timezone, timesheet_start, timesheet_end) VALUES ($1, $2, $3, '09:00', '18:00') RETURNING id`,
			uuid.New(), demoOrganization, demoTimezone).Scan(&orgID); err != nil {
			return fmt.Errorf("организация: %w", err)
		}
		if err := tx.QueryRow(ctx,
			`INSERT INTO departments (organization_id, name, show_in_report) VALUES ($1, $2, TRUE) RETURNING id`,
			orgID, demoDepartment).Scan(&departmentID); err != nil {
			return fmt.Errorf("подразделение: %w", err)
		}
		if err := tx.QueryRow(ctx, `INSERT INTO checkpoints (name) VALUES ($1) RETURNING id`, demoCheckpoint).Scan(&checkpointID); err != nil {
			return fmt.Errorf("проходная: %w", err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO checkpoint2organization (checkpoint_id, organization_id) VALUES ($1, $2)`, checkpointID, orgID); err != nil {
			return err
		}
		log.Printf("    - Организация %d, подразделение %d, проходная %d", orgID, departmentID, checkpointID)

		deviceIDs := make([]int64, 0, len(demoDevices))
		for _, d := range demoDevices {
			var id int64
			if err := tx.QueryRow(ctx,
				`INSERT INTO devices (mqtt, name, checkpoint_id, timezone) VALUES ($1, $2, $3, $4) RETURNING id`,
				d.MQTT, d.Name, checkpointID, demoTimezone).Scan(&id); err != nil {
				return fmt.Errorf("устройство %s: %w", d.MQTT, err)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO device2organization (device_id, organization_id) VALUES ($1, $2)`, id, orgID); err != nil {
				return err
			}
			deviceIDs = append(deviceIDs, id)
		}

		zone := time.FixedZone("", demoTimezone)
		today := time.Now().In(zone)
		events := 0
		for i, e := range demoEmployees {
			var employeeID int64
			if err := tx.QueryRow(ctx,
				`INSERT INTO employees (guid, last_name, first_name, patronymic) VALUES ($1, $2, $3, $4) RETURNING id`,
				uuid.New(), e.LastName, e.FirstName, e.Patronymic).Scan(&employeeID); err != nil {
				return fmt.Errorf("сотрудник %s: %w", e.LastName, err)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO employee2organization (employee_id, organization_id) VALUES ($1, $2)`, employeeID, orgID); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `INSERT INTO employee2department (employee_id, department_id) VALUES ($1, $2)`, employeeID, departmentID); err != nil {
				return err
			}

			device := deviceIDs[i%len(deviceIDs)]
			for day := 1; day <= demoDays; day++ {
				date := today.AddDate(0, 0, -day)
				if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
					continue
				}
				for _, hm := range [][2]int{e.Arrive, e.Leave} {
					moment := time.Date(date.Year(), date.Month(), date.Day(), hm[0], hm[1], 0, 0, zone).UTC()
					if _, err := tx.Exec(ctx,
						`INSERT INTO identification_events (moment, algorithm_type, employee_id, device_id) VALUES ($1, $2, $3, $4)`,
						moment, int(entities.AlgorithmFace), employeeID, device); err != nil {
						return fmt.Errorf("событие: %w", err)
					}
					events++
				}
			}
		}
		log.Printf("    - Сотрудников: %d, событий: %d", len(demoEmployees), events)
		return nil
	})
}
