package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotwise/booking-engine/internal/booking"
	"github.com/slotwise/booking-engine/internal/db"
	"github.com/slotwise/booking-engine/migrations"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := migrations.Apply(context.Background(), pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedTenants(context.Background(), pool, 20); err != nil {
		log.Fatalf("seed tenants: %v", err)
	}

	if err := seedTimeOff(context.Background(), pool); err != nil {
		log.Fatalf("seed time off: %v", err)
	}

	log.Println("seed complete")
}

// seedTimeOff blocks a lunch hour tomorrow on a portion of the resources so
// availability queries hit busy windows straight after seeding.
func seedTimeOff(ctx context.Context, pool *pgxpool.Pool) error {
	rows, err := pool.Query(ctx, `SELECT id, tenant_id FROM resources WHERE active`)
	if err != nil {
		return err
	}
	defer rows.Close()

	type target struct {
		resourceID uuid.UUID
		tenantID   uuid.UUID
	}
	var targets []target
	for rows.Next() {
		var t target
		if err := rows.Scan(&t.resourceID, &t.tenantID); err != nil {
			return err
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	ledger := booking.NewPgLedger(pool)
	tomorrow := time.Now().UTC().AddDate(0, 0, 1)
	lunchStart := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 12, 0, 0, 0, time.UTC)
	reason := "lunch break"

	blocked := 0
	for _, t := range targets {
		if !gofakeit.Bool() {
			continue
		}
		_, err := ledger.InsertTimeOff(ctx, t.tenantID, t.resourceID, lunchStart, lunchStart.Add(time.Hour), &reason)
		if err != nil {
			return err
		}
		blocked++
	}

	log.Printf("time off blocked on %d resources", blocked)
	return nil
}

func seedTenants(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d tenants", count)

	serviceNames := []string{
		"Haircut",
		"Color & Highlights",
		"Blowout",
		"Beard Trim",
		"Manicure",
		"Airport Transfer",
		"City Ride",
		"Hourly Hire",
	}

	for i := 0; i < count; i++ {
		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		tenantID := uuid.New()
		_, err = tx.Exec(ctx, `
			INSERT INTO tenants (id, name, work_start, work_end, working_days, created_at, updated_at)
			VALUES ($1, $2, '09:00', '17:00', '{1,2,3,4,5,6}', now(), now())
		`, tenantID, gofakeit.Company())
		if err != nil {
			_ = tx.Rollback(ctx)
			return err
		}

		resourceCount := gofakeit.Number(2, 6)
		for j := 0; j < resourceCount; j++ {
			// A few resources carry their own hours instead of the defaults.
			var workStart, workEnd *string
			if gofakeit.Bool() {
				s, e := "08:00", "16:00"
				workStart, workEnd = &s, &e
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO resources (id, tenant_id, name, work_start, work_end, active, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, TRUE, now(), now())
			`, uuid.New(), tenantID, gofakeit.Name(), workStart, workEnd)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		serviceCount := gofakeit.Number(2, 4)
		for j := 0; j < serviceCount; j++ {
			name := serviceNames[gofakeit.Number(0, len(serviceNames)-1)]
			duration := []int{30, 45, 60, 90}[gofakeit.Number(0, 3)]
			price := int64(gofakeit.Number(1500, 25000))
			_, err = tx.Exec(ctx, `
				INSERT INTO services (id, tenant_id, name, duration_minutes, price_cents, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, now(), now())
			`, uuid.New(), tenantID, name, duration, price)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}
	}

	log.Println("tenants seeded")
	return nil
}
