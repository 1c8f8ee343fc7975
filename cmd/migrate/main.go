package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ms-nft-ticketing/internal/config"
	"ms-nft-ticketing/internal/models"
)

// Development reset tool: drops the schema, recreates it and seeds a couple
// of rows to click around with. Production schema changes go through the
// migrations/ directory instead.

func main() {
	ctx := context.Background()

	cfg := config.Load()
	dsn := "postgres://" + cfg.Database.Username + ":" + cfg.Database.Password +
		"@" + cfg.Database.Host + ":" + cfg.Database.Port + "/" + cfg.Database.Database + "?sslmode=disable"
	connector := pgdriver.NewConnector(pgdriver.WithDSN(dsn))
	sqldb := sql.OpenDB(connector)
	defer sqldb.Close()

	if err := sqldb.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	log.Println("Dropping tables...")
	_ = dropTables(ctx, db)

	log.Println("Creating tables...")
	_ = createTables(ctx, db)

	log.Println("Seeding sample data...")
	_ = seedData(ctx, db)

	log.Println("✅ Done.")
}

func dropTables(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{(*models.Ticket)(nil), (*models.Event)(nil), (*models.User)(nil)}
	for _, m := range tables {
		_, _ = db.NewDropTable().Model(m).IfExists().Cascade().Exec(ctx)
	}
	return nil
}

func createTables(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{(*models.User)(nil), (*models.Event)(nil), (*models.Ticket)(nil)}
	for _, m := range tables {
		_, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx)
		if err != nil {
			log.Fatalf("❌ Failed to create table for %T: %v", m, err)
		}
	}

	// One ticket per (user, event) is enforced at the schema level.
	_, err := db.NewCreateIndex().
		Model((*models.Ticket)(nil)).
		Index("tickets_issued_to_event_id_idx").
		Unique().
		IfNotExists().
		Column("issued_to", "event_id").
		Exec(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to create ticket uniqueness index: %v", err)
	}
	return nil
}

func seedData(ctx context.Context, db *bun.DB) error {
	users := []models.User{
		{
			ID:                "user001",
			Email:             "alice@example.com",
			Status:            models.UserStatusActive,
			DefaultWallet:     "0x1111111111111111111111111111111111111111",
			TicketsBrought:    []string{},
			TicketsBurned:     []string{},
			AccountsConnected: []string{"0x1111111111111111111111111111111111111111"},
			Events:            []string{},
			CreatedAt:         time.Now(),
		},
		{
			ID:                "user002",
			Email:             "bob@example.com",
			Status:            models.UserStatusActive,
			DefaultWallet:     "0x2222222222222222222222222222222222222222",
			TicketsBrought:    []string{},
			TicketsBurned:     []string{},
			AccountsConnected: []string{"0x2222222222222222222222222222222222222222"},
			Events:            []string{},
			CreatedAt:         time.Now(),
		},
	}
	_, _ = db.NewInsert().Model(&users).Exec(ctx)

	event := models.Event{
		ID:          "event001",
		OwnerID:     "user001",
		Name:        "Summer Fest 2026",
		Description: "Annual summer music festival.",
		City:        "Lisbon",
		Country:     "Portugal",
		StartDate:   time.Now().AddDate(0, 1, 0),
		EndDate:     time.Now().AddDate(0, 1, 3),
		ExpiryDate:  time.Now().AddDate(0, 1, 10),
		EventURL:    "https://summerfest.example.com",
		CreatedAt:   time.Now(),
	}
	_, _ = db.NewInsert().Model(&event).Exec(ctx)

	ticket := models.Ticket{
		ID:        "ticket123",
		IssuedTo:  "user002",
		EventID:   "event001",
		Minted:    false,
		CreatedAt: time.Now(),
	}
	_, _ = db.NewInsert().Model(&ticket).Exec(ctx)

	return nil
}
