// Command seed loads default vehicle classes into the store and prints
// development tokens for every role.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"github.com/Temutjin2k/ride-dispatch/config"
	repo "github.com/Temutjin2k/ride-dispatch/internal/adapter/postgres"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/internal/service/auth"
	"github.com/Temutjin2k/ride-dispatch/pkg/postgres"
	"github.com/Temutjin2k/ride-dispatch/pkg/trm"
)

var (
	configPath = flag.String("config-path", "config.yaml", "Path to the config yaml file")
	tokenTTL   = flag.Duration("token-ttl", 24*time.Hour, "Lifetime of the printed tokens")
)

var defaultClasses = []models.VehicleClass{
	{
		ID:             "standard",
		Description:    "Standard car",
		Designation:    "Standard",
		BasePrice:      500,
		BasePriceMin:   20,
		BasePricePerKm: 150,
		Passengers:     4,
		TarifaBase:     15,
		IsDefault:      true,
	},
	{
		ID:             "comfort",
		Description:    "Comfort car",
		Designation:    "Comfort",
		BasePrice:      800,
		BasePriceMin:   30,
		BasePricePerKm: 200,
		Passengers:     4,
		TarifaBase:     18,
	},
	{
		ID:             "van",
		Description:    "Van for groups",
		Designation:    "Van",
		BasePrice:      1200,
		BasePriceMin:   40,
		BasePricePerKm: 250,
		Passengers:     7,
		TarifaBase:     20,
	},
}

func main() {
	flag.Parse()
	_ = godotenv.Load()

	ctx := context.Background()

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	client, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	seedVehicleClasses(ctx, client)
	printTokens(cfg.Auth)
}

func seedVehicleClasses(ctx context.Context, client *postgres.PostgreDB) {
	// short timeout for seed operations
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pricingRepo := repo.NewPricingRepo(client.Pool)
	ctx = trm.WithOptionsCtx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	err := trm.New(client.Pool).Do(ctx, func(ctx context.Context) error {
		for _, vc := range defaultClasses {
			if err := pricingRepo.UpsertVehicleClass(ctx, vc); err != nil {
				return fmt.Errorf("upsert vehicle class %s: %w", vc.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("seedVehicleClasses: %v", err)
	}

	log.Printf("seedVehicleClasses: inserted/ensured %d vehicle classes", len(defaultClasses))
}

func printTokens(cfg config.Auth) {
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.APIKey)
	for _, u := range []struct {
		id   string
		role types.UserRole
	}{
		{"admin-1", types.RoleAdmin},
		{"driver-1", types.RoleDriver},
		{"rider-1", types.RoleRider},
	} {
		token, err := tokens.Issue(u.id, u.role, *tokenTTL)
		if err != nil {
			log.Fatalf("printTokens: %v", err)
		}
		fmt.Printf("%-6s %-9s %s\n", u.role, u.id, token)
	}
}
