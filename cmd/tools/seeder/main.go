package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/noah-isme/backend-katalog/internal/repo"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	settings := repo.Settings{DB: pool}
	if err := settings.EnsureDefault(ctx, 15500, "IDR"); err != nil {
		log.Fatalf("Failed to seed settings: %v", err)
	}
	log.Println("Seeded store settings")

	items := seedItems(ctx, pool)
	seedExtras(ctx, pool)
	seedBundles(ctx, pool, items)
	seedOffers(ctx, pool, items)

	log.Println("Seeding completed successfully!")
}

func seedItems(ctx context.Context, pool *pgxpool.Pool) map[string]repo.Item {
	log.Println("Seeding Items...")
	itemsRepo := repo.Items{DB: pool}
	seeds := []repo.Item{
		{Name: "Kopi Susu", Slug: "kopi-susu", Category: "drink", CostBasis: 1.2, MarkupPercent: 25, Stock: 100},
		{Name: "Es Teh Manis", Slug: "es-teh-manis", Category: "drink", CostBasis: 0.4, MarkupPercent: 50, Stock: 200},
		{Name: "Roti Bakar", Slug: "roti-bakar", Category: "food", CostBasis: 0.8, MarkupPercent: 50, Stock: 80},
		{Name: "Nasi Goreng", Slug: "nasi-goreng", Category: "food", CostBasis: 1.5, MarkupPercent: 40, Stock: 60},
		{Name: "Pisang Goreng", Slug: "pisang-goreng", Category: "food", CostBasis: 0.5, MarkupPercent: 60, Stock: 120},
	}
	created := make(map[string]repo.Item, len(seeds))
	for _, seed := range seeds {
		item, err := itemsRepo.Create(ctx, seed)
		if err != nil {
			log.Printf("skip item %s: %v", seed.Slug, err)
			continue
		}
		created[item.Slug] = item
	}
	return created
}

func seedExtras(ctx context.Context, pool *pgxpool.Pool) {
	log.Println("Seeding Extras...")
	extrasRepo := repo.Extras{DB: pool}
	for _, seed := range []repo.Extra{
		{Name: "Extra Shot", Price: 5000},
		{Name: "Keju", Price: 4000},
		{Name: "Telur", Price: 3000},
	} {
		if _, err := extrasRepo.Create(ctx, seed); err != nil {
			log.Printf("skip extra %s: %v", seed.Name, err)
		}
	}
}

func seedBundles(ctx context.Context, pool *pgxpool.Pool, items map[string]repo.Item) {
	log.Println("Seeding Bundles...")
	bundlesRepo := repo.Bundles{DB: pool}
	kopi, okKopi := items["kopi-susu"]
	roti, okRoti := items["roti-bakar"]
	if !okKopi || !okRoti {
		log.Println("skip bundles: base items missing")
		return
	}
	if _, err := bundlesRepo.Create(ctx, repo.Bundle{
		Name:     "Paket Sarapan",
		Slug:     "paket-sarapan",
		Category: "combo",
		Contents: []repo.BundleContent{
			{ItemID: kopi.ID, Qty: 1},
			{ItemID: roti.ID, Qty: 1},
		},
	}); err != nil {
		log.Printf("skip bundle paket-sarapan: %v", err)
	}
}

func seedOffers(ctx context.Context, pool *pgxpool.Pool, items map[string]repo.Item) {
	log.Println("Seeding Offers...")
	offersRepo := repo.Offers{DB: pool}
	expires := time.Now().AddDate(0, 1, 0)
	seeds := []repo.Offer{
		{Name: "Diskon Makanan 10%", Kind: "percentage", Scope: "category", Target: "food", Percent: 10, ExpiresAt: expires, Active: true},
		{Name: "Potongan 5000", Kind: "fixed", Scope: "all", Amount: 5000, ExpiresAt: expires, Active: true},
	}
	if kopi, ok := items["kopi-susu"]; ok {
		seeds = append(seeds, repo.Offer{
			Name: "Beli 3 Gratis 1 Kopi Susu", Kind: "buyXgetY", Scope: "all",
			Target: kopi.ID, BuyQty: 3, GetQty: 1, ExpiresAt: expires, Active: true,
		})
	}
	for _, seed := range seeds {
		if _, err := offersRepo.Create(ctx, seed); err != nil {
			log.Printf("skip offer %s: %v", seed.Name, err)
		}
	}
}
