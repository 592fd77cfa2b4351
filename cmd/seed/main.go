package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"digital-storefront/internal/config"
	"digital-storefront/internal/domain"
	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/infra/db/migrations"
	pg "digital-storefront/internal/infra/db/postgres"
	"digital-storefront/internal/infra/logging"
	"digital-storefront/internal/usecase"

	"github.com/shopspring/decimal"
)

func main() {
	// ---- Config ----
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := migrations.UpWithPool(pool); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	productUC := usecase.NewProductUseCase(pg.NewProductRepo(pool), pg.NewPurchaseRepo(pool), logger)
	promoUC := usecase.NewPromoUseCase(pg.NewPromoCodeRepo(pool), logger)

	// If products already exist, do nothing
	products, err := productUC.List(ctx, false)
	if err != nil {
		log.Fatalf("list products: %v", err)
	}
	if len(products) > 0 {
		fmt.Printf("%d products already present. No changes.\n", len(products))
		for _, p := range products {
			fmt.Printf("  - %s (%s, price=%s, active=%v)\n", p.Name, p.Type, p.Price.StringFixed(2), p.IsActive)
		}
		return
	}

	seed := []struct {
		Name    string
		Desc    string
		Price   string
		Type    model.ProductType
		Payload string
	}{
		{"Go Handbook", "A practical guide to production Go.", "499.00", model.ProductTypePDF, "https://files.example.com/go-handbook.pdf"},
		{"Postgres Cheatsheet", "Queries, indexes and tuning on two pages.", "149.00", model.ProductTypePDF, "https://files.example.com/pg-cheatsheet.pdf"},
		{"Builders Club", "Private Telegram community for indie builders.", "999.00", model.ProductTypeTelegram, "https://t.me/+buildersclub"},
	}
	for _, s := range seed {
		name, desc, typ, payload := s.Name, s.Desc, s.Type, s.Payload
		price := decimal.RequireFromString(s.Price)
		p, err := productUC.Create(ctx, usecase.ProductInput{
			Name:        &name,
			Description: &desc,
			Price:       &price,
			Type:        &typ,
			Payload:     &payload,
		})
		if err != nil {
			log.Fatalf("create product %q: %v", s.Name, err)
		}
		fmt.Printf("seeded product: %s (id=%s, %s, price=%s)\n", p.Name, p.ID, p.Type, p.Price.StringFixed(2))
	}

	launchUses := 100
	launchExpiry := time.Now().AddDate(0, 1, 0)
	promos := []struct {
		Code    string
		Percent int
		MaxUses *int
		Expires *time.Time
	}{
		{"WELCOME10", 10, nil, nil},
		{"LAUNCH50", 50, &launchUses, &launchExpiry},
	}
	for _, s := range promos {
		pc, err := promoUC.Create(ctx, s.Code, s.Percent, s.MaxUses, s.Expires)
		if errors.Is(err, domain.ErrAlreadyExists) {
			fmt.Printf("promo %s already present\n", s.Code)
			continue
		}
		if err != nil {
			log.Fatalf("create promo %q: %v", s.Code, err)
		}
		fmt.Printf("seeded promo: %s (%d%% off)\n", pc.Code, pc.DiscountPercent)
	}

	fmt.Println("Seeding complete.")
}
