// Command seed fills a development database with plausible lab stock: items in every
// category, inward receipts with their restocks, lab requests and issue logs.
// Everything goes through the application services so codes, statuses and
// notifications come out exactly as they would from the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	procurementapp "github.com/labstock/backend/internal/application/procurement"
	stockapp "github.com/labstock/backend/internal/application/stock"
	"github.com/labstock/backend/internal/domain/procurement"
	"github.com/labstock/backend/internal/domain/stock"
	"github.com/labstock/backend/internal/infrastructure/config"
	"github.com/labstock/backend/internal/infrastructure/logger"
	"github.com/labstock/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const seedUser = "seed@lab.local"

var itemNames = map[stock.Category][]string{
	stock.CategoryChemicals:   {"Sodium Chloride", "Acetone", "Ethanol", "Hydrochloric Acid", "Potassium Permanganate", "Sulfuric Acid"},
	stock.CategoryConsumables: {"Nitrile Gloves", "Filter Paper", "Pipette Tips", "Weighing Boats", "Parafilm"},
	stock.CategoryEquipments:  {"Centrifuge", "Microscope", "pH Meter", "Hot Plate Stirrer", "Analytical Balance"},
	stock.CategoryGlasswares:  {"Beaker 250ml", "Conical Flask", "Burette", "Measuring Cylinder", "Test Tube"},
	stock.CategoryBooks:       {"Organic Chemistry", "Lab Safety Handbook", "Analytical Methods", "Biochemistry"},
	stock.CategoryOthers:      {"Lab Coat", "Safety Goggles", "Fire Blanket", "Label Printer"},
}

var units = map[stock.Category]string{
	stock.CategoryChemicals:   "g",
	stock.CategoryConsumables: "pcs",
	stock.CategoryEquipments:  "unit",
	stock.CategoryGlasswares:  "pcs",
	stock.CategoryBooks:       "copy",
	stock.CategoryOthers:      "pcs",
}

type seeder struct {
	faker    *gofakeit.Faker
	registry *stockapp.Registry
	inwards  *procurementapp.InwardService
	requests *procurementapp.LabRequestService
	log      *zap.Logger
	inwardNo int
	runID    string
}

func main() {
	var (
		perCategory int
		seed        uint64
	)
	flag.IntVar(&perCategory, "items", 5, "Items to register per category")
	flag.Uint64Var(&seed, "seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	_ = godotenv.Load()

	log, err := logger.New(&logger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	db, err := persistence.Open(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repos := stockapp.Repositories{
		Items:         persistence.NewGormStockItemRepository(db.DB),
		Restocks:      persistence.NewGormRestockRepository(db.DB),
		Logs:          persistence.NewGormIssueLogRepository(db.DB),
		Notifications: persistence.NewGormNotificationRepository(db.DB),
		Inwards:       persistence.NewGormInwardRepository(db.DB),
		Requests:      persistence.NewGormLabRequestRepository(db.DB),
	}
	s := &seeder{
		faker: gofakeit.New(seed),
		registry: stockapp.NewRegistry(repos, persistence.NewGormTransactionScope(db.DB), func(svc *stockapp.StockService) {
			svc.SetLogger(log)
		}),
		inwards:  procurementapp.NewInwardService(repos.Inwards, repos.Items),
		requests: procurementapp.NewLabRequestService(repos.Requests, repos.Notifications),
		log:      log,
		runID:    time.Now().Format("060102150405"),
	}

	ctx := context.Background()
	for _, svc := range s.registry.Services() {
		if err := s.seedCategory(ctx, svc, perCategory); err != nil {
			log.Fatal("Seeding failed", zap.String("category", string(svc.Descriptor().Category)), zap.Error(err))
		}
	}
	log.Info("Seed completed", zap.Int("items_per_category", perCategory))
}

func (s *seeder) seedCategory(ctx context.Context, svc *stockapp.StockService, n int) error {
	desc := svc.Descriptor()
	names := itemNames[desc.Category]

	for i := 0; i < n; i++ {
		name := names[i%len(names)]
		if i >= len(names) {
			name = fmt.Sprintf("%s %s", name, s.faker.Word())
		}
		req := stockapp.RegisterItemRequest{
			ItemName:      name,
			Company:       s.faker.Company(),
			Purpose:       s.faker.Sentence(4),
			UnitOfMeasure: units[desc.Category],
			MinStockLevel: decimal.NewFromInt(int64(s.faker.Number(2, 10))),
		}
		if desc.RequiresHazardData {
			req.CasNo = fmt.Sprintf("%d-%02d-%d", s.faker.Number(50, 9999), s.faker.Number(10, 99), s.faker.Number(0, 9))
		}
		switch desc.Category {
		case stock.CategoryEquipments:
			req.SerialNumber = s.faker.Regex("SN-[A-Z]{3}[0-9]{5}")
			req.ModelNumber = s.faker.Regex("[A-Z]{2}-[0-9]{3}")
		case stock.CategoryBooks:
			req.Author = s.faker.Name()
			req.Publisher = s.faker.Company()
			req.Edition = fmt.Sprintf("%d", s.faker.Number(1, 9))
		}
		if desc.SeedsQuantityOnRegister {
			req.TotalQuantity = decimal.NewFromInt(int64(s.faker.Number(5, 40)))
		}

		item, err := svc.Register(ctx, req, seedUser)
		if err != nil {
			return fmt.Errorf("register %q: %w", name, err)
		}

		if !desc.SeedsQuantityOnRegister {
			if err := s.restock(ctx, svc, item); err != nil {
				return err
			}
		}
		if err := s.issue(ctx, svc, item.ID); err != nil {
			return err
		}
		s.log.Info("Seeded item",
			zap.String("category", string(desc.Category)),
			zap.String("item_code", item.ItemCode),
		)
	}
	return nil
}

// restock receives goods for the item through an inward receipt.
func (s *seeder) restock(ctx context.Context, svc *stockapp.StockService, item *stockapp.ItemResponse) error {
	desc := svc.Descriptor()
	qty := decimal.NewFromInt(int64(s.faker.Number(10, 60)))

	s.inwardNo++
	inward, err := s.inwards.Create(ctx, procurementapp.CreateInwardRequest{
		InwardCode:    fmt.Sprintf("INW-%s-%04d", s.runID, s.inwardNo),
		Category:      string(desc.Category),
		ItemID:        item.ID,
		Quantity:      qty,
		Unit:          units[desc.Category],
		VendorName:    s.faker.Company(),
		InvoiceNumber: s.faker.Regex("INV-[0-9]{6}"),
	}, seedUser)
	if err != nil {
		return fmt.Errorf("inward for %s: %w", item.ItemCode, err)
	}

	req := stockapp.RestockRequest{
		ItemID:            &item.ID,
		InwardID:          &inward.ID,
		QuantityPurchased: qty,
		Location:          fmt.Sprintf("Shelf %s%d", s.faker.Letter(), s.faker.Number(1, 20)),
	}
	if desc.HasExpiry {
		expires := time.Now().AddDate(0, s.faker.Number(1, 18), 0)
		req.ExpirationDate = expires.Format(time.DateOnly)
		req.ExpirationAlertDate = expires.AddDate(0, 0, -30).Format(time.DateOnly)
	}
	if desc.HasMaintenance {
		req.MaintenanceDate = time.Now().AddDate(0, s.faker.Number(1, 6), 0).Format(time.DateOnly)
		req.MaintenanceDetails = "Calibration and safety check"
	}
	if _, err := svc.Restock(ctx, req, seedUser); err != nil {
		return fmt.Errorf("restock %s: %w", item.ItemCode, err)
	}
	return nil
}

// issue hands out a few units against a fresh, approved requisition.
func (s *seeder) issue(ctx context.Context, svc *stockapp.StockService, itemID uuid.UUID) error {
	request, err := s.requests.Create(ctx, procurementapp.CreateLabRequestRequest{
		Model:             string(stock.RequestModelRequisition),
		Purpose:           s.faker.Sentence(5),
		DateOfRequirement: time.Now().AddDate(0, 0, 7).Format(time.DateOnly),
	}, s.faker.Email())
	if err != nil {
		return fmt.Errorf("lab request: %w", err)
	}
	if _, err := s.requests.Review(ctx, request.ID, procurementapp.ReviewLabRequestRequest{
		Status: string(procurement.RequestApproved),
	}, seedUser); err != nil {
		return fmt.Errorf("approve request: %w", err)
	}
	_, err = svc.Issue(ctx, stockapp.IssueRequest{
		ItemID:         itemID,
		IssuedQuantity: decimal.NewFromInt(int64(s.faker.Number(1, 3))),
		RequestModel:   string(stock.RequestModelRequisition),
		RequestID:      &request.ID,
		DateIssued:     time.Now().Format(time.DateOnly),
		UserEmail:      s.faker.Email(),
	})
	if err != nil {
		return fmt.Errorf("issue: %w", err)
	}
	return nil
}
