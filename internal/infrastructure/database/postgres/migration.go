// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/shop-backend/internal/domain/bundle"
	"github.com/your-org/shop-backend/internal/domain/cart"
	"github.com/your-org/shop-backend/internal/domain/pricing"
	"github.com/your-org/shop-backend/internal/domain/product"
	"github.com/your-org/shop-backend/internal/domain/user"
	"github.com/your-org/shop-backend/internal/domain/weather"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Define all models that need migration in dependency order
	models := []interface{}{
		// User domain - Base tables
		&user.User{},
		&weather.UserLocation{},

		// Product domain - Base tables
		&product.Category{},
		&product.Manufacturer{},
		&product.Product{},
		&product.ProductVariant{},

		// Bundle domain
		&bundle.Bundle{},
		&bundle.BundleItem{},

		// Cart domain (server-side carts only; guest carts live in Redis)
		&cart.CartLine{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_pricing_tier ON users(pricing_tier)",
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_featured ON products(is_featured, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_sku ON products(sku)",
		"CREATE INDEX IF NOT EXISTS idx_products_slug ON products(slug)",

		// Category indexes
		"CREATE INDEX IF NOT EXISTS idx_categories_parent_active ON categories(parent_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_categories_sort_order ON categories(sort_order)",

		// Product variant indexes
		"CREATE INDEX IF NOT EXISTS idx_product_variants_product_active ON product_variants(product_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_product_variants_sku ON product_variants(sku)",

		// Bundle indexes
		"CREATE INDEX IF NOT EXISTS idx_bundles_active ON bundles(is_active)",
		"CREATE INDEX IF NOT EXISTS idx_bundle_items_bundle ON bundle_items(bundle_id)",
		"CREATE INDEX IF NOT EXISTS idx_bundle_items_product ON bundle_items(product_id)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_cart_lines_user ON cart_lines(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_cart_lines_user_product ON cart_lines(user_id, product_id)",
		"CREATE INDEX IF NOT EXISTS idx_cart_lines_created_at ON cart_lines(created_at)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	if err := m.seedManufacturers(); err != nil {
		return fmt.Errorf("failed to seed manufacturers: %w", err)
	}

	if err := m.seedUsers(); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := m.seedProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	if err := m.seedBundles(); err != nil {
		return fmt.Errorf("failed to seed bundles: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedCategories creates default product categories
func (m *Migration) seedCategories() error {
	log.Println("🏷️ Seeding categories...")

	categories := []product.Category{
		{
			Name:        "Power Tools",
			Slug:        "power-tools",
			Description: "Drills, saws, sanders, and other powered equipment",
			SortOrder:   1,
			IsActive:    true,
		},
		{
			Name:        "Hand Tools",
			Slug:        "hand-tools",
			Description: "Hammers, wrenches, screwdrivers, and measuring tools",
			SortOrder:   2,
			IsActive:    true,
		},
		{
			Name:        "Fasteners",
			Slug:        "fasteners",
			Description: "Screws, bolts, nails, and anchors",
			SortOrder:   3,
			IsActive:    true,
		},
		{
			Name:        "Safety Gear",
			Slug:        "safety-gear",
			Description: "Protective equipment for the shop and job site",
			SortOrder:   4,
			IsActive:    true,
		},
	}

	for _, category := range categories {
		var existing product.Category
		result := m.db.Where("slug = ?", category.Slug).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&category).Error; err != nil {
				return err
			}
			log.Printf("✅ Created category: %s", category.Name)
		} else {
			log.Printf("⏭️ Category already exists: %s", category.Name)
		}
	}

	return nil
}

// seedManufacturers creates default manufacturers
func (m *Migration) seedManufacturers() error {
	log.Println("🏭 Seeding manufacturers...")

	manufacturers := []product.Manufacturer{
		{
			Name:        "Northfield Tools",
			Slug:        "northfield-tools",
			Description: "Professional-grade power tools",
			Website:     "https://northfield-tools.example.com",
			IsActive:    true,
		},
		{
			Name:        "Granite Hardware",
			Slug:        "granite-hardware",
			Description: "Hand tools and fasteners",
			IsActive:    true,
		},
	}

	for _, manufacturer := range manufacturers {
		var existing product.Manufacturer
		result := m.db.Where("slug = ?", manufacturer.Slug).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&manufacturer).Error; err != nil {
				return err
			}
			log.Printf("✅ Created manufacturer: %s", manufacturer.Name)
		} else {
			log.Printf("⏭️ Manufacturer already exists: %s", manufacturer.Name)
		}
	}

	return nil
}

// seedUsers creates the default admin and development users
func (m *Migration) seedUsers() error {
	log.Println("👤 Seeding users...")

	seedUsers := []struct {
		email    string
		password string
		first    string
		last     string
		tier     pricing.CustomerTier
		isAdmin  bool
	}{
		{"admin@example.com", "Admin1234!", "Admin", "User", pricing.TierRegular, true},
		{"test1@example.com", "Test1234!", "Test", "User", pricing.TierRegular, false},
		{"wholesale@example.com", "Whole1234!", "Wholesale", "Buyer", pricing.TierWholesale, false},
	}

	for _, seed := range seedUsers {
		var existing user.User
		result := m.db.Where("email = ?", seed.email).First(&existing)
		if result.Error == nil {
			log.Printf("⏭️ User already exists: %s", seed.email)
			continue
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(seed.password), 10)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		newUser := user.User{
			Email:       seed.email,
			Password:    string(hashedPassword),
			FirstName:   seed.first,
			LastName:    seed.last,
			PricingTier: string(seed.tier),
			IsActive:    true,
			IsAdmin:     seed.isAdmin,
		}

		if err := m.db.Create(&newUser).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", seed.email, err)
		}
		log.Printf("✅ Created user: %s", seed.email)
	}

	return nil
}

// seedProducts creates sample products with variants
func (m *Migration) seedProducts() error {
	log.Println("🛍️ Seeding products...")

	var productCount int64
	m.db.Model(&product.Product{}).Count(&productCount)
	if productCount > 0 {
		log.Println("⏭️ Products already exist")
		return nil
	}

	manufacturerID := uint(1)

	products := []product.Product{
		{
			SKU:            "PT-DRILL-001",
			Name:           "Cordless Drill 18V",
			Slug:           "cordless-drill-18v",
			Description:    "18V brushless cordless drill with two-speed gearbox",
			Price:          12999,
			ComparePrice:   14999,
			CategoryID:     1,
			ManufacturerID: &manufacturerID,
			IsActive:       true,
			IsFeatured:     true,
			TrackQuantity:  true,
			Quantity:       40,
			Tags:           "drill,cordless,power",
			Variants: []product.ProductVariant{
				{SKU: "PT-DRILL-001-B2", Name: "2Ah Battery", Price: 0, Quantity: 25, IsActive: true},
				{SKU: "PT-DRILL-001-B5", Name: "5Ah Battery", Price: 15999, Quantity: 15, IsActive: true},
			},
		},
		{
			SKU:           "HT-HAMMER-001",
			Name:          "Claw Hammer 16oz",
			Slug:          "claw-hammer-16oz",
			Description:   "16oz curved claw hammer with fiberglass handle",
			Price:         1899,
			CategoryID:    2,
			IsActive:      true,
			TrackQuantity: true,
			Quantity:      120,
			Tags:          "hammer,hand-tool",
		},
		{
			SKU:           "FS-SCREWS-001",
			Name:          "Wood Screws Assortment",
			Slug:          "wood-screws-assortment",
			Description:   "500-piece assorted wood screw kit",
			Price:         2499,
			CategoryID:    3,
			IsActive:      true,
			TrackQuantity: true,
			Quantity:      200,
			Tags:          "screws,fasteners",
		},
		{
			SKU:           "SG-GLASSES-001",
			Name:          "Safety Glasses",
			Slug:          "safety-glasses",
			Description:   "Anti-fog impact-rated safety glasses",
			Price:         999,
			CategoryID:    4,
			IsActive:      true,
			TrackQuantity: false,
			Tags:          "safety,ppe",
		},
	}

	for _, p := range products {
		if err := m.db.Create(&p).Error; err != nil {
			return fmt.Errorf("failed to create product %s: %w", p.SKU, err)
		}
		log.Printf("✅ Created product: %s", p.Name)
	}

	return nil
}

// seedBundles creates sample bundles over the seeded products
func (m *Migration) seedBundles() error {
	log.Println("📦 Seeding bundles...")

	var bundleCount int64
	m.db.Model(&bundle.Bundle{}).Count(&bundleCount)
	if bundleCount > 0 {
		log.Println("⏭️ Bundles already exist")
		return nil
	}

	starterPrice := int64(14999)
	bundles := []bundle.Bundle{
		{
			Name:        "Workshop Starter Kit",
			Slug:        "workshop-starter-kit",
			Description: "Drill, hammer, and safety glasses at a fixed bundle price",
			FixedPrice:  &starterPrice,
			IsActive:    true,
			Items: []bundle.BundleItem{
				{ProductID: 1, Quantity: 1},
				{ProductID: 2, Quantity: 1},
				{ProductID: 4, Quantity: 1},
			},
		},
		{
			Name:        "Fastening Essentials",
			Slug:        "fastening-essentials",
			Description: "Screw kit plus hammer with a flat discount",
			Discount:    500,
			IsActive:    true,
			Items: []bundle.BundleItem{
				{ProductID: 2, Quantity: 1},
				{ProductID: 3, Quantity: 2},
			},
		},
	}

	for _, b := range bundles {
		if err := m.db.Create(&b).Error; err != nil {
			return fmt.Errorf("failed to create bundle %s: %w", b.Slug, err)
		}
		log.Printf("✅ Created bundle: %s", b.Name)
	}

	return nil
}
