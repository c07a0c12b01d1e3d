package cmd

import (
	"fmt"
	"log"

	"github.com/designxcel/storefront/internal/permission"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := initGormDB(sqlxDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"user_permissions", "products", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		// Full permission catalog first; granular grants reference it.
		for _, name := range permission.AllNames() {
			var pid int64
			if err := db.Raw("SELECT id FROM permissions WHERE name = ?", name).Row().Scan(&pid); err != nil {
				if err := db.Exec("INSERT INTO permissions (name, description, created_at) VALUES (?, ?, now())", name, "Storefront permission "+name).Error; err != nil {
					log.Fatalf("failed to insert permission %s: %v", name, err)
				}
			}
		}

		users := []struct {
			Email    string
			FullName string
			Role     string
			UserType string
		}{
			{"admin@designxcel.com", "Site Admin", "Admin", "employee"},
			{"inventory@designxcel.com", "Ines Inventory", "InventoryManager", "employee"},
			{"usermgr@designxcel.com", "Uma Accounts", "UserManager", "employee"},
			{"support@designxcel.com", "Omar Support", "OrderSupport", "employee"},
			{"shopper@example.com", "Casey Shopper", "Customer", "customer"},
		}

		for _, u := range users {
			var exists int
			if err := db.Raw("SELECT 1 FROM users WHERE email = ?", u.Email).Row().Scan(&exists); err == nil {
				fmt.Println("user already exists:", u.Email)
				continue
			}
			if err := db.Exec(
				"INSERT INTO users (email, full_name, password_hash, role, user_type, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, true, now(), now())",
				u.Email, u.FullName, string(hash), u.Role, u.UserType,
			).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
			fmt.Println("Seeded user:", u.Email)
		}

		// Granular grants on top of the role defaults: the user manager also
		// edits site content, support can update orders they handle.
		grants := []struct {
			Email string
			Perms []string
		}{
			{"usermgr@designxcel.com", []string{
				permission.Name(permission.SectionContent, permission.ActionUpdate),
			}},
			{"support@designxcel.com", []string{
				permission.Name(permission.SectionTransactions, permission.ActionView),
			}},
		}

		var adminID int64
		if err := db.Raw("SELECT id FROM users WHERE email = ?", "admin@designxcel.com").Row().Scan(&adminID); err != nil {
			log.Fatalf("failed to lookup admin user id: %v", err)
		}

		for _, g := range grants {
			var userID int64
			if err := db.Raw("SELECT id FROM users WHERE email = ?", g.Email).Row().Scan(&userID); err != nil {
				log.Fatalf("failed to lookup user id for %s: %v", g.Email, err)
			}
			for _, name := range g.Perms {
				var pid int64
				if err := db.Raw("SELECT id FROM permissions WHERE name = ?", name).Row().Scan(&pid); err != nil {
					log.Fatalf("permission not found %s: %v", name, err)
				}
				var exists int
				if err := db.Raw("SELECT 1 FROM user_permissions WHERE user_id = ? AND permission_id = ?", userID, pid).Row().Scan(&exists); err == nil {
					continue
				}
				if err := db.Exec(
					"INSERT INTO user_permissions (user_id, permission_id, can_access, granted_by, created_at, updated_at) VALUES (?, ?, true, ?, now(), now())",
					userID, pid, adminID,
				).Error; err != nil {
					log.Fatalf("failed to grant %s to %s: %v", name, g.Email, err)
				}
				fmt.Printf("Granted %s to %s\n", name, g.Email)
			}
		}

		products := []struct {
			Name       string
			Slug       string
			PriceCents int64
			Stock      int
		}{
			{"Walnut Standing Desk", "walnut-standing-desk", 64900, 12},
			{"Oak Bookshelf", "oak-bookshelf", 28900, 30},
			{"Ergonomic Task Chair", "ergonomic-task-chair", 41900, 0},
		}

		for _, p := range products {
			var exists int
			if err := db.Raw("SELECT 1 FROM products WHERE slug = ?", p.Slug).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec(
				"INSERT INTO products (name, slug, description, price_cents, currency, stock_count, is_active, created_at, updated_at) VALUES (?, ?, '', ?, 'USD', ?, true, now(), now())",
				p.Name, p.Slug, p.PriceCents, p.Stock,
			).Error; err != nil {
				log.Fatalf("failed to insert product %s: %v", p.Slug, err)
			}
			fmt.Println("Seeded product:", p.Slug)
		}

		fmt.Println("Seeding complete. All seeded accounts use password:", password)
	},
}
