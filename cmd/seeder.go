package cmd

import (
	"fmt"
	"log"

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

		dbx, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := initGorm(dbx)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"leave_requests", "sessions", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		// Leave entitlement columns come from the table defaults.
		seedUsers := []struct {
			Email      string
			Name       string
			Role       string
			Department string
		}{
			{"admin@mail.com", "Alice Admin", "Super Admin", "Executive"},
			{"manager.eng@mail.com", "Mika Manager", "Manager", "Engineering"},
			{"manager.fin@mail.com", "Farah Manager", "Manager", "Finance"},
			{"dev@mail.com", "Devi Developer", "Employee", "Engineering"},
			{"qa@mail.com", "Qiana Tester", "Employee", "Engineering"},
			{"acct@mail.com", "Andi Accountant", "Employee", "Finance"},
		}

		for _, u := range seedUsers {
			var exists int
			row := db.Raw("SELECT 1 FROM users WHERE email = ?", u.Email).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Printf("user %s already exists, skipping\n", u.Email)
				continue
			}

			if err := db.Exec(
				"INSERT INTO users (email, name, password_hash, role, department, created_at, updated_at) VALUES (?, ?, ?, ?, ?, now(), now())",
				u.Email, u.Name, string(hash), u.Role, u.Department,
			).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
			fmt.Printf("Seeded %s user: %s (%s)\n", u.Role, u.Email, u.Department)
		}

		fmt.Println("Seeding complete; all sample accounts use password:", password)
	},
}
