package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample accounts for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, _, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			if err := db.Exec("DELETE FROM plans").Error; err != nil {
				log.Fatalf("failed to clear plans: %v", err)
			}
			if err := db.Exec("DELETE FROM users").Error; err != nil {
				log.Fatalf("failed to clear users: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), cfg.Security.BCryptCost)

		seedUsers := []struct {
			Name     string
			Username string
			Role     string
			Position string
			Area     string
		}{
			{"Nguyễn Văn Quản", "admin", "admin", "Quản trị hệ thống", ""},
			{"Trần Thị Lan", "manager", "manager", "Trưởng phòng kinh doanh", "Toàn chi nhánh"},
			{"Lê Văn Hùng", "hung.le", "employee", "Nhân viên kinh doanh", "Phường 1"},
			{"Phạm Thị Mai", "mai.pham", "employee", "Nhân viên kinh doanh", "Phường 3"},
		}

		for i, su := range seedUsers {
			var exists int
			row := db.Raw("SELECT 1 FROM users WHERE username = ?", su.Username).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Printf("user %s already exists, skipping\n", su.Username)
				continue
			}

			employeeID := fmt.Sprintf("EMP_%d", time.Now().UnixMilli()+int64(i))
			err := db.Exec(`INSERT INTO users
				(id, employee_id, employee_name, position, management_area, username, password_hash, role, is_active, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				uuid.New().String(), employeeID, su.Name, su.Position, su.Area,
				su.Username, string(hash), su.Role, true, time.Now(), time.Now()).Error
			if err != nil {
				log.Fatalf("failed to insert user %s: %v", su.Username, err)
			}
			fmt.Printf("Seeded %s user: %s\n", su.Role, su.Username)
		}

		fmt.Println("Seeding complete. All accounts use password: password")
	},
}
