package main

import (
	"errors"
	"flag"
	"fmt"

	"itnfit/pkg/config"
	"itnfit/pkg/database"
	"itnfit/pkg/logger"
	"itnfit/pkg/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedUser struct {
	email    string
	name     string
	password string
	role     models.UserRole
	points   int
}

var seedUsers = []seedUser{
	{"staff@itnfit.kr", "Front Desk", "staff1234", models.RoleStaff, 0},
	{"member@itnfit.kr", "Kim Minji", "member1234", models.RoleMember, 2450},
	{"newbie@itnfit.kr", "Lee Jun", "member1234", models.RoleMember, 0},
}

func main() {
	var cost int
	flag.IntVar(&cost, "bcrypt-cost", bcrypt.DefaultCost, "bcrypt cost for seeded passwords")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	defer log.Sync()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	if err := seedDatabase(db, cost, log); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	log.Info("Database seeded successfully!")
}

// seedDatabase is idempotent: existing accounts are skipped and opening
// balances are keyed by a per-account reference.
func seedDatabase(db *gorm.DB, cost int, log *logger.Logger) error {
	for _, data := range seedUsers {
		user, created, err := ensureUser(db, data, cost)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", data.email, err)
		}
		if created {
			log.Info("Created %s account: %s (%s)", data.role, data.name, data.email)
		} else {
			log.Info("User %s already exists, skipping", data.email)
		}

		if data.points > 0 {
			if err := grantOpeningBalance(db, user.ID, data.points); err != nil {
				return fmt.Errorf("failed to seed points for %s: %w", data.email, err)
			}
		}
	}
	return nil
}

func ensureUser(db *gorm.DB, data seedUser, cost int) (*models.User, bool, error) {
	var existing models.User
	err := db.Where("email = ?", data.email).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(data.password), cost)
	if err != nil {
		return nil, false, err
	}

	user := &models.User{
		Email:    data.email,
		Name:     data.name,
		Password: string(hashedPassword),
		Role:     data.role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func grantOpeningBalance(db *gorm.DB, userID string, points int) error {
	reference := "seed:opening:" + userID

	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.PointTransaction{}).Where("reference = ?", reference).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		balance := models.PointBalance{UserID: userID}
		if err := tx.Where("user_id = ?", userID).FirstOrCreate(&balance).Error; err != nil {
			return err
		}
		balance.Points += points
		if err := tx.Save(&balance).Error; err != nil {
			return err
		}

		return tx.Create(&models.PointTransaction{
			UserID:       userID,
			Type:         "earn",
			Amount:       points,
			BalanceAfter: balance.Points,
			Description:  "Opening balance",
			Reference:    &reference,
			Status:       "completed",
		}).Error
	})
}
