package main

import (
	"fmt"
	"testing"

	"itnfit/pkg/logger"
	"itnfit/pkg/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.PointBalance{}, &models.PointTransaction{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestSeedDatabase_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, seedDatabase(db, bcrypt.MinCost, logger.NewNop()))
	require.NoError(t, seedDatabase(db, bcrypt.MinCost, logger.NewNop()))

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(len(seedUsers)), users)

	var member models.User
	require.NoError(t, db.Where("email = ?", "member@itnfit.kr").First(&member).Error)
	assert.Equal(t, models.RoleMember, member.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(member.Password), []byte("member1234")))

	var balance models.PointBalance
	require.NoError(t, db.Where("user_id = ?", member.ID).First(&balance).Error)
	assert.Equal(t, 2450, balance.Points)

	var txs int64
	require.NoError(t, db.Model(&models.PointTransaction{}).Where("user_id = ?", member.ID).Count(&txs).Error)
	assert.Equal(t, int64(1), txs)

	var staff models.User
	require.NoError(t, db.Where("email = ?", "staff@itnfit.kr").First(&staff).Error)
	assert.Equal(t, models.RoleStaff, staff.Role)
}
