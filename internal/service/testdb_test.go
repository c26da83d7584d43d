package service

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/plazamkt/storefront-backend/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Category{},
		&model.Product{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Wishlist{},
		&model.WishlistItem{},
		&model.ProtectionClaim{},
		&model.Conversation{},
		&model.Message{},
	))
	return db
}

// testClock is advanced by hand inside tests.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
