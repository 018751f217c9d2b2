// Package state owns the client's on-disk store, the terminal analogue of
// the browser's localStorage: the session key/value pairs and the saved
// cart snapshot.
package state

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// KV holds the persisted session values under the keys "authToken" and
// "userData".
type KV struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}

func (KV) TableName() string { return "kv" }

// CartLine is a snapshot row of the cart; Position preserves insertion
// order across restarts.
type CartLine struct {
	Position  int     `gorm:"primaryKey;autoIncrement:false"`
	ProductID string  `gorm:"not null"`
	Name      string  `gorm:"not null"`
	Price     float64 `gorm:"not null"`
	Image     string
	Quantity  int `gorm:"check:quantity>0"`
}

func (CartLine) TableName() string { return "cart_items" }

// Open opens (or creates) the state database. The gorm logger is silenced
// because the terminal UI owns stdout.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	if err := db.AutoMigrate(&KV{}, &CartLine{}); err != nil {
		return nil, fmt.Errorf("migrate state db: %w", err)
	}
	return db, nil
}
