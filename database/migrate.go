package database

import (
	"github.com/Yo-Self/menu-mestre-facil-sub001/models"
	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
	"gorm.io/gorm"
)

// Migrate membuat/menyesuaikan tabel restaurants, menus, menu_categories, dishes, waiter_calls
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Restaurant{},
		&models.Menu{},
		&models.MenuCategory{},
		&models.Dish{},
		&models.WaiterCall{},
	)
	if err != nil {
		return err
	}

	// pending list dibaca setiap tick, pastikan index-nya ada
	if !db.Migrator().HasIndex(&models.WaiterCall{}, "idx_waiter_calls_pending") {
		if err := db.Migrator().CreateIndex(&models.WaiterCall{}, "idx_waiter_calls_pending"); err != nil {
			utils.ErrorLogger.Printf("Error creating pending index: %v", err)
		}
	}

	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
