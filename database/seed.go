package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/yeremiapane/billiard-pos/models"
	"github.com/yeremiapane/billiard-pos/services"
	"github.com/yeremiapane/billiard-pos/utils"
)

const defaultTableCount = 8

var defaultProducts = []services.ProductInput{
	{Name: "Coca Cola", Price: 2.50, Category: models.CategoryDrink},
	{Name: "Pepsi", Price: 2.50, Category: models.CategoryDrink},
	{Name: "Sprite", Price: 2.50, Category: models.CategoryDrink},
	{Name: "Beer", Price: 4.00, Category: models.CategoryDrink},
	{Name: "Water", Price: 1.50, Category: models.CategoryDrink},
	{Name: "Chips", Price: 3.00, Category: models.CategoryFood},
	{Name: "Noodles", Price: 5.00, Category: models.CategoryFood},
	{Name: "Sandwich", Price: 6.00, Category: models.CategoryFood},
	{Name: "Pizza Slice", Price: 4.50, Category: models.CategoryFood},
	{Name: "Hot Dog", Price: 3.50, Category: models.CategoryFood},
}

// Seed fills an empty database with default settings, tables and products.
// Each group is only written when its table is empty.
func Seed(ctx context.Context, db *gorm.DB, svc *services.Services) error {
	var settings, tables, products int64
	if err := db.Model(&models.Setting{}).Count(&settings).Error; err != nil {
		return err
	}
	if err := db.Model(&models.Table{}).Count(&tables).Error; err != nil {
		return err
	}
	if err := db.Model(&models.Product{}).Count(&products).Error; err != nil {
		return err
	}

	if settings == 0 {
		in := services.SettingsInput{
			HourlyRate:   services.DefaultRates.HourlyRate,
			HalfHourRate: services.DefaultRates.HalfHourRate,
		}
		if tables == 0 {
			in.TableCount = defaultTableCount
		}
		if err := svc.Settings.Save(ctx, in); err != nil {
			return err
		}
		utils.InfoLogger.Println("Default settings inserted")
	} else if tables == 0 {
		if _, err := svc.Sessions.SetTableCount(ctx, defaultTableCount); err != nil {
			return err
		}
		utils.InfoLogger.Println("Default tables inserted")
	}

	if products == 0 {
		for _, p := range defaultProducts {
			if _, err := svc.Catalog.CreateProduct(ctx, p); err != nil {
				return err
			}
		}
		utils.InfoLogger.Printf("%d default products inserted", len(defaultProducts))
	}
	return nil
}
