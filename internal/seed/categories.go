package seed

import (
	"errors"
	"fmt"

	"adminhub/internal/models"

	"gorm.io/gorm"
)

// BuiltInCategory is a top-level category with its subcategories.
type BuiltInCategory struct {
	Name     string
	Children []string
}

// BuiltInCategories is the taxonomy installed on a fresh database.
var BuiltInCategories = []BuiltInCategory{
	{Name: "Accident", Children: []string{"Road accident", "Workplace accident"}},
	{Name: "Fire", Children: []string{"Building fire", "Vehicle fire"}},
	{Name: "Flood", Children: []string{"Waterlogging", "Rising river"}},
	{Name: "Medical", Children: []string{"Blood required", "Ambulance needed"}},
	{Name: "Missing person"},
	{Name: "Animal rescue"},
	{Name: "Infrastructure", Children: []string{"Power outage", "Road damage", "Fallen tree"}},
	{Name: "Community notice"},
}

// Categories installs BuiltInCategories. Existing names are left untouched,
// so it is safe to run on every start.
func Categories(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, item := range BuiltInCategories {
			parent, err := ensureCategory(tx, item.Name, nil)
			if err != nil {
				return err
			}
			for _, child := range item.Children {
				if _, err := ensureCategory(tx, child, &parent.ID); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func ensureCategory(tx *gorm.DB, name string, parentID *uint) (*models.Category, error) {
	var category models.Category
	err := tx.Where("LOWER(name) = LOWER(?)", name).First(&category).Error
	switch {
	case err == nil:
		return &category, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("lookup category %q: %w", name, err)
	}

	category = models.Category{Name: name, ParentID: parentID}
	if err := tx.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("create category %q: %w", name, err)
	}
	return &category, nil
}
