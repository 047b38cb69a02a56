package models

import "time"

// Template prefills category, subcategory and supplier for fast data entry.
type Template struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex:idx_template_name,priority:2;not null" json:"name"`
	Category    Category  `gorm:"size:20;uniqueIndex:idx_template_name,priority:1;not null" json:"category"`
	Subcategory string    `gorm:"size:150;not null" json:"subcategory"`
	Supplier    string    `gorm:"size:150" json:"supplier"`
	CreatedAt   time.Time `json:"created_at"`
}
