package domain

import (
	"strings"
	"time"
)

type Customer struct {
	ID        string    `json:"id" gorm:"primaryKey;type:char(36) COLLATE utf8mb4_0900_bin"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Email     string    `json:"email" gorm:"type:varchar(255) COLLATE utf8mb4_0900_bin;not null;uniqueIndex"`
	Address   string    `json:"address" gorm:"type:varchar(1024);not null"`
	CreatedAt time.Time `json:"-" gorm:"autoCreateTime"`
}

// ComposeAddress joins the non-blank parts with ", ", e.g. city, street, house, apartment.
func ComposeAddress(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
