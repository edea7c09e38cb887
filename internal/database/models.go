package database

import (
	"github.com/uptrace/bun"
)

// User is the bun model for the users table. Location columns are nullable:
// they hold values only while the zip code has a successful geocode.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        string   `bun:"id,pk"`
	Name      string   `bun:"name,notnull"`
	ZipCode   *string  `bun:"zip_code"`
	Latitude  *float64 `bun:"latitude"`
	Longitude *float64 `bun:"longitude"`
	Timezone  *string  `bun:"timezone"`
}
