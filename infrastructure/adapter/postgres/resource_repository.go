package postgres

import (
	"database/sql"

	"github.com/fixora/resourcesvc/domain/entity"
)

// ResourceSchema maps entity.Resource onto the resources table.
func ResourceSchema() Schema[*entity.Resource] {
	return Schema[*entity.Resource]{
		Table:        "resources",
		Columns:      []string{"name"},
		SearchColumn: "name",
		New:          func() *entity.Resource { return &entity.Resource{} },
		Fields: func(r *entity.Resource) []interface{} {
			return []interface{}{&r.Name}
		},
		Values: func(r *entity.Resource) []interface{} {
			return []interface{}{r.Name}
		},
	}
}

func NewResourceRepository(db *sql.DB) *Repository[*entity.Resource] {
	return NewRepository(db, ResourceSchema())
}
