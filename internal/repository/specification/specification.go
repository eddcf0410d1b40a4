package specification

import "gorm.io/gorm"

// Specification narrows a query. The in-memory store interprets the concrete
// types in this package directly, so add new filters here rather than ad hoc.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
