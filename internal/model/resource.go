package model

// Space is a bookable room or area owned by a tenant.
type Space struct {
	ID       uint64 `db:"id" json:"id"`               // spaces.id
	TenantID uint64 `db:"tenant_id" json:"tenant_id"` // spaces.tenant_id
	Name     string `db:"name" json:"name"`           // spaces.name
}

// Table is a restaurant table owned by a tenant.  Capacity bounds the
// party size a single reservation may seat.
type Table struct {
	ID       uint64 `db:"id" json:"id"`
	TenantID uint64 `db:"tenant_id" json:"tenant_id"`
	Label    string `db:"label" json:"label"`
	Capacity int    `db:"capacity" json:"capacity"`
}
