package model

import "time"

// Branch is a retail location ("local") and its login account. Branches are
// created once at bootstrap and never updated or deleted afterwards.
type Branch struct {
	ID        int64     `json:"id"`
	Nombre    string    `json:"nombre"`
	Usuario   string    `json:"usuario"`
	CreatedAt time.Time `json:"creado_en"`

	// PasswordHash is the bcrypt hash of the branch credential. It never
	// leaves the process boundary.
	PasswordHash string `json:"-"`
}

// Identity is the resolved caller attached to every authenticated request.
type Identity struct {
	BranchID int64  `json:"id"`
	Nombre   string `json:"nombre"`
	Usuario  string `json:"usuario"`
}
