package specification

import "gorm.io/gorm"

// ByEmail filters users by their email. Matching is case-sensitive: the
// email is the natural key exactly as registered.
type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}
