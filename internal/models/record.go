package models

// Record is a row created by, and only mutable by, one user.
type Record interface {
	RecordID() uint
	OwnerID() uint
}
