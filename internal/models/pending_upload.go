package models

// PendingUpload marks an object uploaded to the media bucket that no listing
// references yet. Rows are released once the owning listing is persisted.
type PendingUpload struct {
	ObjectKey string `gorm:"primaryKey;size:512"`
	TrackedAt int64  `gorm:"not null;index"` // unix millis
}
