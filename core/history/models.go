package history

import "time"

// Record captures the outcome of a single merge run.
type Record struct {
	// ID is the auto-incremented primary key.
	ID uint `gorm:"primaryKey"`
	// SessionID identifies the merge session the run belongs to.
	SessionID string `gorm:"size:36;index"`
	// BaseName is the snapshot name of the common ancestor.
	BaseName string `gorm:"size:255"`
	// SourceName is the snapshot name changes were taken from.
	SourceName string `gorm:"size:255"`
	// TargetName is the snapshot name changes were applied to.
	TargetName string `gorm:"size:255"`
	// ActionCount is the total number of actions the run produced.
	ActionCount int
	// ConflictCount is the number of conflict actions among them.
	ConflictCount int
	// Applied reports whether the actions were applied to the target.
	Applied bool
	// CreatedAt is set by gorm when the record is inserted.
	CreatedAt time.Time
}

// TableName overrides the gorm default.
func (Record) TableName() string {
	return "merge_runs"
}
