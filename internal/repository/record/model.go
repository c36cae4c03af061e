package record

import (
	"time"

	"github.com/oshokin/sweetmoney-versioning/internal/domain/release"
)

// SystemSetting mapped from table <system_settings>.
// The Version Record is the row named release.SettingKey.
type SystemSetting struct {
	Name      string    `gorm:"column:name;primaryKey;size:128"`
	Value     string    `gorm:"column:value;size:255;not null;default:''"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName SystemSetting's table name.
func (*SystemSetting) TableName() string {
	return "system_settings"
}

// ToRecord converts the row into the domain record.
func (s *SystemSetting) ToRecord() *release.Record {
	return &release.Record{
		Version:   s.Value,
		UpdatedAt: s.UpdatedAt.UTC(),
	}
}

// UpdateHistory mapped from table <update_history>.
type UpdateHistory struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	RunID     string    `gorm:"column:run_id;size:36;not null;index"`
	Version   string    `gorm:"column:version;size:64;not null"`
	Success   bool      `gorm:"column:success;not null"`
	Message   string    `gorm:"column:message;size:1024"`
	AppliedAt time.Time `gorm:"column:applied_at;not null;index"`
}

// TableName UpdateHistory's table name.
func (*UpdateHistory) TableName() string {
	return "update_history"
}

// NewUpdateHistory builds a row from a domain history entry.
func NewUpdateHistory(entry *release.HistoryEntry) *UpdateHistory {
	return &UpdateHistory{
		RunID:     entry.RunID,
		Version:   entry.Version,
		Success:   entry.Success,
		Message:   truncate(entry.Message, maxMessageLength),
		AppliedAt: entry.AppliedAt,
	}
}

// ToEntry converts the row into a domain history entry.
func (h *UpdateHistory) ToEntry() *release.HistoryEntry {
	return &release.HistoryEntry{
		RunID:     h.RunID,
		Version:   h.Version,
		Success:   h.Success,
		Message:   h.Message,
		AppliedAt: h.AppliedAt.UTC(),
	}
}

// maxMessageLength matches the size of update_history.message.
const maxMessageLength = 1024

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n])
}
