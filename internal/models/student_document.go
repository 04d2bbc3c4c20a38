package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// StudentDocument is the stored metadata of an uploaded document (ID proof,
// photo, enrollment form). The file itself lives in the local document store;
// StoredPath points at it.
type StudentDocument struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	StudentID   uint   `gorm:"index" json:"student_id"`
	FileName    string `gorm:"type:varchar(255)" json:"file_name"`
	StoredPath  string `gorm:"type:text" json:"-"`
	ContentType string `gorm:"type:varchar(100)" json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	DocType     string `gorm:"type:varchar(50)" json:"doc_type"` // e.g. "id_proof", "photo"
}

// SizeLabel renders the stored size for display
func (d StudentDocument) SizeLabel() string {
	return FormatFileSize(d.SizeBytes)
}

// FormatFileSize renders a byte count as a short human-readable label
// ("0 KB", "1.25 MB")
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 KB"
	}

	units := []string{"Bytes", "KB", "MB", "GB", "TB"}
	size := float64(bytes)
	idx := 0
	for size >= 1024 && idx < len(units)-1 {
		size /= 1024
		idx++
	}
	if idx == 0 {
		return fmt.Sprintf("%d %s", bytes, units[0])
	}
	return fmt.Sprintf("%s %s", trimZeros(fmt.Sprintf("%.2f", size)), units[idx])
}

func trimZeros(s string) string {
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}
