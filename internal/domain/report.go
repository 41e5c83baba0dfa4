package domain

import (
	"fmt"  // Container name formatting
	"time" // Report date
)

// Report Model
type Report struct {
	ID       uint      `gorm:"primaryKey"`        // Primary key
	Name     string    `gorm:"size:255;not null"` // Human readable report name
	FileName string    `gorm:"size:255;not null"` // Object key inside the client container
	Date     time.Time `gorm:"not null"`          // Upload time (UTC)
	ClientID uint      `gorm:"index;not null"`    // Foreign key to User (role=client)
}

// ReportRow is a report joined with the owning client's display name
type ReportRow struct {
	Report            // Embedded report columns
	ClientName string // users.name of the owner
}

// ContainerName derives the blob container that holds a client's files
func ContainerName(clientID uint) string {
	return fmt.Sprintf("client-%d", clientID)
}
