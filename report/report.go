// Package report genera el reporte diario de operaciones del hostal.
package report

import "time"

// OccupancyStats estadísticas de ocupación del PMS
type OccupancyStats struct {
	Total         int     `json:"total"`
	Occupied      int     `json:"occupied"`
	Available     int     `json:"available"`
	OccupancyRate float64 `json:"occupancyRate"`
}

// Capsule estado de una cápsula individual
type Capsule struct {
	Number      string `json:"number"`
	Section     string `json:"section"`
	IsAvailable bool   `json:"isAvailable"`
}

// OverdueGuest huésped con checkout vencido
type OverdueGuest struct {
	Name                 string `json:"name"`
	CapsuleNumber        string `json:"capsuleNumber"`
	ExpectedCheckoutDate string `json:"expectedCheckoutDate"`
}

// MaintenanceIssue incidencia de mantenimiento abierta
type MaintenanceIssue struct {
	CapsuleNumber string `json:"capsuleNumber"`
	Description   string `json:"description"`
	ReportedAt    string `json:"reportedAt"`
}

// Snapshot datos agregados para un reporte. Cada sección lleva su propio
// error para que una fuente caída no tumbe el reporte completo.
type Snapshot struct {
	Occupancy      *OccupancyStats
	OccupancyErr   error
	Capsules       []Capsule
	CapsulesErr    error
	GuestCount     int
	GuestCountErr  error
	Overdue        []OverdueGuest
	OverdueErr     error
	Maintenance    []MaintenanceIssue
	MaintenanceErr error
	GeneratedAt    time.Time
}
