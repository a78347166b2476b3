package report

import "context"

// PMSClient consulta el property-management system
type PMSClient interface {
	// GetOccupancy devuelve las estadísticas de ocupación actuales
	GetOccupancy(ctx context.Context) (*OccupancyStats, error)

	// ListCapsules devuelve todas las cápsulas con su estado
	ListCapsules(ctx context.Context) ([]Capsule, error)

	// CountCheckedInGuests devuelve el número de huéspedes con check-in activo
	CountCheckedInGuests(ctx context.Context) (int, error)

	// ListOverdueGuests devuelve los huéspedes con checkout vencido
	ListOverdueGuests(ctx context.Context) ([]OverdueGuest, error)

	// ListMaintenanceIssues devuelve las incidencias de mantenimiento abiertas
	ListMaintenanceIssues(ctx context.Context) ([]MaintenanceIssue, error)
}

// Deliverer entrega el reporte renderizado por un canal de mensajería
type Deliverer interface {
	SendTo(ctx context.Context, channel string, recipient string, content string) error
}
