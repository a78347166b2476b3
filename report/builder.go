package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/craftable/logx"
)

const sectionRule = "═══════════════════════"

// capsuleSections orden fijo de las secciones del hostal
var capsuleSections = []string{"back", "middle", "front"}

// Builder arma el reporte diario a partir del PMS
type Builder struct {
	pms        PMSClient
	hostelName string
}

func NewBuilder(pms PMSClient, hostelName string) *Builder {
	return &Builder{pms: pms, hostelName: hostelName}
}

// Collect consulta todas las fuentes del PMS. Los errores quedan por
// sección; el reporte se renderiza con lo que haya.
func (b *Builder) Collect(ctx context.Context) *Snapshot {
	snap := &Snapshot{GeneratedAt: time.Now()}

	snap.Occupancy, snap.OccupancyErr = b.pms.GetOccupancy(ctx)
	snap.Capsules, snap.CapsulesErr = b.pms.ListCapsules(ctx)
	snap.GuestCount, snap.GuestCountErr = b.pms.CountCheckedInGuests(ctx)
	snap.Overdue, snap.OverdueErr = b.pms.ListOverdueGuests(ctx)
	snap.Maintenance, snap.MaintenanceErr = b.pms.ListMaintenanceIssues(ctx)

	for _, err := range []error{snap.OccupancyErr, snap.CapsulesErr, snap.GuestCountErr, snap.OverdueErr, snap.MaintenanceErr} {
		if err != nil {
			logx.Error("⚠️ Report source failed: %v", err)
		}
	}

	return snap
}

// Render produce el texto plano del reporte en orden fijo
func (b *Builder) Render(snap *Snapshot, tz *time.Location) string {
	if tz == nil {
		tz = time.UTC
	}

	var out []string
	out = append(out, fmt.Sprintf("🏨 %s - DAILY OPERATIONS REPORT", strings.ToUpper(b.hostelName)))
	out = append(out, strings.Repeat("═", 55))
	out = append(out, "")
	out = append(out, b.occupancySection(snap))
	out = append(out, "")
	out = append(out, b.capsuleSection(snap))
	out = append(out, "")
	out = append(out, b.guestSection(snap))
	out = append(out, "")
	out = append(out, b.overdueSection(snap))
	out = append(out, "")
	out = append(out, b.maintenanceSection(snap))
	out = append(out, "")
	out = append(out, strings.Repeat("═", 55))
	out = append(out, fmt.Sprintf("📅 Report Generated: %s", snap.GeneratedAt.In(tz).Format("2006-01-02 15:04:05 MST")))

	return strings.Join(out, "\n")
}

// Build consulta y renderiza en un solo paso
func (b *Builder) Build(ctx context.Context, tz *time.Location) string {
	return b.Render(b.Collect(ctx), tz)
}

func (b *Builder) occupancySection(snap *Snapshot) string {
	header := "📊 OCCUPANCY STATISTICS\n" + sectionRule

	if snap.OccupancyErr != nil || snap.Occupancy == nil {
		return header + "\n⚠️ Data unavailable"
	}

	o := snap.Occupancy
	return fmt.Sprintf("%s\nTotal Capsules: %d\nOccupied: %d capsules\nAvailable: %d capsules\nOccupancy Rate: %.0f%%",
		header, o.Total, o.Occupied, o.Available, o.OccupancyRate)
}

func (b *Builder) capsuleSection(snap *Snapshot) string {
	header := "🛏️ CAPSULE STATUS BY SECTION\n═══════════════════════════"

	if snap.CapsulesErr != nil {
		return header + "\n⚠️ Data unavailable"
	}

	grouped := make(map[string][]Capsule)
	for _, c := range snap.Capsules {
		grouped[c.Section] = append(grouped[c.Section], c)
	}

	out := []string{header, ""}
	for _, section := range capsuleSections {
		capsules := grouped[section]
		if len(capsules) == 0 {
			continue
		}

		var occupied, available []string
		for _, c := range capsules {
			if c.IsAvailable {
				available = append(available, c.Number)
			} else {
				occupied = append(occupied, c.Number)
			}
		}

		out = append(out, fmt.Sprintf("%s SECTION (%d capsules):", strings.ToUpper(section), len(capsules)))
		out = append(out, "  Occupied: "+joinOrNone(occupied))
		out = append(out, "  Available: "+joinOrNone(available))
		out = append(out, "")
	}

	return strings.TrimRight(strings.Join(out, "\n"), "\n")
}

func (b *Builder) guestSection(snap *Snapshot) string {
	header := "👥 GUEST INFORMATION\n═══════════════════"

	if snap.GuestCountErr != nil {
		return header + "\n⚠️ Data unavailable"
	}

	return fmt.Sprintf("%s\nChecked-in Guests: %d", header, snap.GuestCount)
}

func (b *Builder) overdueSection(snap *Snapshot) string {
	header := "⚠️ OVERDUE GUESTS\n═══════════════════"

	if snap.OverdueErr != nil {
		return header + "\n⚠️ Data unavailable"
	}

	if len(snap.Overdue) == 0 {
		return header + "\n✅ No overdue guests"
	}

	out := []string{header}
	out = append(out, fmt.Sprintf("⚠️ %d guest(s) past expected checkout:", len(snap.Overdue)))
	out = append(out, "")
	for _, guest := range snap.Overdue {
		out = append(out, fmt.Sprintf("  - %s (Capsule %s) - Expected: %s",
			valueOr(guest.Name, "Unknown"), valueOr(guest.CapsuleNumber, "N/A"), valueOr(guest.ExpectedCheckoutDate, "N/A")))
	}

	return strings.Join(out, "\n")
}

func (b *Builder) maintenanceSection(snap *Snapshot) string {
	header := "🔧 MAINTENANCE STATUS\n" + sectionRule

	if snap.MaintenanceErr != nil {
		return header + "\n⚠️ Data unavailable"
	}

	if len(snap.Maintenance) == 0 {
		return header + "\n✅ No active maintenance issues"
	}

	out := []string{header}
	out = append(out, fmt.Sprintf("🔧 %d open issue(s):", len(snap.Maintenance)))
	for _, issue := range snap.Maintenance {
		out = append(out, fmt.Sprintf("  - Capsule %s: %s", valueOr(issue.CapsuleNumber, "N/A"), issue.Description))
	}

	return strings.Join(out, "\n")
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
