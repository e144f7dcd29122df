package stats

import (
	"fmt"
	"time"

	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// NoData is shown in place of undefined rates and means.
const NoData = "N/A"

// FormatPercent renders a rate as "55.0%".
func FormatPercent(v *float64) string {
	if v == nil {
		return NoData
	}
	return fmt.Sprintf("%.1f%%", *v)
}

// FormatTurn renders a mean finish turn as "6.0 T".
func FormatTurn(v *float64) string {
	if v == nil {
		return NoData
	}
	return fmt.Sprintf("%.1f T", *v)
}

// FormatAppearances renders a game count with its first-seat share.
func FormatAppearances(total, first int) string {
	return fmt.Sprintf("%d (first: %d)", total, first)
}

// FormatDate renders an optional date, empty when absent.
func FormatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(DateLayout)
}

// KeyLabel renders a focus key for headings.
func KeyLabel(key models.ArchetypeKey) string {
	return key.String()
}
