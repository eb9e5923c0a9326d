package reporting

import (
	"fmt"
	"strings"

	"omori-lab/internal/domain"
)

// RenderCSV renders per-sequence results as a CSV string, one row per
// candidate mainshock. Unfit parameters render as NaN so failed sequences
// stay visible in the table.
func RenderCSV(results []*domain.SequenceResult) string {
	var sb strings.Builder

	// Header
	sb.WriteString("mainshock_id,mainshock_time,mainshock_mag,mainshock_lat,mainshock_lon,mainshock_depth_km,place,")
	sb.WriteString("aftershock_count,sufficient,duration_hours,")
	sb.WriteString("k,c,p,r_squared,rmse,success,failure_reason,")
	sb.WriteString("classical_k,classical_c,classical_r_squared,classical_success\n")

	// Rows
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("%s,%s,%.1f,%.4f,%.4f,%.1f,%s,%d,%t,%.1f,%.4f,%.4f,%.4f,%.4f,%.4f,%t,%s,%.4f,%.4f,%.4f,%t\n",
			r.Mainshock.ID,
			r.Mainshock.TimeUTC().Format("2006-01-02T15:04:05"),
			r.Mainshock.Magnitude,
			r.Mainshock.Latitude,
			r.Mainshock.Longitude,
			r.Mainshock.DepthKm,
			csvEscape(r.Mainshock.Place),
			r.AftershockCount,
			r.Sufficient,
			r.DurationHours,
			r.Modified.K,
			r.Modified.C,
			r.Modified.P,
			r.Modified.RSquared,
			r.Modified.RMSE,
			r.Modified.Success,
			r.Modified.FailureReason,
			r.Classical.K,
			r.Classical.C,
			r.Classical.RSquared,
			r.Classical.Success,
		))
	}

	return sb.String()
}

// csvEscape quotes a field containing commas or quotes.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
