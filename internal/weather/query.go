package weather

import (
	"fmt"
	"strconv"
)

// AutoQuery lets the provider geolocate the caller.
const AutoQuery = "auto"

// ResolveQuery picks the lookup query from tool arguments: a non-empty
// "location" of any type wins, then a "lat"/"lon" pair, then AutoQuery.
func ResolveQuery(args map[string]any) string {
	if loc := args["location"]; !isEmpty(loc) {
		return formatValue(loc)
	}
	lat, hasLat := args["lat"]
	lon, hasLon := args["lon"]
	if hasLat && hasLon && lat != nil && lon != nil {
		return formatValue(lat) + "," + formatValue(lon)
	}
	return AutoQuery
}

// isEmpty reports values that do not name a location: null, "", 0, false
// and empty arrays or objects.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

func formatValue(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	case string:
		return n
	default:
		return fmt.Sprint(n)
	}
}
