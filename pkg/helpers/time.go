package helpers

import (
	"context"
	"fmt"
	"strings"
	"time"

	mailtpl "github.com/loopers/commerce-api/pkg/mailer/templates"
)

const displayTimeLayout = "02 January 2006, 15:04 MST"

// LocalizeTimesIfPossible resolves the job's IP and rewrites the display
// Time (and Location when missing) in that location's timezone.
// Lookup failures leave data untouched.
func LocalizeTimesIfPossible(ctx context.Context, resolver mailtpl.GeoResolver, data map[string]any) {
	if resolver == nil {
		return
	}
	ipVal, ok := data["IP"]
	if !ok || fmt.Sprintf("%v", ipVal) == "" {
		return
	}
	g, err := resolver.Lookup(ctx, fmt.Sprintf("%v", ipVal))
	if err != nil {
		return
	}
	if loc, ok := data["Location"]; !ok || fmt.Sprintf("%v", loc) == "" {
		if s := mailtpl.FormatGeo(g); s != "" {
			data["Location"] = s
		}
	}
	if strings.TrimSpace(g.Timezone) == "" {
		return
	}
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return
	}
	if v, ok := data["TimeAt"]; ok {
		if t, ok2 := parseTimeAny(v); ok2 && !t.IsZero() {
			data["Time"] = t.In(loc).Format(displayTimeLayout)
		}
	}
}

func parseTimeAny(v any) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t, true
	}
	s := fmt.Sprintf("%v", v)
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05 -0700 MST",
		"2006-01-02 15:04:05 -0700",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
