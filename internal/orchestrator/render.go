package orchestrator

import (
	"fmt"
	"strings"

	"github.com/maltedev/kosmetik-price-monitor/internal/models"
)

// renderBrandView formats the per-competitor breakdown for one brand as
// plain text, in the competitor order the caller passes in.
func renderBrandView(snapshot *models.Snapshot, brand string, competitors []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", brand)
	if snapshot.TakenAt.IsZero() {
		b.WriteString("Last updated: never\n\n")
	} else {
		fmt.Fprintf(&b, "Last updated: %s\n\n", snapshot.TakenAt.UTC().Format(models.TimestampLayout))
	}

	foundAny := false
	for _, competitor := range competitors {
		entry := snapshot.Competitors[competitor]
		fmt.Fprintf(&b, "[%s]\n", competitor)

		if entry.Note != "" {
			fmt.Fprintf(&b, "  note: %s\n\n", entry.Note)
			continue
		}

		listings := entry.Brands[brand]
		if len(listings) == 0 {
			fmt.Fprintf(&b, "  no %s products found\n\n", brand)
			continue
		}

		foundAny = true
		for _, listing := range listings {
			if listing.Available {
				fmt.Fprintf(&b, "  %s: EUR %.2f <%s>", listing.Name, listing.Price, listing.URL)
			} else {
				fmt.Fprintf(&b, "  %s: EUR %.2f <%s> (out of stock)", listing.Name, listing.Price, listing.URL)
			}
			if listing.Note != "" {
				fmt.Fprintf(&b, " (%s)", listing.Note)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if !foundAny {
		fmt.Fprintf(&b, "%s was not found at any competitor.\n", brand)
	}
	return b.String()
}
