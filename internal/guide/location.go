package guide

import (
	"net/url"
	"strings"
)

const (
	mapsSearchBase = "https://www.google.com/maps/search/"
	// WhereToGoHeader opens the injected location block.
	WhereToGoHeader = "**📍 Where to Go**"
)

// MapsSearchURL returns a Google Maps search for the agency near location.
func MapsSearchURL(agency, location string) string {
	query := "nearest " + strings.TrimSpace(agency)
	if loc := strings.TrimSpace(location); loc != "" {
		query += " to " + loc
	}
	return mapsSearchBase + url.PathEscape(query)
}

// InjectLocation appends the "Where to Go" block to a generated guide.
//
// The block is built after cache retrieval so cached guides stay independent
// of the caller's location. If text already carries the exact maps link it is
// returned unchanged.
func InjectLocation(text string, agency Agency, location, language string) string {
	name := agency.Name
	if name == "" {
		name = agency.ID
	}
	mapsURL := MapsSearchURL(name, location)
	if strings.Contains(text, mapsURL) {
		return text
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(text, "\n "))
	b.WriteString("\n\n")
	b.WriteString(WhereToGoHeader)
	b.WriteString("\n")
	b.WriteString(mapsIntro(language))
	b.WriteString("\n- **Find the nearest branch:** ")
	b.WriteString(mapsURL)
	b.WriteString("\n- Check the map for operating hours and exact address.")
	if agency.Locator != "" {
		b.WriteString("\n- Official office locator: ")
		b.WriteString(agency.Locator)
	}
	if agency.Appointment != "" {
		b.WriteString("\n- Book an appointment online: ")
		b.WriteString(agency.Appointment)
	}
	if agency.Homepage != "" {
		b.WriteString("\n- For official announcements, visit: ")
		b.WriteString(agency.Homepage)
	}
	return b.String()
}

func mapsIntro(language string) string {
	switch language {
	case LanguageEnglish:
		return "To be sure, check the map for the branch nearest you:"
	case LanguageFilipino:
		return "Para sigurado, tingnan natin sa mapa ang pinakamalapit na tanggapan sa iyo:"
	default:
		return "Para sigurado, i-check natin sa mapa kung saan ang pinakamalapit na branch sa'yo:"
	}
}
