package feeds

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultAliasFile is the conventional location of the column-alias
// configuration, relative to the working directory.
const DefaultAliasFile = ".dwelltime.yaml"

// Aliases maps site-specific CSV headers onto the canonical column names each
// feed decoder expects. Keys are the headers as they appear in the site's
// export, values are canonical column names. Matching is case-insensitive on
// the site header.
//
// Example .dwelltime.yaml:
//
//	trailer_activity:
//	  "Shipment Number": "SHIPMENT_ID"
//	  "Gate Status": "ACTIVITY STATUS"
//	appointment_view:
//	  "SCAC": "Carrier"
type Aliases struct {
	Activity    map[string]string `yaml:"trailer_activity"`
	Appointment map[string]string `yaml:"appointment_view"`
	Order       map[string]string `yaml:"order_view"`
}

// LoadAliases reads the alias configuration from path.
//
// A missing file is not an error: sites whose exports already use the
// canonical headers need no configuration. An unreadable or malformed file
// degrades to no aliases with a warning rather than blocking startup, since
// the decoders' required-column check will surface any real mismatch with a
// precise error.
func LoadAliases(path string, logger *slog.Logger) *Aliases {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("column alias config unreadable, continuing without aliases",
				"path", path,
				"error", err)
		}

		return &Aliases{}
	}

	var aliases Aliases
	if err := yaml.Unmarshal(data, &aliases); err != nil {
		logger.Warn("column alias config malformed, continuing without aliases",
			"path", path,
			"error", err)

		return &Aliases{}
	}

	logger.Info("column alias config loaded",
		"path", path,
		"trailer_activity", len(aliases.Activity),
		"appointment_view", len(aliases.Appointment),
		"order_view", len(aliases.Order))

	return &aliases
}

// resolve returns the canonical column name for a raw CSV header, applying
// the feed's alias table when one matches. Headers are trimmed before lookup
// and alias keys compare case-insensitively.
func resolve(aliases map[string]string, header string) string {
	header = strings.TrimSpace(header)

	for site, canonical := range aliases {
		if strings.EqualFold(strings.TrimSpace(site), header) {
			return canonical
		}
	}

	return header
}

// Validate reports configuration problems worth surfacing at startup, such as
// an alias that targets a column no decoder knows about.
func (a *Aliases) Validate() error {
	feeds := []struct {
		name    string
		aliases map[string]string
		columns []string
	}{
		{FeedTrailerActivity, a.Activity, activityColumns},
		{FeedAppointmentView, a.Appointment, appointmentColumns},
		{FeedOrderView, a.Order, orderColumns},
	}

	for _, feed := range feeds {
		for site, canonical := range feed.aliases {
			if !containsFold(feed.columns, canonical) {
				return fmt.Errorf("alias %q -> %q: feed %q has no column %q",
					site, canonical, feed.name, canonical)
			}
		}
	}

	return nil
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}

	return false
}
