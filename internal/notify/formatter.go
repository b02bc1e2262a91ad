package notify

import (
	"fmt"
	"strings"
	"time"

	"internwatch/internal/model"
)

// FormatNewRole renders the new-posting message. Field order is fixed:
// company, role, location, season, sponsorship, posting date. The parser
// guarantees company and title are present; the error path exists so a
// record that slips through is skipped, not dispatched half-formed.
func FormatNewRole(role model.RoleRecord) (string, error) {
	if role.Company == "" || role.Title == "" {
		return "", fmt.Errorf("role missing company or title")
	}

	location := "Not specified"
	if len(role.Locations) > 0 {
		location = strings.Join(role.Locations, ", ")
	}

	return fmt.Sprintf(`>>> # %s just posted a new internship!

### Role:
[%s](%s)

### Location:
%s

### Season:
%s

### Sponsorship: `+"`%s`"+`
### Posted on: %s`,
		role.Company, role.Title, role.URL, location, role.Season,
		role.Sponsorship, postedDate(role),
	), nil
}

// FormatDeactivation renders the notice for a previously announced role
// that is no longer active.
func FormatDeactivation(role model.RoleRecord) string {
	return fmt.Sprintf(`>>> # %s internship is no longer active

### Role:
[%s](%s)

### Status: `+"`Inactive`"+`
### Deactivated on: %s`,
		role.Company, role.Title, role.URL, time.Now().Format("January, 02"),
	)
}

func postedDate(role model.RoleRecord) string {
	if role.DatePosted > 0 {
		return time.Unix(role.DatePosted, 0).UTC().Format("January, 02")
	}
	return time.Now().Format("January, 02")
}
