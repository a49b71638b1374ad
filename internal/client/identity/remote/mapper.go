package remote

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/clinauth/internal/client/client"
	"github.com/dmitrijs2005/clinauth/internal/client/models"
	"github.com/dmitrijs2005/clinauth/internal/common"
)

// Source field names, highest precedence first. Older schema versions used
// camelCase columns, "name" for the full name, "crm" for the license number
// and "role" for the profession.
var (
	fullNameFields   = []string{"full_name", "fullName", "name"}
	licenseFields    = []string{"license_number", "crm"}
	createdAtFields  = []string{"created_at", "createdAt"}
	professionFields = []string{"profession", "role"}
)

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var professionAliases = map[string]models.Profession{
	"clinician": models.ProfessionClinician,
	"doctor":    models.ProfessionClinician,
	"physician": models.ProfessionClinician,
	"patient":   models.ProfessionPatient,
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}

// first returns the first non-empty value among keys.
func first(row client.Row, keys ...string) string {
	for _, k := range keys {
		if s := text(row[k]); s != "" {
			return s
		}
	}
	return ""
}

func parseTime(s string) time.Time {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// MapRecord converts a remote row into a User.
func MapRecord(row client.Row) (models.User, error) {
	u := models.User{
		ID:    first(row, "id"),
		Email: common.NormalizeEmail(first(row, "email")),
		Profile: models.Profile{
			FullName:      first(row, fullNameFields...),
			City:          first(row, "city"),
			State:         first(row, "state"),
			Specialty:     first(row, "specialty"),
			Phone:         first(row, "phone"),
			LicenseNumber: first(row, licenseFields...),
		},
	}

	if p, ok := professionAliases[strings.ToLower(first(row, professionFields...))]; ok {
		u.Profession = p
	}
	if s := first(row, createdAtFields...); s != "" {
		u.CreatedAt = parseTime(s)
	}

	if !u.HasRequiredFields() {
		return models.User{}, fmt.Errorf("%w: remote record lacks id, email or profession", common.ErrInternal)
	}
	return u, nil
}

// toRow is the insert shape of a user. Exactly one of password and
// passwordHash is expected to be set.
func toRow(u models.User, password []byte, passwordHash string) client.Row {
	row := client.Row{
		"id":         u.ID,
		"email":      common.NormalizeEmail(u.Email),
		"profession": string(u.Profession),
	}
	optional := map[string]string{
		"full_name":      u.FullName,
		"city":           u.City,
		"state":          u.State,
		"specialty":      u.Specialty,
		"phone":          u.Phone,
		"license_number": u.LicenseNumber,
		"password_hash":  passwordHash,
	}
	for k, v := range optional {
		if v != "" {
			row[k] = v
		}
	}
	if len(password) > 0 {
		row["password"] = string(password)
	}
	if !u.CreatedAt.IsZero() {
		row["created_at"] = u.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return row
}
