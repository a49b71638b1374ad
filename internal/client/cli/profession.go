package cli

import (
	"errors"

	"github.com/dmitrijs2005/clinauth/internal/client/models"
	"github.com/dmitrijs2005/clinauth/internal/client/session"
)

// ErrProfessionNotAllowed is returned when an account kind may not sign in
// on the current host.
var ErrProfessionNotAllowed = errors.New("profession not allowed on this host")

// ProfessionAllowed reports whether accounts of profession p may use the
// client on host profile. The mobile host is reserved for patients.
func ProfessionAllowed(profile session.Profile, p models.Profession) bool {
	if profile == session.ProfileMobile {
		return p == models.ProfessionPatient
	}
	return p.Valid()
}
