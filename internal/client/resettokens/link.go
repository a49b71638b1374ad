package resettokens

import (
	"net/url"

	"github.com/dmitrijs2005/clinauth/internal/client/models"
)

// Link builds the reset-form URL for rt. Existing query parameters of base
// are kept.
func Link(base string, rt models.ResetToken) string {
	u, err := url.Parse(base)
	if err != nil || base == "" {
		u = &url.URL{Path: "/reset-password"}
	}
	q := u.Query()
	q.Set("token", rt.Token)
	q.Set("email", rt.Email)
	u.RawQuery = q.Encode()
	return u.String()
}

// TokenFromLink extracts the token parameter of a reset link. A bare token
// is returned unchanged.
func TokenFromLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	if t := u.Query().Get("token"); t != "" {
		return t
	}
	return link
}
