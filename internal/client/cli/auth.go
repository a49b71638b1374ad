package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/clinauth/internal/client/models"
	"github.com/dmitrijs2005/clinauth/internal/client/resettokens"
	"github.com/dmitrijs2005/clinauth/internal/client/session"
	"github.com/dmitrijs2005/clinauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for email, password, profession and an optional full
// name, then creates the account and signs it in.
//
// On the mobile host only patient accounts can be created. The password byte
// slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	prompt := "Profession (clinician|patient)"
	if a.profile == session.ProfileMobile {
		prompt = "Profession (patient)"
	}
	prof, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	profession := models.Profession(strings.ToLower(prof))
	if profession == "" && a.profile == session.ProfileMobile {
		profession = models.ProfessionPatient
	}
	if profession.Valid() && !ProfessionAllowed(a.profile, profession) {
		fmt.Fprintf(a.out, "Registration unsuccessful: %s\n", ErrProfessionNotAllowed)
		return ErrProfessionNotAllowed
	}

	fullName, err := getSimpleText(a.reader, "Full name (optional)", a.out)
	if err != nil {
		return err
	}

	u, err := a.session.Register(ctx, models.RegisterData{
		Email:      email,
		Password:   password,
		Profession: profession,
		Profile:    models.Profile{FullName: fullName},
	})
	if err != nil {
		fmt.Fprintf(a.out, "Registration unsuccessful: %s\n", err)
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", u.Email)
	return nil
}

// Login prompts for credentials and signs in through the auth service,
// which picks the backend and falls back on its own.
//
// An account whose profession is not allowed on this host is signed out
// again right away and ErrProfessionNotAllowed is returned.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.session.Login(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		a.logger.Debug(ctx, "login failed", "error", err)
		fmt.Fprintf(a.out, "Login unsuccessful: %s\n", err)
		return err
	}

	if err := a.enforceProfession(ctx, &u); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Login successful (%s)\n", u.Profession)
	return nil
}

func (a *App) enforceProfession(ctx context.Context, u *models.User) error {
	if ProfessionAllowed(a.profile, u.Profession) {
		return nil
	}
	a.session.Logout(ctx)
	fmt.Fprintf(a.out, "Access denied: %s accounts cannot use the %s client\n", u.Profession, a.profile)
	return ErrProfessionNotAllowed
}

// Logout ends the session on every tier.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// DeleteAccount removes the signed-in account after an explicit "yes".
func (a *App) DeleteAccount(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Type 'yes' to delete your account permanently", a.out)
	if err != nil {
		return err
	}
	if answer != "yes" {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.session.DeleteAccount(ctx); err != nil {
		fmt.Fprintf(a.out, "Delete unsuccessful: %s\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Account deleted")
	return nil
}

// WhoAmI prints the signed-in user.
func (a *App) WhoAmI(ctx context.Context) error {
	u := a.session.State().User
	if u == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return common.ErrNoSession
	}

	fmt.Fprintf(a.out, "%s <%s> %s\n", u.ID, u.Email, u.Profession)
	if u.FullName != "" {
		fmt.Fprintf(a.out, "name: %s\n", u.FullName)
	}
	return nil
}

// ForgotPassword requests a reset link for an email address. A link is
// printed when the answering backend minted one itself.
func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	req, err := a.auth.RequestPasswordReset(ctx, email)
	if err != nil {
		fmt.Fprintf(a.out, "Reset request unsuccessful: %s\n", err)
		return err
	}

	fmt.Fprintln(a.out, "Password reset requested")
	if req.ResetURL != "" {
		fmt.Fprintf(a.out, "Reset link: %s\n", req.ResetURL)
	}
	return nil
}

// ResetPassword accepts a reset token or a full reset link, shows which
// account it belongs to and sets a new password.
func (a *App) ResetPassword(ctx context.Context) error {
	input, err := getSimpleText(a.reader, "Enter reset token or link", a.out)
	if err != nil {
		return err
	}
	token := input
	if strings.Contains(input, "?") {
		token = resettokens.TokenFromLink(input)
	}
	if token == "" {
		fmt.Fprintln(a.out, "No token found")
		return common.ErrInvalidOrExpiredToken
	}

	target, err := a.auth.ValidateResetToken(ctx, token)
	if err != nil {
		fmt.Fprintf(a.out, "Reset unsuccessful: %s\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Resetting password for %s\n", target.Email)

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.ResetPassword(ctx, token, password); err != nil {
		fmt.Fprintf(a.out, "Reset unsuccessful: %s\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Password updated")
	return nil
}

// Migrate copies local-only accounts to the remote store.
func (a *App) Migrate(ctx context.Context) error {
	if !a.config.RemotePreferred {
		fmt.Fprintln(a.out, "Nothing to migrate in local-only mode")
		return nil
	}
	a.auth.MigrateExistingUsers(ctx)
	fmt.Fprintln(a.out, "Migration pass finished")
	return nil
}
