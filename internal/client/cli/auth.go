package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mkuzmins/authkeeper/internal/client/api"
	"github.com/mkuzmins/authkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for an email, a password and an optional name
// and attempts to create a new account.
//
// On success it prints "Success!" and returns nil. The password byte slice
// is securely wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.api.CheckEmail(ctx, email); err != nil {
		if errors.Is(err, common.ErrorConflict) {
			fmt.Println("This email is already registered.")
			return err
		}
		return err
	}

	firstName, err := getSimpleText(a.reader, "Enter first name", os.Stdout)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Enter last name", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.api.Register(ctx, email, string(password), firstName, lastName); err != nil {
		return err
	}

	fmt.Println("Success!")
	return nil
}

// Login prompts the user for credentials and tries to authenticate.
// On success the API client holds the token pair and a.user is set.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			fmt.Println("No account with this email.")
		case errors.Is(err, common.ErrorUnauthorized):
			fmt.Println("Wrong password.")
		case errors.Is(err, api.ErrUnavailable):
			fmt.Println("Server is unreachable.")
		}
		return err
	}

	a.user = user
	fmt.Printf("Welcome, %s!\n", user.Email)
	return nil
}

// Logout drops the stored token pair.
func (a *App) Logout(ctx context.Context) {
	a.api.Logout()
	a.user = nil
	fmt.Println("Logged out.")
}

// ForgotPassword starts the reset flow: the server delivers a one-time
// code for the account behind the entered email.
func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.api.ForgotPassword(ctx, email); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			fmt.Println("No account with this email.")
		}
		return err
	}

	fmt.Println("A reset code has been sent. Use 'verify' to enter it.")
	return nil
}

// VerifyOTP exchanges the delivered reset code for a token pair.
func (a *App) VerifyOTP(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	code, err := getSimpleText(a.reader, "Enter the reset code", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.api.VerifyOTP(ctx, email, code); err != nil {
		if errors.Is(err, common.ErrorBadRequest) {
			fmt.Println("The code is wrong or has expired.")
		}
		return err
	}

	fmt.Println("Code accepted. Use 'reset' to set a new password.")
	return nil
}

// ResetPassword sets a new password as part of the reset flow.
func (a *App) ResetPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.ResetPassword(ctx, email, string(password)); err != nil {
		return err
	}

	fmt.Println("Password changed. You can log in now.")
	return nil
}

// ChangePassword replaces the password of the logged-in account. The new
// password is prompted twice; both entries travel to the server, which
// rejects a mismatch.
func (a *App) ChangePassword(ctx context.Context) error {
	password, err := getPassword(os.Stdout, "Enter new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirmed, err := getPassword(os.Stdout, "Repeat new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmed)

	if err := a.api.ChangePassword(ctx, string(password), string(confirmed)); err != nil {
		if errors.Is(err, common.ErrorBadRequest) {
			fmt.Println("The passwords do not match.")
		}
		return err
	}

	fmt.Println("Password updated.")
	return nil
}

// WhoAmI prints the account behind the current access token.
func (a *App) WhoAmI(ctx context.Context) error {
	user, err := a.api.CurrentUser(ctx)
	if err != nil {
		return err
	}

	a.user = user
	fmt.Printf("%s %s <%s> (%s)\n", user.FirstName, user.LastName, user.Email, user.Role)
	return nil
}
