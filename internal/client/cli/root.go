package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	s := ""
	if a.user != nil {
		s = a.user.Email
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Run starts the interactive loop and blocks until the user exits.
func (a *App) Run(ctx context.Context) {

	fmt.Println("Welcome to AuthKeeper CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("akli %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: whoami, changepassword, logout, exit")
			} else {
				fmt.Println("Available commands: register, login, forgot, verify, reset")
			}

		case "register":
			a.Register(ctx)
		case "login":
			a.Login(ctx)
		case "forgot":
			a.ForgotPassword(ctx)
		case "verify":
			a.VerifyOTP(ctx)
		case "reset":
			a.ResetPassword(ctx)
		case "changepassword":
			a.ChangePassword(ctx)
		case "whoami":
			a.WhoAmI(ctx)
		case "logout":
			a.Logout(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}

}
