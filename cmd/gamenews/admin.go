package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/eringen/gamenews"
)

func runCreateAdmin(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: gamenews create-admin <username> <email>")
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		return errors.New("ADMIN_PASSWORD must be set")
	}

	store, err := gamenews.NewStore(configFromEnv().DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	exists, err := store.HasAdmin()
	if err != nil {
		return err
	}
	if exists {
		fmt.Println("An admin account already exists; nothing to do.")
		return nil
	}

	user, err := store.CreateUser(args[0], args[1], password, gamenews.RoleAdmin)
	if err != nil {
		return err
	}
	fmt.Printf("Created admin %s <%s>\n", user.Username, user.Email)
	return nil
}

// runSetActive enables or disables the account named by args[0] (username
// or email). A disabled user is signed out on their next request.
func runSetActive(args []string, active bool) error {
	if len(args) < 1 {
		return errors.New("usage: gamenews activate-user|deactivate-user <username or email>")
	}

	store, err := gamenews.NewStore(configFromEnv().DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	user, err := store.FindUser(args[0])
	if err != nil {
		if errors.Is(err, gamenews.ErrNotFound) {
			return fmt.Errorf("no user %q", args[0])
		}
		return err
	}
	if err := store.SetUserActive(user.ID, active); err != nil {
		return err
	}
	state := "deactivated"
	if active {
		state = "activated"
	}
	fmt.Printf("User %s %s\n", user.Username, state)
	return nil
}
