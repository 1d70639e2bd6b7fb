package main

import (
	"fmt"
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe()
	case "create-admin":
		err = runCreateAdmin(os.Args[2:])
	case "activate-user":
		err = runSetActive(os.Args[2:], true)
	case "deactivate-user":
		err = runSetActive(os.Args[2:], false)
	case "seed":
		err = runSeed()
	case "version":
		fmt.Printf("gamenews %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`gamenews - a game news site built with Go, Echo, and templ

Usage:
  gamenews <command> [arguments]

Commands:
  serve                           Start the web server
  create-admin <username> <email> Create the first admin account (password from ADMIN_PASSWORD)
  activate-user <login>           Allow a user to sign in again
  deactivate-user <login>         Block a user and end their sessions
  seed                            Replace all posts with the sample set
  version                         Print the gamenews version
  help                            Show this help message

Environment:
  SITE_NAME, SITE_URL, SITE_DESCRIPTION, DEFAULT_AUTHOR, ADDR, DATABASE_PATH,
  UPLOAD_DIR, STATIC_DIR, SESSION_SECRET (required for serve), COOKIE_SECURE`)
}
