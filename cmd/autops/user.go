package main

import (
	"fmt"
	"log"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hasdouaaa/dashboard-autops/internal/auth"
)

// serveUsers holds --user name:password pairs added to the in-memory
// credential store at boot. There is no user database; accounts live for
// the process only.
var serveUsers []string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Credential helpers",
	Long: `Helpers for the in-memory credential store.

Accounts are seeded at boot: the two demo users plus any --user flags
passed to serve. Nothing is persisted.`,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the accounts a plain serve would boot with",
	Run:   runUserList,
}

var userHashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Read a password from the terminal and print its bcrypt hash",
	Run:   runUserHash,
}

func init() {
	serveCmd.Flags().StringArrayVarP(&serveUsers, "user", "u", nil, "Extra account as name:password (repeatable)")

	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userHashCmd)
}

// extraUsers parses the --user flags into a name -> password map.
func extraUsers() map[string]string {
	out := make(map[string]string, len(serveUsers))
	for _, pair := range serveUsers {
		name, password, ok := strings.Cut(pair, ":")
		if !ok || name == "" || password == "" {
			log.Fatalf("Invalid --user value %q, want name:password", pair)
		}
		out[name] = password
	}
	return out
}

func runUserList(cmd *cobra.Command, args []string) {
	store, err := auth.NewStore(auth.SeedUsers)
	if err != nil {
		log.Fatalf("Failed to seed credential store: %v", err)
	}
	for _, username := range store.Usernames() {
		fmt.Println(username)
	}
}

func runUserHash(cmd *cobra.Command, args []string) {
	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		log.Fatalf("Failed to read password: %v", err)
	}

	fmt.Print("Confirm password: ")
	confirmBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		log.Fatalf("Failed to read password: %v", err)
	}

	if string(passwordBytes) != string(confirmBytes) {
		log.Fatal("Passwords do not match")
	}

	hash, err := auth.HashPassword(string(passwordBytes))
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	fmt.Println(hash)
}
