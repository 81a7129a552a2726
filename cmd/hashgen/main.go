// Command hashgen generates a bcrypt hash for seeding the password_hash
// column of the api_user table.
package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

const saltRounds = 10

func main() {

	fmt.Fprint(os.Stderr, "Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		log.Fatalf("password read error: %v", err)
	}
	if len(password) == 0 {
		log.Fatal("password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword(password, saltRounds)
	if err != nil {
		log.Fatalf("hash error: %v", err)
	}

	fmt.Println(string(hash))
}
