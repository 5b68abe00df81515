// Command kepngern-hash prints the bcrypt hash to put in AUTH_PASSWORD_HASH.
//
//	kepngern-hash 'my password'
//	echo -n 'my password' | kepngern-hash
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"kepngern/internal/auth"
)

func main() {
	password, err := readPassword(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "kepngern-hash:", err)
		os.Exit(2)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "kepngern-hash:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

func readPassword(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("no password given")
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("empty password")
	}
	return line, nil
}
