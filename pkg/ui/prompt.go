package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// PromptPassword reads a secret from stdin without echoing, falling back
// to a plain read when stdin is not a terminal (pipes, tests).
func PromptPassword(label string) (string, error) {
	fmt.Printf("%s: ", label)

	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return string(password), nil
		}
	}

	return readLine()
}

// PromptLine reads one trimmed line from stdin.
func PromptLine(label string) (string, error) {
	fmt.Printf("%s: ", label)
	return readLine()
}

func readLine() (string, error) {
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
