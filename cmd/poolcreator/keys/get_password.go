package keys

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"
)

// GetPassword prompts for a password on the terminal without echoing it
func GetPassword(prompt string) ([]byte, error) {
	// Get the initial state of the terminal.
	initialTermState, err := term.GetState(int(syscall.Stdin))
	if err != nil {
		return nil, err
	}

	// Restore it in the event of an interrupt.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		_, ok := <-c
		if !ok {
			return
		}
		_ = term.Restore(int(syscall.Stdin), initialTermState)
		os.Exit(1)
	}()
	defer func() {
		signal.Stop(c)
		close(c)
	}()

	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return nil, err
	}

	return password, nil
}
