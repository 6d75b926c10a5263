package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	errPasswordMismatch = errors.New("passwords do not match")
	errStdinUnavailable = errors.New("stdin unavailable")
	errEchoNotSupported = errors.New("hiding terminal input is not supported on this platform")
)

// PromptNewPassword asks twice for a password without echoing it.
func PromptNewPassword(stdin *os.File, out io.Writer) (string, error) {
	if stdin == nil {
		return "", errStdinUnavailable
	}
	reader := bufio.NewReader(stdin)

	first, err := readSecretLine(stdin, reader, out, "New admin password: ")
	if err != nil {
		return "", err
	}
	second, err := readSecretLine(stdin, reader, out, "Repeat password: ")
	if err != nil {
		return "", err
	}

	if first != second {
		return "", errPasswordMismatch
	}
	return first, nil
}

func readSecretLine(stdin *os.File, reader *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	defer fmt.Fprintln(out)

	restore, err := disableEcho(stdin)
	if err != nil {
		return "", fmt.Errorf("disable echo: %w", err)
	}
	defer restore()

	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
