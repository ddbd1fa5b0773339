package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// readLine reads one line from in without its line ending. A final line
// without a newline is returned; io.EOF is returned only when nothing was read.
func readLine(in *bufio.Reader) (string, error) {
	if in == nil {
		return "", io.EOF
	}
	line, err := in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// prompt writes label to w and reads the answer.
func prompt(env *Env, w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)
	answer, err := readLine(env.In)
	if err != nil {
		fmt.Fprintln(w)
	}
	return strings.TrimSpace(answer), err
}

// confirm asks a yes/no question. Anything but y or yes is a no.
func confirm(env *Env, w io.Writer, question string) bool {
	answer, err := prompt(env, w, question+" [y/N] ")
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}

// promptPassword reads a password, without echo when the terminal allows.
func promptPassword(env *Env, w io.Writer) (string, error) {
	if env.ReadPassword == nil {
		return prompt(env, w, "Password: ")
	}
	fmt.Fprint(w, "Password: ")
	pw, err := env.ReadPassword()
	fmt.Fprintln(w)
	return pw, err
}

// promptCredentials fills in a missing username or password.
func promptCredentials(env *Env, w io.Writer, username, password string) (string, string, error) {
	var err error
	if username == "" {
		if username, err = prompt(env, w, "Username: "); err != nil {
			return "", "", usagef("username required")
		}
	}
	if password == "" {
		if password, err = promptPassword(env, w); err != nil {
			return "", "", usagef("password required")
		}
	}
	return username, password, nil
}
