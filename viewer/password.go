package viewer

import (
	"fmt"
	"os"

	"github.com/hiromi-mi/glesvnc/logger"
	"github.com/hiromi-mi/glesvnc/rfb"
	"golang.org/x/term"
)

// Password answers the server's authentication request. A password given on
// the command line wins; otherwise the terminal is asked once when -askpass
// is set and the answer is kept for later requests.
func (v *Viewer) Password(c *rfb.Client) (string, bool) {
	if v.opts.HasPassword {
		return v.opts.Password, true
	}
	if !v.opts.AskPass {
		logger.Warn("server wants a password, none given")
		return "", false
	}

	pass, err := v.askPassword()
	if err != nil {
		logger.Warn("password prompt: %v", err)
		return "", false
	}
	v.opts.Password = pass
	v.opts.HasPassword = true
	return pass, true
}

func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	key, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(key), nil
}
