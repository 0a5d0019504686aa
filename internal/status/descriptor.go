package status

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"golang.org/x/term"
)

// DefaultPort is used when the descriptor omits one.
const DefaultPort = 3306

// ErrBadDescriptor is returned for connection strings that cannot be parsed.
var ErrBadDescriptor = errors.New("malformed connection descriptor")

// PasswordPrompt asks the operator for the password of user.
type PasswordPrompt func(user string) (string, error)

// Descriptor identifies a server as scheme://[user[:password]@]host[:port].
type Descriptor struct {
	Scheme      string
	User        string
	Password    string
	HasPassword bool
	Host        string
	Port        int

	// Timeout bounds the TCP dial. Zero leaves the driver default.
	Timeout time.Duration
}

var knownSchemes = map[string]bool{
	"mysql":   true,
	"mariadb": true,
}

// ParseDescriptor parses raw into a Descriptor.
func ParseDescriptor(raw string) (*Descriptor, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDescriptor, err)
	}
	if !knownSchemes[u.Scheme] {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrBadDescriptor, u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrBadDescriptor, u.Redacted())
	}

	d := &Descriptor{
		Scheme: u.Scheme,
		Host:   u.Hostname(),
		Port:   DefaultPort,
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("%w: invalid port %q", ErrBadDescriptor, p)
		}
		d.Port = port
	}
	if u.User != nil {
		d.User = u.User.Username()
		d.Password, d.HasPassword = u.User.Password()
	}
	return d, nil
}

// Addr returns host:port.
func (d *Descriptor) Addr() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// ResolvePassword fills in the password through prompt when the descriptor
// did not carry one.
func (d *Descriptor) ResolvePassword(prompt PasswordPrompt) error {
	if d.HasPassword || prompt == nil {
		return nil
	}
	pw, err := prompt(d.User)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	d.Password = pw
	d.HasPassword = true
	return nil
}

// DSN renders the descriptor as a go-sql-driver/mysql data source name.
func (d *Descriptor) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = d.Addr()
	if d.Timeout > 0 {
		cfg.Timeout = d.Timeout
	}
	return cfg.FormatDSN()
}

// String returns the descriptor without its password.
func (d *Descriptor) String() string {
	if d.User == "" {
		return fmt.Sprintf("%s://%s", d.Scheme, d.Addr())
	}
	return fmt.Sprintf("%s://%s@%s", d.Scheme, d.User, d.Addr())
}

// TerminalPrompt reads a password from the controlling terminal without echo.
func TerminalPrompt(user string) (string, error) {
	fmt.Fprintf(os.Stderr, "Insert password for %s: ", user)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
