package database

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Diagnosis is the outcome of probing why the database could not be reached.
type Diagnosis struct {
	Host        string
	DNSResolved bool
	AuthFailed  bool
	PortOpen    bool
	Hint        string
}

// invalid_password and invalid_authorization_specification
var authFailureCodes = map[string]bool{"28P01": true, "28000": true}

// Diagnose checks DNS, credentials and reachability of host:port, in that order.
func Diagnose(ctx context.Context, host, port string, cause error, timeout time.Duration) Diagnosis {
	d := Diagnosis{Host: net.JoinHostPort(host, port)}

	var pgErr *pgconn.PgError
	if errors.As(cause, &pgErr) && authFailureCodes[pgErr.Code] {
		d.DNSResolved = true
		d.PortOpen = true
		d.AuthFailed = true
		d.Hint = "authentication failed: check DB_USER_NAME and DB_PASSWORD"
		return d
	}

	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if _, err := net.DefaultResolver.LookupHost(lookupCtx, host); err != nil {
		d.Hint = "DNS lookup failed: check DB_HOST"
		return d
	}
	d.DNSResolved = true

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.Host)
	if err != nil {
		d.Hint = "port unreachable: check firewall rules and that the server is listening"
		return d
	}
	conn.Close()
	d.PortOpen = true

	d.Hint = "server reachable but the connection failed: check DB_NAME and DB_SSL_MODE"
	return d
}
