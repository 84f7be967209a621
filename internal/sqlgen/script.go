// Package sqlgen builds the provisioning SQL batch. Everything here is
// pure string assembly; nothing talks to a server.
package sqlgen

import (
	"fmt"
	"strings"
)

const (
	databaseCharset   = "utf8mb4"
	databaseCollation = "utf8mb4_unicode_ci"
)

// DefaultUserHost is applied when a request leaves the user host empty.
const DefaultUserHost = "%"

// reducedGrants is the application-level privilege set used when full
// privileges are not requested.
var reducedGrants = []string{
	"SELECT", "INSERT", "UPDATE", "DELETE", "CREATE", "DROP", "INDEX", "ALTER",
}

// Request describes the database and user to provision.
type Request struct {
	Database  string
	Username  string
	UserHost  string
	Password  string
	GrantFull bool
}

// Script is a complete SQL batch ready to stream to the client over stdin.
type Script string

// BuildScript assembles the provisioning batch. The statement order is
// fixed: create the database, create the user if absent, reassert the
// password unconditionally, grant, flush. The password reassert makes
// reruns converge for users that already exist with a stale password.
func BuildScript(req Request) Script {
	userHost := req.UserHost
	if userHost == "" {
		userHost = DefaultUserHost
	}

	account := QuoteString(req.Username) + "@" + QuoteString(userHost)

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE DATABASE IF NOT EXISTS %s CHARACTER SET %s COLLATE %s;\n",
		QuoteIdentifier(req.Database), databaseCharset, databaseCollation)
	fmt.Fprintf(&b, "CREATE USER IF NOT EXISTS %s IDENTIFIED BY %s;\n", account, QuoteString(req.Password))
	fmt.Fprintf(&b, "ALTER USER %s IDENTIFIED BY %s;\n", account, QuoteString(req.Password))
	fmt.Fprintf(&b, "GRANT %s ON %s.* TO %s;\n",
		grantList(req.GrantFull), QuoteIdentifier(req.Database), account)
	b.WriteString("FLUSH PRIVILEGES;\n")
	return Script(b.String())
}

// GrantSummary names the privilege scope for display.
func GrantSummary(full bool) string {
	if full {
		return "ALL PRIVILEGES"
	}
	return strings.Join(reducedGrants, ", ")
}

func grantList(full bool) string {
	return GrantSummary(full)
}

// QuoteIdentifier backtick-quotes a schema object name, doubling embedded
// backticks.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QuoteString single-quotes a string literal, escaping backslashes and
// quotes for the server's lexer. Backslashes are escaped first so the
// escape characters themselves are not re-escaped.
func QuoteString(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `''`)
	return "'" + escaped + "'"
}
