package main

import (
	"errors"
	"fmt"
	"net/url"
	"os/user"
	"slices"
	"strings"

	"github.com/ergochat/readline"
	"go.uber.org/zap"

	"github.com/bawdo/quarry/schema"
)

// cmdConnect opens dsn and uses the database as a fallback catalog. Without
// a DSN the previous one is reused, or the user is prompted for one.
func (s *Session) cmdConnect(args string) error {
	dsn := strings.TrimSpace(args)
	if dsn == "" {
		dsn = s.lastDSN
	}
	if dsn == "" {
		dsn = s.promptDSN()
	}
	if dsn == "" {
		return errors.New("usage: connect <dsn>")
	}

	in, err := schema.Open(s.engine, dsn, schema.WithLogger(s.logger))
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if s.intro != nil {
		_ = s.intro.Close()
	}
	s.intro = in
	s.lastDSN = dsn
	s.logger.Info("connected", zap.String("engine", s.engine), zap.String("dsn", sanitizeDSN(dsn)))
	s.printf("  Connected to %s (%s, %d tables)\n", sanitizeDSN(dsn), s.engine, len(in.Tables()))
	return nil
}

func (s *Session) cmdDisconnect() error {
	if s.intro == nil {
		return errors.New("not connected")
	}
	err := s.intro.Close()
	s.intro = nil
	s.printf("  Disconnected\n")
	return err
}

// cmdEngine switches the engine used by the next connect.
func (s *Session) cmdEngine(args string) error {
	engine := strings.ToLower(strings.TrimSpace(args))
	if !isValidEngine(engine) {
		return fmt.Errorf("unknown engine %q (expected one of %s)", engine, strings.Join(schema.Engines(), ", "))
	}
	s.engine = engine
	s.printf("  Engine: %s\n", engine)
	return nil
}

func isValidEngine(engine string) bool {
	return slices.Contains(schema.Engines(), engine)
}

// promptDSN asks for connection details for the current engine.
func (s *Session) promptDSN() string {
	if s.rl == nil {
		return ""
	}
	switch s.engine {
	case "sqlite":
		return buildSQLiteDSN(s.rl)
	case "mysql":
		return buildMySQLDSN(s.rl)
	default:
		return buildPostgresDSN(s.rl)
	}
}

// prompt prints a label with an optional default and returns the user's input
// (or the default if they press enter).
func prompt(rl *readline.Instance, label, defaultVal string) string {
	if rl == nil {
		return defaultVal
	}
	if defaultVal != "" {
		rl.SetPrompt(fmt.Sprintf("[Config]   %s [%s]: ", label, defaultVal))
	} else {
		rl.SetPrompt(fmt.Sprintf("[Config]   %s: ", label))
	}
	defer rl.SetPrompt(promptText)
	line, err := rl.ReadLine()
	if err != nil {
		return defaultVal
	}
	val := strings.TrimSpace(line)
	if val == "" {
		return defaultVal
	}
	return val
}

func buildSQLiteDSN(rl *readline.Instance) string {
	return prompt(rl, "Database path", ":memory:")
}

func buildPostgresDSN(rl *readline.Instance) string {
	defaultUser := "postgres"
	if u, err := user.Current(); err == nil && u.Username != "" {
		defaultUser = u.Username
	}

	dbUser := prompt(rl, "User", defaultUser)
	dbPass := prompt(rl, "Password", "")
	host := prompt(rl, "Host", "localhost")
	port := prompt(rl, "Port", "5432")
	dbName := prompt(rl, "Database", dbUser)
	sslMode := prompt(rl, "SSL mode (disable/require/verify-full)", "disable")
	return postgresDSN(dbUser, dbPass, host, port, dbName, sslMode)
}

func postgresDSN(dbUser, dbPass, host, port, dbName, sslMode string) string {
	var userInfo *url.Userinfo
	if dbPass != "" {
		userInfo = url.UserPassword(dbUser, dbPass)
	} else {
		userInfo = url.User(dbUser)
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     host + ":" + port,
		Path:     "/" + dbName,
		RawQuery: "sslmode=" + sslMode,
	}
	return u.String()
}

func buildMySQLDSN(rl *readline.Instance) string {
	dbUser := prompt(rl, "User", "root")
	dbPass := prompt(rl, "Password", "")
	host := prompt(rl, "Host", "localhost")
	port := prompt(rl, "Port", "3306")
	dbName := prompt(rl, "Database", "")
	return mysqlDSN(dbUser, dbPass, host, port, dbName)
}

// mysqlDSN formats user:pass@tcp(host:port)/dbname. An empty database
// yields no DSN.
func mysqlDSN(dbUser, dbPass, host, port, dbName string) string {
	if dbName == "" {
		return ""
	}
	auth := dbUser
	if dbPass != "" {
		auth = dbUser + ":" + dbPass
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s", auth, host, port, dbName)
}

func sanitizeDSN(dsn string) string {
	// Try parsing as URL (postgres style).
	u, err := url.Parse(dsn)
	if err == nil && u.Scheme != "" && u.User != nil {
		if _, hasPass := u.User.Password(); hasPass {
			// Rebuild manually to avoid percent-encoding the mask.
			masked := u.Scheme + "://" + u.User.Username() + ":****@" + u.Host + u.Path
			if u.RawQuery != "" {
				masked += "?" + u.RawQuery
			}
			return masked
		}
		return dsn
	}

	// Try MySQL-style DSN: user:pass@tcp(host)/db
	if atIdx := strings.Index(dsn, "@"); atIdx > 0 {
		userPass := dsn[:atIdx]
		if colonIdx := strings.Index(userPass, ":"); colonIdx >= 0 {
			return userPass[:colonIdx+1] + "****" + dsn[atIdx:]
		}
	}

	return dsn
}
