package schema

import (
	"database/sql"
	"fmt"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/bawdo/quarry/nodes"
)

var driverName = map[string]string{
	"postgres": "pgx",
	"mysql":    "mysql",
	"sqlite":   "sqlite",
}

// DefaultCacheSize is the number of tables whose columns an Introspector
// keeps in memory.
const DefaultCacheSize = 256

// Engines returns the supported engine names in sorted order.
func Engines() []string {
	out := make([]string, 0, len(driverName))
	for e := range driverName {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// IntrospectorOption configures an Introspector.
type IntrospectorOption func(*introspectorConfig)

type introspectorConfig struct {
	cacheSize int
	logger    *zap.Logger
}

// WithCacheSize bounds the column cache.
func WithCacheSize(n int) IntrospectorOption {
	return func(c *introspectorConfig) { c.cacheSize = n }
}

// WithLogger sets the logger used for cache misses and load failures.
func WithLogger(l *zap.Logger) IntrospectorOption {
	return func(c *introspectorConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Introspector is a nodes.Catalog backed by a live database. Table names
// are read once on open; each table's columns are loaded on first use and
// kept in an LRU cache.
type Introspector struct {
	db     *sql.DB
	engine string
	logger *zap.Logger
	cache  *lru.Cache[string, *nodes.Table]

	mu     sync.RWMutex
	tables map[string]struct{}
	names  []string
}

var _ nodes.Catalog = (*Introspector)(nil)

// Open connects to dsn with the driver for engine and reads its table list.
func Open(engine, dsn string, opts ...IntrospectorOption) (*Introspector, error) {
	driver, ok := driverName[engine]
	if !ok {
		return nil, fmt.Errorf("no driver for engine %q", engine)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	in, err := NewIntrospector(db, engine, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return in, nil
}

// NewIntrospector wraps an open database. The caller keeps ownership of db
// unless it calls Close.
func NewIntrospector(db *sql.DB, engine string, opts ...IntrospectorOption) (*Introspector, error) {
	if _, ok := driverName[engine]; !ok {
		return nil, fmt.Errorf("unsupported engine: %s", engine)
	}
	cfg := introspectorConfig{cacheSize: DefaultCacheSize, logger: zap.NewNop()}
	for _, o := range opts {
		o(&cfg)
	}
	cache, err := lru.New[string, *nodes.Table](cfg.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("column cache: %w", err)
	}
	in := &Introspector{db: db, engine: engine, logger: cfg.logger, cache: cache}
	if err := in.Refresh(); err != nil {
		return nil, err
	}
	return in, nil
}

// Engine returns the engine name the introspector was opened with.
func (in *Introspector) Engine() string { return in.engine }

// DB returns the underlying database handle.
func (in *Introspector) DB() *sql.DB { return in.db }

// Close closes the underlying database.
func (in *Introspector) Close() error { return in.db.Close() }

// Refresh re-reads the table list and drops every cached column list.
func (in *Introspector) Refresh() error {
	var query string
	switch in.engine {
	case "postgres":
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name"
	case "mysql":
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() ORDER BY table_name"
	case "sqlite":
		query = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	}
	names, err := in.queryStringColumn(query)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	in.mu.Lock()
	in.tables = set
	in.names = names
	in.mu.Unlock()
	in.cache.Purge()
	return nil
}

// Tables returns the table names read by the last Refresh.
func (in *Introspector) Tables() []string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	out := make([]string, len(in.names))
	copy(out, in.names)
	return out
}

// Source returns name as a table with its database columns.
func (in *Introspector) Source(name string) (nodes.Source, error) {
	in.mu.RLock()
	_, ok := in.tables[name]
	in.mu.RUnlock()
	if !ok {
		return nil, nodes.UnknownSourceError(name)
	}
	if t, ok := in.cache.Get(name); ok {
		return t, nil
	}
	cols, err := in.columns(name)
	if err != nil {
		in.logger.Warn("column introspection failed", zap.String("table", name), zap.Error(err))
		return nil, fmt.Errorf("columns of %q: %w", name, err)
	}
	in.logger.Debug("columns loaded", zap.String("table", name), zap.Int("count", len(cols)))
	t := nodes.NewTable(name, cols...)
	in.cache.Add(name, t)
	return t, nil
}

// Columns returns the column names of name, loading them if needed.
func (in *Introspector) Columns(name string) ([]string, error) {
	src, err := in.Source(name)
	if err != nil {
		return nil, err
	}
	return src.Columns(), nil
}

func (in *Introspector) columns(table string) ([]string, error) {
	var query string
	switch in.engine {
	case "postgres":
		query = "SELECT column_name FROM information_schema.columns WHERE table_schema = 'public' AND table_name = $1 ORDER BY ordinal_position"
	case "mysql":
		query = "SELECT column_name FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ? ORDER BY ordinal_position"
	case "sqlite":
		query = "SELECT name FROM pragma_table_info(?)"
	}
	return in.queryStringColumn(query, table)
}

func (in *Introspector) queryStringColumn(query string, params ...any) ([]string, error) {
	rows, err := in.db.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var result []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
