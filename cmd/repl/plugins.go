package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bawdo/quarry/managers"
	"github.com/bawdo/quarry/plugins"
	"github.com/bawdo/quarry/plugins/softdelete"
)

// enabledPlugin is a plugin switched on with the plugin command. Each root
// select gets its own transformer from build.
type enabledPlugin struct {
	name  string
	build func() plugins.Transformer
	about string
}

// pluginSet holds the enabled plugins in the order they were enabled.
type pluginSet []enabledPlugin

// enable adds e, replacing an enabled plugin of the same name in place.
func (p *pluginSet) enable(e enabledPlugin) {
	for i := range *p {
		if (*p)[i].name == e.name {
			(*p)[i] = e
			return
		}
	}
	*p = append(*p, e)
}

func (p *pluginSet) disable(name string) bool {
	for i, e := range *p {
		if e.name == name {
			*p = append((*p)[:i], (*p)[i+1:]...)
			return true
		}
	}
	return false
}

func (p pluginSet) lookup(name string) (enabledPlugin, bool) {
	for _, e := range p {
		if e.name == name {
			return e, true
		}
	}
	return enabledPlugin{}, false
}

func (p pluginSet) names() []string {
	out := make([]string, len(p))
	for i, e := range p {
		out[i] = e.name
	}
	return out
}

// attach registers a fresh transformer of every enabled plugin on m.
func (p pluginSet) attach(m *managers.SelectManager) {
	for _, e := range p {
		m.Use(e.build())
	}
}

// knownPlugin is a plugin the plugin command can enable.
type knownPlugin struct {
	name  string
	parse func(args string) (enabledPlugin, error)
}

var knownPlugins = []knownPlugin{
	{name: "softdelete", parse: parseSoftdelete},
}

// parseSoftdelete reads the softdelete arguments:
//
//	(none)                     deleted_at on every table
//	<column>                   column on every table
//	<column> on <table> ...    column on the listed tables
//	<table.column>, ...        one column per table
func parseSoftdelete(args string) (enabledPlugin, error) {
	args = strings.TrimSpace(args)
	var opts []softdelete.Option
	switch {
	case args == "":
	case strings.Contains(args, "."):
		for _, pair := range splitFields(args) {
			table, column, ok := strings.Cut(pair, ".")
			if !ok || table == "" || column == "" {
				return enabledPlugin{}, fmt.Errorf("invalid table.column pair: %q", pair)
			}
			opts = append(opts, softdelete.WithTableColumn(table, column))
		}
	default:
		column, rest := cutWord(args)
		opts = append(opts, softdelete.WithColumn(column))
		if rest != "" {
			on, tables := cutWord(rest)
			if !strings.EqualFold(on, "on") || tables == "" {
				return enabledPlugin{}, errors.New("usage: plugin softdelete <column> on <table> [table ...]")
			}
			opts = append(opts, softdelete.WithTables(splitFields(tables)...))
		}
	}
	return enabledPlugin{
		name:  "softdelete",
		build: func() plugins.Transformer { return softdelete.New(opts...) },
		about: softdelete.New(opts...).String(),
	}, nil
}

// pluginNames returns the names of all known plugins.
func pluginNames() []string {
	names := make([]string, len(knownPlugins))
	for i, k := range knownPlugins {
		names[i] = k.name
	}
	return names
}

// cmdPlugin enables a plugin and rebuilds the query so the root select
// picks it up.
func (s *Session) cmdPlugin(args string) error {
	name, rest := cutWord(args)
	name = strings.ToLower(name)
	switch name {
	case "":
		return errors.New("usage: plugin <name> [args] | plugin off [name]")
	case "off":
		return s.cmdPluginOff(strings.ToLower(rest))
	}
	for _, k := range knownPlugins {
		if k.name != name {
			continue
		}
		e, err := k.parse(rest)
		if err != nil {
			return err
		}
		s.plugins.enable(e)
		s.printf("  %s enabled (%s)\n", name, e.about)
		return s.replay()
	}
	return fmt.Errorf("unknown plugin: %s", name)
}

func (s *Session) cmdPluginOff(name string) error {
	if name == "" {
		s.plugins = nil
		s.printf("  All plugins disabled\n")
	} else {
		if !s.plugins.disable(name) {
			return fmt.Errorf("plugin %q is not enabled", name)
		}
		s.printf("  %s disabled\n", name)
	}
	return s.replay()
}

func (s *Session) cmdPlugins() {
	s.printf("  Available plugins:\n")
	for _, name := range pluginNames() {
		if e, ok := s.plugins.lookup(name); ok {
			s.printf("    %-14s on   (%s)\n", name, e.about)
		} else {
			s.printf("    %-14s off\n", name)
		}
	}
}
