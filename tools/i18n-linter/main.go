// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter compares the locale catalogs under i18n/locales with the keys
// the Go sources pass to i18n.T. A key present in en.yaml but absent from
// another catalog fails the run. Keys nothing refers to, and string literals
// that look like operator-facing text, are listed as warnings; --strict
// turns unreferenced keys into failures too.
//
// Keys assembled at runtime count as referenced through their literal half:
// i18n.T("help.cmd." + name) covers every help.cmd.* key and
// i18n.T(kind + ".usage") every *.usage key.
package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	localesDir    = "i18n/locales"
	primaryLocale = "en.yaml"
)

// Location is where a literal was seen.
type Location struct {
	Filepath string
	Line     int
}

var (
	callKeyRe   = regexp.MustCompile(`i18n\.T\("([^"]+)"`)
	bareKeyRe   = regexp.MustCompile(`"([a-z]+\.[a-z._]+)"`)
	prefixKeyRe = regexp.MustCompile(`i18n\.T\("([a-z_.]+\.)"\s*\+`)
	suffixKeyRe = regexp.MustCompile(`i18n\.T\([a-zA-Z_]+\s*\+\s*"(\.[a-z_]+)"`)
	callArgRe   = regexp.MustCompile(`(?:[a-zA-Z0-9_]+\.)?([a-zA-Z0-9_]+)\("([^"]+)"`)
	keyShapeRe  = regexp.MustCompile(`^[a-z_]+\.[a-z._]+$`)
	allCapsRe   = regexp.MustCompile(`^[A-Z_]+$`)
	verbOnlyRe  = regexp.MustCompile(`^[\s%.,:;()#\d\w-]*%[\s\w-]*$`)
)

// quietCalls take literals that are never shown to an operator as
// translated text: logging, raw output and query builder fragments.
var quietCalls = map[string]bool{
	"Print": true, "Println": true, "Printf": true, "Fprintf": true, "Fprintln": true,
	"Fatal": true, "Fatalf": true, "WriteString": true,
	"Debug": true, "Debugf": true, "Info": true, "Infof": true, "Warn": true, "Warnf": true, "Errorf": true,
	"NewRaw": true, "Where": true, "OrderExpr": true, "Column": true, "MustCompile": true,
}

var sqlPrefixes = []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "TRUNCATE ", "PRAGMA ", "CREATE ", "ALTER ", "DROP ", "SHOW "}

func main() {
	root := pflag.String("root", ".", "repository root to lint")
	strict := pflag.Bool("strict", false, "fail when a catalog key is never referenced")
	pflag.Parse()

	os.Exit(run(os.Stdout, *root, *strict))
}

// source is one non-test Go file split into lines.
type source struct {
	path  string
	lines []string
}

// loadSources reads every non-test .go file below root, skipping the tools
// tree and directories the go tool ignores.
func loadSources(root string) ([]source, error) {
	var out []source
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && ignoredDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out = append(out, source{path: path, lines: strings.Split(string(b), "\n")})
		return nil
	})
	return out, err
}

func ignoredDir(name string) bool {
	return name == "tools" || name == "testdata" || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

// usage is every way the sources refer to catalog keys.
type usage struct {
	keys     map[string]struct{}
	prefixes []string
	suffixes []string
}

func collectUsage(srcs []source) usage {
	u := usage{keys: make(map[string]struct{})}
	for _, src := range srcs {
		for _, line := range src.lines {
			for _, m := range callKeyRe.FindAllStringSubmatch(line, -1) {
				u.keys[m[1]] = struct{}{}
			}
			// Keys kept in tables, e.g. a command's description key.
			for _, m := range bareKeyRe.FindAllStringSubmatch(line, -1) {
				u.keys[m[1]] = struct{}{}
			}
			for _, m := range prefixKeyRe.FindAllStringSubmatch(line, -1) {
				if !slices.Contains(u.prefixes, m[1]) {
					u.prefixes = append(u.prefixes, m[1])
				}
			}
			for _, m := range suffixKeyRe.FindAllStringSubmatch(line, -1) {
				if !slices.Contains(u.suffixes, m[1]) {
					u.suffixes = append(u.suffixes, m[1])
				}
			}
		}
	}
	sort.Strings(u.prefixes)
	sort.Strings(u.suffixes)
	return u
}

// covers reports whether key is referenced literally or through a runtime
// prefix or suffix.
func (u usage) covers(key string) bool {
	if _, ok := u.keys[key]; ok {
		return true
	}
	for _, p := range u.prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	for _, s := range u.suffixes {
		if strings.HasSuffix(key, s) {
			return true
		}
	}
	return false
}

// hardcodedStrings finds string literals passed to calls outside
// quietCalls that look like text an operator would read.
func hardcodedStrings(srcs []source, catalog map[string]struct{}) map[string][]Location {
	found := make(map[string][]Location)
	for _, src := range srcs {
		for i, line := range src.lines {
			for _, m := range callArgRe.FindAllStringSubmatch(line, -1) {
				fn, lit := m[1], m[2]
				if quietCalls[fn] || !looksLikeProse(lit, catalog) {
					continue
				}
				found[lit] = append(found[lit], Location{Filepath: src.path, Line: i + 1})
			}
		}
	}
	return found
}

func looksLikeProse(lit string, catalog map[string]struct{}) bool {
	if _, ok := catalog[lit]; ok {
		return false
	}
	switch {
	case len(lit) < 4,
		keyShapeRe.MatchString(lit),
		allCapsRe.MatchString(lit),
		strings.HasPrefix(lit, "file:"),
		strings.HasPrefix(lit, "http"),
		strings.HasPrefix(lit, "2006-"):
		return false
	case verbOnlyRe.MatchString(lit) && !strings.Contains(lit, " "):
		return false
	}
	upper := strings.ToUpper(lit)
	for _, p := range sqlPrefixes {
		if strings.HasPrefix(upper, p) {
			return false
		}
	}
	return true
}

// loadKeysFromLocale returns the dotted leaf keys of a YAML catalog.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(b, &tree); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	keys := make(map[string]struct{})
	flattenYAML("", tree, keys)
	return keys, nil
}

// flattenYAML adds the leaf paths of node to keys. Sequence items are
// addressed as key[i].
func flattenYAML(prefix string, node any, keys map[string]struct{}) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}
	switch v := node.(type) {
	case map[string]any:
		for k, child := range v {
			flattenYAML(join(k), child, keys)
		}
	case []any:
		for i, child := range v {
			flattenYAML(fmt.Sprintf("%s[%d]", prefix, i), child, keys)
		}
	default:
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
	}
}

// report prints sections and tallies what it printed.
type report struct {
	w        io.Writer
	failures int
	warnings int
}

func (r *report) section(title string) {
	fmt.Fprintf(r.w, "\n== %s ==\n", title)
}

func (r *report) items(label string, list []string, fail bool) {
	if len(list) == 0 {
		fmt.Fprintln(r.w, "  ok")
		return
	}
	for _, s := range list {
		fmt.Fprintf(r.w, "  %s %s\n", label, s)
	}
	if fail {
		r.failures += len(list)
	} else {
		r.warnings += len(list)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// run lints the tree at root and returns the process exit code.
func run(w io.Writer, root string, strict bool) int {
	r := &report{w: w}

	srcs, err := loadSources(root)
	if err != nil {
		fmt.Fprintf(w, "cannot read sources: %v\n", err)
		return 2
	}
	used := collectUsage(srcs)

	dir := filepath.Join(root, localesDir)
	primary, err := loadKeysFromLocale(filepath.Join(dir, primaryLocale))
	if err != nil {
		fmt.Fprintf(w, "cannot load %s: %v\n", primaryLocale, err)
		return 2
	}
	fmt.Fprintf(w, "i18n-linter: %d source files, %d keys referenced, %d keys in %s\n",
		len(srcs), len(used.keys), len(primary), primaryLocale)

	r.section("unreferenced keys in " + primaryLocale)
	var orphans []string
	for _, k := range sortedKeys(primary) {
		if !used.covers(k) {
			orphans = append(orphans, k)
		}
	}
	r.items("unreferenced:", orphans, strict)

	catalogs, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		fmt.Fprintf(w, "cannot list catalogs: %v\n", err)
		return 2
	}
	for _, path := range catalogs {
		if filepath.Base(path) == primaryLocale {
			continue
		}
		r.section("keys missing from " + filepath.Base(path))
		keys, err := loadKeysFromLocale(path)
		if err != nil {
			r.items("unreadable:", []string{err.Error()}, true)
			continue
		}
		var missing []string
		for _, k := range sortedKeys(primary) {
			if _, ok := keys[k]; !ok {
				missing = append(missing, k)
			}
		}
		r.items("missing:", missing, true)
	}

	r.section("literals that may need a key")
	hard := hardcodedStrings(srcs, primary)
	var lits []string
	for _, lit := range sortedKeys(hard) {
		loc := hard[lit][0]
		lits = append(lits, fmt.Sprintf("%q at %s:%d", lit, loc.Filepath, loc.Line))
	}
	r.items("literal:", lits, false)

	fmt.Fprintf(w, "\n%d failure(s), %d warning(s)\n", r.failures, r.warnings)
	if r.failures > 0 {
		return 1
	}
	return 0
}
