// Package names vets the names on viewer messages against the census name
// list and a locally kept list of additions.
//
// Both lists are plain text, one name per line. A missing file is an empty
// list. Additions are written back to their file as they are made.
package names

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var ErrUnknown = errors.New("unrecognised name")

// List is safe for concurrent use.
type List struct {
	mu         sync.RWMutex
	census     map[string]bool
	additional map[string]bool
	added      []string // additional names in file order
	path       string
	log        zerolog.Logger
}

// Load reads both lists. additionalPath is also where Add writes.
func Load(censusPath, additionalPath string, log zerolog.Logger) (*List, error) {
	l := &List{
		census:     map[string]bool{},
		additional: map[string]bool{},
		path:       additionalPath,
		log:        log,
	}
	census, err := readLines(censusPath)
	if err != nil {
		return nil, err
	}
	for _, n := range census {
		l.census[n] = true
	}
	added, err := readLines(additionalPath)
	if err != nil {
		return nil, err
	}
	for _, n := range added {
		if !l.additional[n] {
			l.additional[n] = true
			l.added = append(l.added, n)
		}
	}
	log.Info().Int("census", len(l.census)).Int("additional", len(l.added)).Msg("name lists loaded")
	return l, nil
}

func readLines(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if n := strings.TrimSpace(sc.Text()); n != "" {
			out = append(out, n)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}

// Len counts the names on both lists.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.census) + len(l.added)
}

// Split breaks input such as "Mom, Dad" or "Chris and Rachel" into names.
func Split(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		for _, n := range strings.Split(part, " and ") {
			out = append(out, strings.TrimSpace(n))
		}
	}
	return out
}

// Check returns ErrUnknown for the first name in input on neither list.
func (l *List) Check(input string) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, n := range Split(input) {
		if !l.known(n) {
			return fmt.Errorf("%w: %q", ErrUnknown, n)
		}
	}
	return nil
}

// Valid reports whether every name in input is known.
func (l *List) Valid(input string) bool { return l.Check(input) == nil }

func (l *List) known(n string) bool { return l.census[n] || l.additional[n] }

// Add puts every unknown name in input on the additional list and saves
// it. It reports whether anything was added.
func (l *List) Add(input string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var fresh []string
	for _, n := range Split(input) {
		if n != "" && !l.known(n) {
			l.additional[n] = true
			l.added = append(l.added, n)
			fresh = append(fresh, n)
		}
	}
	if len(fresh) == 0 {
		return false, nil
	}
	l.log.Info().Strs("names", fresh).Msg("names added")
	if l.path == "" {
		return true, nil
	}
	if err := os.WriteFile(l.path, []byte(strings.Join(l.added, "\n")+"\n"), 0644); err != nil {
		return true, fmt.Errorf("save %s: %w", l.path, err)
	}
	return true, nil
}
