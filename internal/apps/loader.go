package apps

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const desktopSuffix = ".desktop"

// DockEntry is one application shown in the dock.
type DockEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	Exec     string `json:"exec"`
	IconPath string `json:"icon_path"`

	// Extra carries any other keys of a curated entry to the page unchanged.
	Extra map[string]any `json:"-"`
}

func (e DockEntry) MarshalJSON() ([]byte, error) {
	type plain DockEntry
	if len(e.Extra) == 0 {
		return json.Marshal(plain(e))
	}

	fields := make(map[string]any, len(e.Extra)+5)
	for k, v := range e.Extra {
		fields[k] = v
	}
	fields["id"] = e.ID
	fields["name"] = e.Name
	fields["icon"] = e.Icon
	fields["exec"] = e.Exec
	fields["icon_path"] = e.IconPath
	return json.Marshal(fields)
}

// LookPathFunc resolves an executable name, as exec.LookPath does.
type LookPathFunc func(file string) (string, error)

// desktopApp is what a single .desktop file yields.
type desktopApp struct {
	id        string
	name      string
	exec      string
	icon      string
	noDisplay bool
}

// Loader discovers installed applications from .desktop entry directories.
// Results are never cached: every Discover call rescans.
type Loader struct {
	dirs     []string
	lookPath LookPathFunc
	workers  int
	logger   *log.Logger
}

func NewLoader(dirs []string, lookPath LookPathFunc, workers int, logger *log.Logger) *Loader {
	if workers <= 0 {
		workers = 8
	}
	return &Loader{
		dirs:     dirs,
		lookPath: lookPath,
		workers:  workers,
		logger:   logger,
	}
}

func (l *Loader) Dirs() []string {
	return append([]string(nil), l.dirs...)
}

// DefaultDirs returns the XDG application directories in precedence order,
// followed by extra.
func DefaultDirs(useXDG bool, extra []string) []string {
	var dirs []string

	if useXDG {
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			if home, err := os.UserHomeDir(); err == nil {
				dataHome = filepath.Join(home, ".local", "share")
			}
		}
		if dataHome != "" {
			dirs = append(dirs, filepath.Join(dataHome, "applications"))
		}

		dataDirs := os.Getenv("XDG_DATA_DIRS")
		if dataDirs == "" {
			dataDirs = "/usr/local/share:/usr/share"
		}
		for _, dir := range strings.Split(dataDirs, string(os.PathListSeparator)) {
			if dir == "" {
				continue
			}
			dirs = append(dirs, filepath.Join(dir, "applications"))
		}
	}

	dirs = append(dirs, extra...)
	return dirs
}

// Discover scans every directory and returns launchable entries whose
// executable resolves, de-duplicated by executable token in scan order.
func (l *Loader) Discover() []DockEntry {
	start := time.Now()
	files := l.collectFiles()

	// Parse in parallel; results keep scan order so de-duplication is stable.
	parsed := make([]*desktopApp, len(files))
	semaphore := make(chan struct{}, l.workers)
	var wg sync.WaitGroup

	for i, fp := range files {
		wg.Add(1)
		go func(i int, fp string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			app, err := parseDesktopFile(fp)
			if err != nil {
				l.logger.Debug("skipping desktop file", "file", fp, "err", err)
				return
			}
			parsed[i] = app
		}(i, fp)
	}
	wg.Wait()

	seen := make(map[string]bool)
	entries := []DockEntry{}
	for _, app := range parsed {
		if app == nil || app.noDisplay {
			continue
		}

		token := execToken(app.exec)
		if token == "" || seen[token] {
			continue
		}
		if _, err := l.lookPath(token); err != nil {
			continue
		}
		seen[token] = true

		entries = append(entries, DockEntry{
			ID:   app.id,
			Name: app.name,
			Icon: app.icon,
			Exec: app.exec,
		})
	}

	l.logger.Debug("discovered applications", "files", len(files), "apps", len(entries), "took", time.Since(start))
	return entries
}

// collectFiles walks each directory in lexical order. A path reachable from
// several directories is only listed once.
func (l *Loader) collectFiles() []string {
	var files []string
	loadedFiles := make(map[string]bool)

	for _, dir := range l.dirs {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() || !strings.HasSuffix(path, desktopSuffix) {
				return nil
			}
			if loadedFiles[path] {
				return nil
			}
			loadedFiles[path] = true
			files = append(files, path)
			return nil
		})
	}

	return files
}

// parseDesktopFile reads Name=, Exec= and Icon= from an entry file. The first
// occurrence of each key wins, so values from later [Desktop Action] groups
// never override the main entry.
func parseDesktopFile(path string) (*desktopApp, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	app := &desktopApp{
		id: strings.TrimSuffix(filepath.Base(path), desktopSuffix),
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "Name=") && app.name == "":
			app.name = strings.TrimSpace(strings.TrimPrefix(line, "Name="))
		case strings.HasPrefix(line, "Exec=") && app.exec == "":
			app.exec = cleanExec(strings.TrimPrefix(line, "Exec="))
		case strings.HasPrefix(line, "Icon=") && app.icon == "":
			app.icon = strings.TrimSpace(strings.TrimPrefix(line, "Icon="))
		case strings.EqualFold(line, "NoDisplay=true"), strings.EqualFold(line, "Hidden=true"):
			app.noDisplay = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if app.name == "" || app.exec == "" {
		return nil, fmt.Errorf("invalid desktop file: missing Name or Exec")
	}

	return app, nil
}

// https://specifications.freedesktop.org/desktop-entry-spec/latest/exec-variables.html
var fieldCodeReplacer = strings.NewReplacer(
	"%%", "%",
	"%f", "", "%F", "", "%u", "", "%U", "",
	"%d", "", "%D", "", "%n", "", "%N", "",
	"%i", "", "%c", "", "%k", "", "%v", "",
	"%m", "", "@@u", "", "@@", "",
)

// execArg is one argument of an Exec value.
type execArg struct {
	raw    string // as written, quotes included
	value  string // with quoting removed
	quoted bool
}

// splitExec splits an Exec value on unquoted blanks. Inside double quotes a
// backslash escapes ", `, $ and \. Single quotes are taken literally, as the
// command ends up in sh -c.
func splitExec(exec string) []execArg {
	var args []execArg
	var raw, value strings.Builder
	inArg, quoted := false, false
	var quote rune

	flush := func() {
		if inArg {
			args = append(args, execArg{raw: raw.String(), value: value.String(), quoted: quoted})
		}
		raw.Reset()
		value.Reset()
		inArg, quoted = false, false
	}

	runes := []rune(exec)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quote != 0:
			raw.WriteRune(r)
			if r == quote {
				quote = 0
				continue
			}
			if r == '\\' && quote == '"' && i+1 < len(runes) && strings.ContainsRune("\"`$\\", runes[i+1]) {
				i++
				raw.WriteRune(runes[i])
				value.WriteRune(runes[i])
				continue
			}
			value.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			quoted, inArg = true, true
			raw.WriteRune(r)
		case r == ' ' || r == '\t':
			flush()
		case r == '\\' && i+1 < len(runes):
			i++
			raw.WriteRune(r)
			raw.WriteRune(runes[i])
			value.WriteRune(runes[i])
			inArg = true
		default:
			raw.WriteRune(r)
			value.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 {
		raw.WriteRune(quote)
	}
	flush()
	return args
}

// cleanExec drops field codes from unquoted arguments and collapses
// whitespace. Quoted arguments are kept as written.
func cleanExec(exec string) string {
	var parts []string
	for _, arg := range splitExec(exec) {
		if arg.quoted {
			parts = append(parts, arg.raw)
			continue
		}
		if text := fieldCodeReplacer.Replace(arg.raw); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// execToken is the executable part of an Exec value, unquoted.
func execToken(exec string) string {
	args := splitExec(exec)
	if len(args) == 0 {
		return ""
	}
	return args[0].value
}
