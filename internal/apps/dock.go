package apps

import (
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/chess10kp/webdesk/internal/icons"
)

// Source says where a dock listing came from.
type Source string

const (
	SourceCurated   Source = "curated"
	SourceDiscovery Source = "discovery"
)

// dockNamespace seeds ids for curated entries that don't carry one.
var dockNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/chess10kp/webdesk/dock"))

// Dock builds the dock listing. A curated file, when present, is the single
// source of truth; otherwise installed applications are discovered. Nothing
// is cached between calls except icon lookups.
type Dock struct {
	curatedPath string
	loader      *Loader
	icons       icons.Resolver
	logger      *log.Logger
}

func NewDock(curatedPath string, loader *Loader, resolver icons.Resolver, logger *log.Logger) *Dock {
	return &Dock{
		curatedPath: curatedPath,
		loader:      loader,
		icons:       resolver,
		logger:      logger,
	}
}

func (d *Dock) CuratedPath() string {
	return d.curatedPath
}

// Entries returns the dock listing with icon paths resolved. It never returns nil.
func (d *Dock) Entries() ([]DockEntry, Source) {
	entries, err := d.loadCurated()
	switch {
	case err == nil:
		d.annotate(entries)
		return entries, SourceCurated
	case errors.Is(err, os.ErrNotExist):
		// fall through to discovery
	default:
		d.logger.Warn("failed to load curated dock file", "file", d.curatedPath, "err", err)
		return []DockEntry{}, SourceCurated
	}

	if d.loader == nil {
		return []DockEntry{}, SourceDiscovery
	}
	entries = d.loader.Discover()
	d.annotate(entries)
	return entries, SourceDiscovery
}

// loadCurated reads the curated dock file, a JSON array of objects. The id,
// name, icon and exec keys are read as strings; every other key is kept in
// Extra so the page sees the entry as written.
func (d *Dock) loadCurated() ([]DockEntry, error) {
	if d.curatedPath == "" {
		return nil, os.ErrNotExist
	}

	data, err := os.ReadFile(d.curatedPath)
	if err != nil {
		return nil, err
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	entries := make([]DockEntry, 0, len(raw))
	for _, fields := range raw {
		e := DockEntry{
			ID:   takeString(fields, "id"),
			Name: takeString(fields, "name"),
			Icon: takeString(fields, "icon"),
			Exec: takeString(fields, "exec"),
		}
		// computed on every listing
		delete(fields, "icon_path")
		if len(fields) > 0 {
			e.Extra = fields
		}
		if e.ID == "" {
			e.ID = curatedID(e.Name, e.Exec)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func takeString(fields map[string]any, key string) string {
	v, ok := fields[key].(string)
	if ok {
		delete(fields, key)
	}
	return v
}

func curatedID(name, exec string) string {
	return uuid.NewSHA1(dockNamespace, []byte(strings.ToLower(name)+"\x00"+exec)).String()
}

func (d *Dock) annotate(entries []DockEntry) {
	if d.icons == nil {
		return
	}
	for i := range entries {
		entries[i].IconPath = d.icons.Resolve(entries[i].Icon)
	}
}
