package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// MaterialEntry describes one catalog material: the price history file the
// prediction service trains on and the regions a prediction can be made for.
type MaterialEntry struct {
	DataFile string
	Regions  []string
}

// UnmarshalJSON accepts the service's tuple form ["file.csv", ["Seoul", ...]]
// as well as an object form {"data_file": "...", "regions": [...]}.
func (e *MaterialEntry) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err == nil {
		if len(tuple) < 2 {
			return fmt.Errorf("material entry: expected [file, regions], got %d elements", len(tuple))
		}
		var file string
		if err := json.Unmarshal(tuple[0], &file); err != nil {
			return fmt.Errorf("material entry: invalid data file: %w", err)
		}
		var regions []string
		if err := json.Unmarshal(tuple[1], &regions); err != nil {
			return fmt.Errorf("material entry: invalid region list: %w", err)
		}
		e.DataFile = file
		e.Regions = regions
		return nil
	}

	var obj struct {
		DataFile string   `json:"data_file"`
		Regions  []string `json:"regions"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("material entry: %w", err)
	}
	e.DataFile = obj.DataFile
	e.Regions = obj.Regions
	return nil
}

// Catalog maps a material name to its entry. A catalog is built once per
// session and treated as read-only afterwards.
type Catalog map[string]MaterialEntry

// NewCatalog builds a catalog from raw entries. Blank material names, blank
// region names and entries left without any region are dropped; the names of
// dropped materials are returned so callers can log them.
func NewCatalog(entries map[string]MaterialEntry) (Catalog, []string) {
	catalog := make(Catalog, len(entries))
	var dropped []string
	for name, entry := range entries {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		regions := make([]string, 0, len(entry.Regions))
		for _, r := range entry.Regions {
			if r = strings.TrimSpace(r); r != "" {
				regions = append(regions, r)
			}
		}
		if len(regions) == 0 {
			dropped = append(dropped, name)
			continue
		}
		catalog[name] = MaterialEntry{DataFile: strings.TrimSpace(entry.DataFile), Regions: regions}
	}
	sort.Strings(dropped)
	return catalog, dropped
}

// Materials returns the material names in sorted order.
func (c Catalog) Materials() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Regions returns a copy of the region list for a material, in catalog order.
// Unknown materials yield an empty, non-nil list.
func (c Catalog) Regions(material string) []string {
	entry, ok := c[material]
	if !ok {
		return []string{}
	}
	out := make([]string, len(entry.Regions))
	copy(out, entry.Regions)
	return out
}

// HasRegion reports whether region is valid for material.
func (c Catalog) HasRegion(material, region string) bool {
	for _, r := range c[material].Regions {
		if r == region {
			return true
		}
	}
	return false
}
