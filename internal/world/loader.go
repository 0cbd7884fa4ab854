package world

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// layoutDoc is the on-disk YAML shape produced by external map
// generators.
type layoutDoc struct {
	Name       string   `yaml:"name"`
	SectorSize int      `yaml:"sector_size"`
	Rows       []string `yaml:"rows"`
}

// Load reads a layout document from disk.
func Load(path string) (*Layout, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "world: read layout")
	}
	return Decode(raw)
}

// Decode parses a YAML layout document.
func Decode(raw []byte) (*Layout, error) {
	var doc layoutDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "world: parse layout yaml")
	}
	if doc.SectorSize == 0 {
		doc.SectorSize = builtinSectorSize
	}
	name := doc.Name
	if name == "" {
		name = "unnamed"
	}
	l, err := ParseRows(name, doc.Rows, doc.SectorSize)
	if err != nil {
		return nil, errors.Wrapf(err, "world: layout %q", name)
	}
	return l, nil
}
