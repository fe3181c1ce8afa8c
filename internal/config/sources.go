package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Source describes one named dataset source from the manifest.
type Source struct {
	ID     string `yaml:"id"`
	URL    string `yaml:"url"`
	Format string `yaml:"format"` // csv, xlsx, shapefile, geojson
	Sheet  string `yaml:"sheet"`  // xlsx only
	Layer  string `yaml:"layer"`  // shapefile name-attribute override
}

// Manifest is the parsed sources.yaml: per-dataset source definitions with
// optional defaults applied to entries that omit a format.
type Manifest struct {
	Defaults struct {
		Format string `yaml:"format"`
	} `yaml:"defaults"`
	Incidents  Source `yaml:"incidents"`
	Boroughs   Source `yaml:"boroughs"`
	Population Source `yaml:"population"`
}

// LoadManifest reads a source manifest from a YAML file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read manifest %s", path)
	}

	// The YAML has a top-level "sources" key.
	var wrapper struct {
		Sources Manifest `yaml:"sources"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "config: parse manifest")
	}

	m := &wrapper.Sources
	for _, s := range []*Source{&m.Incidents, &m.Boroughs, &m.Population} {
		if s.Format == "" {
			s.Format = m.Defaults.Format
		}
	}

	return m, nil
}

// ManifestFor builds an effective manifest from plain config when no
// manifest file is configured: formats fall back to the conventional
// defaults for each table.
func (c SourcesConfig) ManifestFor() (*Manifest, error) {
	if c.Manifest != "" {
		return LoadManifest(c.Manifest)
	}

	m := &Manifest{}
	m.Incidents = Source{ID: "incidents", URL: c.Incidents, Format: "csv"}
	m.Boroughs = Source{ID: "boroughs", URL: c.Boroughs, Format: "geojson"}
	m.Population = Source{ID: "population", URL: c.Population, Format: "csv"}
	return m, nil
}
