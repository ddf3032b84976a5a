package main

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/content-gap/internal/model"
)

// loadTargets reads a targets file with a domain and a competitors list.
func loadTargets(path string) (model.Targets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Targets{}, eris.Wrapf(err, "read targets file %s", path)
	}

	var t model.Targets
	if err := yaml.Unmarshal(data, &t); err != nil {
		return model.Targets{}, eris.Wrapf(err, "parse targets file %s", path)
	}
	return t, nil
}

// resolveTargets merges a targets file with command-line values. Flags win
// for the domain; flag competitors replace the file's list when given.
func resolveTargets(path, domain string, competitors []string) (model.Targets, error) {
	var t model.Targets
	if path != "" {
		loaded, err := loadTargets(path)
		if err != nil {
			return model.Targets{}, err
		}
		t = loaded
	}

	if domain != "" {
		t.Domain = domain
	}
	if len(competitors) > 0 {
		t.Competitors = competitors
	}

	t.Domain = strings.TrimSpace(t.Domain)
	if t.Domain == "" {
		return model.Targets{}, eris.New("a domain is required (--domain or targets file)")
	}
	return t, nil
}
