package profile

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

//go:embed defaults/*.yml
var defaultsFS embed.FS

// Registry holds the loaded subject profiles.
type Registry struct {
	profiles map[string]*Profile
}

// NewRegistry creates a registry preloaded with the built-in profiles.
func NewRegistry() (*Registry, error) {
	r := &Registry{profiles: make(map[string]*Profile)}

	entries, err := fs.Glob(defaultsFS, "defaults/*.yml")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to glob built-in profiles")
	}
	for _, name := range entries {
		data, err := defaultsFS.ReadFile(name)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read built-in profile", goerr.V("name", name))
		}
		if err := r.add(data, name); err != nil {
			return nil, err
		}
	}

	if _, ok := r.profiles[DefaultSubject]; !ok {
		return nil, goerr.New("built-in profiles are missing the general subject")
	}

	return r, nil
}

// LoadDir loads profile YAML files from a directory, overriding built-in
// profiles with the same subject. Missing directory is not an error.
func (r *Registry) LoadDir(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return goerr.Wrap(err, "failed to glob profile files", goerr.V("dir", dir))
	}
	more, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return goerr.Wrap(err, "failed to glob profile files", goerr.V("dir", dir))
	}
	files = append(files, more...)

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return goerr.Wrap(err, "failed to read profile file", goerr.V("path", file))
		}
		if err := r.add(data, file); err != nil {
			return err
		}
	}

	return nil
}

func (r *Registry) add(data []byte, source string) error {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return goerr.Wrap(err, "failed to parse profile", goerr.V("source", source))
	}
	if err := p.Validate(); err != nil {
		return goerr.Wrap(err, "invalid profile", goerr.V("source", source))
	}

	r.profiles[strings.ToLower(p.Subject)] = &p
	return nil
}

// Get returns the profile for a subject, falling back to general for an
// empty or unknown subject.
func (r *Registry) Get(subject string) *Profile {
	if p, ok := r.profiles[strings.ToLower(strings.TrimSpace(subject))]; ok {
		return p
	}
	return r.profiles[DefaultSubject]
}

// Subjects lists the loaded subject names.
func (r *Registry) Subjects() []string {
	subjects := make([]string, 0, len(r.profiles))
	for subject := range r.profiles {
		subjects = append(subjects, subject)
	}
	return subjects
}
