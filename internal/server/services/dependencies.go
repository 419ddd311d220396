package services

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/rabetweb/internal/logging"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

//go:embed dependencies.yaml
var dependencyManifest []byte

// TrackedModule is one module and the version currently in use.
type TrackedModule struct {
	Path    string `yaml:"path"`
	Version string `yaml:"version"`
	Type    string `yaml:"type"`
}

// Manifest lists the tracked modules and the module proxy to ask.
type Manifest struct {
	Registry string          `yaml:"registry"`
	Modules  []TrackedModule `yaml:"modules"`
}

// ParseManifest decodes a YAML manifest and checks module paths and
// versions.
func ParseManifest(data []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	for _, mod := range m.Modules {
		if err := module.CheckPath(mod.Path); err != nil {
			return nil, fmt.Errorf("manifest: %w", err)
		}
		if !semver.IsValid(mod.Version) {
			return nil, fmt.Errorf("manifest: %s: invalid version %q", mod.Path, mod.Version)
		}
	}
	return m, nil
}

const (
	latestTimeout = 5 * time.Second
	fetchLimit    = 8
)

// DependencyService compares tracked module versions with the newest ones on
// a Go module proxy. Reports are cached for cacheTTL.
type DependencyService struct {
	client   *http.Client
	registry string
	modules  []TrackedModule
	cacheTTL time.Duration
	logger   logging.Logger
	now      func() time.Time

	mu     sync.Mutex
	report *models.DependencyReport
}

// NewDependencyService reads the embedded manifest. A non-empty registry
// overrides the manifest's.
func NewDependencyService(client *http.Client, registry string, cacheTTL time.Duration, logger logging.Logger) (*DependencyService, error) {
	m, err := ParseManifest(dependencyManifest)
	if err != nil {
		return nil, err
	}
	if registry == "" {
		registry = m.Registry
	}
	return &DependencyService{
		client:   client,
		registry: strings.TrimRight(registry, "/"),
		modules:  m.Modules,
		cacheTTL: cacheTTL,
		logger:   logger.With("module", "dependencies"),
		now:      time.Now,
	}, nil
}

// Report returns the cached report, refreshing it when stale.
func (s *DependencyService) Report(ctx context.Context) (*models.DependencyReport, error) {
	s.mu.Lock()
	cached := s.report
	s.mu.Unlock()

	if cached != nil && s.now().Sub(cached.CheckedAt) < s.cacheTTL {
		return cached, nil
	}
	return s.Refresh(ctx)
}

// Refresh queries the registry for every tracked module. A module that
// cannot be checked carries its error; it does not fail the report.
func (s *DependencyService) Refresh(ctx context.Context) (*models.DependencyReport, error) {
	statuses := make([]models.DependencyStatus, len(s.modules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchLimit)
	for i, mod := range s.modules {
		g.Go(func() error {
			st := models.DependencyStatus{Module: mod.Path, Type: mod.Type, Current: mod.Version}
			latest, err := s.latest(gctx, mod.Path)
			if err != nil {
				st.Error = err.Error()
			} else {
				st.Latest = latest
				st.UpdateAvailable = semver.Compare(latest, mod.Version) > 0
			}
			statuses[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &models.DependencyReport{CheckedAt: s.now(), Dependencies: statuses}
	s.mu.Lock()
	s.report = report
	s.mu.Unlock()

	s.logger.Info(ctx, "dependency report refreshed", "modules", len(statuses))
	return report, nil
}

func (s *DependencyService) latest(ctx context.Context, path string) (string, error) {
	escaped, err := module.EscapePath(path)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, latestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.registry+"/"+escaped+"/@latest", nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch latest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("registry returned %s", resp.Status)
	}

	var info struct {
		Version string `json:"Version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("decode latest: %w", err)
	}
	if !semver.IsValid(info.Version) {
		return "", fmt.Errorf("registry returned invalid version %q", info.Version)
	}
	return info.Version, nil
}
