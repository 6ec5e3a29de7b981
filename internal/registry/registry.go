// Package registry implements the read-only package registry oracle
// (spec §4.B): given a package name it reports the latest version and the
// full version list a registry publishes, without ever writing back.
// Transient failures (timeouts, 5xx, connection resets) are retried with
// exponential backoff; permanent failures (404, malformed body) surface
// immediately as a non-transient RegistryError.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	werrors "github.com/foundryhq/workbay/internal/errors"
	"github.com/foundryhq/workbay/pkg/config"
	"github.com/foundryhq/workbay/pkg/semver"
)

// Oracle is the read-only contract the upgrade planner consults.
type Oracle interface {
	// Latest returns the highest stable published version of name.
	Latest(ctx context.Context, name string) (*semver.Version, error)
	// AllVersions returns every published version of name. When
	// includePrerelease is false, prerelease versions are filtered out.
	AllVersions(ctx context.Context, name string, includePrerelease bool) ([]*semver.Version, error)
}

// HTTPOracle queries a JSON registry endpoint of the shape
// "<baseURL>/<name>" -> {"versions": ["1.0.0", "1.1.0", ...]}, the
// lowest-common-denominator contract npm's, a Go module proxy's, and a
// private OCI/Helm index can each be fronted with.
type HTTPOracle struct {
	Name       string // registry name, for error attribution
	BaseURL    string
	httpClient *http.Client
	backoff    func() backoff.BackOff
}

// NewHTTPOracle builds an HTTPOracle from a workspace registry
// declaration.
func NewHTTPOracle(cfg config.RegistryConfig) *HTTPOracle {
	return &HTTPOracle{
		Name:       cfg.Type,
		BaseURL:    cfg.URL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.MaxElapsedTime = 30 * time.Second
			return b
		},
	}
}

type versionsResponse struct {
	Versions []string `json:"versions"`
}

// AllVersions fetches and parses the full version list, retrying
// transient failures with exponential backoff.
func (o *HTTPOracle) AllVersions(ctx context.Context, name string, includePrerelease bool) ([]*semver.Version, error) {
	var body versionsResponse

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+"/"+name, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}

		resp, err := o.httpClient.Do(req)
		if err != nil {
			// network-level failures (timeouts, resets) are transient
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(werrors.NewRegistryError(o.Name, fmt.Sprintf("package %q not found", name), false, nil))
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("registry returned status %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(werrors.NewRegistryError(o.Name, fmt.Sprintf("unexpected status %d", resp.StatusCode), false, nil))
		}

		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return backoff.Permanent(werrors.NewRegistryError(o.Name, "malformed response body", false, err))
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(o.backoff(), ctx)); err != nil {
		if _, ok := err.(*werrors.RegistryError); ok {
			return nil, err
		}
		return nil, werrors.NewRegistryError(o.Name, fmt.Sprintf("fetching versions of %s", name), true, err)
	}

	versions := make([]*semver.Version, 0, len(body.Versions))
	for _, raw := range body.Versions {
		v, err := semver.Parse(raw)
		if err != nil {
			continue // skip versions the registry published that we can't parse
		}
		if v.IsPrerelease() && !includePrerelease {
			continue
		}
		versions = append(versions, v)
	}

	sort.Slice(versions, func(i, j int) bool { return versions[i].LessThan(versions[j]) })
	return versions, nil
}

// Latest returns the highest stable version, per AllVersions with
// prereleases excluded.
func (o *HTTPOracle) Latest(ctx context.Context, name string) (*semver.Version, error) {
	versions, err := o.AllVersions(ctx, name, false)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, werrors.NewRegistryError(o.Name, fmt.Sprintf("no stable versions published for %s", name), false, nil)
	}
	return versions[len(versions)-1], nil
}

// InMemoryOracle is a fixed, in-process Oracle for tests and for
// workspace-local pseudo-registries seeded from configuration.
type InMemoryOracle struct {
	Versions map[string][]*semver.Version
}

// NewInMemoryOracle builds an InMemoryOracle from string version lists.
func NewInMemoryOracle(data map[string][]string) *InMemoryOracle {
	o := &InMemoryOracle{Versions: make(map[string][]*semver.Version, len(data))}
	for name, raws := range data {
		parsed := make([]*semver.Version, 0, len(raws))
		for _, raw := range raws {
			if v, err := semver.Parse(raw); err == nil {
				parsed = append(parsed, v)
			}
		}
		sort.Slice(parsed, func(i, j int) bool { return parsed[i].LessThan(parsed[j]) })
		o.Versions[name] = parsed
	}
	return o
}

func (o *InMemoryOracle) AllVersions(_ context.Context, name string, includePrerelease bool) ([]*semver.Version, error) {
	all, ok := o.Versions[name]
	if !ok {
		return nil, werrors.NewRegistryError("memory", fmt.Sprintf("package %q not found", name), false, nil)
	}
	if includePrerelease {
		return all, nil
	}
	stable := make([]*semver.Version, 0, len(all))
	for _, v := range all {
		if !v.IsPrerelease() {
			stable = append(stable, v)
		}
	}
	return stable, nil
}

func (o *InMemoryOracle) Latest(ctx context.Context, name string) (*semver.Version, error) {
	versions, err := o.AllVersions(ctx, name, false)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, werrors.NewRegistryError("memory", fmt.Sprintf("no stable versions published for %s", name), false, nil)
	}
	return versions[len(versions)-1], nil
}
