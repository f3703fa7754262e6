// Package deps keeps a scoped family of packages at the same version across
// every manifest of the monorepo.
package deps

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	huberrors "github.com/examples-hub/hubrun/internal/errors"
	"github.com/examples-hub/hubrun/internal/limiter"
	"github.com/examples-hub/hubrun/internal/output"
)

const httpTimeout = 30 * time.Second

// Registry looks up package versions in an npm-compatible registry.
type Registry struct {
	BaseURL string
	Client  *http.Client
}

// NewRegistry returns a registry client for baseURL.
func NewRegistry(baseURL string) *Registry {
	return &Registry{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: httpTimeout},
	}
}

// LatestAlpha returns the newest "-alpha." version published for pkg.
func (r *Registry) LatestAlpha(ctx context.Context, pkg string) (string, error) {
	body, err := r.fetch(ctx, pkg)
	if err != nil {
		return "", err
	}
	if !gjson.ValidBytes(body) {
		return "", huberrors.Newf("invalid registry response for %s", pkg)
	}
	if e := gjson.GetBytes(body, "error"); e.Exists() {
		return "", huberrors.NotFound("package", fmt.Sprintf("%s (%s)", pkg, e.String()))
	}

	var versions []string
	gjson.GetBytes(body, "versions").ForEach(func(key, _ gjson.Result) bool {
		versions = append(versions, key.String())
		return true
	})
	latest := LatestAlphaOf(versions)
	if latest == "" {
		return "", huberrors.NotFound("alpha version", pkg)
	}
	return latest, nil
}

func (r *Registry) fetch(ctx context.Context, pkg string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+"/"+pkg, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hubrun")

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, huberrors.Wrap(err, "registry request failed for "+pkg)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, huberrors.Wrap(err, "reading registry response for "+pkg)
	}
	// npm answers unknown packages with 404 and {"error":"Not found"}.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return nil, huberrors.Newf("registry returned status %d for %s", resp.StatusCode, pkg)
	}
	return body, nil
}

// VersionSource resolves the latest alpha of one package.
type VersionSource interface {
	LatestAlpha(ctx context.Context, pkg string) (string, error)
}

// FetchAll resolves every package through lim. A failed lookup is reported
// to w and leaves the package out of the map.
func FetchAll(ctx context.Context, src VersionSource, packages []string, lim *limiter.Limiter, w *output.Writer) map[string]string {
	futures := make([]*limiter.Future[string], len(packages))
	for i, pkg := range packages {
		futures[i] = limiter.Run(lim, func() (string, error) {
			return src.LatestAlpha(ctx, pkg)
		})
	}

	versions := make(map[string]string, len(packages))
	for i, f := range futures {
		v, err := f.Wait(ctx)
		if err != nil {
			w.Warning("%s: %s", packages[i], huberrors.FirstLine(err))
			continue
		}
		w.Info("Latest alpha version for %s: %s", packages[i], v)
		versions[packages[i]] = v
	}
	return versions
}
