package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	githubAPIURL  = "https://api.github.com"
	acceptHeader  = "application/vnd.github.v3+json"
	defaultFolder = "resumes/active"
)

// GitHub lists candidate documents from a repository folder through the
// GitHub contents API. Documents are expected under
// <folder>/<jobRole>/ in the repository.
type GitHub struct {
	token  string
	owner  string
	repo   string
	folder string
	logger *zap.Logger

	HTTPClient *http.Client
	APIURL     string
	UserAgent  string
}

type contentEntry struct {
	Name        string `mapstructure:"name"`
	Type        string `mapstructure:"type"`
	Size        int64  `mapstructure:"size"`
	DownloadURL string `mapstructure:"download_url"`
}

// NewGitHub creates a GitHub-backed document source.
func NewGitHub(token, owner, repo string, logger *zap.Logger) (*GitHub, error) {
	if strings.TrimSpace(owner) == "" || strings.TrimSpace(repo) == "" {
		return nil, fmt.Errorf("github owner and repo are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GitHub{
		token:  token,
		owner:  owner,
		repo:   repo,
		folder: defaultFolder,
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		APIURL:    githubAPIURL,
		UserAgent: "spigell/resume-screener",
	}, nil
}

func (g *GitHub) List(ctx context.Context, jobRole string) ([]DocumentRef, error) {
	contentsURL := fmt.Sprintf("%s/repos/%s/%s/contents/%s/%s",
		g.APIURL, url.PathEscape(g.owner), url.PathEscape(g.repo), g.folder, url.PathEscape(jobRole),
	)

	var raw []map[string]any
	status, err := g.getJSON(ctx, contentsURL, &raw)
	if err != nil {
		return nil, err
	}

	if status == http.StatusNotFound {
		g.logger.Info("job role folder not found in repository",
			zap.String("job_role", jobRole),
			zap.String("folder", g.folder),
		)
		return nil, nil
	}

	var entries []contentEntry
	if err := mapstructure.Decode(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode contents listing: %w", err)
	}

	refs := make([]DocumentRef, 0, len(entries))
	for _, entry := range entries {
		if entry.Type != "file" || !IsResumeFile(entry.Name) {
			continue
		}
		refs = append(refs, DocumentRef{
			Name: entry.Name,
			Path: entry.DownloadURL,
			Size: entry.Size,
		})
	}

	g.logger.Debug("listed documents from github",
		zap.String("job_role", jobRole),
		zap.Int("count", len(refs)),
	)

	return refs, nil
}

func (g *GitHub) Fetch(ctx context.Context, ref DocumentRef) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.Path, nil)
	if err != nil {
		return nil, err
	}
	g.setHeaders(req)

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch document %q: %w", ref.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch document %q: bad status: %s", ref.Name, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

func (g *GitHub) getJSON(ctx context.Context, rawURL string, target any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, err
	}
	g.setHeaders(req)

	g.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("github api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, nil
	}

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("github api: bad status: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return resp.StatusCode, fmt.Errorf("decode github response: %w", err)
	}

	return resp.StatusCode, nil
}

func (g *GitHub) setHeaders(req *http.Request) {
	if g.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", g.token))
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", g.UserAgent)
}
