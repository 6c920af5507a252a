// Package git resolves the GitHub repository and branch of a local working
// tree by shelling out to the git binary.
package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"

	"github.com/ericfisherdev/reviewdigest/internal/apperr"
	"github.com/ericfisherdev/reviewdigest/internal/domain/model"
	"github.com/ericfisherdev/reviewdigest/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RepoBranchDetector = (*Detector)(nil)

// remotePattern matches HTTPS and SSH GitHub remotes, with or without ".git".
var remotePattern = regexp.MustCompile(`^(?:https?://(?:[^@/]+@)?github\.com/|ssh://git@github\.com/|git@github\.com:)([^/\s]+)/([^/\s]+?)(?:\.git)?/?$`)

// Detector implements driven.RepoBranchDetector for the git checkout at Dir.
type Detector struct {
	dir    string
	logger *slog.Logger
}

// NewDetector creates a Detector for the working tree at dir. An empty dir
// means the process working directory.
func NewDetector(dir string, logger *slog.Logger) *Detector {
	return &Detector{dir: dir, logger: logger.With("module", "GitDetector")}
}

// CurrentRepoAndBranch returns the owner and repository of remote "origin"
// together with the checked-out branch.
func (d *Detector) CurrentRepoAndBranch(ctx context.Context) (model.RepoBranch, error) {
	d.logger.Debug("retrieving repo and branch", "dir", d.dir)

	branch, err := d.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return model.RepoBranch{}, err
	}

	remoteURL, err := d.git(ctx, "config", "--get", "remote.origin.url")
	if err != nil {
		return model.RepoBranch{}, err
	}

	owner, repoName, ok := ParseRemoteURL(remoteURL)
	if !ok {
		appErr := apperr.Parsing("remote URL", map[string]any{"remoteUrl": remoteURL, "branch": branch}, nil)
		d.logger.Error("unrecognized origin remote", "error", appErr)
		return model.RepoBranch{}, appErr
	}

	rb := model.RepoBranch{Owner: owner, RepoName: repoName, Branch: branch}
	d.logger.Debug("repo and branch retrieved", "owner", owner, "repo", repoName, "branch", branch, "remote_url", remoteURL)

	return rb, nil
}

// ParseRemoteURL extracts owner and repository name from a GitHub remote URL.
func ParseRemoteURL(remoteURL string) (owner, repoName string, ok bool) {
	m := remotePattern.FindStringSubmatch(strings.TrimSpace(remoteURL))
	if m == nil || m[1] == "" || m[2] == "" {
		return "", "", false
	}
	return m[1], m[2], true
}

func (d *Detector) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = d.dir

	out, err := cmd.Output()
	if err != nil {
		errCtx := map[string]any{"args": strings.Join(args, " "), "dir": d.dir}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			errCtx["stderr"] = strings.TrimSpace(string(exitErr.Stderr))
		}
		appErr := apperr.Service("Failed to run git", errCtx, fmt.Errorf("git %s: %w", strings.Join(args, " "), err))
		d.logger.Error("git command failed", "error", appErr)
		return "", appErr
	}

	return strings.TrimSpace(string(out)), nil
}
