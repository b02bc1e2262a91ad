package feed

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
)

// GitSource yields the latest raw listing document by keeping a shallow
// clone of the feed repository up to date and reading the listing file
// out of it.
type GitSource struct {
	repoURL   string
	localPath string
	filePath  string
}

func NewGitSource(repoURL, localPath, filePath string) *GitSource {
	return &GitSource{repoURL: repoURL, localPath: localPath, filePath: filePath}
}

func (s *GitSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := s.sync(ctx); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(filepath.Join(s.localPath, s.filePath))
	if err != nil {
		return nil, fmt.Errorf("read listing file: %w", err)
	}
	return raw, nil
}

func (s *GitSource) sync(ctx context.Context) error {
	if _, err := os.Stat(filepath.Join(s.localPath, ".git")); err == nil {
		out, err := exec.CommandContext(ctx, "git", "-C", s.localPath, "pull", "--ff-only").CombinedOutput()
		if err != nil {
			return fmt.Errorf("git pull: %w: %s", err, bytes.TrimSpace(out))
		}
		return nil
	}

	log.Printf("[feed] cloning %s into %s", s.repoURL, s.localPath)
	out, err := exec.CommandContext(ctx, "git", "clone", "--depth", "1", s.repoURL, s.localPath).CombinedOutput()
	if err != nil {
		return fmt.Errorf("git clone: %w: %s", err, bytes.TrimSpace(out))
	}
	return nil
}
