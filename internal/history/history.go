// Package history keeps versioned snapshots of database files in a git
// repository, using go-git so no git binary is needed.
package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	defaultName  = "jsondb"
	defaultEmail = "jsondb@localhost"
)

// Commit describes one snapshot.
type Commit struct {
	Hash    string    `json:"hash" yaml:"hash"`
	Message string    `json:"message" yaml:"message"`
	Body    string    `json:"body,omitempty" yaml:"body,omitempty"`
	Author  string    `json:"author" yaml:"author"`
	Date    time.Time `json:"date" yaml:"date"`
}

// Repo is a git repository holding database snapshots.
type Repo struct {
	dir  string
	repo *gogit.Repository
	mu   sync.Mutex
}

// Open opens the git repository at dir, initializing it when absent.
func Open(dir string) (*Repo, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return nil, fmt.Errorf("failed to create repo directory: %w", err)
	}
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		if !errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("failed to open git repo: %w", err)
		}
		repo, err = gogit.PlainInit(dir, false)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize git repo: %w", err)
		}
		cfg, err := repo.Config()
		if err != nil {
			return nil, fmt.Errorf("failed to read git config: %w", err)
		}
		cfg.User.Name = defaultName
		cfg.User.Email = defaultEmail
		if err := repo.SetConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to write git config: %w", err)
		}
	}
	return &Repo{dir: dir, repo: repo}, nil
}

// Dir returns the repository's working directory.
func (r *Repo) Dir() string {
	return r.dir
}

// rel returns file relative to the working directory, slash separated.
func (r *Repo) rel(file string) (string, error) {
	absDir, err := filepath.Abs(r.dir)
	if err != nil {
		return "", err
	}
	absFile, err := filepath.Abs(file)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absDir, absFile)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside of repository %s", file, r.dir)
	}
	return filepath.ToSlash(rel), nil
}

// Snapshot commits the current content of file. It returns the new commit
// hash, or "" when the file did not change since the last snapshot.
func (r *Repo) Snapshot(_ context.Context, file, msg string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rel, err := r.rel(file)
	if err != nil {
		return "", err
	}
	w, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}
	if _, err := w.Add(rel); err != nil {
		return "", fmt.Errorf("failed to stage %s: %w", rel, err)
	}
	status, err := w.Status()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree status: %w", err)
	}
	// Unchanged files are absent from the status.
	if fs, ok := status[rel]; !ok || fs.Staging == gogit.Unmodified {
		return "", nil
	}
	if msg == "" {
		msg = "Snapshot " + rel
	}
	now := time.Now()
	sig := &object.Signature{Name: defaultName, Email: defaultEmail, When: now}
	h, err := w.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return h.String(), nil
}

// Log returns up to n snapshots of file, newest first. n is capped at 1000;
// n <= 0 means 1000.
func (r *Repo) Log(_ context.Context, file string, n int) ([]*Commit, error) {
	if n <= 0 || n > 1000 {
		n = 1000
	}
	rel, err := r.rel(file)
	if err != nil {
		return nil, err
	}
	iter, err := r.repo.Log(&gogit.LogOptions{FileName: &rel})
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			// No commit yet.
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	defer iter.Close()

	var commits []*Commit
	for range n {
		c, err := iter.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read log: %w", err)
		}
		subject, body, _ := strings.Cut(c.Message, "\n")
		commits = append(commits, &Commit{
			Hash:    c.Hash.String(),
			Message: subject,
			Body:    strings.TrimSpace(body),
			Author:  c.Author.Name,
			Date:    c.Author.When,
		})
	}
	return commits, nil
}

// Show returns the content of file as of the given commit. hash may be
// "HEAD".
func (r *Repo) Show(_ context.Context, hash, file string) ([]byte, error) {
	rel, err := r.rel(file)
	if err != nil {
		return nil, err
	}
	h := plumbing.NewHash(hash)
	if hash == "HEAD" {
		ref, err := r.repo.Head()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
		}
		h = ref.Hash()
	}
	c, err := r.repo.CommitObject(h)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}
	f, err := c.File(rel)
	if err != nil {
		return nil, fmt.Errorf("failed to get file at commit: %w", err)
	}
	reader, err := f.Reader()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = reader.Close() }()
	return io.ReadAll(reader)
}
