package secret

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for secret resolution.
var (
	ErrProviderNotRegistered = errors.New("secret: provider not registered")
	ErrInvalidRef            = errors.New("secret: invalid reference")
	ErrEmptyValue            = errors.New("secret: provider returned empty value")
	ErrNotFound              = errors.New("secret: not found")
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// EnvProvider resolves references against the process environment.
//
//	secretref:env:GOOGLE_SA_JSON
type EnvProvider struct {
	lookup func(string) (string, bool)
}

// NewEnvProvider creates a provider backed by os.LookupEnv.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{lookup: os.LookupEnv}
}

// Name returns "env".
func (p *EnvProvider) Name() string { return "env" }

// Resolve returns the value of the environment variable named ref.
func (p *EnvProvider) Resolve(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrInvalidRef
	}
	v, ok := p.lookup(ref)
	if !ok {
		return "", fmt.Errorf("%w: environment variable %s", ErrNotFound, ref)
	}
	return v, nil
}

// Close is a no-op.
func (p *EnvProvider) Close() error { return nil }

// FileProvider resolves references to file contents, trimming a trailing
// newline. Relative paths resolve against Root when set.
//
//	secretref:file:/var/run/secrets/google/sa.json
type FileProvider struct {
	Root string
}

// NewFileProvider creates a file provider rooted at root. An empty root
// leaves relative paths relative to the working directory.
func NewFileProvider(root string) *FileProvider {
	return &FileProvider{Root: root}
}

// Name returns "file".
func (p *FileProvider) Name() string { return "file" }

// Resolve reads the file named by ref.
func (p *FileProvider) Resolve(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := strings.TrimSpace(ref)
	if path == "" {
		return "", ErrInvalidRef
	}
	if !filepath.IsAbs(path) && p.Root != "" {
		path = filepath.Join(p.Root, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: file %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("secret: read %s: %w", path, err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// Close is a no-op.
func (p *FileProvider) Close() error { return nil }

var (
	_ Provider = (*EnvProvider)(nil)
	_ Provider = (*FileProvider)(nil)
)
