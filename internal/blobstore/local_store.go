package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/logger"
)

// DefaultURLPrefix is the path under which stored files are served.
const DefaultURLPrefix = "/files"

var allowedImageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// LocalStore keeps uploaded images as plain files under a single directory.
type LocalStore struct {
	root      string
	urlPrefix string
	now       func() time.Time
}

// NewLocalStore creates a store rooted at dir. The directory is created lazily on first write.
func NewLocalStore(dir, urlPrefix string) *LocalStore {
	if urlPrefix == "" {
		urlPrefix = DefaultURLPrefix
	}
	return &LocalStore{
		root:      filepath.Clean(dir),
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		now:       time.Now,
	}
}

// Root returns the directory files are written to.
func (s *LocalStore) Root() string {
	return s.root
}

// URLPrefix returns the reference path prefix, e.g. /files.
func (s *LocalStore) URLPrefix() string {
	return s.urlPrefix
}

// Store writes r under a generated name and returns its reference path.
func (s *LocalStore) Store(ctx context.Context, originalFilename string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", &domain.StorageError{Op: "mkdir", Path: s.root, Err: err}
	}

	name := s.generateName(originalFilename)
	dst := filepath.Join(s.root, name)

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return "", &domain.StorageError{Op: "create", Path: dst, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", &domain.StorageError{Op: "write", Path: dst, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", &domain.StorageError{Op: "close", Path: dst, Err: err}
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return "", &domain.StorageError{Op: "rename", Path: dst, Err: err}
	}

	ref := s.urlPrefix + "/" + name
	logger.DebugLog(ctx, "stored upload %q as %s", originalFilename, ref)
	return ref, nil
}

// Remove deletes the file a reference path points to. A missing file is not an error.
func (s *LocalStore) Remove(ctx context.Context, storedPath string) error {
	p := s.Path(storedPath)
	if p == "" {
		return nil
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &domain.StorageError{Op: "remove", Path: p, Err: err}
	}
	logger.DebugLog(ctx, "removed upload %s", storedPath)
	return nil
}

// Path maps a reference path to its on-disk location. Only the base name is used,
// so a reference can never point outside the root.
func (s *LocalStore) Path(storedPath string) string {
	base := path.Base(strings.ReplaceAll(storedPath, "\\", "/"))
	if base == "." || base == "/" || base == ".." || base == "" {
		return ""
	}
	return filepath.Join(s.root, base)
}

// Sweep removes files not present in referenced (keyed by reference path) whose
// modification time is older than grace. It returns how many files were removed.
func (s *LocalStore) Sweep(ctx context.Context, referenced map[string]struct{}, grace time.Duration) (int, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, &domain.StorageError{Op: "readdir", Path: s.root, Err: err}
	}

	cutoff := s.now().Add(-grace)
	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if entry.IsDir() {
			continue
		}
		ref := s.urlPrefix + "/" + entry.Name()
		if _, ok := referenced[ref]; ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := s.Remove(ctx, ref); err != nil {
			logger.WarnLog(ctx, "sweep: could not remove %s: %v", ref, err)
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *LocalStore) generateName(originalFilename string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d_%s_%s", s.now().UnixMilli(), id, SanitizeFilename(originalFilename))
}

// SanitizeFilename reduces an externally supplied filename to a safe base name.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	segments := strings.Split(name, "/")
	base := ""
	for i := len(segments) - 1; i >= 0; i-- {
		seg := strings.TrimSpace(segments[i])
		if seg != "" && seg != "." && seg != ".." {
			base = seg
			break
		}
	}

	ext := filepath.Ext(base)
	if ext == "." {
		ext = ""
	}
	stem := cleanChars(strings.TrimSuffix(base, ext))
	stem = strings.Trim(stem, ".")
	for strings.Contains(stem, "..") {
		stem = strings.ReplaceAll(stem, "..", ".")
	}
	if stem == "" {
		stem = "file"
	}
	if ext != "" {
		ext = "." + cleanChars(ext[1:])
	}
	return stem + ext
}

func cleanChars(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

// IsImageFilename reports whether the extension is jpg, jpeg or png (any case).
func IsImageFilename(name string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return false
	}
	_, ok := allowedImageExtensions[strings.ToLower(ext)]
	return ok
}
