package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"vinearchive/pkg/errors"
)

// Manager lays out the archive tree under a base directory and writes files
// into it atomically
type Manager struct {
	baseDir      string
	filesWritten atomic.Int64
	bytesWritten atomic.Int64
}

// NewManager creates a new storage manager rooted at baseDir
func NewManager(baseDir string) (*Manager, error) {
	if baseDir == "" {
		baseDir = "."
	}

	// Create base directory if it doesn't exist
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, errors.New(errors.ErrorTypeFilesystem, "create base directory", baseDir, err)
	}

	return &Manager{baseDir: baseDir}, nil
}

// UserFolder creates <base>/<username> if needed and returns its path
func (m *Manager) UserFolder(username string) (string, error) {
	name, err := folderName(username)
	if err != nil {
		return "", err
	}
	return m.ensureDir(filepath.Join(m.baseDir, name))
}

// PostFolder creates <userFolder>/post_<id> if needed and returns its path
func (m *Manager) PostFolder(userFolder, postID string) (string, error) {
	name, err := folderName("post_" + postID)
	if err != nil {
		return "", err
	}
	return m.ensureDir(filepath.Join(userFolder, name))
}

func (m *Manager) ensureDir(path string) (string, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", errors.New(errors.ErrorTypeFilesystem, "create folder", path, err)
	}
	return path, nil
}

// folderName rejects names that would escape their parent directory
func folderName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", errors.New(errors.ErrorTypeInvalidInput, "folder name", fmt.Sprintf("unusable folder name %q", name), errors.ErrInvalidInput)
	}
	return name, nil
}

// SaveFile streams r into folder/name, replacing any existing file.
// The data lands in a temporary file first so a failed copy never leaves a
// truncated file behind.
func (m *Manager) SaveFile(folder, name string, r io.Reader) (int64, error) {
	filename := filepath.Join(folder, name)

	// Each writer stages into its own temporary file
	out, err := os.CreateTemp(folder, name+".*.tmp")
	if err != nil {
		return 0, errors.New(errors.ErrorTypeFilesystem, "save file", "failed to create temporary file", err)
	}
	tempFile := out.Name()
	if err := out.Chmod(0644); err != nil {
		out.Close()
		os.Remove(tempFile)
		return 0, errors.New(errors.ErrorTypeFilesystem, "save file", "failed to set file mode", err)
	}

	// Copy data
	n, err := io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return 0, errors.New(errors.ErrorTypeFilesystem, "save file", "failed to write "+name, err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return 0, errors.New(errors.ErrorTypeFilesystem, "save file", "failed to close "+name, closeErr)
	}

	// Atomic rename
	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return 0, errors.New(errors.ErrorTypeFilesystem, "save file", "failed to rename temporary file", err)
	}

	m.filesWritten.Add(1)
	m.bytesWritten.Add(n)

	return n, nil
}

// WriteText writes content to folder/name, replacing any existing file
func (m *Manager) WriteText(folder, name, content string) error {
	_, err := m.SaveFile(folder, name, strings.NewReader(content))
	return err
}

// Exists reports whether folder/name is present
func Exists(folder, name string) bool {
	_, err := os.Stat(filepath.Join(folder, name))
	return err == nil
}

// GetBaseDir returns the base directory path
func (m *Manager) GetBaseDir() string {
	return m.baseDir
}

// FilesWritten returns the number of files written by this manager
func (m *Manager) FilesWritten() int64 {
	return m.filesWritten.Load()
}

// BytesWritten returns the number of bytes written by this manager
func (m *Manager) BytesWritten() int64 {
	return m.bytesWritten.Load()
}

// File names inside the archive tree
func AvatarFile(username string) string   { return username + "_avatar.jpg" }
func UserInfoFile(username string) string { return username + "_info.txt" }
func ThumbnailFile(postID string) string  { return postID + "_thumbnail.jpg" }
func VideoFile(postID string) string      { return postID + "_video.mp4" }
func PostInfoFile(postID string) string   { return postID + "_post_data.txt" }
