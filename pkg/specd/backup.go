package specd

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// MoveToBackup renames the data file to <data file>.<unix seconds>.<md5 hex>
// and returns the new name relative to the root.
func (c *Catalog) MoveToBackup() (string, error) {
	return c.moveToBackup(time.Now)
}

func (c *Catalog) moveToBackup(now func() time.Time) (string, error) {
	path := c.Path()
	sum, err := md5File(path)
	if err != nil {
		return "", fmt.Errorf("backup %q: %w", path, err)
	}

	name := c.DataFile
	if name == "" {
		name = DataFileName
	}
	backup := name + "." + strconv.FormatInt(now().Unix(), 10) + "." + sum
	if err := os.Rename(path, filepath.Join(c.Root, backup)); err != nil {
		return "", fmt.Errorf("backup %q: %w", path, err)
	}
	return backup, nil
}

func md5File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
