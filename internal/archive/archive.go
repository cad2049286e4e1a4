// Package archive moves template trees in and out of zip files.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
)

var ErrNotZip = errors.New("not a zip archive")

// ZipFS writes every file and directory of fsys into a zip stream and
// returns the number of files written.
func ZipFS(fsys fs.FS, w io.Writer) (int, error) {
	archive := zip.NewWriter(w)
	files := 0

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = p
		if d.IsDir() {
			header.Name += "/"
			_, err := archive.CreateHeader(header)
			return err
		}
		header.Method = zip.Deflate

		dst, err := archive.CreateHeader(header)
		if err != nil {
			return err
		}
		src, err := fsys.Open(p)
		if err != nil {
			return err
		}
		defer src.Close()
		if _, err := io.Copy(dst, src); err != nil {
			return fmt.Errorf("archiving %s: %w", p, err)
		}
		files++
		return nil
	})
	if err != nil {
		archive.Close()
		return files, err
	}
	return files, archive.Close()
}

// WriteFile zips fsys into the file dest, creating its parent directories.
func WriteFile(fsys fs.FS, dest string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, err
	}
	f, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	n, err := ZipFS(fsys, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// Open opens the zip file at name as a read-only filesystem. Close the
// returned reader when done.
func Open(name string) (*zip.ReadCloser, error) {
	if err := IsZip(name); err != nil {
		return nil, err
	}
	return zip.OpenReader(name)
}

// IsZip checks that name exists and starts with the zip signature.
func IsZip(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	header := make([]byte, 2)
	if _, err := io.ReadFull(f, header); err != nil {
		return fmt.Errorf("%s: %w", name, ErrNotZip)
	}
	if header[0] != 'P' || header[1] != 'K' {
		return fmt.Errorf("%s: %w", name, ErrNotZip)
	}
	return nil
}

// Extract copies every file of fsys into dest, keeping the tree layout and
// file modes.
func Extract(fsys fs.FS, dest billy.Filesystem) (int, error) {
	files := 0
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p == "." {
				return nil
			}
			return dest.MkdirAll(p, 0o755)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if err := dest.MkdirAll(path.Dir(p), 0o755); err != nil {
			return err
		}
		src, err := fsys.Open(p)
		if err != nil {
			return err
		}
		defer src.Close()

		// Embedded files are read-only; exported copies are meant to be edited.
		mode := info.Mode().Perm() | 0o200
		if mode == 0o200 {
			mode = 0o644
		}
		out, err := dest.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, src); err != nil {
			out.Close()
			return fmt.Errorf("extracting %s: %w", p, err)
		}
		files++
		return out.Close()
	})
	return files, err
}
