package main

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/lifeexp/pkg/errors"
)

// packageArtifacts bundles the given files into a zip archive, flat, under
// their base names.
func packageArtifacts(archivePath string, paths []string) error {
	f, err := os.Create(archivePath)
	if err != nil {
		return errors.Wrapf(err, "failed to create archive %s", archivePath)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, path := range paths {
		if err := addFileToArchive(w, path); err != nil {
			w.Close()
			return err
		}
	}
	if err := w.Close(); err != nil {
		return errors.Wrapf(err, "failed to finalize archive %s", archivePath)
	}
	return nil
}

func addFileToArchive(w *zip.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s for archiving", path)
	}
	defer src.Close()

	dst, err := w.Create(filepath.Base(path))
	if err != nil {
		return errors.Wrapf(err, "failed to add %s to archive", path)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return errors.Wrapf(err, "failed to archive %s", path)
	}
	return nil
}
