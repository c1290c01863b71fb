// Package archive packs a finished collection download into one zip file.
package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// ZipDir writes every regular file under srcDir into a new zip at outPath
// using maximum deflate compression. Names inside the archive are relative to
// srcDir. A partial archive is removed on failure.
func ZipDir(ctx context.Context, srcDir, outPath string) (n int, err error) {
	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("archive: create %s: %w", outPath, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(outPath)
		}
	}()

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	err = filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if err := addFile(zw, path, filepath.ToSlash(rel)); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		_ = zw.Close()
		return 0, fmt.Errorf("archive: zip %s: %w", srcDir, err)
	}

	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("archive: finalize %s: %w", outPath, err)
	}
	return n, nil
}

func addFile(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
