package loader

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4"
)

// unpackArchive returns the name and content of the table inside an archive.
func unpackArchive(name string, data []byte) (string, []byte, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zip":
		return unpackZipArchive(data)
	case ".gz":
		return unpackStream(trimExt(name), func(r io.Reader) (io.Reader, error) {
			return gzip.NewReader(r)
		}, data)
	case ".lz4":
		return unpackStream(trimExt(name), func(r io.Reader) (io.Reader, error) {
			return lz4.NewReader(r), nil
		}, data)
	}
	return "", nil, ErrUnsupportedFormat
}

func trimExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// unpackZipArchive picks the largest supported table in the archive.
func unpackZipArchive(data []byte) (string, []byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, err
	}

	var largestFile *zip.File
	var largestSize uint64
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !Supported(f.Name) {
			continue
		}
		if largestFile == nil || f.UncompressedSize64 > largestSize {
			largestFile = f
			largestSize = f.UncompressedSize64
		}
	}
	if largestFile == nil {
		return "", nil, fmt.Errorf("no xlsx or csv in archive: %w", ErrUnsupportedFormat)
	}
	if largestSize > MaxUploadSize {
		return "", nil, ErrTooLarge
	}

	rc, err := largestFile.Open()
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()
	content, err := readLimited(rc)
	if err != nil {
		return "", nil, err
	}
	return largestFile.Name, content, nil
}

func unpackStream(inner string, open func(io.Reader) (io.Reader, error), data []byte) (string, []byte, error) {
	r, err := open(bytes.NewReader(data))
	if err != nil {
		return "", nil, err
	}
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}
	content, err := readLimited(r)
	if err != nil {
		return "", nil, err
	}
	return inner, content, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, err
	}
	if len(content) > MaxUploadSize {
		return nil, ErrTooLarge
	}
	return content, nil
}
