package svcmap

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// FileUpload holds one parsed file from a multipart form upload.
type FileUpload struct {
	Filename string
	Size     int64
	Header   *multipart.FileHeader
	file     multipart.File
}

// Open returns a reader for the uploaded file contents.
func (f *FileUpload) Open() (io.ReadCloser, error) {
	if f.file != nil {
		return f.file, nil
	}
	if f.Header == nil {
		return nil, fmt.Errorf("no file header")
	}
	file, err := f.Header.Open()
	if err != nil {
		return nil, err
	}
	f.file = file
	return file, nil
}

// ContentType returns the Content-Type the client declared for the part,
// or the empty string when unknown.
func (f *FileUpload) ContentType() string {
	if f.Header == nil {
		return ""
	}
	return f.Header.Header.Get("Content-Type")
}

func formFile(r *http.Request, fieldName string) (*FileUpload, error) {
	file, header, err := r.FormFile(fieldName)
	if err != nil {
		return nil, err
	}
	return &FileUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Header:   header,
		file:     file,
	}, nil
}

// ParseFileUpload extracts a file upload from a multipart form. It is
// the manual counterpart of `form`-tagged FileUpload fields, for use in
// raw handlers.
func ParseFileUpload(r *http.Request, fieldName string) (*FileUpload, error) {
	up, err := formFile(r, fieldName)
	if err != nil {
		return nil, fmt.Errorf("form file %q: %w", fieldName, err)
	}
	return up, nil
}
