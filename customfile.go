package printone

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type customFileData struct {
	ID            string    `json:"id"`
	FileName      string    `json:"fileName"`
	FileExtension string    `json:"fileExtension"`
	Size          int64     `json:"size"`
	CreatedAt     time.Time `json:"createdAt"`
}

// CustomFile is an uploaded asset, such as a font or an image, that
// templates can reference.
type CustomFile struct {
	s    *shared
	data customFileData
}

func newCustomFile(s *shared, data customFileData) *CustomFile {
	return &CustomFile{s: s, data: data}
}

func (f *CustomFile) ID() string            { return f.data.ID }
func (f *CustomFile) FileName() string      { return f.data.FileName }
func (f *CustomFile) FileExtension() string { return f.data.FileExtension }
func (f *CustomFile) Size() int64           { return f.data.Size }
func (f *CustomFile) CreatedAt() time.Time  { return f.data.CreatedAt }

// Download retrieves the file contents.
func (f *CustomFile) Download(ctx context.Context) ([]byte, error) {
	data, err := f.s.transport.GetBinary(ctx, "customfiles/"+f.data.ID+"/download", nil)
	if err != nil {
		return nil, fmt.Errorf("downloading custom file: %w", err)
	}
	return data, nil
}

// Delete removes the file.
func (f *CustomFile) Delete(ctx context.Context) error {
	if err := f.s.transport.Delete(ctx, "customfiles/"+f.data.ID, nil, nil); err != nil {
		return fmt.Errorf("deleting custom file: %w", err)
	}
	return nil
}

// CustomFiles lists the uploaded files.
func (c *Client) CustomFiles(ctx context.Context, q CustomFileQuery) (*PaginatedResponse[*CustomFile], error) {
	page, err := fetchPage(ctx, c.s, "customfiles", &RequestOptions{Query: q.values()}, func(d customFileData) *CustomFile {
		return newCustomFile(c.s, d)
	})
	if err != nil {
		return nil, fmt.Errorf("getting custom files: %w", err)
	}
	return page, nil
}

// UploadCustomFile uploads data under fileName.
func (c *Client) UploadCustomFile(ctx context.Context, fileName string, data []byte) (*CustomFile, error) {
	body, contentType, err := multipartBody(nil, formFile{
		field:       "file",
		fileName:    fileName,
		contentType: contentTypeFor(fileName),
		data:        data,
	})
	if err != nil {
		return nil, fmt.Errorf("uploading custom file: %w", err)
	}

	out, err := postJSON[customFileData](ctx, c.s, "customfiles", body, &RequestOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("uploading custom file: %w", err)
	}
	return newCustomFile(c.s, out), nil
}

// UploadCustomFileFromPath reads the file at path and uploads it under its base name.
func (c *Client) UploadCustomFileFromPath(ctx context.Context, path string) (*CustomFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return c.UploadCustomFile(ctx, filepath.Base(path), data)
}

func contentTypeFor(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".ttf":
		return "font/ttf"
	case ".otf":
		return "font/otf"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".svg":
		return "image/svg+xml"
	case ".pdf":
		return "application/pdf"
	case ".csv":
		return "text/csv"
	}
	return "application/octet-stream"
}
