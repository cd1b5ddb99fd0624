package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"

	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

const defaultUploadName = "file"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// FilesClient implements directus.FilesClient.
type FilesClient struct {
	*ItemsClient[directus.File]
}

var _ directus.FilesClient = (*FilesClient)(nil)

// NewFilesClient creates a new files client.
func NewFilesClient(transport directus.Transport) *FilesClient {
	return &FilesClient{
		ItemsClient: NewItemsClient[directus.File](transport, "directus_files"),
	}
}

// Import implements directus.FilesClient.Import.
func (c *FilesClient) Import(ctx context.Context, file *directus.FileImport) (*directus.File, error) {
	if file == nil || file.URL == "" {
		return nil, directus.Required("url")
	}

	resp, err := c.transport.Send(ctx, http.MethodPost, c.basePath+"/import", file, nil)
	if err != nil {
		return nil, fmt.Errorf("importing file from %s: %w", file.URL, err)
	}

	return decodeOne[directus.File](resp, "file")
}

// Upload implements directus.FilesClient.Upload. Form fields are written
// before the file part, which Directus requires.
func (c *FilesClient) Upload(ctx context.Context, upload *directus.FileUpload) (*directus.File, error) {
	if upload == nil || upload.Content == nil {
		return nil, directus.Required("content")
	}

	body, contentType, err := encodeUpload(upload)
	if err != nil {
		return nil, err
	}

	req := &directus.Request{
		Method:  http.MethodPost,
		Path:    c.basePath,
		Body:    body,
		Headers: http.Header{"Content-Type": []string{contentType}},
	}

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("uploading file %s: %w", upload.Filename, err)
	}

	return decodeOne[directus.File](resp, "file")
}

func encodeUpload(upload *directus.FileUpload) ([]byte, string, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(upload.Fields))
	for key := range upload.Fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		if err := writer.WriteField(key, upload.Fields[key]); err != nil {
			return nil, "", fmt.Errorf("writing form field %s: %w", key, err)
		}
	}

	filename := upload.Filename
	if filename == "" {
		filename = defaultUploadName
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("creating file part: %w", err)
	}

	if _, err := io.Copy(part, upload.Content); err != nil {
		return nil, "", fmt.Errorf("reading upload content: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

// NewFoldersClient creates the client for directus_folders.
func NewFoldersClient(transport directus.Transport) *ItemsClient[directus.Folder] {
	return NewItemsClient[directus.Folder](transport, "directus_folders")
}
