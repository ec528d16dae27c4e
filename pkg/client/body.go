package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
)

// RequestBody encodes a request payload and names its content type.
type RequestBody interface {
	Encode() (io.Reader, string, error)
}

type jsonBody struct {
	value any
}

// JSON wraps a value for application/json encoding.
func JSON(v any) RequestBody {
	return jsonBody{value: v}
}

func (b jsonBody) Encode() (io.Reader, string, error) {
	data, err := json.Marshal(b.value)
	if err != nil {
		return nil, "", fmt.Errorf("marshaling json body: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

type multipartField struct {
	name  string
	value string
}

type multipartFile struct {
	field    string
	filename string
	data     []byte
}

// Multipart accumulates scalar fields and file parts for a
// multipart/form-data submission. The boundary is generated by the
// multipart writer at encode time.
type Multipart struct {
	fields []multipartField
	files  []multipartFile
}

// NewMultipart creates an empty multipart body.
func NewMultipart() *Multipart {
	return &Multipart{}
}

// AddField appends a scalar form field.
func (m *Multipart) AddField(name, value string) *Multipart {
	m.fields = append(m.fields, multipartField{name: name, value: value})
	return m
}

// AddFile appends a file part.
func (m *Multipart) AddFile(field, filename string, data []byte) *Multipart {
	m.files = append(m.files, multipartFile{field: field, filename: filename, data: data})
	return m
}

// Encode implements RequestBody.
func (m *Multipart) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range m.fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("writing form field %q: %w", f.name, err)
		}
	}
	for _, f := range m.files {
		part, err := w.CreateFormFile(f.field, f.filename)
		if err != nil {
			return nil, "", fmt.Errorf("creating file part %q: %w", f.field, err)
		}
		if _, err := part.Write(f.data); err != nil {
			return nil, "", fmt.Errorf("writing file part %q: %w", f.field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finalizing multipart body: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}
