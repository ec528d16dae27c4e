package form

import (
	"fmt"
	"strconv"
	"time"

	"github.com/TheMinarctic/rahtash-tms-admin/pkg/client"
)

// body serializes the validated values into the submission body the
// schema's field types require: multipart as soon as any field is a
// file, JSON otherwise. This is the single place deciding between the
// two encodings.
func (f *Form) body() (client.RequestBody, error) {
	if f.schema.HasFile() {
		return f.multipartBody()
	}
	return f.jsonBody(), nil
}

func (f *Form) jsonBody() client.RequestBody {
	payload := make(map[string]any, len(f.values))
	for _, field := range f.schema.Fields {
		value, present := f.values[field.Name]
		if !present || isEmpty(field, value) {
			if field.Kind == KindBool && present {
				payload[field.Name] = value
			}
			continue
		}
		payload[field.Name] = value
	}
	return client.JSON(payload)
}

func (f *Form) multipartBody() (client.RequestBody, error) {
	body := client.NewMultipart()
	for _, field := range f.schema.Fields {
		value, present := f.values[field.Name]
		if !present || isEmpty(field, value) {
			if field.Kind == KindBool && present {
				body.AddField(field.Name, strconv.FormatBool(value.(bool)))
			}
			continue
		}

		if field.Kind == KindFile {
			file := value.(File)
			body.AddFile(field.Name, file.Name, file.Data)
			continue
		}

		text, err := scalarText(field, value)
		if err != nil {
			return nil, err
		}
		body.AddField(field.Name, text)
	}
	return body, nil
}

func scalarText(field Field, value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case time.Time:
		return v.Format(time.RFC3339), nil
	default:
		return "", fmt.Errorf("form: cannot serialize field %q (%T)", field.Name, value)
	}
}
