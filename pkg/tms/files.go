package tms

import (
	"context"
	"fmt"

	"github.com/TheMinarctic/rahtash-tms-admin/pkg/client"
	"github.com/TheMinarctic/rahtash-tms-admin/pkg/form"
)

// ShipmentFilesForm builds the create-time document bundle form: bill of
// lading, invoice and packing list, plus the MSDS sheet while the
// dangerous-goods toggle is on.
func (c *Client) ShipmentFilesForm() *form.Form {
	return form.New(ShipmentFilesSchema(), nil)
}

// UploadShipmentFiles submits the document bundle for a shipment. The
// bundle always carries files, so the request is always multipart. On
// success the document list is revalidated.
func (c *Client) UploadShipmentFiles(ctx context.Context, shipmentID int, f *form.Form, hooks SubmitHooks) error {
	if shipmentID <= 0 {
		return fmt.Errorf("shipment id is required")
	}
	return f.Submit(ctx, form.SubmitOptions{
		Client:   c.http,
		Endpoint: fmt.Sprintf("%s/%d/files", shipmentBase, shipmentID),
		Revalidate: func(ctx context.Context) {
			if _, err := c.Documents.RefreshList(ctx, nil); err != nil {
				c.logger.Warn().Err(err).Msg("document list revalidation after bundle upload failed")
			}
		},
		OnSuccess: hooks.OnSuccess,
		OnError:   hooks.OnError,
		Close:     hooks.Close,
	})
}

// CustomFileForm builds the ad-hoc document form (title plus file).
func (c *Client) CustomFileForm() *form.Form {
	return form.New(CustomFileSchema(), nil)
}

// UploadCustomFile attaches an ad-hoc document to a shipment in two
// steps: it first creates a document type named by the form's title,
// then uploads the file as a document of that type. A type created by a
// failed second step is left in place, matching the backend's own
// tolerance for unused types.
func (c *Client) UploadCustomFile(ctx context.Context, shipmentID int, f *form.Form, hooks SubmitHooks) error {
	if shipmentID <= 0 {
		return fmt.Errorf("shipment id is required")
	}
	if !f.Validate() {
		return form.ErrValidation
	}

	title, _ := f.Get("title").(string)
	file, ok := f.Get("file").(form.File)
	if !ok {
		return fmt.Errorf("custom file form: file value is not a file")
	}

	resp, err := c.http.Post(ctx, documentTypeBase+"/create/", client.JSON(map[string]any{"title": title}))
	if err != nil {
		return err
	}
	envelope, err := client.Decode[DocumentType](resp)
	if err != nil {
		if hooks.OnError != nil {
			hooks.OnError(form.GenericErrorMessage)
		}
		return fmt.Errorf("creating document type %q: %w", title, err)
	}

	doc := form.New(DocumentSchema(), nil)
	if err := doc.Set("type", envelope.Data.ID); err != nil {
		return err
	}
	if err := doc.Set("shipment", shipmentID); err != nil {
		return err
	}
	if err := doc.Set("file", file); err != nil {
		return err
	}
	return c.Documents.Submit(ctx, doc, nil, hooks)
}
