package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/TheMinarctic/rahtash-tms-admin/pkg/api"
	"github.com/TheMinarctic/rahtash-tms-admin/pkg/client"
)

// ErrValidation reports that client-side validation blocked the
// submission. No network call was made; the details are in Errors.
var ErrValidation = errors.New("form: validation failed")

// GenericErrorMessage is shown when the server fails without a usable
// message of its own.
const GenericErrorMessage = "Something went wrong"

// SubmitOptions wires a submission to its surroundings. Revalidate
// refreshes the resource list the form belongs to, OnSuccess and OnError
// drive user notifications, Close dismisses the enclosing surface.
type SubmitOptions struct {
	Client     *client.Client
	Endpoint   string
	Revalidate func(ctx context.Context)
	OnSuccess  func(message string)
	OnError    func(message string)
	Close      func()
}

// Submit validates and sends the form. The presence of a target id is
// the sole discriminator: with one the form PATCHes the update endpoint,
// without one it POSTs the create endpoint. On success the order of side
// effects is fixed: success notification, list revalidation, close.
// Server-side field errors are mapped onto the matching schema fields;
// anything else surfaces through OnError.
func (f *Form) Submit(ctx context.Context, opts SubmitOptions) error {
	if opts.Client == nil {
		return fmt.Errorf("form: Client is required")
	}
	if opts.Endpoint == "" {
		return fmt.Errorf("form: Endpoint is required")
	}

	if !f.Validate() {
		return ErrValidation
	}

	body, err := f.body()
	if err != nil {
		return err
	}

	var resp *client.Response
	if id, update := f.TargetID(); update {
		resp, err = opts.Client.Patch(ctx, fmt.Sprintf("%s/update/%d/", opts.Endpoint, id), body)
	} else {
		resp, err = opts.Client.Post(ctx, opts.Endpoint+"/create/", body)
	}
	if err != nil {
		return err
	}

	envelope, err := client.Decode[json.RawMessage](resp)
	if err != nil {
		f.surfaceError(err, opts)
		return err
	}

	if opts.OnSuccess != nil {
		opts.OnSuccess(envelope.Message)
	}
	if opts.Revalidate != nil {
		opts.Revalidate(ctx)
	}
	if opts.Close != nil {
		opts.Close()
	}
	return nil
}

func (f *Form) surfaceError(err error, opts SubmitOptions) {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && len(apiErr.FieldErrors) > 0 {
		matched := false
		for name, msgs := range apiErr.FieldErrors {
			if _, known := f.schema.field(name); known {
				f.errors[name] = append(f.errors[name], msgs...)
				matched = true
			}
		}
		if matched {
			return
		}
	}

	if opts.OnError == nil {
		return
	}
	message := GenericErrorMessage
	if apiErr != nil && apiErr.Message != "" {
		message = apiErr.Message
	}
	opts.OnError(message)
}
