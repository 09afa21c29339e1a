// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/shashiranjanraj/furnivision/config"
	"github.com/shashiranjanraj/furnivision/pkg/validate"
)

// ErrTooLarge is returned when a body or uploaded file exceeds its limit.
var ErrTooLarge = errors.New("request body too large")

// JSON decodes r.Body as JSON into dest and runs validation.
// The body is capped at MAX_BODY_BYTES (default 16 MB, room photos travel
// as base64) to prevent memory exhaustion.
// Returns (errs, nil) when there are validation failures.
// Returns (nil, err) when the body is malformed JSON or too large.
func JSON(r *http.Request, dest interface{}) (errs map[string]string, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, config.MaxRequestBytes())

	dec := json.NewDecoder(r.Body)
	if err = dec.Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w (max %d bytes)", ErrTooLarge, maxErr.Limit)
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	errs = validate.Struct(dest)
	if validate.HasErrors(errs) {
		return errs, nil
	}

	return nil, nil
}

// File is one uploaded multipart part read fully into memory.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// FormFile reads the multipart field named field. The request body is capped
// at limit plus a small allowance for the multipart envelope; a larger body
// yields ErrTooLarge. Each accept func sees the client's file name before
// any of the file is read, so a name rule wins over the size cap.
func FormFile(r *http.Request, field string, limit int64, accept ...func(name string) error) (*File, error) {
	const envelope = 1 << 20
	r.Body = http.MaxBytesReader(nil, r.Body, limit+envelope)

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing file field %q", field)
		}
		if err != nil {
			return nil, tooLarge(err, "invalid multipart form")
		}
		if part.FormName() != field || part.FileName() == "" {
			part.Close()
			continue
		}
		for _, fn := range accept {
			if err := fn(part.FileName()); err != nil {
				part.Close()
				return nil, err
			}
		}
		return readPart(part)
	}
}

func readPart(part *multipart.Part) (*File, error) {
	defer part.Close()
	data, err := io.ReadAll(part)
	if err != nil {
		return nil, tooLarge(err, "read upload")
	}
	return &File{
		Name:        part.FileName(),
		ContentType: part.Header.Get("Content-Type"),
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

func tooLarge(err error, what string) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return ErrTooLarge
	}
	return fmt.Errorf("%s: %w", what, err)
}
