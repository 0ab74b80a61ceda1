package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"repdesk/internal/model"
)

// sendForm serializes a draft as the multipart payload the backend expects:
// scalar fields as-is (digits normalized for phone), needs and gifts as JSON
// strings, the image only when a new file was chosen. forceUnconfirmed adds
// isConfirmed=false (the edit path).
func (c *Client) sendForm(ctx context.Context, method, url string, d model.Draft, forceUnconfirmed bool) (model.RequestForm, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"gender":      d.Gender,
		"fullName":    d.FullName,
		"phone":       d.WirePhone(),
		"activity":    d.Activity,
		"description": d.Description,
		"province":    d.Province,
		"city":        d.City,
	}
	for name, val := range fields {
		if err := w.WriteField(name, val); err != nil {
			return model.RequestForm{}, err
		}
	}

	needs := d.Needs
	if needs == nil {
		needs = []string{}
	}
	needsJSON, err := json.Marshal(needs)
	if err != nil {
		return model.RequestForm{}, err
	}
	if err := w.WriteField("needs", string(needsJSON)); err != nil {
		return model.RequestForm{}, err
	}

	giftsJSON, err := json.Marshal(d.WireGifts())
	if err != nil {
		return model.RequestForm{}, err
	}
	if err := w.WriteField("gifts", string(giftsJSON)); err != nil {
		return model.RequestForm{}, err
	}

	if forceUnconfirmed {
		if err := w.WriteField("isConfirmed", "false"); err != nil {
			return model.RequestForm{}, err
		}
	}

	// The image is attached only when the operator chose a new file; without
	// it the server keeps the existing filename.
	if d.IsExport() && d.ImagePath != "" {
		if err := attachFile(w, "image", d.ImagePath); err != nil {
			return model.RequestForm{}, err
		}
	}

	if err := w.Close(); err != nil {
		return model.RequestForm{}, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return model.RequestForm{}, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return model.RequestForm{}, fmt.Errorf("submit form: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return model.RequestForm{}, err
	}
	return decodeForm(resp.Body)
}

func attachFile(w *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	return nil
}
