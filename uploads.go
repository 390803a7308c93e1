package main

import (
	"errors"
	"net/http"
)

var errUploadTooLarge = errors.New("upload too large")

// saveUpload parses the form and stores the file in field, if any. It returns
// an empty reference when no file was sent. The parsed form stays available
// through r.FormValue.
func (a *app) saveUpload(w http.ResponseWriter, r *http.Request, field string) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUpload)
	if err := r.ParseMultipartForm(a.maxUpload); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", errUploadTooLarge
		}
		return "", err
	}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	return a.media.Save(r.Context(), header.Filename, file)
}

// discardUpload removes a file saved for a request that then failed.
func (a *app) discardUpload(r *http.Request, ref string) {
	if ref == "" {
		return
	}
	if err := a.media.Remove(r.Context(), ref); err != nil {
		a.log.WithError(err).WithField("media", ref).Warn("could not discard upload")
	}
}
