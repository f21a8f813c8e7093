package api

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"dietcascade/portal-api/internal/domain"
	"dietcascade/portal-api/internal/service"
)

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// formErrors collects per-field parse failures of a multipart form.
type formErrors map[string]string

func (fe formErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	return &service.ValidationError{Fields: fe}
}

// optionalFloat parses a numeric form value; blank means "not given".
func (fe formErrors) optionalFloat(raw, name string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fe[name] = name + " must be a number"
		return nil
	}
	return &v
}

// formFile opens an optional uploaded file. The returned close func is never nil.
func formFile(c *gin.Context, name string) (*service.FileUpload, func(), error) {
	fh, err := c.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, &service.ValidationError{Fields: map[string]string{name: name + " could not be read"}}
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, &service.ValidationError{Fields: map[string]string{name: name + " could not be read"}}
	}
	return &service.FileUpload{Filename: fh.Filename, Content: f}, closer(f), nil
}

func closer(f multipart.File) func() {
	return func() { _ = f.Close() }
}

func bindError(err error) error {
	return &service.ValidationError{Fields: map[string]string{"body": "Invalid request body: " + err.Error()}}
}

// bindProgressInput accepts the log-progress form as multipart (with an
// optional photo) or as JSON.
func bindProgressInput(c *gin.Context) (service.ProgressInput, func(), error) {
	var in service.ProgressInput
	if !isMultipart(c) {
		if err := c.ShouldBindJSON(&in); err != nil {
			return in, func() {}, bindError(err)
		}
		return in, func() {}, nil
	}

	fe := formErrors{}
	in.Date = strings.TrimSpace(c.PostForm("date"))
	in.WeightKg = fe.optionalFloat(c.PostForm(string(domain.MetricWeight)), string(domain.MetricWeight))
	in.ChestCm = fe.optionalFloat(c.PostForm(string(domain.MetricChest)), string(domain.MetricChest))
	in.WaistCm = fe.optionalFloat(c.PostForm(string(domain.MetricWaist)), string(domain.MetricWaist))
	in.HipsCm = fe.optionalFloat(c.PostForm(string(domain.MetricHips)), string(domain.MetricHips))
	in.Notes = c.PostForm("notes")
	if err := fe.err(); err != nil {
		return in, func() {}, err
	}

	photo, closeFn, err := formFile(c, "photo")
	if err != nil {
		return in, closeFn, err
	}
	in.Photo = photo
	return in, closeFn, nil
}

// bindProgressPatch reads an edit. In multipart forms a measurement field
// that is present but blank clears the value.
func bindProgressPatch(c *gin.Context) (service.ProgressPatch, func(), error) {
	var patch service.ProgressPatch
	if !isMultipart(c) {
		if err := c.ShouldBindJSON(&patch); err != nil {
			return patch, func() {}, bindError(err)
		}
		return patch, func() {}, nil
	}

	fe := formErrors{}
	if v, ok := c.GetPostForm("date"); ok && strings.TrimSpace(v) != "" {
		d := strings.TrimSpace(v)
		patch.Date = &d
	}
	for _, m := range domain.Metrics {
		raw, ok := c.GetPostForm(string(m))
		if !ok {
			continue
		}
		if strings.TrimSpace(raw) == "" {
			patch.Clear = append(patch.Clear, m)
			continue
		}
		v := fe.optionalFloat(raw, string(m))
		switch m {
		case domain.MetricWeight:
			patch.WeightKg = v
		case domain.MetricChest:
			patch.ChestCm = v
		case domain.MetricWaist:
			patch.WaistCm = v
		case domain.MetricHips:
			patch.HipsCm = v
		}
	}
	if v, ok := c.GetPostForm("notes"); ok {
		patch.Notes = &v
	}
	if v, ok := c.GetPostForm("remove_photo"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			fe["remove_photo"] = "remove_photo must be true or false"
		}
		patch.RemovePhoto = b
	}
	if err := fe.err(); err != nil {
		return patch, func() {}, err
	}

	photo, closeFn, err := formFile(c, "photo")
	if err != nil {
		return patch, closeFn, err
	}
	patch.Photo = photo
	return patch, closeFn, nil
}

// parseMetrics reads ?metrics=weight_kg,waist_cm. Validation happens in the service.
func parseMetrics(raw string) []domain.Metric {
	var out []domain.Metric
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, domain.Metric(part))
		}
	}
	return out
}
