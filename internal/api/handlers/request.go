package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/We-are-incomplete/war-record-only-read/internal/api/response"
	"github.com/We-are-incomplete/war-record-only-read/internal/storage/models"
)

// maxBodyBytes bounds request bodies. Queries are a handful of strings.
const maxBodyBytes = 64 << 10

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FilterRequest is the record filter accepted by every query endpoint.
// Both fields are optional; an empty body selects every record.
type FilterRequest struct {
	Season       string   `json:"season" validate:"max=100"`
	Environments []string `json:"environments" validate:"max=50,dive,max=100"`
}

// ToFilter converts the request to a RecordFilter.
func (r *FilterRequest) ToFilter() models.RecordFilter {
	return models.RecordFilter{
		Season:       strings.TrimSpace(r.Season),
		Environments: r.Environments,
	}
}

// TypesRequest asks for the type choices of one archetype.
type TypesRequest struct {
	FilterRequest
	Archetype string `json:"archetype" validate:"required,max=200"`
}

// FocusRequest selects an archetype key. An empty type or "ALL" selects
// every type of the archetype.
type FocusRequest struct {
	FilterRequest
	Archetype string `json:"archetype" validate:"required,max=200"`
	Type      string `json:"type" validate:"max=200"`
}

// Key returns the requested archetype key.
func (r *FocusRequest) Key() models.ArchetypeKey {
	return models.ParseArchetypeKey(r.Archetype, r.Type)
}

// ExportRequest selects the rows and encoding of a download. Archetype is
// required for the matchups and memos tables.
type ExportRequest struct {
	FilterRequest
	Archetype string `json:"archetype" validate:"max=200"`
	Type      string `json:"type" validate:"max=200"`
	Format    string `json:"format" validate:"omitempty,oneof=csv json CSV JSON"`
}

// decodeRequest reads an optional JSON body into v and validates it.
func decodeRequest(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.StructCtx(r.Context(), v); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError turns validator output into a readable message.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s exceeds %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// engineError maps an engine failure to a response. Invalid stored records
// are the only expected failure.
func engineError(w http.ResponseWriter, err error) {
	var invalid *models.InvalidRecordError
	if errors.As(err, &invalid) {
		response.UnprocessableEntity(w, err)
		return
	}
	response.InternalError(w, err)
}
