package webutils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kindError struct{ kind string }

func (e *kindError) Error() string { return "broken " + e.kind }
func (e *kindError) Kind() string  { return e.kind }

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "Error", ErrorKind(fmt.Errorf("plain")))
	assert.Equal(t, "CookbookError", ErrorKind(&kindError{"CookbookError"}))
	assert.Equal(t, "FormatError", ErrorKind(errors.Wrapf(&kindError{"FormatError"}, "clip %q", "a.an")))
}

func TestWriteError(t *testing.T) {
	for kind, status := range map[string]int{
		"MissingAssetError": http.StatusNotFound,
		"UnknownRuleError":  http.StatusUnprocessableEntity,
		"Other":             http.StatusInternalServerError,
	} {
		rec := httptest.NewRecorder()
		WriteError(rec, errors.Wrapf(&kindError{kind}, "wrapped"))
		assert.Equal(t, status, rec.Code, kind)

		var got jError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, kind, got.Kind)
		assert.Equal(t, "wrapped: broken "+kind, got.Error)
	}
}

func TestWriteJson(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJson(rec, map[string]int{"frames": 3})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"frames": 3}`, rec.Body.String())

	rec = httptest.NewRecorder()
	WriteJsonFile(rec, []int{1}, "walk")
	assert.Equal(t, `attachment; filename="walk.json"`, rec.Header().Get("Content-Disposition"))
}
