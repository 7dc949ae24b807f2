package webutils

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/pkg/errors"
)

func WriteFileHeaders(w http.ResponseWriter, name string, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
}

func WriteFile(w http.ResponseWriter, in io.Reader, name string, contentType string) {
	WriteFileHeaders(w, name, contentType)
	if _, err := io.Copy(w, in); err != nil {
		log.Printf("[web] Error when writing file %q: %v", name, err)
	}
}

func WriteJson(w http.ResponseWriter, data interface{}) {
	res, err := json.Marshal(data)
	if err != nil {
		WriteError(w, errors.Wrapf(err, "Failed to marshal"))
	} else {
		w.Header().Set("Content-Type", "application/json")
		WriteResult(w, res)
	}
}

func WriteJsonFile(w http.ResponseWriter, v interface{}, fileName string) {
	if data, err := json.MarshalIndent(v, "", "  "); err != nil {
		WriteError(w, errors.Wrapf(err, "Failed to marshal"))
	} else {
		WriteFile(w, bytes.NewReader(data), fileName+".json", "application/json")
	}
}

func WriteResult(w http.ResponseWriter, data []byte) {
	_, err := w.Write(data)
	if err != nil {
		log.Printf("[web] Error when writing response: %v", err)
	}
}

// ErrorKind names the typed error inside err, "Error" for plain errors
func ErrorKind(err error) string {
	var k interface{ Kind() string }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return "Error"
}

func errorStatus(kind string) int {
	switch kind {
	case "MissingAssetError", "NotFoundError":
		return http.StatusNotFound
	case "CookbookError", "UnknownRuleError", "FormatError":
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

type jError struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func WriteError(w http.ResponseWriter, err error) {
	kind := ErrorKind(err)
	data, merr := json.Marshal(&jError{Error: err.Error(), Kind: kind})
	if merr != nil {
		log.Printf("[web] Error marshaling error '%v': %v", err, merr)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Printf("[web] HERR: %v", string(data))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errorStatus(kind))
	WriteResult(w, data)
}
