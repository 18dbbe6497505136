package helpers

import (
	"net/http"
	"strconv"
	"strings"
)

// ParseForm parses the request's form-encoded body and query string. On
// failure it writes a 400 JSON error and returns false; callers should return
// immediately when ParseForm returns false.
func ParseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "malformed form body")
		return false
	}
	return true
}

// FormString returns the trimmed form value for name.
func FormString(r *http.Request, name string) string {
	return strings.TrimSpace(r.FormValue(name))
}

// FormStringPtr returns a pointer to the trimmed form value for name, or nil
// when the field was not sent at all. An empty-but-present field yields a
// pointer to "".
func FormStringPtr(r *http.Request, name string) *string {
	values, ok := r.Form[name]
	if !ok || len(values) == 0 {
		return nil
	}
	v := strings.TrimSpace(values[0])
	return &v
}

// FormIntPtr parses the form value for name as an integer. It returns
// (nil, true) when the field is absent, (nil, false) when present but not a
// number, and (&v, true) otherwise.
func FormIntPtr(r *http.Request, name string) (*int, bool) {
	values, ok := r.Form[name]
	if !ok || len(values) == 0 {
		return nil, true
	}
	s := strings.TrimSpace(values[0])
	if s == "" {
		return nil, true
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, false
	}
	return &v, true
}

// FormFloatPtr parses the form value for name as a float. Semantics match
// FormIntPtr.
func FormFloatPtr(r *http.Request, name string) (*float64, bool) {
	values, ok := r.Form[name]
	if !ok || len(values) == 0 {
		return nil, true
	}
	s := strings.TrimSpace(values[0])
	if s == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}

// FormBoolPtr parses the form value for name as a boolean ("true"/"false",
// "1"/"0"). Semantics match FormIntPtr.
func FormBoolPtr(r *http.Request, name string) (*bool, bool) {
	values, ok := r.Form[name]
	if !ok || len(values) == 0 {
		return nil, true
	}
	s := strings.TrimSpace(values[0])
	if s == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, false
	}
	return &v, true
}

// FormStrings returns the repeated form values for name, accepting both the
// bare name and the bracketed "name[]" convention used by HTML forms.
func FormStrings(r *http.Request, name string) []string {
	values := r.Form[name]
	if len(values) == 0 {
		values = r.Form[name+"[]"]
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
