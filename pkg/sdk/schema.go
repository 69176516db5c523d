package resumerank

import (
	"fmt"
	"reflect"
	"strconv"
)

const tagKey = "resumerank"

// schemaMeta holds the struct fields that carry a record's id and resume text.
type schemaMeta struct {
	typ     reflect.Type
	idIdx   int
	textIdx int
}

// parseSchema reflects on T once. T must be a struct with exactly one
// `resumerank:"id"` field (string or integer) and one `resumerank:"text"`
// field (string).
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("resumerank: type %v is not a struct", t)
	}

	meta := &schemaMeta{typ: t, idIdx: -1, textIdx: -1}
	for i := range t.NumField() {
		f := t.Field(i)
		switch f.Tag.Get(tagKey) {
		case "id":
			if meta.idIdx != -1 {
				return nil, fmt.Errorf("resumerank: duplicate id tag on field %s", f.Name)
			}
			if !isIDKind(f.Type.Kind()) {
				return nil, fmt.Errorf("resumerank: id field %s must be a string or integer, got %s", f.Name, f.Type)
			}
			meta.idIdx = i
		case "text":
			if meta.textIdx != -1 {
				return nil, fmt.Errorf("resumerank: duplicate text tag on field %s", f.Name)
			}
			if f.Type.Kind() != reflect.String {
				return nil, fmt.Errorf("resumerank: text field %s must be a string, got %s", f.Name, f.Type)
			}
			meta.textIdx = i
		}
	}

	if meta.idIdx == -1 {
		return nil, fmt.Errorf("resumerank: %s has no field tagged resumerank:\"id\"", t)
	}
	if meta.textIdx == -1 {
		return nil, fmt.Errorf("resumerank: %s has no field tagged resumerank:\"text\"", t)
	}
	return meta, nil
}

func isIDKind(k reflect.Kind) bool {
	switch k {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

// toCandidate extracts the id and text of item. Integer ids are formatted in base 10.
func (m *schemaMeta) toCandidate(item any) Candidate {
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	idv := v.Field(m.idIdx)
	var id string
	switch {
	case idv.Kind() == reflect.String:
		id = idv.String()
	case idv.CanInt():
		id = strconv.FormatInt(idv.Int(), 10)
	default:
		id = strconv.FormatUint(idv.Uint(), 10)
	}
	return Candidate{ID: id, Text: v.Field(m.textIdx).String()}
}
