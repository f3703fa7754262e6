package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// detectUnknownFields compares the raw YAML document with the known struct fields.
// Note: since this is called after the document parsed successfully, a parse
// failure here would indicate an internal inconsistency.
func detectUnknownFields(data []byte) []string {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return []string{"internal: failed to re-parse config for unknown field detection"}
	}

	var warnings []string
	checkUnknown(raw, reflect.TypeOf(Config{}), "", &warnings)
	sort.Strings(warnings)
	return warnings
}

// checkUnknown walks raw alongside t and records keys that have no field.
func checkUnknown(raw interface{}, t reflect.Type, at string, warnings *[]string) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		m, ok := raw.(map[string]interface{})
		if !ok {
			return
		}
		fields := getYAMLFields(t)
		for key, value := range m {
			field, known := fields[key]
			if !known {
				*warnings = append(*warnings, fmt.Sprintf("unknown field %q %s(ignored)", key, location(at)))
				continue
			}
			checkUnknown(value, field.Type, join(at, key), warnings)
		}
	case reflect.Map:
		m, ok := raw.(map[string]interface{})
		if !ok {
			return
		}
		for key, value := range m {
			checkUnknown(value, t.Elem(), join(at, key), warnings)
		}
	case reflect.Slice:
		items, ok := raw.([]interface{})
		if !ok {
			return
		}
		for i, item := range items {
			checkUnknown(item, t.Elem(), fmt.Sprintf("%s[%d]", at, i), warnings)
		}
	}
}

// getYAMLFields returns the struct fields keyed by their YAML names.
func getYAMLFields(t reflect.Type) map[string]reflect.StructField {
	fields := make(map[string]reflect.StructField)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		if name != "" {
			fields[name] = field
		}
	}
	return fields
}

func join(at, key string) string {
	if at == "" {
		return key
	}
	return at + "." + key
}

func location(at string) string {
	if at == "" {
		return "at root level "
	}
	return fmt.Sprintf("in %s ", at)
}
