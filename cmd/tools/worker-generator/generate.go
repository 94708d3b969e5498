// cmd/tools/worker-generator/generate.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"go/format"
	"sort"
	"strings"
	"text/template"
	"time"

	"supplier-matching/pkg/registry"
)

// WorkerData holds data for templates
type WorkerData struct {
	Name          string
	PackageName   string
	TaskType      string
	Description   string
	Category      string
	TimeoutSecs   int
	InputFields   []Field
	OutputFields  []Field
	InputSchema   string
	ErrorCodes    []string
	InterfaceName string
	MethodName    string
}

// Field is one struct field derived from a registry schema entry such as
// "rfqId": "integer" or "message": "string?".
type Field struct {
	GoName   string
	JSONName string
	GoType   string
	Optional bool
	JSONType string
}

func newWorkerData(a *registry.Activity) (*WorkerData, error) {
	timeout := 30 * time.Second
	if a.Timeout != "" {
		d, err := time.ParseDuration(a.Timeout)
		if err != nil {
			return nil, fmt.Errorf("activity %s: invalid timeout %q", a.ID, a.Timeout)
		}
		timeout = d
	}

	in, err := fieldsFromSchema(a.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("activity %s input: %w", a.ID, err)
	}
	out, err := fieldsFromSchema(a.OutputSchema)
	if err != nil {
		return nil, fmt.Errorf("activity %s output: %w", a.ID, err)
	}

	method := upperFirst(camel(a.TaskType))
	return &WorkerData{
		Name:          a.DisplayName,
		PackageName:   strings.ReplaceAll(a.ID, "-", ""),
		TaskType:      a.TaskType,
		Description:   a.Description,
		Category:      a.Category,
		TimeoutSecs:   int(timeout / time.Second),
		InputFields:   in,
		OutputFields:  out,
		InputSchema:   jsonSchema(in),
		ErrorCodes:    a.ErrorCodes,
		InterfaceName: "Executor",
		MethodName:    method,
	}, nil
}

var jsonToGo = map[string]string{
	"string":    "string",
	"integer":   "int64",
	"number":    "float64",
	"boolean":   "bool",
	"object":    "map[string]interface{}",
	"string[]":  "[]string",
	"integer[]": "[]int64",
	"number[]":  "[]float64",
}

func fieldsFromSchema(schema map[string]interface{}) ([]Field, error) {
	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		typ, ok := schema[name].(string)
		if !ok {
			return nil, fmt.Errorf("field %s: type must be a string", name)
		}
		optional := strings.HasSuffix(typ, "?")
		typ = strings.TrimSuffix(typ, "?")

		goType, ok := jsonToGo[typ]
		if !ok {
			return nil, fmt.Errorf("field %s: unsupported type %q", name, typ)
		}
		if optional && !strings.HasPrefix(goType, "[]") && !strings.HasPrefix(goType, "map") {
			goType = "*" + goType
		}

		fields = append(fields, Field{
			GoName:   goName(name),
			JSONName: name,
			GoType:   goType,
			Optional: optional,
			JSONType: typ,
		})
	}
	return fields, nil
}

// jsonSchema renders the gojsonschema document the generated handler
// validates job variables against.
func jsonSchema(fields []Field) string {
	props := make(map[string]interface{}, len(fields))
	required := []string{}
	for _, f := range fields {
		var prop map[string]interface{}
		if base, isArray := strings.CutSuffix(f.JSONType, "[]"); isArray {
			prop = map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": base}}
		} else {
			prop = map[string]interface{}{"type": f.JSONType}
		}
		if f.Optional {
			prop["type"] = []interface{}{prop["type"], "null"}
		} else {
			required = append(required, f.JSONName)
		}
		props[f.JSONName] = prop
	}

	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}

	doc, _ := json.MarshalIndent(schema, "", "\t")
	return string(doc)
}

func goName(jsonName string) string {
	name := upperFirst(jsonName)
	for _, initialism := range []string{"Id", "Rfq", "Url", "Sms"} {
		if strings.HasSuffix(name, initialism) {
			name = strings.TrimSuffix(name, initialism) + strings.ToUpper(initialism)
		}
		name = strings.ReplaceAll(name, initialism+"s", strings.ToUpper(initialism)+"s")
	}
	return strings.ReplaceAll(name, "Rfq", "RFQ")
}

func camel(kebab string) string {
	parts := strings.Split(kebab, "-")
	for i := 1; i < len(parts); i++ {
		parts[i] = upperFirst(parts[i])
	}
	return strings.Join(parts, "")
}

// upperFirst makes the first character uppercase
func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Render executes every template and gofmts the Go sources. A template that
// produces invalid Go is reported instead of written.
func Render(data *WorkerData) (map[string][]byte, error) {
	files := make(map[string][]byte, len(templates))
	for name, text := range templates {
		tmpl, err := template.New(name).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("execute template %s: %w", name, err)
		}

		src := buf.Bytes()
		if strings.HasSuffix(name, ".go") {
			if src, err = format.Source(src); err != nil {
				return nil, fmt.Errorf("format %s: %w", name, err)
			}
		}
		files[name] = src
	}
	return files, nil
}
