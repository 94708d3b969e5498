// cmd/tools/worker-generator/generate_test.go
package main

import (
	"encoding/json"
	"testing"

	"supplier-matching/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestActivity() *registry.Activity {
	return &registry.Activity{
		ID:          "notify-matched-suppliers",
		DisplayName: "Notify Matched Suppliers",
		Description: "Sends invitations to recommended suppliers.",
		Category:    "communication",
		TaskType:    "notify-matched-suppliers",
		Timeout:     "60s",
		InputSchema: map[string]interface{}{
			"rfqId":   "integer",
			"message": "string?",
		},
		OutputSchema: map[string]interface{}{
			"success":             "boolean",
			"notifiedSupplierIds": "integer[]",
		},
	}
}

func TestNewWorkerData(t *testing.T) {
	data, err := newWorkerData(createTestActivity())
	require.NoError(t, err)

	assert.Equal(t, "notifymatchedsuppliers", data.PackageName)
	assert.Equal(t, 60, data.TimeoutSecs)
	assert.Equal(t, "NotifyMatchedSuppliers", data.MethodName)

	require.Len(t, data.InputFields, 2)
	assert.Equal(t, Field{GoName: "Message", JSONName: "message", GoType: "*string", Optional: true, JSONType: "string"}, data.InputFields[0])
	assert.Equal(t, Field{GoName: "RFQID", JSONName: "rfqId", GoType: "int64", JSONType: "integer"}, data.InputFields[1])

	require.Len(t, data.OutputFields, 2)
	assert.Equal(t, "NotifiedSupplierIDs", data.OutputFields[0].GoName)
	assert.Equal(t, "[]int64", data.OutputFields[0].GoType)
}

func TestNewWorkerData_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *registry.Activity)
	}{
		{name: "invalid timeout", mutate: func(a *registry.Activity) { a.Timeout = "soon" }},
		{name: "unsupported type", mutate: func(a *registry.Activity) { a.InputSchema["rfqId"] = "uuid" }},
		{name: "non-string type", mutate: func(a *registry.Activity) { a.OutputSchema["success"] = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := createTestActivity()
			tt.mutate(a)
			_, err := newWorkerData(a)
			assert.Error(t, err)
		})
	}
}

func TestJSONSchema(t *testing.T) {
	data, err := newWorkerData(createTestActivity())
	require.NoError(t, err)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(data.InputSchema), &schema))

	assert.Equal(t, []interface{}{"rfqId"}, schema["required"])
	props := schema["properties"].(map[string]interface{})
	assert.Equal(t, []interface{}{"string", "null"}, props["message"].(map[string]interface{})["type"])
	assert.Equal(t, "integer", props["rfqId"].(map[string]interface{})["type"])
}

func TestRender(t *testing.T) {
	data, err := newWorkerData(createTestActivity())
	require.NoError(t, err)

	files, err := Render(data)
	require.NoError(t, err)

	assert.Len(t, files, len(templates))
	assert.Contains(t, string(files["handler.go"]), `TaskType = "notify-matched-suppliers"`)
	assert.Contains(t, string(files["handler.go"]), "NotifyMatchedSuppliers(ctx context.Context, input *Input) (*Output, error)")
	assert.Regexp(t, `RFQID\s+int64`, string(files["models.go"]))
	assert.Contains(t, string(files["config.go"]), "60 * time.Second")
}

func TestGoName(t *testing.T) {
	assert.Equal(t, "RFQID", goName("rfqId"))
	assert.Equal(t, "SupplierID", goName("supplierId"))
	assert.Equal(t, "NotifiedSupplierIDs", goName("notifiedSupplierIds"))
	assert.Equal(t, "Message", goName("message"))
}
