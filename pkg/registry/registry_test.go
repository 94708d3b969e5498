// pkg/registry/registry_test.go
package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRegistry() *ActivityRegistry {
	return &ActivityRegistry{
		Version: "1.0.0",
		Activities: []Activity{
			{ID: "generate-supplier-matches", TaskType: "generate-supplier-matches", ImplementationStatus: StatusCompleted, Timeout: "30s"},
			{ID: "record-match-feedback", TaskType: "record-match-feedback", ImplementationStatus: StatusVerified, Timeout: "10s"},
		},
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	reg := createTestRegistry()

	require.NoError(t, reg.Save(path))
	loaded, err := LoadRegistry(path)
	require.NoError(t, err)

	assert.Equal(t, reg.Activities, loaded.Activities)
	assert.NotEmpty(t, loaded.LastUpdated)
}

func TestLoadRegistry_Missing(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestAdd_RejectsDuplicates(t *testing.T) {
	reg := createTestRegistry()

	assert.Error(t, reg.Add(Activity{ID: "generate-supplier-matches", TaskType: "other"}))
	assert.Error(t, reg.Add(Activity{ID: "other", TaskType: "record-match-feedback"}))
	assert.NoError(t, reg.Add(Activity{ID: "notify-matched-suppliers", TaskType: "notify-matched-suppliers", ImplementationStatus: StatusPlanned}))
	assert.Len(t, reg.Activities, 3)
}

func TestSetField(t *testing.T) {
	reg := createTestRegistry()

	require.NoError(t, reg.SetField("generate-supplier-matches", "status", StatusVerified))
	a, ok := reg.Find("generate-supplier-matches")
	require.True(t, ok)
	assert.Equal(t, StatusVerified, a.ImplementationStatus)

	assert.Error(t, reg.SetField("generate-supplier-matches", "status", "done"))
	assert.Error(t, reg.SetField("generate-supplier-matches", "timeout", "soon"))
	assert.Error(t, reg.SetField("generate-supplier-matches", "owner", "x"))
	assert.Error(t, reg.SetField("unknown", "version", "2.0.0"))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, createTestRegistry().Validate())

	reg := createTestRegistry()
	reg.Activities = append(reg.Activities,
		Activity{ID: "generate-supplier-matches", TaskType: "generate-supplier-matches", ImplementationStatus: "unknown", Timeout: "ten"},
	)

	err := reg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
	assert.Contains(t, err.Error(), "duplicate taskType")
	assert.Contains(t, err.Error(), "invalid implementationStatus")
	assert.Contains(t, err.Error(), "invalid timeout")
}

func TestMissing(t *testing.T) {
	reg := createTestRegistry()
	assert.Equal(t, []string{"notify-matched-suppliers"},
		reg.Missing("generate-supplier-matches", "notify-matched-suppliers", "record-match-feedback"))
	assert.Nil(t, reg.Missing())
}
