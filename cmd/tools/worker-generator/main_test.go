package main

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"dogwalk-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoName(t *testing.T) {
	tests := map[string]string{
		"ownerId":        "OwnerID",
		"maxResults":     "MaxResults",
		"raw-filters":    "RawFilters",
		"candidateCount": "CandidateCount",
		"2fa":            "Field2fa",
	}
	for in, want := range tests {
		assert.Equal(t, want, goName(in), in)
	}
}

func TestSchemaFields(t *testing.T) {
	fields := schemaFields(map[string]interface{}{
		"required": []interface{}{"requestId"},
		"properties": map[string]interface{}{
			"requestId":  map[string]interface{}{"type": "string"},
			"maxResults": map[string]interface{}{"type": "integer"},
			"weights":    map[string]interface{}{"type": "object"},
		},
	})

	require.Len(t, fields, 3)
	assert.Equal(t, Field{Name: "MaxResults", Type: "int", JSONTag: "`json:\"maxResults,omitempty\"`"}, fields[0])
	assert.Equal(t, Field{Name: "RequestID", Type: "string", JSONTag: "`json:\"requestId\"`"}, fields[1])
	assert.Equal(t, "map[string]interface{}", fields[2].Type)
}

func TestGenerate_AllBuiltinActivitiesParse(t *testing.T) {
	out := t.TempDir()

	for _, act := range registry.Builtin().Activities {
		t.Run(act.TaskType, func(t *testing.T) {
			files, err := generate(act, out, false)
			require.NoError(t, err)
			require.Len(t, files, 3)

			fset := token.NewFileSet()
			for _, f := range files {
				_, err := parser.ParseFile(fset, f, nil, parser.AllErrors)
				assert.NoError(t, err, f)
			}

			handler, err := os.ReadFile(filepath.Join(out, "matching", act.TaskType, "handler.go"))
			require.NoError(t, err)
			assert.Contains(t, string(handler), `const TaskType = "`+act.TaskType+`"`)
		})
	}

	models, err := os.ReadFile(filepath.Join(out, "matching", "assign-walker", "models.go"))
	require.NoError(t, err)
	assert.Contains(t, string(models), "package assignwalker")
	assert.Regexp(t, `RequestID\s+string\s+`+"`json:\"requestId\"`", string(models))
}

func TestGenerate_RefusesToOverwrite(t *testing.T) {
	out := t.TempDir()
	act, ok := registry.Builtin().FindByTaskType("filter-matches")
	require.True(t, ok)

	_, err := generate(*act, out, false)
	require.NoError(t, err)

	_, err = generate(*act, out, false)
	assert.ErrorContains(t, err, "already exists")

	_, err = generate(*act, out, true)
	assert.NoError(t, err)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	regPath := filepath.Join(dir, "registry.json")
	require.NoError(t, registry.Save(registry.Builtin(), regPath))

	assert.Error(t, run([]string{"-registry", regPath}))
	assert.ErrorContains(t, run([]string{"-registry", regPath, "-task", "walk-dog"}), "not found")

	out := filepath.Join(dir, "workers")
	require.NoError(t, run([]string{"-registry", regPath, "-task", "matching.walkers.find", "-output", out}))
	assert.FileExists(t, filepath.Join(out, "matching", "find-compatible-walkers", "config.go"))
}
