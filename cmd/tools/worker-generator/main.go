// cmd/tools/worker-generator/main.go
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"
	"unicode"

	"dogwalk-workers/pkg/registry"
)

// WorkerData holds data for templates
type WorkerData struct {
	Name           string
	Description    string
	PackageName    string
	TaskType       string
	Dir            string
	DefaultTimeout string
	InputFields    []Field
	OutputFields   []Field
	ErrorCodes     []string
}

// Field is one struct field generated from a schema property.
type Field struct {
	Name    string
	Type    string
	JSONTag string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("worker-generator", flag.ContinueOnError)
	taskType := fs.String("task", "", "Zeebe job type or activity id from the registry (e.g., assign-walker)")
	outputDir := fs.String("output", "./internal/workers/", "Output directory for the generated worker")
	registryPath := fs.String("registry", "configs/activity-registry.json", "Path to the activity registry JSON file")
	force := fs.Bool("force", false, "Overwrite existing files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *taskType == "" {
		fs.Usage()
		return fmt.Errorf("-task is required")
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		return fmt.Errorf("loading registry from %s: %w", *registryPath, err)
	}

	act, ok := findActivity(reg, *taskType)
	if !ok {
		return fmt.Errorf("activity '%s' not found in registry %s", *taskType, *registryPath)
	}

	files, err := generate(act, *outputDir, *force)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Printf("✓ wrote %s\n", f)
	}
	return nil
}

func findActivity(reg *registry.ActivityRegistry, key string) (registry.Activity, bool) {
	if act, ok := reg.FindByTaskType(key); ok {
		return *act, true
	}
	for _, act := range reg.Activities {
		if act.ID == key {
			return act, true
		}
	}
	return registry.Activity{}, false
}

// generate renders config.go, models.go and handler.go for act under
// outputDir/<category>/<taskType> and returns the written paths.
func generate(act registry.Activity, outputDir string, force bool) ([]string, error) {
	data := newWorkerData(act)
	workerDir := filepath.Join(outputDir, data.Dir, act.TaskType)

	if err := os.MkdirAll(workerDir, 0755); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}

	var written []string
	for _, f := range []struct {
		name string
		tmpl *template.Template
	}{
		{"config.go", configTemplate},
		{"models.go", modelsTemplate},
		{"handler.go", handlerTemplate},
	} {
		path := filepath.Join(workerDir, f.name)
		if _, err := os.Stat(path); err == nil && !force {
			return written, fmt.Errorf("%s already exists (use -force to overwrite)", path)
		}

		var buf bytes.Buffer
		if err := f.tmpl.Execute(&buf, data); err != nil {
			return written, fmt.Errorf("rendering %s: %w", f.name, err)
		}
		src, err := format.Source(buf.Bytes())
		if err != nil {
			return written, fmt.Errorf("formatting %s: %w", f.name, err)
		}
		if err := os.WriteFile(path, src, 0644); err != nil {
			return written, fmt.Errorf("writing %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func newWorkerData(act registry.Activity) WorkerData {
	timeout := 10 * time.Second
	if d, err := time.ParseDuration(act.Timeout); err == nil && d > 0 {
		timeout = d
	}

	return WorkerData{
		Name:           act.DisplayName,
		Description:    act.Description,
		PackageName:    strings.NewReplacer("-", "", "_", "", ".", "").Replace(act.TaskType),
		TaskType:       act.TaskType,
		Dir:            mapCategoryToDirectory(act.Category),
		DefaultTimeout: fmt.Sprintf("%d * time.Millisecond", timeout.Milliseconds()),
		InputFields:    schemaFields(act.InputSchema),
		OutputFields:   schemaFields(act.OutputSchema),
		ErrorCodes:     act.ErrorCodes,
	}
}

// schemaFields lists the schema's properties as struct fields in name order.
func schemaFields(schema map[string]interface{}) []Field {
	props, _ := schema["properties"].(map[string]interface{})
	required := map[string]bool{}
	if req, ok := schema["required"].([]interface{}); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		details, _ := props[name].(map[string]interface{})
		tag := name
		if !required[name] {
			tag += ",omitempty"
		}
		fields = append(fields, Field{
			Name:    goName(name),
			Type:    goTypeFromJSONType(details["type"]),
			JSONTag: fmt.Sprintf("`json:\"%s\"`", tag),
		})
	}
	return fields
}

// goTypeFromJSONType maps JSON schema types to Go types
func goTypeFromJSONType(jsonType interface{}) string {
	switch jsonType {
	case "string":
		return "string"
	case "integer":
		return "int"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "object":
		return "map[string]interface{}"
	case "array":
		return "[]interface{}"
	default:
		return "interface{}"
	}
}

// goName turns a camelCase or dashed property name into an exported field.
func goName(prop string) string {
	parts := strings.FieldsFunc(prop, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	name := b.String()
	if strings.HasSuffix(name, "Id") {
		name = strings.TrimSuffix(name, "Id") + "ID"
	}
	if name == "" || unicode.IsDigit(rune(name[0])) {
		name = "Field" + name
	}
	return name
}

func mapCategoryToDirectory(category string) string {
	switch strings.ToLower(category) {
	case "", "matching":
		return "matching"
	default:
		return strings.ToLower(strings.ReplaceAll(category, " ", "-"))
	}
}

var configTemplate = template.Must(template.New("config").Parse(`// internal/workers/{{ .Dir }}/{{ .TaskType }}/config.go
package {{ .PackageName }}

import (
	"time"

	"dogwalk-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func ConfigFromApp(cfg *config.Config) *Config {
	c := &Config{Timeout: config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout)}
	if c.Timeout <= 0 {
		c.Timeout = {{ .DefaultTimeout }}
	}
	return c
}
`))

var modelsTemplate = template.Must(template.New("models").Parse(`// internal/workers/{{ .Dir }}/{{ .TaskType }}/models.go
package {{ .PackageName }}

type Input struct {
{{- range .InputFields }}
	{{ .Name }} {{ .Type }} {{ .JSONTag }}
{{- end }}
}

type Output struct {
{{- range .OutputFields }}
	{{ .Name }} {{ .Type }} {{ .JSONTag }}
{{- end }}
}
`))

var handlerTemplate = template.Must(template.New("handler").Parse(`// internal/workers/{{ .Dir }}/{{ .TaskType }}/handler.go
package {{ .PackageName }}

import (
	"context"
	"encoding/json"
	"time"

	"dogwalk-workers/internal/common/errors"
	"dogwalk-workers/internal/common/logger"
	"dogwalk-workers/internal/common/metrics"
	"dogwalk-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "{{ .TaskType }}"

{{ if .Description }}// Handler: {{ .Description }}.
{{ end -}}
{{ if .ErrorCodes }}// Error codes: {{ range $i, $c := .ErrorCodes }}{{ if $i }}, {{ end }}{{ $c }}{{ end }}.
{{ end -}}
type Handler struct {
	config       *Config
	validator    *validation.Validator
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		validator:    validator,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err == nil {
		_, err = cmd.Send(ctx)
	}
	if err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"jobKey": job.Key, "error": err})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := errors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	vars, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInvalidInputError("job variables", err.Error())
	}
	if err := h.validator.Check(TaskType, vars); err != nil {
		return nil, err
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, errors.NewInvalidInputError("job variables", err.Error())
	}
	return &input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return nil, errors.NewBusinessRuleError("{{ .TaskType }} is not implemented", "generated handler")
}
`))
