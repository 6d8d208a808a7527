// Package local persists the task collection in device storage.
package local

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/godaily/godaily/internal/application/tasks"
	"github.com/godaily/godaily/internal/domain"
	"github.com/godaily/godaily/internal/storage"
)

//go:embed tasks.schema.json
var schemaJSON []byte

const schemaURL = "godaily://tasks.schema.json"

// Adapter is a tasks.Backend that keeps the whole collection as one JSON document
// under storage.KeyTasks. Device storage is the source of truth.
type Adapter struct {
	kv     storage.KeyValue
	schema *jsonschema.Schema
}

var _ tasks.Backend = (*Adapter)(nil)

// NewAdapter creates an adapter over kv.
func NewAdapter(kv storage.KeyValue) (*Adapter, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add task schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile task schema: %w", err)
	}

	return &Adapter{kv: kv, schema: schema}, nil
}

// Load reads the stored collection. Absent, malformed or invalid data yields an
// empty collection; only device storage failures are returned as errors.
func (a *Adapter) Load(ctx context.Context) ([]domain.Task, error) {
	raw, ok, err := a.kv.Get(ctx, storage.KeyTasks)
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}
	if !ok || raw == "" {
		return []domain.Task{}, nil
	}

	list, err := a.decode([]byte(raw))
	if err != nil {
		slog.WarnContext(ctx, "discarding stored tasks", "key", storage.KeyTasks, "error", err)
		return []domain.Task{}, nil
	}
	return list, nil
}

func (a *Adapter) decode(data []byte) ([]domain.Task, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("malformed JSON: %w", err)
	}
	if err := a.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var list []domain.Task
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	for i := range list {
		if list[i].Priority == "" {
			list[i].Priority = domain.PriorityMedium
		}
	}
	return list, nil
}

func (a *Adapter) save(ctx context.Context, list []domain.Task) ([]domain.Task, error) {
	if list == nil {
		list = []domain.Task{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tasks: %w", err)
	}
	if err := a.kv.Set(ctx, storage.KeyTasks, string(data)); err != nil {
		return nil, fmt.Errorf("failed to write tasks: %w", err)
	}
	return list, nil
}

func (a *Adapter) Add(ctx context.Context, current []domain.Task, draft domain.Task) ([]domain.Task, error) {
	next := append(domain.CloneTasks(current), draft)
	return a.save(ctx, next)
}

func (a *Adapter) Toggle(ctx context.Context, current []domain.Task, id string) ([]domain.Task, error) {
	next := domain.CloneTasks(current)
	i := domain.IndexOf(next, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	next[i].Completed = !next[i].Completed
	return a.save(ctx, next)
}

func (a *Adapter) Remove(ctx context.Context, current []domain.Task, id string) ([]domain.Task, error) {
	next := domain.CloneTasks(current)
	i := domain.IndexOf(next, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	return a.save(ctx, append(next[:i], next[i+1:]...))
}

func (a *Adapter) Clear(ctx context.Context, _ []domain.Task) ([]domain.Task, error) {
	return a.save(ctx, nil)
}
