package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func mustRegistry(t *testing.T, jobs ...Job) *Registry {
	t.Helper()
	registry, err := NewRegistry(jobs...)
	require.NoError(t, err)
	return registry
}

func TestRegistryKeepsOrderAndSkipsNil(t *testing.T) {
	retention := &stubJob{name: "sale-event-retention"}
	lowStock := &stubJob{name: "low-stock-scan"}
	registry := mustRegistry(t, retention, nil)
	require.NoError(t, registry.Register(nil))
	require.NoError(t, registry.Register(lowStock))

	jobs := registry.Jobs()
	require.Len(t, jobs, 2)
	assert.Same(t, retention, jobs[0])
	assert.Same(t, lowStock, jobs[1])
	assert.Equal(t, []string{"sale-event-retention", "low-stock-scan"}, registry.Names())

	jobs[0] = nil
	assert.NotNil(t, registry.Jobs()[0])
}

func TestRegistryRejectsDuplicateAndBlankNames(t *testing.T) {
	_, err := NewRegistry(&stubJob{name: "low-stock-scan"}, &stubJob{name: "low-stock-scan"})
	assert.ErrorContains(t, err, "registered twice")

	registry := mustRegistry(t)
	assert.Error(t, registry.Register(&stubJob{name: "  "}))
	assert.Empty(t, registry.Jobs())
}
