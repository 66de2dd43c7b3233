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

func TestRegistryStoresJobs(t *testing.T) {
	registry := NewRegistry()
	jobA := &stubJob{name: "a"}
	jobB := &stubJob{name: "b"}
	assert.True(t, registry.Register(jobA))
	assert.True(t, registry.Register(jobB))
	jobs := registry.Jobs()
	require.Len(t, jobs, 2)
	assert.Same(t, jobA, jobs[0])
	assert.Same(t, jobB, jobs[1])
	// callers cannot mutate the internal slice
	jobs[0] = nil
	assert.NotNil(t, registry.Jobs()[0])
}

func TestRegistryRejectsDuplicatesAndNil(t *testing.T) {
	registry := NewRegistry(&stubJob{name: "expectations"}, nil)
	assert.False(t, registry.Register(&stubJob{name: "expectations"}))
	assert.False(t, registry.Register(nil))
	assert.Equal(t, []string{"expectations"}, registry.Names())

	_, ok := registry.Lookup("expectations")
	assert.True(t, ok)
	_, ok = registry.Lookup("missing")
	assert.False(t, ok)
}
