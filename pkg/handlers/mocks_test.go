package handlers

import (
	"context"
	"net/http"
)

// mockAnswerer implements Answerer for tests.
type mockAnswerer struct {
	RunFunc func(ctx context.Context, question, descriptor string) (string, error)

	calls       int
	questions   []string
	descriptors []string
}

func (m *mockAnswerer) Run(ctx context.Context, question, descriptor string) (string, error) {
	m.calls++
	m.questions = append(m.questions, question)
	m.descriptors = append(m.descriptors, descriptor)
	if m.RunFunc != nil {
		return m.RunFunc(ctx, question, descriptor)
	}
	return "mock answer", nil
}

// mockSessions implements DescriptorStore in memory.
type mockSessions struct {
	descriptor string
	saveErr    error
	clearErr   error
	sets       int
	clears     int
}

func (m *mockSessions) Descriptor(r *http.Request) string {
	return m.descriptor
}

func (m *mockSessions) SetDescriptor(w http.ResponseWriter, r *http.Request, descriptor string) error {
	m.sets++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.descriptor = descriptor
	return nil
}

func (m *mockSessions) Clear(w http.ResponseWriter, r *http.Request) error {
	m.clears++
	if m.clearErr != nil {
		return m.clearErr
	}
	m.descriptor = ""
	return nil
}

var (
	_ Answerer        = (*mockAnswerer)(nil)
	_ DescriptorStore = (*mockSessions)(nil)
)
