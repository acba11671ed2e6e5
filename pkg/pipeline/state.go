// Package pipeline answers natural-language questions about a PostgreSQL
// database with a fixed four-stage run: schema introspection, SQL synthesis,
// SQL execution and answer synthesis.
package pipeline

import (
	"github.com/google/uuid"
)

// StageName identifies a pipeline stage.
type StageName string

const (
	StageSchema           StageName = "SCHEMA"
	StageSynthesizeSQL    StageName = "SYNTHESIZE_SQL"
	StageExecuteSQL       StageName = "EXECUTE_SQL"
	StageSynthesizeAnswer StageName = "SYNTHESIZE_ANSWER"
	StageDone             StageName = "DONE"
)

// State carries one question through the stages. It is created per run,
// filled left to right, and dropped once the answer is read.
//
// The string artifacts are empty until their stage sets them. Err is sticky:
// once a stage records a failure it is never cleared, and it decides which
// prompt the answer stage builds.
type State struct {
	question   string
	descriptor string

	// RunID correlates the log lines of one run.
	RunID uuid.UUID
	// Stage is the stage currently running, StageDone once finished.
	Stage StageName

	Schema    string
	SQLQuery  string
	SQLResult string
	Answer    string
	Err       string

	// Completed lists the stages that did work, in order. Skipped stages are absent.
	Completed []StageName
}

// NewState creates the state for one run.
func NewState(question, descriptor string) *State {
	return &State{
		question:   question,
		descriptor: descriptor,
		RunID:      uuid.New(),
		Stage:      StageSchema,
	}
}

// Question returns the user's question.
func (s *State) Question() string {
	return s.question
}

// Descriptor returns the connection descriptor of the target database.
func (s *State) Descriptor() string {
	return s.descriptor
}

// HasError reports whether an earlier stage failed.
func (s *State) HasError() bool {
	return s.Err != ""
}

// Fail records a stage failure. The first failure wins.
func (s *State) Fail(msg string) {
	if s.Err == "" {
		s.Err = msg
	}
}
