package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Akul0725/sqlchat/pkg/adapters/datasource"
	"github.com/Akul0725/sqlchat/pkg/llm"
	"github.com/Akul0725/sqlchat/pkg/logging"
	sqlpkg "github.com/Akul0725/sqlchat/pkg/sql"
)

// ErrAnswerSynthesis wraps a failure of the answer stage. It is the only
// failure that escapes a run: earlier stage failures become the answer.
var ErrAnswerSynthesis = errors.New("answer synthesis failed")

// errEmptySQL is recorded when the model returns nothing usable.
var errEmptySQL = errors.New("model returned an empty statement")

// Stage is one unit of work in a run.
// Execute returns an error only for failures the run cannot turn into an answer.
type Stage interface {
	Name() StageName
	Execute(ctx context.Context, state *State) error
}

// baseStage provides the name and logger shared by every stage.
type baseStage struct {
	name   StageName
	logger *zap.Logger
}

func newBaseStage(name StageName, logger *zap.Logger) baseStage {
	return baseStage{name: name, logger: logger.Named(string(name))}
}

// Name returns the stage name.
func (b *baseStage) Name() StageName {
	return b.name
}

// skip logs and records a stage that does no work because an earlier stage failed.
func (b *baseStage) skip(state *State) {
	b.logger.Debug("Skipping stage after earlier failure",
		zap.String("run_id", state.RunID.String()))
	observeStage(b.name, outcomeSkipped, 0)
}

// finish records timing and outcome for a stage that ran.
func (b *baseStage) finish(state *State, start time.Time, failed bool) {
	elapsed := time.Since(start)
	outcome := outcomeOK
	if failed {
		outcome = outcomeFailed
	}
	observeStage(b.name, outcome, elapsed)
	state.Completed = append(state.Completed, b.name)

	b.logger.Debug("Stage finished",
		zap.String("run_id", state.RunID.String()),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", elapsed))
}

// SchemaStage describes the target database for the prompts that follow.
type SchemaStage struct {
	baseStage
	inspector datasource.SchemaInspector
}

// NewSchemaStage creates the schema introspection stage.
func NewSchemaStage(inspector datasource.SchemaInspector, logger *zap.Logger) *SchemaStage {
	return &SchemaStage{
		baseStage: newBaseStage(StageSchema, logger),
		inspector: inspector,
	}
}

// Execute sets state.Schema, or records "Error getting schema: <cause>".
func (s *SchemaStage) Execute(ctx context.Context, state *State) error {
	if state.HasError() {
		s.skip(state)
		return nil
	}
	start := time.Now()

	schema, err := s.inspector.DescribeSchema(ctx, state.Descriptor())
	if err != nil {
		state.Fail(fmt.Sprintf("Error getting schema: %v", err))
		s.logger.Warn("Schema introspection failed",
			zap.String("run_id", state.RunID.String()),
			zap.String("database", logging.SanitizeConnectionString(state.Descriptor())),
			zap.String("error", logging.SanitizeError(err)))
		s.finish(state, start, true)
		return nil
	}

	state.Schema = schema
	s.finish(state, start, false)
	return nil
}

// SQLSynthesisStage asks the model for one statement answering the question.
type SQLSynthesisStage struct {
	baseStage
	llm llm.LLMClient
}

// NewSQLSynthesisStage creates the SQL synthesis stage.
func NewSQLSynthesisStage(client llm.LLMClient, logger *zap.Logger) *SQLSynthesisStage {
	return &SQLSynthesisStage{
		baseStage: newBaseStage(StageSynthesizeSQL, logger),
		llm:       client,
	}
}

// Execute sets state.SQLQuery to the fence-free statement, or records
// "Error generating SQL: <cause>" and leaves SQLQuery unset.
func (s *SQLSynthesisStage) Execute(ctx context.Context, state *State) error {
	if state.HasError() {
		s.skip(state)
		return nil
	}
	start := time.Now()

	prompt := BuildSQLPrompt(state.Schema, state.Question())
	result, err := s.llm.GenerateResponse(ctx, prompt, sqlSystemMessage, Temperature)
	if err == nil {
		observeTokens(s.name, result.PromptTokens, result.CompletionTokens)
	}

	var statement string
	if err == nil {
		statement = sqlpkg.StripCodeFence(result.Content)
		if statement == "" {
			err = errEmptySQL
		}
	}
	if err != nil {
		state.Fail(fmt.Sprintf("Error generating SQL: %v", err))
		s.logger.Warn("SQL generation failed",
			zap.String("run_id", state.RunID.String()),
			zap.String("model", s.llm.GetModel()),
			zap.String("error_type", string(llm.GetErrorType(err))),
			zap.Bool("retryable", llm.IsRetryable(err)),
			zap.String("error", logging.SanitizeError(err)))
		s.finish(state, start, true)
		return nil
	}

	state.SQLQuery = statement
	s.logger.Debug("SQL generated",
		zap.String("run_id", state.RunID.String()),
		zap.String("sql", logging.SanitizeQuery(statement)))
	s.finish(state, start, false)
	return nil
}

// ExecutionStage runs the generated statement and renders its result as text.
type ExecutionStage struct {
	baseStage
	runner datasource.QueryRunner
}

// NewExecutionStage creates the SQL execution stage.
func NewExecutionStage(runner datasource.QueryRunner, logger *zap.Logger) *ExecutionStage {
	return &ExecutionStage{
		baseStage: newBaseStage(StageExecuteSQL, logger),
		runner:    runner,
	}
}

// Execute sets state.SQLResult, or records
// "Error executing SQL: <cause>. Check your query: <sql>".
func (s *ExecutionStage) Execute(ctx context.Context, state *State) error {
	if state.HasError() {
		s.skip(state)
		return nil
	}
	start := time.Now()

	result, err := s.runner.RunQuery(ctx, state.Descriptor(), state.SQLQuery)
	if err != nil {
		state.Fail(fmt.Sprintf("Error executing SQL: %v. Check your query: %s", err, state.SQLQuery))
		s.logger.Warn("SQL execution failed",
			zap.String("run_id", state.RunID.String()),
			zap.String("sql", logging.SanitizeQuery(state.SQLQuery)),
			zap.String("error", logging.SanitizeError(err)))
		s.finish(state, start, true)
		return nil
	}

	state.SQLResult = datasource.FormatResult(result)
	s.finish(state, start, false)
	return nil
}

// AnswerStage turns the result, or the recorded failure, into the user-facing reply.
// It always runs.
type AnswerStage struct {
	baseStage
	llm llm.LLMClient
}

// NewAnswerStage creates the answer synthesis stage.
func NewAnswerStage(client llm.LLMClient, logger *zap.Logger) *AnswerStage {
	return &AnswerStage{
		baseStage: newBaseStage(StageSynthesizeAnswer, logger),
		llm:       client,
	}
}

// Execute sets state.Answer to the raw model text. A model failure here is
// returned wrapped in ErrAnswerSynthesis.
func (s *AnswerStage) Execute(ctx context.Context, state *State) error {
	start := time.Now()

	var prompt string
	if state.HasError() {
		prompt = BuildErrorPrompt(state.Question(), state.Err)
	} else {
		prompt = BuildAnswerPrompt(state.Question(), state.SQLQuery, state.SQLResult)
	}

	result, err := s.llm.GenerateResponse(ctx, prompt, answerSystemMessage, Temperature)
	if err != nil {
		s.logger.Error("Answer synthesis failed",
			zap.String("run_id", state.RunID.String()),
			zap.String("model", s.llm.GetModel()),
			zap.String("error_type", string(llm.GetErrorType(err))),
			zap.Bool("retryable", llm.IsRetryable(err)),
			zap.String("error", logging.SanitizeError(err)))
		s.finish(state, start, true)
		return fmt.Errorf("%w: %w", ErrAnswerSynthesis, err)
	}

	observeTokens(s.name, result.PromptTokens, result.CompletionTokens)
	state.Answer = result.Content
	s.finish(state, start, false)
	return nil
}

// Ensure all stages implement Stage at compile time.
var (
	_ Stage = (*SchemaStage)(nil)
	_ Stage = (*SQLSynthesisStage)(nil)
	_ Stage = (*ExecutionStage)(nil)
	_ Stage = (*AnswerStage)(nil)
)
