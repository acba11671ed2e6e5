package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Akul0725/sqlchat/pkg/adapters/datasource"
	"github.com/Akul0725/sqlchat/pkg/apperrors"
	"github.com/Akul0725/sqlchat/pkg/llm"
)

// Pipeline answers questions about a database. It holds only its collaborators
// and is safe for concurrent use: every run gets its own State.
type Pipeline struct {
	stages []Stage
	logger *zap.Logger
}

// New builds the four-stage pipeline. The same LLM client serves SQL
// synthesis and answer synthesis.
func New(
	inspector datasource.SchemaInspector,
	runner datasource.QueryRunner,
	client llm.LLMClient,
	logger *zap.Logger,
) *Pipeline {
	logger = logger.Named("pipeline")
	return &Pipeline{
		stages: []Stage{
			NewSchemaStage(inspector, logger),
			NewSQLSynthesisStage(client, logger),
			NewExecutionStage(runner, logger),
			NewAnswerStage(client, logger),
		},
		logger: logger,
	}
}

// Run answers question against the database named by descriptor.
//
// Failures of the schema, SQL synthesis and execution stages do not produce an
// error: they are explained by the answer. An error is returned only for a
// blank question or when the answer itself cannot be produced.
func (p *Pipeline) Run(ctx context.Context, question, descriptor string) (string, error) {
	state, err := p.RunState(ctx, question, descriptor)
	if err != nil {
		return "", err
	}
	return answerOf(state), nil
}

// RunState runs the pipeline and returns the final state, including the
// intermediate schema, SQL and result. On an answer-stage failure the partial
// state is returned along with the error.
func (p *Pipeline) RunState(ctx context.Context, question, descriptor string) (*State, error) {
	if strings.TrimSpace(question) == "" {
		return nil, apperrors.ErrEmptyQuestion
	}

	state := NewState(question, descriptor)
	start := time.Now()

	p.logger.Info("Starting run",
		zap.String("run_id", state.RunID.String()),
		zap.Int("question_length", len(question)))

	for _, stage := range p.stages {
		state.Stage = stage.Name()
		if err := stage.Execute(ctx, state); err != nil {
			observeRun(runFailed)
			p.logger.Error("Run failed",
				zap.String("run_id", state.RunID.String()),
				zap.String("stage", string(stage.Name())),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
			return state, fmt.Errorf("run %s: %w", state.RunID, err)
		}
	}
	state.Stage = StageDone

	outcome := runAnswered
	if state.HasError() {
		outcome = runErrorAnswered
	}
	observeRun(outcome)

	p.logger.Info("Run complete",
		zap.String("run_id", state.RunID.String()),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", time.Since(start)))

	return state, nil
}

// Answer returns the final answer of a finished state.
func Answer(state *State) string {
	return answerOf(state)
}

func answerOf(state *State) string {
	if state == nil || state.Answer == "" {
		return FallbackAnswer
	}
	return state.Answer
}

// IsAnswerFailure reports whether err came from the answer stage.
func IsAnswerFailure(err error) bool {
	return errors.Is(err, ErrAnswerSynthesis)
}
