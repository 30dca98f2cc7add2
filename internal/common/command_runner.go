package common

import (
	"context"
	"fmt"

	"jobmatcher/internal/errors"
)

// CreateInputFunc builds the operation input from the raw file contents.
type CreateInputFunc[Input any] func(contents []string) (Input, error)

// LogDetailsFunc announces the operation before it runs.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// PipelineOperationFunc is one pipeline operation under a context.
type PipelineOperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// RunPipelineCommand is the shared skeleton of the file-based CLI commands:
// read and extract the input documents, build the operation input, run the
// operation, then format and write the result.
func RunPipelineCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	operation PipelineOperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	contents, err := NewFileProcessor(logger).ValidateAndReadDocuments(args...)
	if err != nil {
		return err
	}

	input, err := createInput(contents)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}
	logDetails(input, cmdConfig)

	result, err := operation(ctx, input)
	if err != nil {
		return err
	}
	return NewOutputHandler(logger).HandleOutput(result, cmdConfig)
}
