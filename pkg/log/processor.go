package log

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/mwantia/fabric/pkg/container"
)

var loggerServiceType = reflect.TypeOf((*LoggerService)(nil)).Elem()

// LoggerTagProcessor resolves fabric:"logger" and fabric:"logger:<name>" tags
// to the registered LoggerService, named after the tag suffix.
type LoggerTagProcessor struct{}

func NewLoggerTagProcessor() *LoggerTagProcessor {
	return &LoggerTagProcessor{}
}

// GetPriority runs the processor before the default inject processor.
func (ltp *LoggerTagProcessor) GetPriority() int {
	return 50
}

func (ltp *LoggerTagProcessor) CanProcess(value string) bool {
	return strings.EqualFold(value, "logger") || strings.HasPrefix(strings.ToLower(value), "logger:")
}

func (ltp *LoggerTagProcessor) Process(ctx context.Context, sc *container.ServiceContainer, field reflect.StructField, value string) (any, error) {
	name := ""
	if _, suffix, ok := strings.Cut(value, ":"); ok {
		name = strings.TrimSpace(suffix)
	}

	logger, err := ResolveLogger(ctx, sc, name)
	if err != nil {
		return nil, fmt.Errorf("failed to inject logger into field '%s': %w", field.Name, err)
	}
	return logger, nil
}

// ResolveLogger returns the LoggerService registered in sc, named name when
// name is not empty.
func ResolveLogger(ctx context.Context, sc *container.ServiceContainer, name string) (LoggerService, error) {
	ok, resolved := sc.ResolveByType(ctx, loggerServiceType)
	if !ok {
		return nil, fmt.Errorf("no logger service registered")
	}

	base, ok := resolved.(LoggerService)
	if !ok {
		return nil, fmt.Errorf("resolved %T is not a LoggerService", resolved)
	}

	if name != "" {
		return base.Named(name), nil
	}
	return base, nil
}
