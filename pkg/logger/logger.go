package logger

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

var once sync.Once

var logger *zap.SugaredLogger

// Options control how the process logger encodes output
type Options struct {
	Level string
	JSON  bool
}

// OptionsFromEnv reads LOG_LEVEL and JSON_LOG
func OptionsFromEnv() Options {
	return Options{
		Level: os.Getenv("LOG_LEVEL"),
		JSON:  os.Getenv("JSON_LOG") != "",
	}
}

// Get initializes a zap.SugaredLogger instance from the environment if it has
// not been initialized already and returns the same instance for subsequent calls.
func Get() *zap.SugaredLogger {
	once.Do(func() {
		logger = build(OptionsFromEnv())
	})

	return logger
}

// Configure replaces the process logger. It should be called once during startup,
// before any goroutine holds a reference from Get.
func Configure(opts Options) *zap.SugaredLogger {
	once.Do(func() {})
	logger = build(opts)
	return logger
}

func build(opts Options) *zap.SugaredLogger {
	stdout := zapcore.AddSync(os.Stdout)

	level := zap.InfoLevel
	if opts.Level != "" {
		levelFromOpts, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			log.Println(
				fmt.Errorf("invalid level, defaulting to INFO: %w", err),
			)
		} else {
			level = levelFromOpts
		}
	}

	logLevel := zap.NewAtomicLevelAt(level)

	productionCfg := zap.NewProductionEncoderConfig()
	productionCfg.TimeKey = "timestamp"
	productionCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	developmentCfg := zap.NewDevelopmentEncoderConfig()
	developmentCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	encoder := zapcore.NewConsoleEncoder(developmentCfg)
	if opts.JSON {
		encoder = zapcore.NewJSONEncoder(productionCfg)
	}

	core := zapcore.NewCore(encoder, stdout, logLevel)

	buildInfo, ok := debug.ReadBuildInfo()
	if ok {
		var fields []zapcore.Field
		fields = append(fields, zap.String("go_version", buildInfo.GoVersion))
		for _, v := range buildInfo.Settings {
			if v.Key == "vcs.revision" && len(v.Value) >= 7 {
				fields = append(fields, zap.String("git_revision", v.Value[0:7]))
				break
			}
		}

		core = core.With(fields)
	}

	return zap.New(core).Sugar()
}

// FromCtx returns the Logger associated with the ctx. If no logger
// is associated, the default logger is returned.
func FromCtx(ctx context.Context, with ...any) *zap.SugaredLogger {
	l, ok := ctx.Value(ctxKey{}).(*zap.SugaredLogger)
	if !ok {
		l = Get()
	}

	if len(with) == 0 {
		return l
	}
	return l.With(with...)
}

// WithCtx returns a copy of ctx with the Logger attached.
func WithCtx(ctx context.Context, l *zap.SugaredLogger) context.Context {
	if lp, ok := ctx.Value(ctxKey{}).(*zap.SugaredLogger); ok {
		if lp == l {
			// Do not store same logger.
			return ctx
		}
	}

	return context.WithValue(ctx, ctxKey{}, l)
}

// WithRun tags every log line written through ctx with a fresh run id and the
// name of the pass being run. The run id is returned for reporting.
func WithRun(ctx context.Context, pass string) (context.Context, string) {
	runID := uuid.NewString()
	l := FromCtx(ctx).With("pass", pass, "run_id", runID)
	return WithCtx(ctx, l), runID
}
