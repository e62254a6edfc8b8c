package observability

import (
	"context"
	"fmt"
	"runtime"

	"github.com/grafana/pyroscope-go"

	"github.com/riskibarqy/league-night/internal/config"
	"github.com/riskibarqy/league-night/internal/platform/logging"
)

// mutexProfileFraction reports one in five mutex contention events while the
// profiler runs.
const mutexProfileFraction = 5

var pyroscopeProfiles = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocObjects,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseObjects,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
	pyroscope.ProfileMutexCount,
	pyroscope.ProfileMutexDuration,
}

// InitPyroscope starts continuous profiling when enabled.
func InitPyroscope(cfg config.Config, logger *logging.Logger) (ShutdownFunc, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if !cfg.PyroscopeEnabled {
		logger.Info("pyroscope disabled", "reason", "PYROSCOPE_ENABLED=false")
		return noopShutdown, nil
	}

	previousFraction := runtime.SetMutexProfileFraction(mutexProfileFraction)
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Logger:            pyroscopeLogger{logger: logger.With("component", "pyroscope")},
		Tags:              pyroscopeTags(cfg),
		ProfileTypes:      pyroscopeProfiles,
	})
	if err != nil {
		runtime.SetMutexProfileFraction(previousFraction)
		return nil, fmt.Errorf("start pyroscope: %w", err)
	}
	logger.Info("pyroscope enabled", "server_address", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)

	return func(context.Context) error {
		defer runtime.SetMutexProfileFraction(previousFraction)
		return profiler.Stop()
	}, nil
}

func pyroscopeTags(cfg config.Config) map[string]string {
	tags := map[string]string{"env": cfg.AppEnv, "service": cfg.ServiceName}
	if cfg.ServiceVersion != "" {
		tags["version"] = cfg.ServiceVersion
	}
	return tags
}

// pyroscopeLogger adapts the process logger to the profiler's printf
// interface. Debug output is dropped.
type pyroscopeLogger struct {
	logger *logging.Logger
}

func (l pyroscopeLogger) Infof(format string, args ...any)  { l.logger.Info(fmt.Sprintf(format, args...)) }
func (l pyroscopeLogger) Errorf(format string, args ...any) { l.logger.Error(fmt.Sprintf(format, args...)) }
func (pyroscopeLogger) Debugf(string, ...any)               {}
