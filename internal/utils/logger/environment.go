package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func jsonConfig(level zapcore.Level, outputs ...string) zap.Config {
	cfg := zap.Config{
		Level:         zap.NewAtomicLevelAt(level),
		Encoding:      "json",
		EncoderConfig: zap.NewProductionEncoderConfig(),
	}
	if len(outputs) > 0 {
		cfg.OutputPaths = outputs
		cfg.ErrorOutputPaths = []string{"stderr"}
	}
	return cfg
}

func newProductionLoggerConfig() zap.Config {
	return jsonConfig(zap.InfoLevel, "stdout")
}

// staging keeps production encoding but drops caller and stack noise
func newStagingLoggerConfig() zap.Config {
	cfg := newProductionLoggerConfig()
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	return cfg
}

func newDevelopmentLoggerConfig() zap.Config {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	cfg := jsonConfig(zap.DebugLevel, "stdout")
	cfg.Development = true
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	cfg.Encoding = "console"
	cfg.EncoderConfig = encoderCfg
	return cfg
}

// test logs go nowhere
func newTestLoggerConfig() zap.Config {
	return jsonConfig(zap.InfoLevel)
}
