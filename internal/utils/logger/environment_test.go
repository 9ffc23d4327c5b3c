package logger

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dwarvesf/ape-bridge-backend/internal/types/environments"
)

type expectedConfig struct {
	level        zapcore.Level
	development  bool
	quiet        bool
	encoding     string
	writesStdout bool
}

var _ = Describe("logger configs", func() {
	DescribeTable("per environment",
		func(env environments.Environment, want expectedConfig) {
			cfg := configs[env]()

			Expect(cfg.Level.Level()).To(Equal(want.level))
			Expect(cfg.Development).To(Equal(want.development))
			Expect(cfg.DisableCaller).To(Equal(want.quiet))
			Expect(cfg.DisableStacktrace).To(Equal(want.quiet))
			Expect(cfg.Encoding).To(Equal(want.encoding))
			if want.writesStdout {
				Expect(cfg.OutputPaths).To(ConsistOf("stdout"))
				Expect(cfg.ErrorOutputPaths).To(ConsistOf("stderr"))
			} else {
				Expect(cfg.OutputPaths).To(BeEmpty())
				Expect(cfg.ErrorOutputPaths).To(BeEmpty())
			}
		},
		Entry("production", environments.Production, expectedConfig{
			level: zap.InfoLevel, encoding: "json", writesStdout: true,
		}),
		Entry("staging", environments.Staging, expectedConfig{
			level: zap.InfoLevel, quiet: true, encoding: "json", writesStdout: true,
		}),
		Entry("development", environments.Development, expectedConfig{
			level: zap.DebugLevel, development: true, quiet: true, encoding: "console", writesStdout: true,
		}),
		Entry("test", environments.Test, expectedConfig{
			level: zap.InfoLevel, encoding: "json",
		}),
	)
})
