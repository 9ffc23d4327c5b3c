package logger

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dwarvesf/ape-bridge-backend/internal/types/environments"
)

type fatalHook struct {
	called bool
}

func (h *fatalHook) OnWrite(_ *zapcore.CheckedEntry, _ []zapcore.Field) {
	h.called = true
}

var _ = Describe("Logger", func() {
	var (
		log      *Logger
		recorded *observer.ObservedLogs
	)

	BeforeEach(func() {
		var core zapcore.Core
		core, recorded = observer.New(zap.InfoLevel)
		log = NewFromZap(zap.New(core))
	})

	Describe("#New", func() {
		DescribeTable("builds a logger",
			func(env environments.Environment) {
				l := New(env)
				Expect(l).NotTo(BeNil())
				Expect(l.wrappedLogger).NotTo(BeNil())
			},
			Entry("production", environments.Production),
			Entry("staging", environments.Staging),
			Entry("development", environments.Development),
			Entry("test", environments.Test),
			Entry("unknown", environments.Environment("unknown")),
		)

		It("falls back to production levels for an unknown environment", func() {
			core := New(environments.Environment("unknown")).wrappedLogger.Core()
			Expect(core.Enabled(zapcore.InfoLevel)).To(BeTrue())
			Expect(core.Enabled(zapcore.DebugLevel)).To(BeFalse())
		})
	})

	Describe("levels", func() {
		It("writes entries at the matching level with fields", func() {
			log.Info("[Submit] accepted", map[string]string{"tx_hash": "0xabc"})
			log.Warn("[Sweep] stalled", map[string]string{"id": "7"})
			log.Error("[Observe][UpdateStatus]", map[string]string{"error": "boom"})

			entries := recorded.All()
			Expect(entries).To(HaveLen(3))
			Expect(entries[0].Level).To(Equal(zapcore.InfoLevel))
			Expect(entries[0].ContextMap()).To(HaveKeyWithValue("tx_hash", "0xabc"))
			Expect(entries[1].Level).To(Equal(zapcore.WarnLevel))
			Expect(entries[2].Level).To(Equal(zapcore.ErrorLevel))
			Expect(entries[2].Message).To(Equal("[Observe][UpdateStatus]"))
		})

		It("drops entries below the core level", func() {
			log.Debug("[Index] polling")
			Expect(recorded.Len()).To(BeZero())
		})

		It("accepts no fields", func() {
			log.Info("started")
			Expect(recorded.All()[0].Context).To(BeEmpty())
		})

		It("runs the fatal hook", func() {
			hook := &fatalHook{}
			core, _ := observer.New(zap.InfoLevel)
			l := NewFromZap(zap.New(core, zap.WithFatalHook(hook)))

			l.Fatal("[Init] no store", map[string]string{"driver": "sqlite"})
			Expect(hook.called).To(BeTrue())
		})
	})

	Describe("#With", func() {
		It("tags every entry of the child and leaves the parent alone", func() {
			child := log.With(map[string]string{"component": "tracker"})

			child.Info("[Observe] advanced", map[string]string{"id": "1"})
			log.Info("[Init] ready")

			entries := recorded.All()
			Expect(entries).To(HaveLen(2))
			Expect(entries[0].ContextMap()).To(Equal(map[string]interface{}{
				"component": "tracker",
				"id":        "1",
			}))
			Expect(entries[1].ContextMap()).NotTo(HaveKey("component"))
		})
	})

	Describe("#transformStrMapToFields", func() {
		It("orders fields by key", func() {
			fields := transformStrMapToFields(map[string]string{
				"b": "2",
				"a": "1",
				"c": "3",
			})

			Expect(fields).To(Equal([]zap.Field{
				zap.String("a", "1"),
				zap.String("b", "2"),
				zap.String("c", "3"),
			}))
		})

		It("returns an empty slice for an empty map", func() {
			Expect(transformStrMapToFields(map[string]string{})).To(BeEmpty())
		})
	})
})
