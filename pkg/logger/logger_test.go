package logger_test

import (
	"context"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leave-management/pkg/logger"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logger Suite")
}

var _ = Describe("Logger", func() {
	Describe("ParseLevel", func() {
		It("should map config level strings onto slog levels", func() {
			Expect(logger.ParseLevel("debug")).To(Equal(slog.LevelDebug))
			Expect(logger.ParseLevel("WARN")).To(Equal(slog.LevelWarn))
			Expect(logger.ParseLevel(" error ")).To(Equal(slog.LevelError))
		})

		It("should fall back to info for unknown values", func() {
			Expect(logger.ParseLevel("verbose")).To(Equal(slog.LevelInfo))
			Expect(logger.ParseLevel("")).To(Equal(slog.LevelInfo))
		})
	})

	Describe("context logger", func() {
		It("should return the shared logger for a bare context", func() {
			Expect(logger.From(context.Background())).To(Equal(logger.LoggerWrapper()))
		})

		It("should carry an enriched logger through the context", func() {
			ctx := logger.With(context.Background(), "traceID", "abc123")

			enriched := logger.From(ctx)
			Expect(enriched).NotTo(BeNil())
			Expect(enriched).NotTo(Equal(logger.LoggerWrapper()))
		})
	})
})
