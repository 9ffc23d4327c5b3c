package telemetry

import "context"

type ITelemetry interface {
	// IndexConfirmations polls the source chain of every active record and
	// feeds the results to the confirmation tracker
	IndexConfirmations(ctx context.Context) error

	// SweepStalled reports records that stopped progressing
	SweepStalled(ctx context.Context) error
}
