package stitch

// Option configures a stitch operation.
// Use functional options to customize behavior per call.
//
// Example:
//
//	// Default: HighQuality rotation, one worker per CPU
//	res, err := stitch.Stitch(base, overlay, placements)
//
//	// Fast rotation, serial processing
//	res, err := stitch.Stitch(base, overlay, placements,
//		stitch.WithVariant(stitch.Fast), stitch.WithWorkers(1))
type Option func(*stitchOptions)

// stitchOptions holds optional configuration for a stitch operation.
type stitchOptions struct {
	variant Variant
	workers int
}

// defaultOptions returns the default stitch options.
func defaultOptions() stitchOptions {
	return stitchOptions{
		variant: HighQuality,
		workers: 0, // 0 means one worker per CPU
	}
}

// WithVariant selects the rotation algorithm for the operation.
// The default is HighQuality; pass Fast for previews and real-time use.
//
// Example:
//
//	res, err := stitch.Stitch(base, overlay, placements,
//		stitch.WithVariant(stitch.Fast))
func WithVariant(v Variant) Option {
	return func(o *stitchOptions) {
		o.variant = v
	}
}

// WithWorkers caps the number of goroutines processing frames.
// Zero or negative means one worker per CPU; one forces serial processing.
//
// Example:
//
//	// Keep stitching off the other cores during a live session
//	res, err := stitch.Stitch(base, overlay, placements, stitch.WithWorkers(2))
func WithWorkers(n int) Option {
	return func(o *stitchOptions) {
		o.workers = n
	}
}
