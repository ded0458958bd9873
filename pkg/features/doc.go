// Package features reduces bounded windows of raw metric samples to
// fixed-shape feature vectors: central tendency, dispersion, percentiles,
// burstiness, idle/active ratios, cyclical strength, concurrency stats and
// derived cost-efficiency ratios.
package features
