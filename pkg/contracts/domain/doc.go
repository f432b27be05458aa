// Package domain defines the shared data contracts of the retail
// analytics pipeline: the raw/cleaned transaction record and the
// per-customer RFM aggregate. Types here are plain data carriers;
// the cleaning and metric logic lives in internal/cleaning and
// internal/metrics.
package domain
