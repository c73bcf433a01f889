// Package pipeline runs clone jobs through an ordered list of steps.
//
// A clone job starts as a target URL and is carried through validation,
// crawling, image inspection, archiving, saving and history recording.
// Each stage is a Step that reads what the earlier steps left on the
// model.CloneJob and adds its own output.
//
// Failures of validation, crawling, archiving and saving are fatal and stop
// the pipeline. Steps that implement Optional (inspection and history
// recording) only log their failures.
//
// BatchProcessor runs independent jobs for several targets concurrently
// with an errgroup limit. Every job gets a fresh pipeline from a factory, so
// no crawl state is shared between jobs.
package pipeline
