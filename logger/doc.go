// Package logger wraps zerolog with the conventions the speech service
// uses everywhere: leveled structured logs, console or JSON output, and
// component-scoped derived loggers.
//
// A component grabs its logger from the registry and attaches fields as
// plain maps:
//
//	log := logger.Get("transcription")
//	log.Info("transcription complete", logger.Fields(
//	    logger.FieldModelSize, "tiny",
//	    logger.FieldSegments, 12,
//	))
package logger
