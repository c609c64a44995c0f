// Package logger provides structured logging for beankit applications
// using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. The container tags its
// entries with the bean id and scope kind.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("container")
//	log.Info("bean created", logger.Fields("bean", "memberService"))
package logger
