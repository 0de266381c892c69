package logger

import "github.com/gin-gonic/gin"

// ILogger is the request scoped logger handed to handlers and services.
type ILogger interface {
	Trace() string
	SetLabel(key, value string)
	With(labels map[string]string) ILogger
	End(ctx *gin.Context)
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Printf(format string, v ...interface{})
	Println(v ...interface{})
	Warningf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}
