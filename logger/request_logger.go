package logger

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Logger stores the needed functionality to print a log.
// A request Logger may be shared by the goroutines serving one request;
// loggers made by With write through it.
type Logger struct {
	mu       sync.Mutex
	request  *Logger
	trace    string
	started  time.Time
	severity logging.Severity
	labels   map[string]string
}

func newDefaultLogger() *Logger {
	now := time.Now()
	id, _ := uuid.NewRandom()

	return &Logger{
		started: now,
		trace:   getTrace(now, id.String()),
		labels:  make(map[string]string),
	}
}

// root returns the logger that owns the request entry.
func (l *Logger) root() *Logger {
	if l.request != nil {
		return l.request
	}

	return l
}

// Trace returns the trace stored in logger.
func (l *Logger) Trace() string {
	return l.trace
}

// SetLabel adds a label to every entry of the request, including the
// summarized one written by End.
func (l *Logger) SetLabel(key, value string) {
	r := l.root()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.labels[key] = value
}

// With returns a logger whose entries carry labels on top of the request
// labels, e.g. the query a worker is exporting. Its entries still count
// towards the request severity.
func (l *Logger) With(labels map[string]string) ILogger {
	child := &Logger{
		request: l.root(),
		trace:   l.trace,
		started: l.started,
		labels:  make(map[string]string, len(labels)),
	}

	// a child's own labels never change after With returns.
	if l.request != nil {
		for k, v := range l.labels {
			child.labels[k] = v
		}
	}

	for k, v := range labels {
		child.labels[k] = v
	}

	return child
}

// End sets the parent logging client with the summarized logging entry.
func (l *Logger) End(ctx *gin.Context) {
	if !cloudLogging {
		return
	}

	r := l.root()

	r.mu.Lock()
	severity := r.severity
	labels := r.copyLabels()
	r.mu.Unlock()

	e := logging.Entry{
		Trace:    l.trace,
		Severity: severity,
		HTTPRequest: &logging.HTTPRequest{
			Request:      ctx.Request,
			Status:       ctx.Writer.Status(),
			Latency:      time.Since(r.started),
			ResponseSize: int64(ctx.Writer.Size()),
		},
		Labels:   labels,
		Resource: resource,
	}

	parentLogger.Log(e)
}

// copyLabels must be called with l.mu held.
func (l *Logger) copyLabels() map[string]string {
	if len(l.labels) == 0 {
		return nil
	}

	labels := make(map[string]string, len(l.labels))
	for k, v := range l.labels {
		labels[k] = v
	}

	return labels
}

// entryLabels raises the request severity to s and returns the labels of an
// entry written by l.
func (l *Logger) entryLabels(s logging.Severity) map[string]string {
	r := l.root()

	r.mu.Lock()
	if s > r.severity {
		r.severity = s
	}

	labels := r.copyLabels()
	r.mu.Unlock()

	if l == r || len(l.labels) == 0 {
		return labels
	}

	if labels == nil {
		labels = make(map[string]string, len(l.labels))
	}

	for k, v := range l.labels {
		labels[k] = v
	}

	return labels
}

func logReqEntry(s logging.Severity, l *Logger, msg string) {
	labels := l.entryLabels(s)

	e := logging.Entry{
		Payload:  msg,
		Severity: s,
		Trace:    l.trace,
		Labels:   labels,
		Resource: resource,
	}

	if cloudLogging && childLogger != nil {
		childLogger.Log(e)
	}

	if gin.Mode() != gin.ReleaseMode {
		if q, ok := labels[LabelQuery]; ok {
			msg = "[" + q + "] " + msg
		}

		log.Printf("[%s] %s\n", strings.ToLower(s.String()), msg)
	}
}

func (l *Logger) Info(v ...interface{}) {
	logReqEntry(logging.Info, l, fmt.Sprint(v...))
}

func (l *Logger) Infof(format string, v ...interface{}) {
	logReqEntry(logging.Info, l, fmt.Sprintf(format, v...))
}

func (l *Logger) Printf(format string, v ...interface{}) {
	logReqEntry(logging.Info, l, fmt.Sprintf(format, v...))
}

func (l *Logger) Println(v ...interface{}) {
	logReqEntry(logging.Info, l, strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (l *Logger) Warningf(format string, v ...interface{}) {
	logReqEntry(logging.Warning, l, fmt.Sprintf(format, v...))
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	logReqEntry(logging.Error, l, fmt.Sprintf(format, v...))
}
