package domain

import (
	"time"

	"github.com/doitintl/hello/mixpanel-sheets/mixpanel"
)

type ExportStatus string

const (
	ExportStatusSuccess ExportStatus = "success"
	ExportStatusFailed  ExportStatus = "failed"
)

// ExportRun is the last outcome of a query, as stored in firestore.
type ExportRun struct {
	Name      string       `json:"name" firestore:"name"`
	Endpoint  string       `json:"endpoint" firestore:"endpoint"`
	Status    ExportStatus `json:"status" firestore:"status"`
	Rows      int          `json:"rows" firestore:"rows"`
	Error     string       `json:"error,omitempty" firestore:"error"`
	ErrorKind string       `json:"errorKind,omitempty" firestore:"errorKind"`
	Timestamp time.Time    `json:"timestamp" firestore:"timestamp"`
}

// Result is the outcome of a single query of a run.
type Result struct {
	Name      string            `json:"name"`
	Endpoint  mixpanel.Endpoint `json:"endpoint"`
	Rows      int               `json:"rows"`
	Error     string            `json:"error,omitempty"`
	ErrorKind string            `json:"errorKind,omitempty"`
	Err       error             `json:"-"`
}

func (r *Result) Failed() bool {
	return r.Err != nil
}

// Report holds the results of a run in configuration order.
type Report struct {
	Results []Result `json:"results"`
}

func (r *Report) Failed() int {
	var n int

	for i := range r.Results {
		if r.Results[i].Failed() {
			n++
		}
	}

	return n
}
