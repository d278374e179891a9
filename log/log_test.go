package log

import (
	"fmt"
	stdlog "log"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	lines []string
}

func (r *recorder) Infof(format string, v ...interface{}) {
	r.lines = append(r.lines, "info: "+fmt.Sprintf(format, v...))
}

func (r *recorder) Debugf(format string, v ...interface{}) {
	r.lines = append(r.lines, "debug: "+fmt.Sprintf(format, v...))
}

func (r *recorder) Errorf(format string, v ...interface{}) {
	r.lines = append(r.lines, "error: "+fmt.Sprintf(format, v...))
}

func TestSetLogger(t *testing.T) {
	r := &recorder{}
	SetLogger(r)
	defer SetLogger(nil)

	Infof("node %s up", "node-a")
	Errorf("node %s down", "node-b")

	w := NewDebugLogger()
	std := stdlog.New(w, "", 0)
	std.Printf("[DEBUG] POST %s", "http://localhost/events")

	assert.Equal(t, []string{
		"info: node node-a up",
		"error: node node-b down",
		"debug: [DEBUG] POST http://localhost/events",
	}, r.lines)
}
