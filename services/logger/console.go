package logsvc

import (
	"io"
	"log"
	"os"
	"sync"

	"github.com/trezcool/markaz/core"
)

// Entry is one recorded log line.
type Entry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// ConsoleLogger prints to stdout and keeps what it logged in memory.
// Used by the admin CLI and in tests.
type ConsoleLogger struct {
	std *log.Logger

	mu      sync.Mutex
	entries []Entry
}

var _ core.Logger = (*ConsoleLogger)(nil)

func NewConsoleLogger(prefix string) *ConsoleLogger {
	return &ConsoleLogger{std: log.New(os.Stdout, prefix, log.LstdFlags|log.Lmicroseconds)}
}

// NewConsoleLoggerMock records entries without printing them.
func NewConsoleLoggerMock() *ConsoleLogger {
	return &ConsoleLogger{std: log.New(io.Discard, "", 0)}
}

func (l *ConsoleLogger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	l.entries = append(l.entries, Entry{Level: level, Msg: msg, Args: args})
	l.mu.Unlock()

	person, rest := splitArgs(args)
	if person.ID != "" {
		l.std.Printf("[%s] %s (%s)", level, msg, person.Email)
	} else {
		l.std.Printf("[%s] %s", level, msg)
	}
	for _, arg := range rest {
		l.std.Printf("%+v", arg)
	}
}

// Entries returns a copy of the recorded entries.
func (l *ConsoleLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

func (l *ConsoleLogger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l *ConsoleLogger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l *ConsoleLogger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l *ConsoleLogger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }

func (l *ConsoleLogger) Fatal(msg string, args ...interface{}) {
	l.log("FATAL", msg, args)
	l.std.Fatal(msg)
}
