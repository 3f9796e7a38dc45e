package logger

import (
	"context"
	"fmt"
	"sync"
	"time"

	common_models "go-analytics/internal/common/models"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap/zapcore"
)

const logCollection = "service_logs"

// LogEntry holds the data passed from Zap to our worker
type LogEntry struct {
	Level     zapcore.Level
	Message   string
	RequestID string
	Operation string
	Caller    string
}

// DBLogWriter handles the async writing
type DBLogWriter struct {
	insert  func(ctx context.Context, rec common_models.Log) error
	logChan chan LogEntry
	appId   string
	done    chan struct{}
	once    sync.Once

	mu     sync.RWMutex
	closed bool
}

// NewDBLogWriter initializes the worker writing into the service_logs collection
func NewDBLogWriter(db *mongo.Database, appId string) *DBLogWriter {
	coll := db.Collection(logCollection)
	return newDBLogWriter(appId, func(ctx context.Context, rec common_models.Log) error {
		_, err := coll.InsertOne(ctx, rec)
		return err
	})
}

func newDBLogWriter(appId string, insert func(ctx context.Context, rec common_models.Log) error) *DBLogWriter {
	writer := &DBLogWriter{
		insert:  insert,
		logChan: make(chan LogEntry, 1000), // Buffer 1000 logs
		appId:   appId,
		done:    make(chan struct{}),
	}

	go writer.processLogs()

	return writer
}

// AddLog is called by our Zap core. Entries logged after Close are dropped.
func (w *DBLogWriter) AddLog(entry LogEntry) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}

	select {
	case w.logChan <- entry:
	default:
		// Channel full: drop rather than block a request path
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

// Close stops accepting entries and waits for the queue to drain.
func (w *DBLogWriter) Close() {
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		close(w.logChan)
		w.mu.Unlock()
		<-w.done
	})
}

func (w *DBLogWriter) processLogs() {
	defer close(w.done)
	for entry := range w.logChan {
		logRecord := common_models.Log{
			AppId:        w.appId,
			LogLevelId:   mapLevelToInt(entry.Level),
			Message:      entry.Message,
			RequestID:    entry.RequestID,
			Operation:    entry.Operation,
			Caller:       entry.Caller,
			CreatedOnUtc: time.Now().UTC(),
		}

		// Errors are ignored to keep the service running when the sink is down
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = w.insert(ctx, logRecord)
		cancel()
	}
}

func mapLevelToInt(l zapcore.Level) int {
	switch l {
	case zapcore.DebugLevel:
		return 10
	case zapcore.InfoLevel:
		return 20
	case zapcore.WarnLevel:
		return 30
	case zapcore.ErrorLevel:
		return 40
	case zapcore.FatalLevel:
		return 50
	default:
		return 20
	}
}
