package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel определяет уровни логирования
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// String возвращает строковое представление уровня логирования
func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) logrus() logrus.Level {
	switch l {
	case TRACE:
		return logrus.TraceLevel
	case DEBUG:
		return logrus.DebugLevel
	case WARN:
		return logrus.WarnLevel
	case ERROR:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Logger - логгер компонента. Все логгеры пишут через текущий общий
// logrus.Logger и отличаются набором полей (как минимум component).
type Logger struct {
	fields logrus.Fields
}

var (
	baseMu  sync.RWMutex
	base    = newDiscardBase()
	logFile *os.File
	initMu  sync.Mutex
)

// До InitDefaultLogger сообщения никуда не пишутся
func newDiscardBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// InitDefaultLogger инициализирует систему логирования: консоль + файл
// logs/<component>_<timestamp>.log. Уровень берётся из LOG_LEVEL (по умолчанию info),
// формат - из LOG_FORMAT ("json" или текст).
func InitDefaultLogger(component string) error {
	initMu.Lock()
	defer initMu.Unlock()

	if err := os.MkdirAll("logs", 0755); err != nil {
		return fmt.Errorf("ошибка создания директории logs: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join("logs", fmt.Sprintf("%s_%s.log", component, timestamp))

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("ошибка создания файла логов: %w", err)
	}

	l := logrus.New()
	l.SetLevel(levelFromEnv())
	l.SetFormatter(formatterFromEnv())
	l.SetOutput(io.MultiWriter(os.Stdout, file))

	baseMu.Lock()
	if logFile != nil {
		logFile.Close()
	}
	base = l
	logFile = file
	baseMu.Unlock()

	GetLoggerManager().reset()
	return nil
}

// SetOutput перенаправляет вывод в w без файла (для тестов и встраивания)
func SetOutput(w io.Writer, level LogLevel) {
	l := logrus.New()
	l.SetLevel(level.logrus())
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})
	l.SetOutput(w)

	baseMu.Lock()
	base = l
	baseMu.Unlock()

	GetLoggerManager().reset()
}

// CloseDefaultLogger закрывает файл логов и отключает вывод
func CloseDefaultLogger() {
	baseMu.Lock()
	defer baseMu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	base = newDiscardBase()
}

func levelFromEnv() logrus.Level {
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func formatterFromEnv() logrus.Formatter {
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{FullTimestamp: true}
}

func currentBase() *logrus.Logger {
	baseMu.RLock()
	defer baseMu.RUnlock()
	return base
}

func (l *Logger) entry() *logrus.Entry {
	return currentBase().WithFields(l.fields)
}

// WithField возвращает логгер с дополнительным полем
func (l *Logger) WithField(key string, value interface{}) *Logger {
	fields := make(logrus.Fields, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	fields[key] = value
	return &Logger{fields: fields}
}

// Trace логирует сообщение уровня TRACE
func (l *Logger) Trace(format string, args ...interface{}) {
	l.entry().Tracef(format, args...)
}

// Debug логирует сообщение уровня DEBUG
func (l *Logger) Debug(format string, args ...interface{}) {
	l.entry().Debugf(format, args...)
}

// Info логирует сообщение уровня INFO
func (l *Logger) Info(format string, args ...interface{}) {
	l.entry().Infof(format, args...)
}

// Warn логирует сообщение уровня WARN
func (l *Logger) Warn(format string, args ...interface{}) {
	l.entry().Warnf(format, args...)
}

// Error логирует сообщение уровня ERROR
func (l *Logger) Error(format string, args ...interface{}) {
	l.entry().Errorf(format, args...)
}

func Trace(format string, args ...interface{}) {
	currentBase().Tracef(format, args...)
}

func Debug(format string, args ...interface{}) {
	currentBase().Debugf(format, args...)
}

func Info(format string, args ...interface{}) {
	currentBase().Infof(format, args...)
}

func Warn(format string, args ...interface{}) {
	currentBase().Warnf(format, args...)
}

func Error(format string, args ...interface{}) {
	currentBase().Errorf(format, args...)
}

// LogChunkGenerated логирует генерацию нового чанка
func LogChunkGenerated(chunkX, chunkY int, trees int) {
	GetWorldLogger().Trace("Chunk generated: chunk(%d,%d) trees=%d", chunkX, chunkY, trees)
}

// LogDamage логирует применение урона к сущности
func LogDamage(entityID uint64, amount, before, after int) {
	GetCombatLogger().Trace("Entity %d damaged: %d (%d -> %d)", entityID, amount, before, after)
}
