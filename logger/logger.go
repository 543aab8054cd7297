package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the application-wide structured logger.
var Log = logrus.New()

// Init configures the global logger. It must be called once at startup,
// before any other package logs.
func Init() {
	Log.SetOutput(os.Stdout)
	Log.SetFormatter(&logrus.JSONFormatter{})
	Log.SetLevel(logrus.InfoLevel)
}
