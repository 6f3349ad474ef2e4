package interceptor

import (
	"fmt"

	"github.com/samvad-hq/samvad-request/internal/logger"
)

// restyLogger routes resty's internal warnings into the structured logger.
type restyLogger struct {
	log logger.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.ErrorObj("resty", "resty_message", fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.WarnObj("resty", "resty_message", fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.DebugObj("resty", "resty_message", fmt.Sprintf(format, v...))
}
