package sane

import "github.com/sirupsen/logrus"

// warning-class diagnostics only; fatal conditions are always an *Error return.
var _lg = logrus.New()

func SetLogger(lg *logrus.Logger) {
	_lg = lg
}
