package sav

import "log"

// logWarn backs DefaultWarnFunc, writing through the standard log package.
func logWarn(format string, args ...interface{}) {
	log.Printf("sav: warning: "+format, args...)
}
