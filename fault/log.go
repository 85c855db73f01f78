// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"github.com/bitmark-inc/logger"
)

// hold a logger channel
var log *logger.L

// Initialise - setup a log channel for last attempt to log something
func Initialise() error {
	if nil != log {
		return AlreadyInitialised
	}
	log = logger.New("PANIC")
	return nil
}

// Finalise - flush any data
func Finalise() {
	if nil != log {
		log.Flush()
		log = nil
	}
}

// Panic - log a critical message and panic
//
// only for detected database corruption or code invariant failures,
// never for instruction-level validation errors
func Panic(message string) {
	if nil != log {
		log.Critical(message)
		log.Flush()
	}
	panic(message)
}

// Panicf - formatted version of Panic
func Panicf(format string, arguments ...interface{}) {
	if nil != log {
		log.Criticalf(format, arguments...)
		log.Flush()
	}
	logger.Panicf(format, arguments...)
}

// PanicIfError - panic if the error is not nil
func PanicIfError(message string, err error) {
	if nil == err {
		return
	}
	Panicf("%s failed with error: %s", message, err)
}
