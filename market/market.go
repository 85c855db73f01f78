// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package market

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/datamarketd/fault"
	"github.com/bitmark-inc/datamarketd/storage"
)

// globals for background process
type globalDataType struct {
	sync.Mutex // to serialise instruction execution
	log        *logger.L

	// set once during initialise
	initialised bool
}

// global data
var globalData globalDataType

// Initialise - setup the instruction handlers
//
// storage must already be initialised
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	// no need to start if already started
	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("market")
	globalData.log.Info("starting…")

	if !storage.IsInitialised() {
		return fault.DatabaseIsNotSet
	}

	globalData.initialised = true
	return nil
}

// Finalise - stop all background processes
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	globalData.initialised = false
	return nil
}

// begin - common entry for every handler
//
// caller must hold the global lock
func begin() (storage.Transaction, error) {
	if !globalData.initialised {
		return nil, fault.NotInitialised
	}
	return storage.NewDBTransaction()
}

// execute - run one instruction body inside a transaction
//
// any error aborts the whole batch so no partial instruction is ever
// committed
func execute(handler func(trx storage.Transaction) error) error {
	trx, err := begin()
	if nil != err {
		return err
	}
	err = handler(trx)
	if nil != err {
		trx.Abort()
		return err
	}
	return trx.Commit()
}
