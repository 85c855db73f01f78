// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/datamarketd/address"
	"github.com/bitmark-inc/datamarketd/balance"
	"github.com/bitmark-inc/datamarketd/identity"
	"github.com/bitmark-inc/datamarketd/market"
	"github.com/bitmark-inc/datamarketd/query"
	"github.com/bitmark-inc/datamarketd/util"
)

const (
	publicKeyFilename  = "identity.public"
	privateKeyFilename = "identity.private"
)

// setup command handler
//
// commands that run to create key files; these commands cannot access
// any internal database or states or the configuration file
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {
	case "gen-identity", "id":
		publicFilename := getFilenameWithDirectory(arguments, publicKeyFilename)
		privateFilename := getFilenameWithDirectory(arguments, privateKeyFilename)

		if util.EnsureFileExists(privateFilename) {
			fmt.Printf("generate private key: %q error: file already exists\n", privateFilename)
			exitwithstatus.Exit(1)
		}

		publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
		if nil != err {
			fmt.Printf("generate key pair error: %s\n", err)
			exitwithstatus.Exit(1)
		}

		if err := ioutil.WriteFile(privateFilename, []byte(hex.EncodeToString(privateKey)+"\n"), 0600); nil != err {
			fmt.Printf("write private key: %q error: %s\n", privateFilename, err)
			exitwithstatus.Exit(1)
		}
		if err := ioutil.WriteFile(publicFilename, []byte(hex.EncodeToString(publicKey)+"\n"), 0600); nil != err {
			os.Remove(privateFilename)
			fmt.Printf("write public key: %q error: %s\n", publicFilename, err)
			exitwithstatus.Exit(1)
		}

		liveIdentity, _ := identity.New(publicKey, false)
		testIdentity, _ := identity.New(publicKey, true)

		fmt.Printf("generated private key: %q\n", privateFilename)
		fmt.Printf("generated public key:  %q\n", publicFilename)
		fmt.Printf("live identity: %s\n", liveIdentity)
		fmt.Printf("test identity: %s\n", testIdentity)

	case "start", "run":
		return false // continue processing

	case "version", "v":
		fmt.Printf("%s\n", version)

	default:
		switch command {
		case "help", "h", "?":
		case "", " ":
			fmt.Printf("error: missing command\n")
		default:
			// marketplace commands need the database so fall through
			return false
		}
		printUsage(program)
		exitwithstatus.Exit(1)
	}

	// indicate processing complete and perform normal exit from main
	return true
}

// configuration file enquiry commands
// have configuration file read and decoded, but nothing else
func processConfigCommand(arguments []string, options *Configuration) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "config-test", "cfg":
		b, err := json.Marshal(options)
		if nil != err {
			exitwithstatus.Message("error: %s", err)
		}
		var out bytes.Buffer
		json.Indent(&out, b, "", "  ")
		out.WriteTo(os.Stdout)
		os.Stdout.WriteString("\n")

	default: // unknown commands fall through to data command
		return false
	}

	// indicate processing complete and perform normal exit from main
	return true
}

// data command handler
// the internal pools are enabled so these commands can
// access and/or change the marketplace database
func processDataCommand(log *logger.L, arguments []string, options *Configuration) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {

	case "start", "run":
		return false // continue processing

	case "initialize", "init":
		signer := parseIdentity(arguments, 0, "signer")
		txId, err := market.Initialize(signer)
		if nil != err {
			exitwithstatus.Message("initialize error: %s", err)
		}
		fmt.Printf("txid: %s\n", txId)

	case "create-user":
		signer := parseIdentity(arguments, 0, "signer")
		username := parseString(arguments, 1, "username")
		txId, err := market.CreateUser(signer, username)
		if nil != err {
			exitwithstatus.Message("create user error: %s", err)
		}
		userAddress, _ := address.User(signer)
		fmt.Printf("user: %s\n", userAddress)
		fmt.Printf("txid: %s\n", txId)

	case "create-dataset":
		signer := parseIdentity(arguments, 0, "signer")
		ipfsHash := parseString(arguments, 1, "content identifier")
		price := parseUint64(arguments, 2, "price")
		txId, err := market.CreateDataset(signer, ipfsHash, price)
		if nil != err {
			exitwithstatus.Message("create dataset error: %s", err)
		}
		datasetAddress, _ := address.Dataset(signer, ipfsHash)
		fmt.Printf("dataset: %s\n", datasetAddress)
		fmt.Printf("txid: %s\n", txId)

	case "buy-dataset":
		signer := parseIdentity(arguments, 0, "signer")
		datasetAddress := parseAddress(arguments, 1, "dataset address")
		txId, err := market.BuyDataset(signer, datasetAddress)
		if nil != err {
			exitwithstatus.Message("buy dataset error: %s", err)
		}
		fmt.Printf("txid: %s\n", txId)

	case "file-dispute":
		signer := parseIdentity(arguments, 0, "signer")
		datasetAddress := parseAddress(arguments, 1, "dataset address")
		reason := parseString(arguments, 2, "reason")
		txId, err := market.FileDispute(signer, datasetAddress, reason)
		if nil != err {
			exitwithstatus.Message("file dispute error: %s", err)
		}
		disputeAddress, _ := address.Dispute(datasetAddress, signer)
		fmt.Printf("dispute: %s\n", disputeAddress)
		fmt.Printf("txid: %s\n", txId)

	case "resolve-dispute":
		signer := parseIdentity(arguments, 0, "signer")
		disputeAddress := parseAddress(arguments, 1, "dispute address")
		result := parseVerdict(arguments, 2)
		txId, err := market.ResolveDispute(signer, disputeAddress, result)
		if nil != err {
			exitwithstatus.Message("resolve dispute error: %s", err)
		}
		fmt.Printf("txid: %s\n", txId)

	case "adjust-reputation":
		signer := parseIdentity(arguments, 0, "signer")
		userAddress := parseAddress(arguments, 1, "user address")
		delta := parseInt64(arguments, 2, "delta")
		txId, err := market.AdjustReputation(signer, userAddress, delta)
		if nil != err {
			exitwithstatus.Message("adjust reputation error: %s", err)
		}
		fmt.Printf("txid: %s\n", txId)

	case "ban-user":
		signer := parseIdentity(arguments, 0, "signer")
		userAddress := parseAddress(arguments, 1, "user address")
		txId, err := market.BanUser(signer, userAddress)
		if nil != err {
			exitwithstatus.Message("ban user error: %s", err)
		}
		fmt.Printf("txid: %s\n", txId)

	case "unban-user":
		signer := parseIdentity(arguments, 0, "signer")
		userAddress := parseAddress(arguments, 1, "user address")
		txId, err := market.UnbanUser(signer, userAddress)
		if nil != err {
			exitwithstatus.Message("unban user error: %s", err)
		}
		fmt.Printf("txid: %s\n", txId)

	case "create-review":
		signer := parseIdentity(arguments, 0, "signer")
		datasetAddress := parseAddress(arguments, 1, "dataset address")
		rating := parseUint64(arguments, 2, "rating")
		comment := ""
		if len(arguments) > 3 {
			comment = arguments[3]
		}
		if rating > 255 {
			exitwithstatus.Message("error: invalid rating: %d", rating)
		}
		txId, err := market.CreateReview(signer, datasetAddress, uint8(rating), comment)
		if nil != err {
			exitwithstatus.Message("create review error: %s", err)
		}
		fmt.Printf("txid: %s\n", txId)

	case "deposit":
		signer := parseIdentity(arguments, 0, "signer")
		amount := parseUint64(arguments, 1, "amount")
		txId, err := market.Deposit(signer, amount)
		if nil != err {
			exitwithstatus.Message("deposit error: %s", err)
		}
		fmt.Printf("txid: %s\n", txId)

	case "balance":
		id := parseIdentity(arguments, 0, "identity")
		fmt.Printf("balance: %d\n", balance.Balance(id))

	case "global-state":
		globalState, err := query.GlobalState()
		if nil != err {
			exitwithstatus.Message("global state error: %s", err)
		}
		printJson(globalState)

	case "user":
		userAddress := parseAddress(arguments, 0, "user address")
		user, err := query.User(userAddress)
		if nil != err {
			exitwithstatus.Message("user error: %s", err)
		}
		printJson(user)

	case "dataset":
		datasetAddress := parseAddress(arguments, 0, "dataset address")
		dataset, err := query.Dataset(datasetAddress)
		if nil != err {
			exitwithstatus.Message("dataset error: %s", err)
		}
		printJson(dataset)

	case "dispute":
		disputeAddress := parseAddress(arguments, 0, "dispute address")
		dispute, err := query.Dispute(disputeAddress)
		if nil != err {
			exitwithstatus.Message("dispute error: %s", err)
		}
		printJson(dispute)

	case "review":
		reviewAddress := parseAddress(arguments, 0, "review address")
		review, err := query.Review(reviewAddress)
		if nil != err {
			exitwithstatus.Message("review error: %s", err)
		}
		printJson(review)

	case "user-address":
		id := parseIdentity(arguments, 0, "identity")
		userAddress, err := address.User(id)
		if nil != err {
			exitwithstatus.Message("user address error: %s", err)
		}
		fmt.Printf("user: %s\n", userAddress)

	case "dataset-address":
		id := parseIdentity(arguments, 0, "owner identity")
		ipfsHash := parseString(arguments, 1, "content identifier")
		datasetAddress, err := address.Dataset(id, ipfsHash)
		if nil != err {
			exitwithstatus.Message("dataset address error: %s", err)
		}
		fmt.Printf("dataset: %s\n", datasetAddress)

	case "list-active":
		var startKey []byte
		for {
			items, nextKey, err := query.ActiveDatasets(startKey, query.MaximumCount)
			if nil != err {
				exitwithstatus.Message("active datasets error: %s", err)
			}
			printJson(items)
			if nil == nextKey {
				break
			}
			startKey = nextKey
		}

	case "list-owner":
		owner := parseIdentity(arguments, 0, "owner identity")
		var startKey []byte
		for {
			items, nextKey, err := query.DatasetsByOwner(owner, startKey, query.MaximumCount)
			if nil != err {
				exitwithstatus.Message("datasets by owner error: %s", err)
			}
			printJson(items)
			if nil == nextKey {
				break
			}
			startKey = nextKey
		}

	case "list-reviews":
		datasetAddress := parseAddress(arguments, 0, "dataset address")
		var startKey []byte
		for {
			items, nextKey, err := query.ReviewsOf(datasetAddress, startKey, query.MaximumCount)
			if nil != err {
				exitwithstatus.Message("reviews error: %s", err)
			}
			printJson(items)
			if nil == nextKey {
				break
			}
			startKey = nextKey
		}

	case "list-disputes":
		var startKey []byte
		for {
			items, nextKey, err := query.Disputes(startKey, query.MaximumCount)
			if nil != err {
				exitwithstatus.Message("disputes error: %s", err)
			}
			printJson(items)
			if nil == nextKey {
				break
			}
			startKey = nextKey
		}

	default:
		exitwithstatus.Message("error: no such command: %s", command)
	}

	// indicate processing complete and perform normal exit from main
	return true
}

func printUsage(program string) {
	fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n\n", program)

	fmt.Printf("supported commands:\n\n")
	fmt.Printf("  help                       (h)    - display this message\n")
	fmt.Printf("  version                    (v)    - display version string\n")
	fmt.Printf("  gen-identity [DIR]         (id)   - create a key pair in: %q and %q\n", "DIR/"+privateKeyFilename, "DIR/"+publicKeyFilename)
	fmt.Printf("  start                      (run)  - just run the program, same as no arguments\n")
	fmt.Printf("  config-test                (cfg)  - just check the configuration file\n")
	fmt.Printf("\n")
	fmt.Printf("  initialize SIGNER          (init) - create the global state, signer becomes admin\n")
	fmt.Printf("  create-user SIGNER NAME           - register the signer\n")
	fmt.Printf("  create-dataset SIGNER CID PRICE   - list a dataset\n")
	fmt.Printf("  buy-dataset SIGNER DATASET        - purchase a listing\n")
	fmt.Printf("  file-dispute SIGNER DATASET WHY   - open an arbitration case\n")
	fmt.Printf("  resolve-dispute SIGNER DISPUTE uphold|reject\n")
	fmt.Printf("  adjust-reputation SIGNER USER N   - admin reputation delta\n")
	fmt.Printf("  ban-user SIGNER USER              - admin ban\n")
	fmt.Printf("  unban-user SIGNER USER            - admin unban\n")
	fmt.Printf("  create-review SIGNER DATASET RATING [COMMENT]\n")
	fmt.Printf("  deposit SIGNER AMOUNT             - credit the signer's balance\n")
	fmt.Printf("\n")
	fmt.Printf("  balance IDENTITY                  - show a balance\n")
	fmt.Printf("  global-state                      - show the admin authority\n")
	fmt.Printf("  user ADDRESS                      - show a user record\n")
	fmt.Printf("  dataset ADDRESS                   - show a dataset record\n")
	fmt.Printf("  dispute ADDRESS                   - show a dispute record\n")
	fmt.Printf("  review ADDRESS                    - show a review record\n")
	fmt.Printf("  user-address IDENTITY             - derive a user address\n")
	fmt.Printf("  dataset-address OWNER CID         - derive a dataset address\n")
	fmt.Printf("  list-active                       - list all active datasets\n")
	fmt.Printf("  list-owner OWNER                  - list one owner's datasets\n")
	fmt.Printf("  list-reviews DATASET              - list one dataset's reviews\n")
	fmt.Printf("  list-disputes                     - list all disputes\n")
}

// argument decoding helpers

func parseString(arguments []string, n int, name string) string {
	if len(arguments) <= n || "" == arguments[n] {
		exitwithstatus.Message("error: missing %s argument", name)
	}
	return arguments[n]
}

func parseIdentity(arguments []string, n int, name string) *identity.Identity {
	s := parseString(arguments, n, name)
	id, err := identity.FromBase58(s)
	if nil != err {
		exitwithstatus.Message("error in %s: %q: %s", name, s, err)
	}
	return id
}

func parseAddress(arguments []string, n int, name string) address.Address {
	s := parseString(arguments, n, name)
	a, err := address.FromHexString(s)
	if nil != err {
		exitwithstatus.Message("error in %s: %q: %s", name, s, err)
	}
	return a
}

func parseUint64(arguments []string, n int, name string) uint64 {
	s := parseString(arguments, n, name)
	value, err := strconv.ParseUint(s, 10, 64)
	if nil != err {
		exitwithstatus.Message("error in %s: %q: %s", name, s, err)
	}
	return value
}

func parseInt64(arguments []string, n int, name string) int64 {
	s := parseString(arguments, n, name)
	value, err := strconv.ParseInt(s, 10, 64)
	if nil != err {
		exitwithstatus.Message("error in %s: %q: %s", name, s, err)
	}
	return value
}

func parseVerdict(arguments []string, n int) bool {
	s := parseString(arguments, n, "verdict")
	switch s {
	case "uphold", "true":
		return true
	case "reject", "false":
		return false
	default:
		exitwithstatus.Message("error: invalid verdict: %q  use: uphold or reject", s)
	}
	return false // not reached
}

func printJson(data interface{}) {
	s, err := json.MarshalIndent(data, "", "  ")
	if nil != err {
		exitwithstatus.Message("JSON encode error: %s", err)
	}
	fmt.Printf("%s\n", s)
}

// get the working directory; if not set in the arguments
// it's set to the current directory
func getFilenameWithDirectory(arguments []string, name string) string {
	dir := "."
	if len(arguments) >= 1 {
		dir = arguments[0]
	}

	return filepath.Join(dir, name)
}
