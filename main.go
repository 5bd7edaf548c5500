/*
 * PCIeVC - Main process.
 *
 * Copyright 2025, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"
	"github.com/rcornwell/pcievc/command/parser"
	reader "github.com/rcornwell/pcievc/command/reader"
	config "github.com/rcornwell/pcievc/config/configparser"
	"github.com/rcornwell/pcievc/config/debugconfig"
	"github.com/rcornwell/pcievc/config/nodeconfig"
	"github.com/rcornwell/pcievc/emu/node"
	telnet "github.com/rcornwell/pcievc/telnet"
	logger "github.com/rcornwell/pcievc/util/logger"
	"github.com/rcornwell/pcievc/util/statsview"
)

func main() {
	optConfig := getopt.StringLong("config", 'c', "", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Log debug to console")
	optNodes := getopt.IntLong("nodes", 'n', 2, "Number of nodes")
	optPort := getopt.StringLong("port", 'p', "", "Address for remote console")
	optStats := getopt.BoolLong("stats", 's', "Start runtime statistics viewer")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		var err error
		file, err = os.Create(*optLogFile)
		if err != nil {
			slog.Error("Unable to create log file: " + err.Error())
			os.Exit(1)
		}
		defer file.Close()
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	Logger := slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel}, *optDebug))
	slog.SetDefault(Logger)

	Logger.Info("PCIeVC Started")

	model, err := node.NewModel(*optNodes)
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}
	nodeconfig.Register(model)
	debugconfig.Register(model)

	if *optConfig != "" {
		err = config.LoadConfigFile(*optConfig)
		if err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
	}
	Logger.Info("Model configured", "nodes", model.Count())

	if *optStats {
		stop := statsview.Launch("")
		defer stop()
	}

	console := parser.NewConsole(model, os.Stdout)
	if *optPort != "" {
		server, err := telnet.Start(*optPort, console)
		if err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
		defer server.Stop()
	}

	reader.ConsoleReader(console)
	Logger.Info("PCIeVC stopped")
}
