// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

//go:build !js
// +build !js

package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	neoone "github.com/Hiyho/neo-one"
	"github.com/Hiyho/neo-one/compiler"
	"github.com/Hiyho/neo-one/config"
	"github.com/Hiyho/neo-one/encoder"
	"github.com/Hiyho/neo-one/parser"
	"github.com/Hiyho/neo-one/token"
	"github.com/Hiyho/neo-one/vm"
)

const (
	title         = "neoc"
	promptPrefix  = ">>> "
	promptPrefix2 = "... "
)

var log = commonlog.GetLogger("neoone.cmd")

// Sentinel errors for repl.
var (
	errExit  = errors.New("exit")
	errReset = errors.New("reset")
)

type suggest struct {
	text        string
	description string
	typ         string
}

var suggestions []suggest

type flags struct {
	command      string
	filePath     string
	configPath   string
	output       string
	trace        string
	timeout      time.Duration
	verbosity    int
	verbositySet bool
}

type repl struct {
	ctx         context.Context
	eval        *neoone.Eval
	out         io.Writer
	commands    map[string]func(string) error
	script      *bytes.Buffer
	lastResult  interface{}
	isMultiline bool
}

func newREPL(ctx context.Context, stdout io.Writer, opts neoone.Options) *repl {
	if stdout == nil {
		stdout = os.Stdout
	}
	r := &repl{
		ctx:    ctx,
		eval:   neoone.NewEval(opts),
		out:    stdout,
		script: bytes.NewBuffer(nil),
	}
	r.commands = map[string]func(string) error{
		".commands":     r.cmdCommands,
		".keywords":     r.cmdKeywords,
		".bytecode":     r.cmdBytecode,
		".return":       r.cmdReturn,
		".return+":      r.cmdReturnVerbose,
		".gc":           r.cmdGC,
		".memory_stats": r.cmdMemoryStats,
		".reset":        func(string) error { return errReset },
		".exit":         func(string) error { return errExit },
	}
	return r
}

func (r *repl) printSuggestions(typ string) {
	const spaces = "                    "
	for _, s := range suggestions {
		if s.typ != typ {
			continue
		}
		_, _ = fmt.Fprint(r.out, s.text)
		if len(s.description) > 0 {
			_, _ = fmt.Fprintf(r.out, "%s\t%s", spaces[:len(spaces)-len(s.text)], s.description)
		}
		_, _ = fmt.Fprintln(r.out)
	}
}

func (r *repl) cmdCommands(_ string) error {
	r.printSuggestions("")
	return nil
}

func (r *repl) cmdKeywords(_ string) error {
	r.printSuggestions("keyword")
	return nil
}

func (r *repl) cmdBytecode(_ string) error {
	return vm.Fprint(r.out, r.eval.Bytecode(), nil)
}

func (r *repl) cmdReturn(_ string) error {
	_, _ = fmt.Fprintln(r.out, neoone.Format(r.lastResult))
	return nil
}

func (r *repl) cmdReturnVerbose(_ string) error {
	_, _ = fmt.Fprintf(r.out, "GoType:%[1]T, Value:%#[1]v\n", r.lastResult)
	return nil
}

func (*repl) cmdGC(_ string) error {
	runtime.GC()
	return nil
}

func (r *repl) cmdMemoryStats(_ string) error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	_, _ = fmt.Fprintf(r.out, "HeapAlloc = %s", humanFriendlySize(m.HeapAlloc))
	_, _ = fmt.Fprintf(r.out, "\tHeapObjects = %v", m.HeapObjects)
	_, _ = fmt.Fprintf(r.out, "\tSys = %s", humanFriendlySize(m.Sys))
	_, _ = fmt.Fprintf(r.out, "\tNumGC = %v\n", m.NumGC)
	return nil
}

func (r *repl) writeString(msg string) {
	_, _ = fmt.Fprintln(r.out, msg)
}

func (r *repl) execute(line string) error {
	switch {
	case !r.isMultiline && line == "":
		return nil
	case !r.isMultiline && len(line) > 0 && line[0] == '.':
		cmd := strings.Fields(line)[0]
		if fn, ok := r.commands[cmd]; ok {
			return fn(line)
		}
	case strings.HasSuffix(line, "\\"):
		r.isMultiline = true
		r.script.WriteString(line[:len(line)-1])
		r.script.WriteString("\n")
		return nil
	}

	r.script.WriteString(line)
	if r.executeScript() {
		// wait for the rest of the input
		r.isMultiline = true
		r.script.WriteString("\n")
		return nil
	}
	r.isMultiline = false
	r.script.Reset()
	return nil
}

// executeScript runs the buffered script and reports whether it is
// incomplete.
func (r *repl) executeScript() bool {
	res, err := r.eval.Run(r.ctx, r.script.String())
	if errors.Is(err, neoone.ErrIncomplete) {
		return true
	}
	if err != nil {
		r.writeString(fmt.Sprintf("\n!   %+v", err))
		return false
	}
	r.lastResult = res
	r.writeString(fmt.Sprintf("\n⇦   %s", neoone.Format(res)))
	return false
}

func (r *repl) prefix() string {
	if r.isMultiline {
		return promptPrefix2
	}
	return promptPrefix
}

func (r *repl) printInfo() {
	_, _ = fmt.Fprintln(r.out, "Copyright (c) 2020-2023 Ozan Hacıbekiroğlu")
	_, _ = fmt.Fprintln(r.out, "License: MIT",
		"Build:", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintln(r.out, "Write .commands to list available commands")
	_, _ = fmt.Fprintln(r.out, "Press Ctrl+D or write .exit command to exit")
	_, _ = fmt.Fprintln(r.out)
}

func (r *repl) run(history io.Reader) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetMultiLineMode(true)
	line.SetCompleter(complete)
	if _, err := line.ReadHistory(history); err != nil {
		return fmt.Errorf("failed history read: %w", err)
	}
	r.printInfo()

	var (
		str string
		err error
	)
	for err == nil {
		str, err = line.Prompt(r.prefix())
		if err != nil {
			if err == io.EOF {
				err = nil
				break
			}
			err = fmt.Errorf("prompt error: %w", err)
			break
		}
		err = r.execute(str)
		if err == nil && !r.isMultiline {
			if v := strings.TrimSpace(str); len(v) > 0 {
				line.AppendHistory(v)
			}
		}
	}
	return err
}

func complete(line string) (completions []string) {
	var contains []string
	for _, v := range suggestions {
		if strings.HasPrefix(v.text, line) {
			completions = append(completions, v.text)
		} else if strings.Contains(v.text, line) {
			contains = append(contains, v.text)
		}
	}
	return append(completions, contains...)
}

func initSuggestions() {
	suggestions = []suggest{
		{text: ".commands", description: "Print REPL commands"},
		{text: ".keywords", description: "Print Keywords"},
		{text: ".bytecode", description: "Print Bytecode"},
		{text: ".return", description: "Print Last Result"},
		{text: ".return+", description: "Print Last Result (verbose)"},
		{text: ".memory_stats", description: "Print Memory Stats"},
		{text: ".gc", description: "Run Garbage Collector"},
		{text: ".reset", description: "Reset"},
		{text: ".exit", description: "Exit"},
	}
	for tok := token.Break; tok.IsKeyword(); tok++ {
		suggestions = append(suggestions, suggest{text: tok.String(), typ: "keyword"})
	}
}

func humanFriendlySize(b uint64) string {
	if b < 1024 {
		return fmt.Sprint(strconv.FormatUint(b, 10), " bytes")
	}
	if b < 1024*1024 {
		return fmt.Sprint(strconv.FormatFloat(float64(b)/1024, 'f', 1, 64), " KiB")
	}
	return fmt.Sprint(strconv.FormatFloat(float64(b)/1024/1024, 'f', 1, 64), " MiB")
}

func parseFlags(flagset *flag.FlagSet, args []string) (f flags, err error) {
	flagset.StringVar(&f.configPath, "config", "",
		"Configuration file, "+config.FileName+" is looked up from the working directory if empty")
	flagset.StringVar(&f.output, "o", "", "Output artifact of the compile command")
	flagset.StringVar(&f.trace, "trace", "",
		`Comma separated units: -trace compiler,vm`)
	flagset.DurationVar(&f.timeout, "timeout", 0, "Program timeout")
	flagset.IntVar(&f.verbosity, "v", 0, "Log verbosity, 0 to 2")

	flagset.Usage = func() {
		_, _ = fmt.Fprint(flagset.Output(),
			"Usage: neoc [flags] [command] [script or artifact file]\n\n",
			"Commands:\n",
			"  run      compile and run a script or run an artifact (default)\n",
			"  compile  compile a script to an artifact\n",
			"  disasm   print the instructions of a script or an artifact\n\n",
			"If no file is provided, REPL terminal application is started\n",
			"Use - to read from stdin\n",
			"\nFlags:\n",
		)
		flagset.PrintDefaults()
	}

	if err = flagset.Parse(args); err != nil {
		return
	}
	flagset.Visit(func(fl *flag.Flag) {
		if fl.Name == "v" {
			f.verbositySet = true
		}
	})

	rest := flagset.Args()
	f.command = "run"
	if len(rest) > 0 {
		switch rest[0] {
		case "run", "compile", "disasm":
			f.command = rest[0]
			rest = rest[1:]
		}
	}
	switch len(rest) {
	case 0:
		if f.command != "run" {
			err = fmt.Errorf("%s: missing file", f.command)
		}
		return
	case 1:
	default:
		err = errors.New("too many arguments")
		return
	}
	f.filePath = rest[0]
	if f.filePath == "-" {
		return
	}
	_, err = os.Stat(f.filePath)
	return
}

func loadConfig(f flags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.Load(f.configPath)
	} else {
		cfg, err = config.FindAndLoad(".")
	}
	if err != nil {
		return nil, err
	}
	if f.verbositySet {
		cfg.Log.Verbosity = f.verbosity
	}
	if f.timeout > 0 {
		cfg.VM.Timeout = f.timeout
	}
	if f.output != "" {
		cfg.Compiler.Output = f.output
	}
	units := "," + f.trace + ","
	if strings.Contains(units, ",compiler,") {
		cfg.Compiler.Trace = true
	}
	if strings.Contains(units, ",vm,") {
		cfg.VM.Trace = true
	}
	return cfg, cfg.Validate()
}

func configureLog(c config.Log) {
	var path *string
	if c.File != "" {
		path = &c.File
	}
	// commonlog: -4 none, -1 warning, 1 info, 2 debug
	verbosity := -1
	switch {
	case c.Verbosity < 0:
		verbosity = -4
	case c.Verbosity > 0:
		verbosity = c.Verbosity
	}
	commonlog.Configure(verbosity, path)
}

func options(cfg *config.Config, traceOut io.Writer) neoone.Options {
	opts := neoone.NewOptions(cfg)
	if cfg.Compiler.Trace {
		opts.Compiler.Trace = traceOut
	}
	if cfg.VM.Trace {
		opts.Trace = traceOut
	}
	return opts
}

func readInput(path string) (name string, data []byte, err error) {
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
		return "(stdin)", data, err
	}
	data, err = os.ReadFile(path)
	return filepath.Base(path), data, err
}

func isArtifact(data []byte) bool {
	return len(data) >= 4 &&
		binary.BigEndian.Uint32(data[0:4]) == encoder.ArtifactSignature
}

// load returns the artifact of an encoded artifact or a compiled script.
func load(name string, data []byte, opts neoone.Options) (*encoder.Artifact, error) {
	if isArtifact(data) {
		return encoder.Decode(bytes.NewReader(data))
	}
	fileSet := parser.NewFileSet()
	res, err := neoone.Compile(fileSet, name, data, opts.Compiler)
	if err != nil {
		return nil, err
	}
	for _, d := range res.Diagnostics {
		log.Warning(d.Message, "code", string(d.Code), "pos", d.FilePos.String())
	}
	return encoder.NewArtifact(name, res, fileSet), nil
}

func cmdRun(ctx context.Context, a *encoder.Artifact, opts neoone.Options, out io.Writer) error {
	v, err := neoone.Execute(ctx, a.Bytecode, opts)
	if err != nil {
		if pos, ok := a.Lookup(v.IP()); ok {
			return fmt.Errorf("%w\n\tat %s:%d:%d", err, a.Source, pos.Line, pos.Column)
		}
		return err
	}
	stack := v.Estack()
	if len(stack) == 0 {
		return nil
	}
	res, err := compiler.Inspect(stack[0])
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, neoone.Format(res))
	return nil
}

func cmdCompile(a *encoder.Artifact, output string, out io.Writer) error {
	if output == "" {
		output = strings.TrimSuffix(a.Source, filepath.Ext(a.Source)) + ".neoc"
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := a.Encode(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Info("artifact written", "path", output, "id", a.BuildID.String(), "bytes", len(a.Bytecode))
	_, _ = fmt.Fprintf(out, "%s %s\n", output, a.BuildID)
	return nil
}

func cmdDisasm(a *encoder.Artifact, out io.Writer) error {
	labels := make(map[int]string)
	line := 0
	for _, m := range a.SourceMap {
		if m.Pos.Line != line {
			line = m.Pos.Line
			labels[m.Offset] = fmt.Sprintf("%s:%d", a.Source, line)
		}
	}
	return vm.Fprint(out, a.Bytecode, labels)
}

func runFile(ctx context.Context, f flags, cfg *config.Config, out io.Writer) error {
	name, data, err := readInput(f.filePath)
	if err != nil {
		return err
	}
	opts := options(cfg, out)
	if f.command == "compile" {
		opts.Compiler.Trace = nil
	}
	a, err := load(name, data, opts)
	if err != nil {
		return err
	}
	switch f.command {
	case "compile":
		return cmdCompile(a, cfg.Compiler.Output, out)
	case "disasm":
		return cmdDisasm(a, out)
	}
	if cfg.VM.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.VM.Timeout)
		defer cancel()
	}
	return cmdRun(ctx, a, opts, out)
}

func hasMode(f *os.File, m os.FileMode) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&m == m
}

func hasInputRedirection() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeNamedPipe == os.ModeNamedPipe ||
		info.Size() > 0
}

func setTerminalTitle(title string) {
	if runtime.GOOS == "windows" {
		return
	}
	titleBytes := bytes.ReplaceAll([]byte(title), []byte{0x13}, []byte{})
	titleBytes = bytes.ReplaceAll(titleBytes, []byte{0x07}, []byte{})

	_, _ = os.Stdout.Write([]byte{0x1b, ']', '2', ';'})
	_, _ = os.Stdout.Write(titleBytes)
	_, _ = os.Stdout.Write([]byte{0x07})
}

func main() {
	f, err := parseFlags(flag.CommandLine, os.Args[1:])
	checkErr(err, nil)
	cfg, err := loadConfig(f)
	checkErr(err, nil)
	configureLog(cfg.Log)
	log.Debug("configuration loaded", "path", cfg.Path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if f.filePath == "" && hasInputRedirection() {
		f.filePath = "-"
	}
	if f.filePath != "" {
		checkErr(runFile(ctx, f, cfg, os.Stdout), cancel)
		return
	}

	if !hasMode(os.Stdout, os.ModeCharDevice) {
		_, _ = fmt.Fprintln(os.Stderr, "not a terminal")
		os.Exit(1)
	}

	initSuggestions()
	setTerminalTitle(title)

	const history = "let a = 1\n" +
		"function sum(...xs) { let t = 0; for (const x of xs) { t += x; } return t; }\n" +
		"class Point { x = 1; y = 2; }\n" +
		"try { throw new Error(\"e\"); } catch (e) { e.message }\n"

	opts := options(cfg, os.Stdout)
	opts.Compiler.ResultValue = true
L:
	for {
		err = newREPL(ctx, os.Stdout, opts).run(strings.NewReader(history))
		if err != nil {
			switch err {
			case errReset:
				continue
			case errExit:
				break L
			}
			checkErr(err, cancel)
		}
		break
	}
}

func checkErr(err error, fn func()) {
	if err == nil {
		return
	}

	defer os.Exit(1)
	_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
	if fn != nil {
		fn()
	}
}
