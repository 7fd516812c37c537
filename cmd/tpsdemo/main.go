// Package main is a line-oriented demo host for the transaction stack.
//
// It registers a few built-in reversible operations on an in-memory
// counter and document, loads any Lua transaction scripts from the
// configured script directory, and drives the stack from stdin.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nishikata-waifu/jsTPS/internal/config"
	"github.com/nishikata-waifu/jsTPS/internal/logging"
	"github.com/nishikata-waifu/jsTPS/internal/notify"
	"github.com/nishikata-waifu/jsTPS/internal/script"
	"github.com/nishikata-waifu/jsTPS/internal/tps"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "tpsdemo.toml", "path to TOML config file")
	scriptDir := flag.String("scripts", "", "directory of Lua transaction scripts (overrides config)")
	logLevel := flag.String("log-level", "", "minimum log level (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *scriptDir != "" {
		cfg.ScriptDir = *scriptDir
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Output: os.Stderr,
		Prefix: "tpsdemo",
	})

	// Reload the log level when the config file changes on disk.
	watcher, err := config.Watch(*configPath, func(updated config.Config) {
		log.SetLevel(logging.ParseLevel(updated.LogLevel))
		log.Info("configuration reloaded")
	}, config.WithLogger(log.WithComponent("config")))
	if err != nil {
		log.Warn("config watch unavailable: %v", err)
	} else {
		defer watcher.Close()
	}

	var notifyOpts []notify.Option
	if cfg.Notify.Async {
		notifyOpts = append(notifyOpts, notify.WithAsync(cfg.Notify.Buffer))
	}
	notifier := notify.New(notifyOpts...)
	defer notifier.Close()

	sub := notifier.Subscribe(func(change notify.Change) {
		log.Debug("stack change: %s %s", change.Type, change.Description)
	})
	defer sub.Unsubscribe()

	stack := tps.New(
		tps.WithMaxEntries(cfg.MaxEntries),
		tps.WithNotifier(notifier),
	)

	runtime := script.NewRuntime()
	defer runtime.Close()

	scripts, err := loadScripts(runtime, cfg.ScriptDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return repl(stack, scripts, log)
}

// loadScripts loads every .lua file in dir as a named transaction.
func loadScripts(runtime *script.Runtime, dir string, log *logging.Logger) (map[string]*script.Transaction, error) {
	scripts := make(map[string]*script.Transaction)
	if dir == "" {
		return scripts, nil
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.lua"))
	if err != nil {
		return nil, err
	}
	for _, path := range matches {
		txn, err := runtime.LoadFile(path)
		if err != nil {
			log.Warn("skipping script: %v", err)
			continue
		}
		scripts[txn.Name()] = txn
		log.Info("loaded script transaction %q", txn.Name())
	}
	return scripts, nil
}

// host is the demo's mutable application state.
type host struct {
	counter int
	doc     []string
}

func repl(stack *tps.Stack, scripts map[string]*script.Transaction, log *logging.Logger) int {
	h := &host{}

	fmt.Println("tpsdemo - type 'help' for commands")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		cmd, args := fields[0], fields[1:]
		switch cmd {
		case "quit", "exit":
			return 0

		case "help":
			printHelp()

		case "incr", "decr":
			delta := 1
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					fmt.Printf("bad count %q\n", args[0])
					continue
				}
				delta = n
			}
			if cmd == "decr" {
				delta = -delta
			}
			addAndReport(stack, h.addTxn(delta))
			h.printState()

		case "say":
			if len(args) == 0 {
				fmt.Println("usage: say <text>")
				continue
			}
			addAndReport(stack, h.sayTxn(strings.Join(args, " ")))
			h.printState()

		case "run":
			if len(args) == 0 {
				fmt.Println("usage: run <script>")
				continue
			}
			txn, ok := scripts[args[0]]
			if !ok {
				fmt.Printf("no script %q\n", args[0])
				continue
			}
			addAndReport(stack, txn)

		case "undo":
			if err := stack.Undo(); err != nil {
				log.Error("undo failed: %v", err)
				continue
			}
			h.printState()

		case "redo":
			if err := stack.Redo(); err != nil {
				log.Error("redo failed: %v", err)
				continue
			}
			h.printState()

		case "peek":
			if txn, ok := stack.PeekUndo(); ok {
				fmt.Printf("undo -> %s\n", txn.Describe())
			} else {
				fmt.Println("undo -> (nothing)")
			}
			if txn, ok := stack.PeekRedo(); ok {
				fmt.Printf("redo -> %s\n", txn.Describe())
			} else {
				fmt.Println("redo -> (nothing)")
			}

		case "list":
			fmt.Print(stack.Describe())
			for _, info := range stack.RedoInfo() {
				fmt.Printf("  (pending) %s\n", info.Description)
			}

		case "clear":
			stack.Clear()
			fmt.Println("cleared")

		default:
			fmt.Printf("unknown command %q, try 'help'\n", cmd)
		}
	}
	return 0
}

func addAndReport(stack *tps.Stack, txn tps.Transaction) {
	if err := stack.Add(txn); err != nil {
		fmt.Printf("transaction failed: %v\n", err)
	}
}

func (h *host) addTxn(delta int) tps.Transaction {
	return tps.NewFunc(
		fmt.Sprintf("adjust counter by %d", delta),
		func() error { h.counter += delta; return nil },
		func() error { h.counter -= delta; return nil },
	)
}

func (h *host) sayTxn(text string) tps.Transaction {
	return tps.NewFunc(
		fmt.Sprintf("say %q", text),
		func() error { h.doc = append(h.doc, text); return nil },
		func() error { h.doc = h.doc[:len(h.doc)-1]; return nil },
	)
}

func (h *host) printState() {
	fmt.Printf("counter=%d doc=%q\n", h.counter, strings.Join(h.doc, " "))
}

func printHelp() {
	fmt.Println(`commands:
  incr [n]    increment the counter (reversible)
  decr [n]    decrement the counter (reversible)
  say <text>  append text to the document (reversible)
  run <name>  apply a loaded Lua script transaction
  undo        reverse the most recent transaction
  redo        re-apply the next pending transaction
  peek        show what undo/redo would act on
  list        show the stack summary
  clear       drop all history (state is kept)
  quit        exit`)
}
