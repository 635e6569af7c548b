package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/volsuite/volsuite/config"
)

// Interactive is the shell loop reading commands until quit or EOF.
type Interactive struct {
	session *Session
	reader  *bufio.Reader
	out     io.Writer
}

// NewInteractive builds the shell around a fresh session.
func NewInteractive(manager *config.Manager) *Interactive {
	return &Interactive{
		session: NewSession(manager, os.Stdout),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
}

// Run starts the loop. External edits to the config file are picked up
// while the shell runs, and a configured default ticker is loaded first.
func (i *Interactive) Run() error {
	fmt.Fprintln(i.out, welcomeBanner())
	fmt.Fprintln(i.out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := i.session.manager.Watch(ctx, i.session.reloadClients); err != nil {
		fmt.Fprintln(i.out, dimStyle.Render(fmt.Sprintf("config watcher unavailable: %v", err)))
	}

	if def := i.session.cfg().DefaultTicker; def != "" {
		if err := i.session.SetTicker(def); err != nil {
			fmt.Fprintln(i.out, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		}
	}

	for {
		fmt.Fprint(i.out, promptString(i.session.Ticker(), time.Now()))

		raw, err := i.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Fprintln(i.out)
				return nil
			}
			return err
		}

		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if done := i.dispatch(raw); done {
			return nil
		}
	}
}

// dispatch parses and executes one line, reporting whether to quit.
func (i *Interactive) dispatch(raw string) bool {
	line, err := ParseLine(raw)
	if err != nil {
		i.printErr(err)
		return false
	}
	if len(line.Args) == 0 {
		return false
	}

	command := strings.ToLower(line.Args[0])
	rest := line.Args[1:]

	switch command {
	case "quit", "exit", "q":
		return true

	case "help", "h", "?":
		i.showHelp()

	case "ticker":
		switch {
		case len(rest) > 0:
			i.printErr(i.session.SetTicker(rest[0]))
		case i.session.Ticker() != "":
			fmt.Fprintf(i.out, "Current ticker is set to: %s\n", tickerStyle.Render(i.session.Ticker()))
		default:
			symbol, err := PromptForTicker()
			if err != nil {
				i.printErr(err)
				break
			}
			i.printErr(i.session.SetTicker(symbol))
		}

	case "history":
		i.printErr(i.session.History(rest))

	case "oc":
		i.printErr(i.session.OptionChain(rest))

	case "news":
		i.printErr(i.session.News())

	case "hv":
		i.printErr(i.session.HV(rest))

	case "iv":
		if len(rest) == 0 {
			i.printErr(fmt.Errorf("usage: iv <skew|surface> (expiration)"))
			break
		}
		switch rest[0] {
		case "skew":
			i.printErr(i.session.IVSkew(rest[1:]))
		case "surface":
			i.printErr(i.session.IVSurface(line))
		default:
			i.printErr(fmt.Errorf("%q is not recognized as a valid sub-command, use 'skew' or 'surface'", rest[0]))
		}

	case "last":
		i.printErr(i.session.Last())

	case "export":
		name := ""
		if len(rest) > 0 {
			name = rest[0]
		}
		i.printErr(i.session.Export(name))

	case "import":
		path := ""
		if len(rest) > 0 {
			path = rest[0]
		}
		i.printErr(i.session.Import(path))

	case "config":
		i.printErr(i.session.ConfigCmd(rest))

	default:
		i.printErr(fmt.Errorf("%q is not a recognized command, type 'help' for a list of available commands", command))
	}
	return false
}

func (i *Interactive) printErr(err error) {
	if err != nil {
		fmt.Fprintln(i.out, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
	}
}

func (i *Interactive) showHelp() {
	help := `
Commands:
  ticker (<symbol>)                 Set or show the session ticker
  history <period> (<interval>)     Price history for a named period
  history <start> <end>             Price history for a date range
  oc (<expiration> <calls|puts>)    Option chain, lists expirations when empty
  news                              Recent headlines for the ticker
  hv <method> <period|start end>    Rolling historical volatility
                                    Methods: close, parkinson, gk
  iv skew (<expiration>)            Implied volatility skew
  iv surface                        Implied volatility surface
    --res=<int>                     Mesh resolution
    --range=<float>                 Strike range around spot
    --cmap=<name>                   Colormap: gray, jet, viridis
  last                              Reprint the last output
  export (<filename>)               Save the last output as CSV
  import <filepath>                 Load a CSV as the last output
  config (<setting>) (<value>)      Show or change settings
  config reset                      Restore default settings
  quit                              Exit the shell
`
	fmt.Fprintln(i.out, strings.TrimRight(help, "\n"))
	fmt.Fprintln(i.out)
}
