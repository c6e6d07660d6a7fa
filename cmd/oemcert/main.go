package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/root4loot/oemcert"
	"github.com/root4loot/oemcert/pkg/log"
)

const (
	AppName = "oemcert"
	Version = "0.1.0"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func init() {
	log.Init(AppName)
}

type CLI struct {
	Token   string
	URL     string
	Output  string
	Serials serialList
	Timeout int
	Debug   bool
}

func NewCLI() *CLI {
	opts := oemcert.DefaultOptions()
	return &CLI{
		URL:     opts.Endpoint,
		Output:  string(oemcert.FormatPair),
		Timeout: opts.Timeout,
	}
}

const usage = `
Usage: oemcert [options]
  -t, --token <token>         OEM API key (env OEMCERT_TOKEN). Contact Clarius to receive one.
  -u, --url <url>             Devices endpoint (env OEMCERT_URL, default: Clarius cloud).
  -s, --serial <serial>       Only print this probe serial. Repeatable or comma separated.
  -o, --output <pair|json>    Output format (default: pair).
      --timeout <seconds>     Request timeout (default: 30).
      --debug                 Enable debug mode.
      --version               Display the version information.
      --help                  Display this help message.

Examples:
  oemcert -t <token>
  oemcert -t <token> -s SN123 -o json
`

var (
	errHelp    = errors.New("help")
	errVersion = errors.New("version")
)

type serialList []string

func (s *serialList) String() string {
	return strings.Join(*s, ",")
}

func (s *serialList) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			*s = append(*s, v)
		}
	}
	return nil
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	log.SetOutput(stdout, stderr)
	log.SetLevel(log.InfoLevel)

	cli := NewCLI()
	if err := cli.parseFlags(args, stderr); err != nil {
		switch {
		case errors.Is(err, errHelp):
			fmt.Fprint(stdout, usage)
			return exitOK
		case errors.Is(err, errVersion):
			fmt.Fprintln(stdout, AppName, Version)
			return exitOK
		default:
			log.Error(err.Error())
			return exitUsage
		}
	}

	format, err := oemcert.ParseFormat(cli.Output)
	if err != nil {
		log.Errorf("%v", err)
		return exitUsage
	}

	if log.IsOutputPiped(stdout) {
		log.Notify(log.PipedOutputNotification)
	}

	runner := oemcert.NewRunnerWithOptions(&oemcert.Options{
		Token:    cli.Token,
		Endpoint: cli.URL,
		Timeout:  cli.Timeout,
		Debug:    cli.Debug,
	})

	resp, err := runner.Query(ctx)
	if err != nil {
		var se *oemcert.StatusError
		if errors.As(err, &se) {
			log.Result("error making request: " + se.Status)
			return exitOK
		}
		log.Errorf("%v", err)
		return exitError
	}

	entries, err := oemcert.Authenticated(resp.Results)
	if err != nil {
		log.Errorf("%v", err)
		return exitError
	}
	log.Debugf("%d of %d probes carry a certificate", len(entries), len(resp.Results))

	return cli.processResults(oemcert.FilterSerials(entries, cli.Serials...), format)
}

func (cli *CLI) processResults(entries []oemcert.Entry, format oemcert.Format) int {
	for _, e := range entries {
		line, err := e.Format(format)
		if err != nil {
			log.Errorf("%v", err)
			return exitError
		}
		log.Result(line)
	}
	return exitOK
}

func (cli *CLI) parseFlags(args []string, output io.Writer) error {
	var help, ver bool

	fs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {}

	setStringFlag := func(p *string, name, shorthand, value string) {
		fs.StringVar(p, name, value, "")
		fs.StringVar(p, shorthand, value, "")
	}

	setStringFlag(&cli.Token, "token", "t", "")
	setStringFlag(&cli.URL, "url", "u", cli.URL)
	setStringFlag(&cli.Output, "output", "o", cli.Output)
	fs.Var(&cli.Serials, "serial", "")
	fs.Var(&cli.Serials, "s", "")
	fs.IntVar(&cli.Timeout, "timeout", cli.Timeout, "")

	fs.BoolVar(&cli.Debug, "debug", false, "")
	fs.BoolVar(&ver, "version", false, "")
	fs.BoolVar(&help, "help", false, "")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}

	if cli.Debug {
		log.SetLevel(log.DebugLevel)
	}

	if help {
		return errHelp
	}
	if ver {
		return errVersion
	}

	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s. See --help for usage", strings.Join(fs.Args(), " "))
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	e, err := loadEnv()
	if err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	if !set["token"] && !set["t"] && e.Token != "" {
		cli.Token = e.Token
	}
	if !set["url"] && !set["u"] && e.URL != "" {
		cli.URL = e.URL
	}

	if cli.Token == "" {
		return errors.New("no token provided. See --help for usage")
	}

	return nil
}
