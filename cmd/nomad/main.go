// Command nomad sends one JSON request and prints the decoded response body.
//
//	nomad [flags] <location>
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/netip"
	"os"
	"os/signal"
	"strings"
	"time"

	"nomad/application/http"
	"nomad/application/http/client"
	"nomad/application/util/domain"
	"nomad/transport/tcp"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

const environmentVariableTimeout = "NOMAD_TIMEOUT"

type mainFlags struct {
	data      string
	timeout   time.Duration
	shortRead bool
	strict    bool
	verbose   bool

	// resolve pins host names to addresses ahead of the OS resolver.
	resolve map[string][]netip.Addr
}

func main() {
	fs, mainFlags := initFlags(os.Args[0])
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if mainFlags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, logger, mainFlags, fs.Arg(0)); err != nil {
		kind, _ := http.KindOf(err)
		logger.Error("request failed", "kind", kind, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, mainFlags *mainFlags, rawLocation string) error {
	opts := client.DefaultOptions
	opts.Timeout.RoundTrip = mainFlags.timeout
	if mainFlags.shortRead {
		opts.Receive.Framing = client.FramingShortRead
	}
	opts.Receive.Decode.StrictFields = mainFlags.strict

	c := client.New(tcp.NewDialer(), newLookuper(mainFlags.resolve), logger, clock.New(), opts)

	request, err := http.NewRequest(rawLocation)
	if err != nil {
		return err
	}

	var res *http.Response
	if mainFlags.data == "" {
		res, err = c.Get(ctx, request)
	} else {
		var payload any
		if err := json.Unmarshal([]byte(mainFlags.data), &payload); err != nil {
			return errors.Wrap(err, "parsing -d")
		}
		res, err = c.Post(ctx, request, payload)
	}
	if err != nil {
		return err
	}

	logger.Info("response", "status", res.Status)

	out, err := json.MarshalIndent(res.Body, "", "  ")
	if err != nil {
		return errors.Wrap(err, "formatting body")
	}
	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}

func newLookuper(resolve map[string][]netip.Addr) domain.Lookuper {
	pinned := domain.NewMapLookuper(nil)
	for host, addrs := range resolve {
		pinned.Set(host, addrs)
	}
	return domain.NewChainLookuper(pinned, domain.NewNetLookuper(nil))
}

// parseResolve parses "host=addr" and records it in resolve.
func parseResolve(resolve map[string][]netip.Addr, v string) error {
	host, rawAddr, found := strings.Cut(v, "=")
	if !found || host == "" {
		return errors.Errorf("expected host=addr, got %q", v)
	}

	addr, err := netip.ParseAddr(rawAddr)
	if err != nil {
		return errors.Wrapf(err, "parsing address of %s", host)
	}

	host = strings.ToLower(host)
	resolve[host] = append(resolve[host], addr)
	return nil
}

func flagUsage(fs *flag.FlagSet) {
	fmt.Fprintln(fs.Output(), "Sends a GET request, or a POST request when -d is given, and prints the JSON body.")
	fmt.Fprintf(fs.Output(), "Reads %s when -t is not given.\n", environmentVariableTimeout)
	fmt.Fprintf(fs.Output(), "Usage of %s: [flags] <location>\n", fs.Name())
	fs.PrintDefaults()
}

func initFlags(programName string) (*flag.FlagSet, *mainFlags) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.Usage = func() { flagUsage(fs) }
	mainFlags := &mainFlags{resolve: make(map[string][]netip.Addr)}
	defaultTimeout := func() time.Duration {
		if d, err := time.ParseDuration(os.Getenv(environmentVariableTimeout)); err == nil {
			return d
		}
		return 10 * time.Second
	}
	fs.StringVar(&mainFlags.data, "d", "", "JSON payload to POST.")
	fs.DurationVar(&mainFlags.timeout, "t", defaultTimeout(), "Timeout for the whole exchange. Zero means none.")
	fs.BoolVar(&mainFlags.shortRead, "short-read", false, "Stop reading at the first short read instead of using Content-Length.")
	fs.BoolVar(&mainFlags.strict, "strict", false, "Fail on malformed header lines instead of skipping them.")
	fs.BoolVar(&mainFlags.verbose, "v", false, "Log at debug level.")
	fs.Func("resolve", "Resolve host to addr, as host=addr. Can be repeated.", func(v string) error {
		return parseResolve(mainFlags.resolve, v)
	})
	return fs, mainFlags
}
